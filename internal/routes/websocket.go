package routes

import (
	"net/http"
	"strings"

	gwebsocket "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tbraam/gamehub-server/internal/configuration"
	"github.com/tbraam/gamehub-server/internal/hub"
	"github.com/tbraam/gamehub-server/pkg/auth"
	"github.com/tbraam/gamehub-server/pkg/httperrors"
)

var upgrader = gwebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and hands it to the hub.
//
// Token handling is deliberately asymmetric: a connection without a token
// is accepted anonymously so the older game clients keep working, but a
// connection that presents a token gets it verified and is refused when it
// does not check out.
func (env *Env) handleWebSocket(settings configuration.ApplicationSettings) http.HandlerFunc {
	verifier := auth.New(settings.SigningKey)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := zerolog.Ctx(ctx)

		var identity auth.Identity
		if token := bearerToken(r); token != "" {
			verified, err := verifier.Verify(token)
			if err != nil {
				httperrors.Write(w, "invalid token", http.StatusUnauthorized)
				log.Error().Err(err).Msg("refused connection with invalid token")
				return
			}
			identity = verified
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade error")
			return
		}

		client := hub.NewClient(env.Hub, conn, identity)
		log.Info().
			Str("connection_id", client.ID).
			Str("user_id", identity.UserID).
			Msg("new client connected")

		go client.WritePump()
		client.ReadPump()
	}
}

// bearerToken pulls the token from the Authorization header or, for
// browser websocket clients that cannot set headers, the token query
// parameter.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
