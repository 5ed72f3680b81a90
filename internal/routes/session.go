package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tbraam/gamehub-server/internal/pin"
	"github.com/tbraam/gamehub-server/internal/state"
	"github.com/tbraam/gamehub-server/pkg/httperrors"
)

type SessionCreate struct {
	Mode string `json:"mode"`
}

type SessionResponse struct {
	Pin  string `json:"pin"`
	Mode string `json:"mode"`
}

// createSession allocates a fresh room PIN for a game mode. The room
// itself fills up once clients join over the websocket.
func (env *Env) createSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := zerolog.Ctx(ctx)

		var session SessionCreate
		err := json.NewDecoder(r.Body).Decode(&session)
		if err != nil {
			httperrors.Write(w, err.Error(), http.StatusBadRequest)
			log.Error().Err(err).Msg("invalid body for create session")
			return
		}

		mode, err := state.ParseMode(session.Mode)
		if err != nil {
			httperrors.Write(w, err.Error(), http.StatusBadRequest)
			log.Error().Err(err).Str("mode", session.Mode).Msg("create session with unknown mode")
			return
		}

		roomPin, err := env.Hub.NewRoom()
		if err != nil {
			if errors.Is(err, pin.ErrExhausted) {
				httperrors.Write(w, "no room pins available, please try again later", http.StatusServiceUnavailable)
			} else {
				httperrors.InternalServerError(w)
			}
			log.Error().Err(err).Msg("error allocating room pin")
			return
		}

		response, err := json.Marshal(SessionResponse{
			Pin:  roomPin,
			Mode: mode.String(),
		})
		if err != nil {
			httperrors.InternalServerError(w)
			log.Error().Err(err).Msg("error marshalling response")
			return
		}

		log.Info().Str("pin", roomPin).Str("mode", mode.String()).Msg("created new session")
		w.WriteHeader(http.StatusCreated)
		w.Write(response)
	}
}
