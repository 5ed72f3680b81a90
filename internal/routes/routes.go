package routes

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/tbraam/gamehub-server/internal/configuration"
	"github.com/tbraam/gamehub-server/internal/hub"
	"github.com/tbraam/gamehub-server/internal/middleware"
	"github.com/tbraam/gamehub-server/pkg/metrics"
)

// Env groups the collaborators the handlers close over.
type Env struct {
	Hub  *hub.Hub
	Blob *azblob.Client
}

func CreateHandler(settings configuration.Settings, env *Env) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /sessions", env.createSession())
	mux.HandleFunc("GET /assets", env.listAssets(settings.Azure))
	mux.HandleFunc("GET /ws", env.handleWebSocket(settings.Application))

	return middleware.WithMiddleware(mux, settings.Application)
}
