package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tbraam/gamehub-server/internal/configuration"
	"github.com/tbraam/gamehub-server/internal/hub"
	"github.com/tbraam/gamehub-server/internal/logger"
	"github.com/tbraam/gamehub-server/internal/results"
	"github.com/tbraam/gamehub-server/internal/routes"
)

var log = logger.Get()

type Application struct {
	addr     string
	hub      *hub.Hub
	producer *kafka.Writer
	handler  http.Handler
	closers  []func()
}

// Build wires every collaborator from settings: the postgres pool, the
// kafka producer, the search client, the blob client, the session hub, and
// the HTTP handler on top.
func Build(settings configuration.Settings) Application {
	addr := fmt.Sprintf(":%d", settings.Application.Port)

	pool := GetDbConnectionPool(settings.Database)

	producer := &kafka.Writer{
		Addr:     kafka.TCP(settings.Application.KafkaEndpoint),
		Topic:    settings.Application.MatchCompletedTopic,
		Balancer: &kafka.LeastBytes{},
	}

	searchClient := GetSearchClient(settings.Application.ElasticsearchEndpoint)

	recorder := results.NewStore(pool, producer, searchClient, settings.Application.MatchIndex)
	sessionHub := hub.New(settings.Hub, recorder)

	handler := routes.CreateHandler(settings, &routes.Env{
		Hub:  sessionHub,
		Blob: GetBlobClient(settings.Azure),
	})

	return Application{
		addr:     addr,
		hub:      sessionHub,
		producer: producer,
		handler:  handler,
		closers:  []func(){pool.Close},
	}
}

// Handler exposes the built handler; the test harness serves it directly.
func (app *Application) Handler() http.Handler {
	return app.handler
}

// Start serves until ctx is cancelled, then drains with a grace period.
func (app *Application) Start(ctx context.Context) error {
	defer app.close()

	go app.hub.Run(ctx)

	server := &http.Server{
		Addr:              app.addr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Msg(fmt.Sprintf("Server listening on %s", app.addr))
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (app *Application) close() {
	app.producer.Close()
	for _, closer := range app.closers {
		closer()
	}
}
