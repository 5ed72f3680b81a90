package helpers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/brianvoe/gofakeit"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
	"github.com/tbraam/gamehub-server/internal/application"
	"github.com/tbraam/gamehub-server/internal/configuration"
	"github.com/tbraam/gamehub-server/internal/hub"
	"github.com/tbraam/gamehub-server/internal/results"
	"github.com/tbraam/gamehub-server/internal/routes"
	"github.com/tbraam/gamehub-server/pkg/auth"
)

var app *TestApp

type TestApp struct {
	Handler         http.Handler
	Hub             *hub.Hub
	SigningKey      string
	AssetsContainer string
	dbpool          *pgxpool.Pool
	searchClient    *elasticsearch.TypedClient
	blobClient      *azblob.Client
}

// Should be run in the main test function
func InitApplication(settings configuration.Settings) {
	producer := &kafka.Writer{
		Addr:     kafka.TCP(settings.Application.KafkaEndpoint),
		Topic:    settings.Application.MatchCompletedTopic,
		Balancer: &kafka.LeastBytes{},
	}

	dbpool := application.GetDbConnectionPool(settings.Database)

	searchClient := application.GetSearchClient(settings.Application.ElasticsearchEndpoint)

	blobClient := application.GetBlobClient(settings.Azure)
	_, err := blobClient.CreateContainer(context.Background(), settings.Azure.AssetsContainer, &container.CreateOptions{})
	if err != nil {
		log.Fatalf("error creating assets container: %v", err)
	}

	recorder := results.NewStore(dbpool, producer, searchClient, settings.Application.MatchIndex)

	sessionHub := hub.New(settings.Hub, recorder)

	handler := routes.CreateHandler(settings, &routes.Env{
		Hub:  sessionHub,
		Blob: blobClient,
	})

	app = &TestApp{
		Handler:         handler,
		Hub:             sessionHub,
		SigningKey:      settings.Application.SigningKey,
		AssetsContainer: settings.Azure.AssetsContainer,
		dbpool:          dbpool,
		searchClient:    searchClient,
		blobClient:      blobClient,
	}
}

func GetTestApp() *TestApp {
	if app == nil {
		log.Fatal("application not instantiated yet, please do so in the testing main function")
	}
	return app
}

// GetTestIdentity fabricates a player identity for signed connections.
func (app *TestApp) GetTestIdentity() auth.Identity {
	return auth.Identity{
		UserID: gofakeit.UUID(),
		Role:   "player",
	}
}

func (app *TestApp) GetSignedJwt(identity auth.Identity) string {
	token, err := auth.New(app.SigningKey).Sign(identity, time.Hour)
	if err != nil {
		log.Fatalf("error creating test token: %s", err)
	}
	return token
}

// CountMatches returns the number of recorded matches for the given user.
func (app *TestApp) CountMatches(userID string) int {
	var count int
	err := app.dbpool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM matches WHERE user_id = $1", userID,
	).Scan(&count)
	if err != nil {
		log.Fatalf("error counting matches: %s", err)
	}
	return count
}

// UploadAsset stores a blob in the assets container.
func (app *TestApp) UploadAsset(name string, content []byte) {
	_, err := app.blobClient.UploadBuffer(context.Background(), app.AssetsContainer, name, content, nil)
	if err != nil {
		log.Fatalf("error uploading test asset: %s", err)
	}
}
