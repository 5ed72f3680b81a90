package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tbraam/gamehub-server/internal/application"
	"github.com/tbraam/gamehub-server/internal/configuration"
	"github.com/tbraam/gamehub-server/internal/logger"
)

func main() {
	godotenv.Load(".env")
	log := logger.Get()

	settings := configuration.ReadConfiguration("./configuration")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := application.Build(settings)
	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("server crashed")
	}
}
