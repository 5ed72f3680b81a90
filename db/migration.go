package main

import (
	"database/sql"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/tbraam/gamehub-server/internal/application"
	"github.com/tbraam/gamehub-server/internal/configuration"
)

func main() {
	settings := configuration.ReadConfiguration("./configuration")

	db, err := sql.Open("pgx", application.GetDbConnectionString(settings.Database))
	if err != nil {
		log.Fatalf("error open db connection: %s", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("could not init driver: %s", err)
	}

	migration, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"pgx", driver)
	if err != nil {
		log.Fatalf("could not apply the migration: %s", err)
	}

	migration.Up()
	log.Println("migrated database")
}
