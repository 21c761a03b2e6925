// Command migrate applies the embedded schema migrations and exits.
// Deploys run it before rolling new API or worker versions:
//
//	go run ./cmd/migrate
package main

import (
	"context"
	"log"

	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/storage/db"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()

	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn); err != nil {
		return err
	}
	log.Println("migrations applied")
	return nil
}
