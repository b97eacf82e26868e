package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/adapters/repositories"
	"github.com/daunfamily/maritime-vrp/internal/config"
	"github.com/daunfamily/maritime-vrp/internal/platform/db"
)

// dbtool creates the schema and seeds the instance files given as arguments
// (or SEED_PATH when there are none).
func main() {
	config.LoadDotEnv()

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	seedPaths := os.Args[1:]
	if len(seedPaths) == 0 {
		seedPaths = []string{config.Get("SEED_PATH", "data/instances/baltic-feeder.json")}
	}
	if err := initAndSeed(ctx, conn, seedPaths); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPaths []string) error {
	log.Info("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info("Schema ready.")

	for _, p := range seedPaths {
		log.WithField("path", p).Info("Seeding instance...")
		if err := repositories.SeedFromJSON(ctx, conn, p); err != nil {
			return fmt.Errorf("seeding %q failed: %w", p, err)
		}
	}
	log.Info("Seeding complete.")

	return nil
}
