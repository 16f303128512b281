package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/survey/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/survey/internal/config"
)

// Applies a single Postgres migration by name, e.g.
//
//	go run ./cmd/migrations create_survey_tables.down
//
// With -all every up migration is applied instead.
func main() {
	all := flag.Bool("all", false, "Apply every up migration")
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Path to a YAML config file")
	flag.Parse()

	if !*all && flag.NArg() < 1 {
		slog.Error("a migration name is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.PostgresURL())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *all {
		if err := postgres.Migrate(ctx, db); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("all migrations applied")
		return
	}

	migrationName := flag.Arg(0)
	content, err := postgres.MigrationFile(migrationName)
	if err != nil {
		slog.Error("failed to find migration", "name", migrationName, "error", err)
		os.Exit(1)
	}

	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		slog.Error("failed to execute migration", "name", migrationName, "error", err)
		os.Exit(1)
	}

	slog.Info("migration file executed successfully", "name", migrationName)
}
