// Package main is the entry point for the landing auth database migration
// tool. It manages the PostgreSQL schema; the embedded SQLite backend
// migrates itself on server startup and does not need this tool.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/config"
	"github.com/gwan-project/landing-auth/internal/repository/postgres"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Landing Auth Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		withDB(func(ctx context.Context, db *postgres.DB) error {
			return db.Migrate(ctx)
		})

	case "down":
		withDB(func(ctx context.Context, db *postgres.DB) error {
			return db.Rollback(ctx)
		})

	case "status":
		withDB(func(ctx context.Context, db *postgres.DB) error {
			statuses, err := db.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%06d  %-30s  %s\n", s.Version, s.Name, state)
			}
			return nil
		})

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// withDB loads configuration, connects to PostgreSQL and runs fn.
func withDB(fn func(ctx context.Context, db *postgres.DB) error) {
	cfg := config.MustLoad(os.Getenv("GWAN_CONFIG"))
	if cfg.Database.Driver != "postgres" {
		fmt.Fprintln(os.Stderr, "migrations apply only to the postgres driver; sqlite migrates on startup")
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := fn(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Landing Auth Migration Tool

Usage:
  landing-auth-migrate <command>

Commands:
  up          Run all pending migrations
  down        Rollback the last applied migration
  status      Show migration status
  version     Print version information
  help        Show this help message

Environment Variables:
  GWAN_CONFIG             Path to the configuration file
  GWAN_DATABASE_HOST      PostgreSQL host (overrides config file)
  GWAN_DATABASE_PASSWORD  PostgreSQL password (overrides config file)

Examples:
  landing-auth-migrate up
  landing-auth-migrate status`)
}
