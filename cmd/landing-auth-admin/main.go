// Package main is the entry point for the landing auth admin CLI.
// It provides account inspection and key generation commands for operators.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/config"
	"github.com/gwan-project/landing-auth/internal/pkg/crypto"
	"github.com/gwan-project/landing-auth/internal/repository"
	"github.com/gwan-project/landing-auth/internal/repository/postgres"
	"github.com/gwan-project/landing-auth/internal/repository/sqlite"
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
		fmt.Printf("Landing Auth Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "account":
		runAccountCommand(os.Args[2:])

	case "secret":
		runSecretCommand(os.Args[2:])

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runAccountCommand(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "account: missing subcommand (list, show, delete)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	accounts, closeDB := openAccountRepository(ctx)
	defer closeDB()

	switch args[0] {
	case "list":
		result, err := accounts.List(ctx, repository.ListOptions{Limit: 100})
		if err != nil {
			fatalf("failed to list accounts: %v", err)
		}
		fmt.Printf("%-28s  %-10s  %-30s  %s\n", "ID", "STATUS", "EMAIL", "NAME")
		for _, account := range result.Items {
			fmt.Printf("%-28s  %-10s  %-30s  %s\n", account.ID, account.Status, account.Email, account.Name)
		}
		fmt.Printf("\n%d of %d accounts\n", len(result.Items), result.Total)

	case "show":
		if len(args) < 2 {
			fatalf("account show: missing account ID")
		}
		account, err := accounts.GetByID(ctx, args[1])
		if err != nil {
			fatalf("failed to load account: %v", err)
		}
		fmt.Printf("ID:         %s\n", account.ID)
		fmt.Printf("Name:       %s\n", account.Name)
		fmt.Printf("Email:      %s\n", account.Email)
		fmt.Printf("Phone:      %s\n", account.Phone)
		fmt.Printf("Status:     %s\n", account.Status)
		if account.ProfileImageURL != nil {
			fmt.Printf("Image:      %s\n", *account.ProfileImageURL)
		}
		fmt.Printf("Created:    %s\n", account.CreatedAt.Format(time.RFC3339))
		fmt.Printf("Updated:    %s\n", account.UpdatedAt.Format(time.RFC3339))

	case "delete":
		if len(args) < 2 {
			fatalf("account delete: missing account ID")
		}
		if err := accounts.Delete(ctx, args[1]); err != nil {
			fatalf("failed to delete account: %v", err)
		}
		fmt.Printf("account %s deleted\n", args[1])

	default:
		fatalf("account: unknown subcommand %q", args[0])
	}
}

func runSecretCommand(args []string) {
	if len(args) < 1 || args[0] != "generate" {
		fmt.Fprintln(os.Stderr, "secret: missing subcommand (generate)")
		os.Exit(1)
	}

	key, err := crypto.GenerateSigningKey()
	if err != nil {
		fatalf("failed to generate signing key: %v", err)
	}
	fmt.Println(key)
}

// openAccountRepository connects to the configured database and returns
// the account repository plus a close function.
func openAccountRepository(ctx context.Context) (repository.AccountRepository, func()) {
	cfg := config.MustLoad(os.Getenv("GWAN_CONFIG"))
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			CacheSize:       cfg.Database.CacheSize,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
		if err != nil {
			fatalf("failed to open database: %v", err)
		}
		return sqlite.NewAccountRepository(db), func() { db.Close() }

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			fatalf("failed to open database: %v", err)
		}
		return postgres.NewAccountRepository(db), func() { db.Close() }

	default:
		fatalf("unsupported database driver: %s", cfg.Database.Driver)
		return nil, nil
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`Landing Auth Admin CLI

Usage:
  landing-auth-admin <command> [arguments]

Commands:
  account list           List accounts
  account show <id>      Show one account in detail
  account delete <id>    Delete an account and its character data
  secret generate        Generate a JWT signing key
  version                Print version information
  help                   Show this help message

Examples:
  landing-auth-admin account list
  landing-auth-admin account show user_1712000000000_a1b2c3d4e
  landing-auth-admin secret generate`)
}
