// Package main is the entry point for the Gwan landing auth server.
// It serves the passwordless registration, activation and login API plus
// character image upload and analysis.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/analysis"
	"github.com/gwan-project/landing-auth/internal/auth"
	"github.com/gwan-project/landing-auth/internal/cache/memory"
	rediscache "github.com/gwan-project/landing-auth/internal/cache/redis"
	"github.com/gwan-project/landing-auth/internal/config"
	"github.com/gwan-project/landing-auth/internal/handler"
	"github.com/gwan-project/landing-auth/internal/lock"
	"github.com/gwan-project/landing-auth/internal/notification"
	"github.com/gwan-project/landing-auth/internal/repository"
	"github.com/gwan-project/landing-auth/internal/repository/postgres"
	"github.com/gwan-project/landing-auth/internal/repository/sqlite"
	"github.com/gwan-project/landing-auth/internal/service"
	"github.com/gwan-project/landing-auth/internal/storage"
	"github.com/gwan-project/landing-auth/internal/storage/filesystem"
	"github.com/gwan-project/landing-auth/internal/storage/s3"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := os.Getenv("GWAN_CONFIG")
	cfg := config.MustLoad(configPath)

	logger := newLogger(cfg.Logging)
	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting landing auth server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	repos, dbHealth, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbHealth.Close()

	// Cache and lock
	cache, locker, cleanup, err := openCache(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cleanup()

	// Image store
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	notifier := buildNotifier(cfg, logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	analyzer := analysis.NewClient(cfg.Analysis, logger)

	// Services
	registrationSvc := service.NewRegistrationService(repos.Account, notifier, cfg.Auth.EchoCodes, logger)
	activationSvc := service.NewActivationService(repos.Account, tokens, logger)
	loginSvc := service.NewLoginService(repos.Account, notifier, tokens, locker, cfg.Auth.EchoCodes, logger)
	profileSvc := service.NewProfileService(repos.Account, repos.Character, store, locker, logger)
	analysisSvc := service.NewAnalysisService(repos.Character, repos.Analysis, analyzer, cfg.Analysis.Enabled, logger)

	// HTTP surface
	var rateLimiter *handler.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = handler.NewRateLimiter(cache, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)
	}

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler: handler.NewAuthHandler(handler.AuthHandlerConfig{
			Registration: registrationSvc,
			Activation:   activationSvc,
			Login:        loginSvc,
			Profile:      profileSvc,
			Logger:       logger,
		}),
		UploadHandler: handler.NewUploadHandler(handler.UploadHandlerConfig{
			Profile:  profileSvc,
			Analysis: analysisSvc,
			Logger:   logger,
		}),
		HealthHandler: handler.NewHealthHandler(dbHealth, logger),
		Tokens:        tokens,
		RateLimiter:   rateLimiter,
		MaxBodySize:   cfg.Server.MaxBodySize,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("api server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Str("addr", metricsServer.Addr).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}
	return nil
}

// newLogger builds the root logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// openDatabase connects to the configured database, applies migrations for
// the embedded backend and returns the repository set.
func openDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.Repositories, repository.DatabaseHealth, error) {
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
			return nil, nil, err
		}
		// The embedded backend migrates itself on startup.
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return &repository.Repositories{
			Account:   sqlite.NewAccountRepository(db),
			Character: sqlite.NewCharacterRepository(db),
			Analysis:  sqlite.NewAnalysisRepository(db),
		}, db, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return &repository.Repositories{
			Account:   postgres.NewAccountRepository(db),
			Character: postgres.NewCharacterRepository(db),
			Analysis:  postgres.NewAnalysisRepository(db),
		}, db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// openCache builds the cache and distributed lock. Redis when enabled,
// otherwise in-process equivalents for single-node deployments.
func openCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Cache, lock.Locker, func(), error) {
	if cfg.Redis.Enabled {
		cache, err := rediscache.NewCache(ctx, rediscache.Config{
			Addr:        cfg.Redis.Addr(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.DialTimeout,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		locker := lock.NewRedisLocker(rediscache.NewLock(cache))
		return cache, locker, func() { cache.Close() }, nil
	}

	cache := memory.NewCache()
	return cache, lock.NewMemoryLocker(), func() { cache.Stop() }, nil
}

// openStore builds the character image store.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.ImageStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return s3.NewStore(ctx, cfg.Storage.S3, cfg.Storage.PublicBaseURL, logger)
	case "filesystem":
		return filesystem.NewStore(cfg.Storage.DataDir, cfg.Storage.PublicBaseURL, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

// buildNotifier wires the code delivery channels. In "log" mode the codes
// are written to the server log instead of being sent.
func buildNotifier(cfg *config.Config, logger zerolog.Logger) notification.Notifier {
	if cfg.Notification.Mode == "live" {
		return notification.NewRouter(
			notification.NewEmailSender(cfg.Notification.Email),
			notification.NewWhatsAppSender(cfg.Notification.WhatsApp),
			logger,
		)
	}
	return notification.NewRouter(
		notification.NewLogSender("email", logger),
		notification.NewLogSender("whatsapp", logger),
		logger,
	)
}
