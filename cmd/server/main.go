package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/admin-console-api/internal/api"
	"github.com/admin-console-api/internal/auth"
	"github.com/admin-console-api/internal/cache"
	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/repository"
	"github.com/admin-console-api/internal/service"
	"github.com/admin-console-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(logger.Options{})
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Options{Level: cfg.Log.Level, Development: cfg.Development()})
	log.Info().Str("driver", cfg.Database.Driver).Msg("Starting admin console API server...")

	// Initialize document store; postgres migrations run on startup
	store, err := repository.Open(&cfg.Database, true, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer store.Close()

	// Initialize Redis
	rdb, err := cache.NewClient(&cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer rdb.Close()
	stores := cache.NewStores(rdb, cfg.Users.SnapshotTTL)

	// Initialize the authentication gate
	providers := []auth.Provider{}
	if cfg.Auth.GoogleClientID != "" {
		providers = append(providers, auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     cfg.Auth.GoogleClientID,
			ClientSecret: cfg.Auth.GoogleClientSecret,
			TokenURL:     cfg.Auth.GoogleTokenURL,
			UserInfoURL:  cfg.Auth.GoogleUserInfoURL,
		}, nil))
	}
	authSvc := auth.NewService(auth.Options{
		Accounts:  store.Account,
		Tokens:    auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Revoked:   stores.Revocations,
		Providers: providers,
		Limiter:   auth.NewLimiter(cfg.Auth.LoginRatePerMinute),
	}, log)
	defer authSvc.Close()

	// Initialize services
	services, err := service.NewServices(service.Deps{
		Repos:       store.Repositories,
		Snapshots:   stores.Snapshots,
		Preferences: stores.Preferences,
		Auth:        authSvc,
	}, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	services.Health = store.HealthCheck
	defer services.Invalidator.Close()

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server. No write timeout: the event stream stays open, and exports
	// and page reads are bounded by the request context instead.
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Ending the subscriptions lets open event streams return
	authSvc.Close()
	services.Invalidator.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited gracefully")
}
