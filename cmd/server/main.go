package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stip-taxii-backend/internal/api"
	"stip-taxii-backend/internal/api/handlers"
	"stip-taxii-backend/internal/config"
	"stip-taxii-backend/internal/domain/services"
	"stip-taxii-backend/internal/infrastructure/cache"
	"stip-taxii-backend/internal/infrastructure/database"
	"stip-taxii-backend/internal/infrastructure/database/repository"
	"stip-taxii-backend/internal/ingest"
	"stip-taxii-backend/internal/stix"
	"stip-taxii-backend/internal/version"
	"stip-taxii-backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}

	release := version.Read(cfg.App.VersionFile)
	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", release).
		Msg("starting TAXII persistence backend")

	// The backend must not start with an incomplete push/catalog configuration.
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if err := database.Migrate(cfg.Database, log); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Redis is a fast path for the stats surface only; run without it if down.
	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, continuing without stats cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Repositories
	feedRepo := repository.NewFeedRepository(db.Pool())
	documentRepo := repository.NewDocumentRepository(db.Pool(), feedRepo)
	accountRepo := repository.NewAccountRepository(db.Pool())

	// Startup-built catalog and topology
	catalog, err := services.LoadServiceCatalog(cfg.TAXII.ServicesFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load service catalog")
	}
	feeds, err := feedRepo.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to enumerate feeds")
	}
	topology := services.BuildCollectionTopology(feeds, catalog)
	log.Info().
		Int("feeds", len(feeds)).
		Int("collections", len(topology.Collections())).
		Msg("collection topology built")

	// Persistence and auth backends
	filter := services.NewContentFilter(stix.NewParser(), cfg.TAXII.BlackAccounts, log)
	registrar := ingest.NewClient(cfg.Ingest, log)

	stagingDir := cfg.TAXII.StagingDir
	if stagingDir == "" {
		stagingDir = os.TempDir()
	}

	backend := services.NewBackend(catalog, topology, filter, documentRepo, registrar, services.BackendConfig{
		Community:  cfg.TAXII.Community,
		Via:        cfg.TAXII.Publisher,
		StagingDir: stagingDir,
	}, log)
	authBackend := services.NewAuthBackend(accountRepo, log)

	// Operational HTTP surface
	h := handlers.NewHandlers(handlers.Dependencies{
		Backend:  backend,
		Auth:     authBackend,
		DB:       db,
		Cache:    redisCache,
		Feeds:    feedRepo,
		Accounts: accountRepo,
		Version:  release,
		Logger:   log,
	})
	router := api.NewRouter(*cfg, h, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
