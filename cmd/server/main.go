package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ahab-backend/internal/api"
	"ahab-backend/internal/catalog"
	"ahab-backend/internal/config"
	"ahab-backend/internal/logging"
	"ahab-backend/internal/service"
	"ahab-backend/internal/state"
)

var configPath = flag.String("config", "ahab.toml", "path to config file (.toml, .yaml or .json)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(cfg.Log, os.Stderr)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("failed to load model catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}

	// Initialize Services
	generator := service.NewCandidateGenerator(cat.Reference(), service.NewSeededSource(cfg.Generation.Seed))
	synthesizer := service.NewROCSynthesizer(cfg.ROC.Monotonic)
	store := state.NewStore(cfg.Sessions.MaxSessions, cfg.SessionTTL())

	// Initialize Handler
	handler := api.NewHandler(cat, generator, synthesizer, store, api.Limits{
		DefaultSamples: cfg.Generation.SampleCount,
		MaxSamples:     cfg.Generation.MaxSampleCount,
	}, logger).WithCreateLimit(api.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting AHAB backend",
			"addr", srv.Addr,
			"models", len(cat.Keys()),
			"best_model", cat.Best().Key,
			"monotonic_roc", cfg.ROC.Monotonic,
			"origins", cfg.Server.AllowedOrigins,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout())
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped", "sessions", store.Len())
}
