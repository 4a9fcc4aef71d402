package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/cell-commander/internal/config"
	"github.com/jwebster45206/cell-commander/internal/handlers"
	"github.com/jwebster45206/cell-commander/internal/logger"
	"github.com/jwebster45206/cell-commander/internal/middleware"
	"github.com/jwebster45206/cell-commander/internal/services/events"
	"github.com/jwebster45206/cell-commander/internal/session"
	"github.com/jwebster45206/cell-commander/internal/storage"
	"github.com/jwebster45206/cell-commander/pkg/engine"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Cell Commander API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"session_ttl", cfg.SessionTTL,
		"time_scale", cfg.TimeScale)

	catalog, err := story.LoadFile(cfg.ScriptFile)
	if err != nil {
		log.Error("Failed to load story content", "error", err, "script_file", cfg.ScriptFile)
		os.Exit(1)
	}
	if problems := catalog.Validate(); len(problems) > 0 {
		for _, p := range problems {
			log.Warn("Story content problem", "problem", p)
		}
	}

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.RecordTTL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	broadcaster := events.NewBroadcaster(store.Client(), log)
	registry := session.NewRegistry(catalog, cfg.SessionTTL, log).
		WithStorage(store).
		WithPublisher(broadcaster).
		WithTimings(engine.DefaultTimings().Scaled(cfg.TimeScale))

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		registry.Run(sweepCtx)
	}()

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, registry, log))
	mux.Handle("/v1/catalog", handlers.NewCatalogHandler(catalog, log))

	sessionHandler := handlers.NewSessionHandler(registry, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	mux.Handle("/v1/events/sessions/", handlers.NewEventsHandler(registry, broadcaster, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(mux),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the event stream stays open.
		IdleTimeout: 60 * time.Second,
	}
	// Ending the sessions closes their event streams, which Shutdown waits on.
	server.RegisterOnShutdown(stopSweep)

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	<-sweepDone

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
