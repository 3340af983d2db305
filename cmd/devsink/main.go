package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vitalwatch/telemetry-agent/internal/config"
	"github.com/vitalwatch/telemetry-agent/internal/logger"
	"github.com/vitalwatch/telemetry-agent/internal/sink"
)

func main() {
	cfg, err := config.LoadSink()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Environment, cfg.Debug)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		if err := log.Sync(); err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting development sink",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.String("db_path", cfg.DBPath))

	store, err := sink.NewSQLiteStore(cfg.DBPath, log)
	if err != nil {
		log.Fatal("Failed to open event store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close event store", zap.Error(err))
		}
	}()

	h := sink.NewHandler(store, log)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h,
	}

	go func() {
		log.Info("Sink server starting", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Sink server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down sink gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Failed to shut down server", zap.Error(err))
	}
}
