package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/physician-notetaker/internal/setup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := setup.NewApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	cfg := app.ConfigManager.GetServerConfig()
	app.Logger.Infof("Starting physician notetaker server on %s:%d", cfg.Host, cfg.Port)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		app.Logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := app.Server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	app.Logger.Info("Server stopped")
}
