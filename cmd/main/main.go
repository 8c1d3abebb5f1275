package main

import (
	"context"
	"os/signal"
	"syscall"

	"woostore/storefront/internal/config"
	"woostore/storefront/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	container.SetupLogging(cfg.Log)
	log.Info("Starting storefront proxy...")

	if err := run(cfg); err != nil {
		log.Fatalf("Application exited with error: %v", err)
	}
	log.Info("Storefront proxy stopped")
}

func run(cfg *config.Config) error {
	app, err := container.NewServer(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}
