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
	log.Info("Starting catalog sync...")

	if err := run(cfg); err != nil {
		log.Fatalf("Catalog sync failed: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := container.NewSync(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.SyncService.SyncAll(ctx)
	if err != nil {
		return err
	}

	log.Infof("Catalog sync finished: %d products across %d pages, %d stored", result.Products, result.TotalPages, result.Stored)
	return nil
}
