package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/storehelper/backend/config"
	htmlDelivery "github.com/storehelper/backend/internal/delivery/html"
	"github.com/storehelper/backend/internal/domain"
	"github.com/storehelper/backend/internal/infrastructure/customsearch"
	"github.com/storehelper/backend/internal/infrastructure/imagecache"
	"github.com/storehelper/backend/internal/usecase"
)

func main() {
	setupLogging()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[RUN] Unexpected panic: %v", r)
			panic(r)
		}
	}()

	if err := run(); err != nil {
		if !errors.Is(err, domain.ErrNoProducts) {
			log.Printf("[RUN] Catalog generation failed: %v", err)
		}
		fmt.Println("Error: Failed to generate store. Check the logs for details.")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	images := imagecache.NewDiskCache(imagecache.Options{
		Dir:             cfg.Images.CacheDir,
		PlaceholderPath: cfg.Images.PlaceholderPath,
		PlaceholderURL:  cfg.Images.PlaceholderURL,
		Attempts:        cfg.Images.Attempts,
		Timeout:         cfg.Images.Timeout,
		RetryDelay:      cfg.Images.RetryDelay,
	})
	if err := images.EnsurePlaceholder(ctx); err != nil {
		log.Printf("[IMAGE] WARNING: placeholder unavailable, cards without images will show a broken image: %v", err)
	}

	searchClient := customsearch.NewClient(customsearch.Options{
		APIKey:            cfg.Search.APIKey,
		EngineID:          cfg.Search.EngineID,
		BaseURL:           cfg.Search.BaseURL,
		BaseQuery:         cfg.Search.BaseQuery,
		Stores:            cfg.Search.Stores,
		ResultCount:       cfg.Search.ResultCount,
		Timeout:           cfg.Search.Timeout,
		Cooldown:          cfg.Search.Cooldown,
		MaxAttempts:       cfg.Search.MaxAttempts,
		RequestsPerSecond: cfg.RateLimit.Search,
	})
	if cfg.Server.Environment == "development" {
		searchClient.SetDebug(true)
	}

	renderer, err := htmlDelivery.NewRenderer(htmlDelivery.Options{
		OutputPath:      cfg.Catalog.OutputPath,
		AssetPrefix:     cfg.Catalog.AssetPrefix,
		PlaceholderPath: cfg.Images.PlaceholderPath,
		QuickSearches:   cfg.Catalog.QuickSearches,
	})
	if err != nil {
		return err
	}

	catalog := usecase.NewCatalogService(
		searchClient,
		usecase.NewNormalizer(images, cfg.Search.Stores),
		renderer,
		usecase.CatalogServiceConfig{
			Queries:    cfg.Catalog.Queries,
			QueryPause: cfg.Catalog.QueryPause,
		},
	)

	path, err := catalog.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Store generated successfully!")
	fmt.Printf("Open this file in your browser: %s\n", path)
	return nil
}

func setupLogging() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
