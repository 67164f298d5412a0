package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/storehelper/backend/config"
	httpDelivery "github.com/storehelper/backend/internal/delivery/http"
	"github.com/storehelper/backend/internal/infrastructure/cache"
	"github.com/storehelper/backend/internal/infrastructure/customsearch"
	"github.com/storehelper/backend/internal/infrastructure/imagecache"
	"github.com/storehelper/backend/internal/usecase"
)

func main() {
	setupLogging()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting StoreHelper API")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(5 * time.Minute)
	defer memoryCache.Close()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	images := imagecache.NewDiskCache(imagecache.Options{
		Dir:             cfg.Images.CacheDir,
		PlaceholderPath: cfg.Images.PlaceholderPath,
		PlaceholderURL:  cfg.Images.PlaceholderURL,
		Attempts:        cfg.Images.Attempts,
		Timeout:         cfg.Images.Timeout,
		RetryDelay:      cfg.Images.RetryDelay,
	})

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

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		searchClient.SetDebug(true)
		log.Printf("Search client debug mode enabled")
	}
	log.Printf("Search API configured: %s (%d stores)", cfg.Search.BaseURL, len(cfg.Search.Stores))

	// Initialize usecase layer
	productService := usecase.NewProductService(
		memoryCache,
		searchClient,
		usecase.NewNormalizer(images, cfg.Search.Stores),
		usecase.ProductServiceConfig{
			CacheTTL: cfg.Cache.TTL,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(productService, cfg.Catalog.OutputPath)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupLogging() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
