package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/storehelper/backend/internal/domain"
	"github.com/storehelper/backend/internal/metrics"
)

// CatalogServiceConfig holds configuration for a catalog run
type CatalogServiceConfig struct {
	Queries []string
	// QueryPause is slept after every query, successful or not
	QueryPause time.Duration
}

// CatalogService drives the canned queries through search and
// normalization, then renders the deduplicated result
type CatalogService struct {
	searchClient domain.SearchClient
	normalizer   *Normalizer
	renderer     domain.CatalogRenderer
	config       CatalogServiceConfig
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(
	searchClient domain.SearchClient,
	normalizer *Normalizer,
	renderer domain.CatalogRenderer,
	config CatalogServiceConfig,
) *CatalogService {
	return &CatalogService{
		searchClient: searchClient,
		normalizer:   normalizer,
		renderer:     renderer,
		config:       config,
	}
}

// Run executes one catalog generation and returns the rendered file path.
// A run that finds no products returns domain.ErrNoProducts.
func (s *CatalogService) Run(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	log.Printf("[RUN %s] Starting search...", runID[:8])

	var products []domain.Product
	for _, query := range s.config.Queries {
		results, err := s.searchClient.Search(ctx, query)
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			log.Printf("[RUN %s] Rate limited, skipping query: %s", runID[:8], query)
		case err != nil:
			log.Printf("[RUN %s] No results for query %q: %v", runID[:8], query, err)
		default:
			found := s.normalizer.Normalize(ctx, results)
			products = append(products, found...)
			log.Printf("[RUN %s] Found %d products for query: %s", runID[:8], len(found), query)
		}

		if err := pause(ctx, s.config.QueryPause); err != nil {
			return "", fmt.Errorf("catalog run interrupted: %w", err)
		}
	}

	unique := domain.DedupeByTitle(products)
	if len(unique) == 0 {
		log.Printf("[RUN %s] No products found!", runID[:8])
		return "", domain.ErrNoProducts
	}

	path, err := s.renderer.Render(unique)
	if err != nil {
		return "", fmt.Errorf("render catalog: %w", err)
	}

	metrics.CatalogProducts.Set(float64(len(unique)))
	log.Printf("[RUN %s] Store generated successfully: %s (%d unique of %d products)", runID[:8], path, len(unique), len(products))
	return path, nil
}

// pause blocks for d or until ctx is done
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
