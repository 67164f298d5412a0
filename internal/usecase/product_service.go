package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/storehelper/backend/internal/domain"
)

// Package-level compiled regex patterns for cache key normalization
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheTTL time.Duration
}

// ProductService answers ad-hoc product searches with caching
type ProductService struct {
	cache        domain.CacheRepository
	searchClient domain.SearchClient
	normalizer   *Normalizer
	cacheTTL     time.Duration
}

// NewProductService creates a new product service with dependencies
func NewProductService(
	cache domain.CacheRepository,
	searchClient domain.SearchClient,
	normalizer *Normalizer,
	config ProductServiceConfig,
) *ProductService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	return &ProductService{
		cache:        cache,
		searchClient: searchClient,
		normalizer:   normalizer,
		cacheTTL:     cacheTTL,
	}
}

// Search looks up products for a single term.
// Flow: check cache -> search API -> normalize -> dedupe -> cache -> return
func (s *ProductService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	cacheKey := generateCacheKey(term)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached, nil
	}

	results, err := s.searchClient.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	products := domain.DedupeByTitle(s.normalizer.Normalize(ctx, results))

	if len(products) > 0 {
		if err := s.cache.Set(ctx, cacheKey, products, s.cacheTTL); err != nil {
			log.Printf("[API] Failed to cache results for %q: %v", term, err)
		}
	}

	return products, nil
}

// generateCacheKey creates a normalized cache key for a search term.
// Format: "products:{normalized_term}"
func generateCacheKey(term string) string {
	return fmt.Sprintf("products:%s", normalizeForCacheKey(term))
}

// normalizeForCacheKey lowercases, removes special characters and collapses whitespace
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// getFromCache decodes a cached product list whatever representation the
// cache handed back
func (s *ProductService) getFromCache(ctx context.Context, key string) ([]domain.Product, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if products, ok := value.([]domain.Product); ok {
		return products, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return products, nil
}
