package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SearchClient defines the interface for querying the web search API
type SearchClient interface {
	Search(ctx context.Context, query string) (*SearchResults, error)
}

// ImageResolver maps a remote image to a local file path, falling back to a
// placeholder path when the image cannot be cached
type ImageResolver interface {
	Resolve(ctx context.Context, url, title string) string
	PlaceholderPath() string
}

// CatalogRenderer writes a catalog document and returns its path
type CatalogRenderer interface {
	Render(products []Product) (string, error)
}
