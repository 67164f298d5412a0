package domain

import "errors"

var (
	// ErrSearchFailed is returned when the search API request fails or returns a non-2xx status
	ErrSearchFailed = errors.New("search API request failed")

	// ErrRateLimited is returned when the search API keeps answering 429 after all retries
	ErrRateLimited = errors.New("search API rate limited, retries exhausted")

	// ErrNoProducts is returned when a catalog run ends without a single product
	ErrNoProducts = errors.New("no products found")

	// ErrInvalidItem is returned when a search result item cannot be normalized
	ErrInvalidItem = errors.New("invalid search result item")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrImageDownload is returned when an image cannot be fetched or is not an image
	ErrImageDownload = errors.New("image download failed")
)
