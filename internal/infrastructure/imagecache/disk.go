package imagecache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/storehelper/backend/internal/domain"
	"github.com/storehelper/backend/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	keyLength      = 10
	maxTitleLength = 50
	maxImageBytes  = 10 << 20
)

// Options configures a DiskCache
type Options struct {
	Dir             string
	PlaceholderPath string
	PlaceholderURL  string
	Attempts        int
	Timeout         time.Duration
	RetryDelay      time.Duration
}

// DiskCache stores remote product images as files named after a hash of
// their URL and title. A file on disk is always considered valid.
type DiskCache struct {
	httpClient *http.Client
	opts       Options
	group      singleflight.Group
}

// NewDiskCache creates a new image cache
func NewDiskCache(opts Options) *DiskCache {
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &DiskCache{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
	}
}

// PlaceholderPath returns the path used when no image can be cached
func (c *DiskCache) PlaceholderPath() string {
	return c.opts.PlaceholderPath
}

// Resolve returns the local path for the image at url, downloading it on a
// cache miss. It never fails: on any problem the placeholder path is returned.
func (c *DiskCache) Resolve(ctx context.Context, url, title string) string {
	if !isHTTPURL(url) {
		metrics.ImageLookupsTotal.WithLabelValues(metrics.ImageRejected).Inc()
		return c.opts.PlaceholderPath
	}

	path := c.cachePath(url, title)
	if fileExists(path) {
		metrics.ImageLookupsTotal.WithLabelValues(metrics.ImageHit).Inc()
		return path
	}
	metrics.ImageLookupsTotal.WithLabelValues(metrics.ImageMiss).Inc()

	// Concurrent misses for the same file share one download
	v, _, _ := c.group.Do(path, func() (interface{}, error) {
		if fileExists(path) {
			return path, nil
		}
		if err := c.download(ctx, url, path, title); err != nil {
			metrics.ImageDownloadsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return c.opts.PlaceholderPath, nil
		}
		metrics.ImageDownloadsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
		return path, nil
	})

	return v.(string)
}

// EnsurePlaceholder downloads the stand-in image if the placeholder file is missing
func (c *DiskCache) EnsurePlaceholder(ctx context.Context) error {
	if c.opts.PlaceholderPath == "" || fileExists(c.opts.PlaceholderPath) {
		return nil
	}
	if c.opts.PlaceholderURL == "" {
		return fmt.Errorf("%w: placeholder %s missing and no placeholder URL configured", domain.ErrImageDownload, c.opts.PlaceholderPath)
	}

	body, err := c.fetch(ctx, c.opts.PlaceholderURL, false)
	if err != nil {
		return err
	}
	return writeFile(c.opts.PlaceholderPath, body)
}

// download tries up to Attempts times, logging only the final failure
func (c *DiskCache) download(ctx context.Context, url, path, title string) error {
	var lastErr error
	for attempt := 1; attempt <= c.opts.Attempts; attempt++ {
		body, err := c.fetch(ctx, url, true)
		if err == nil {
			if err = writeFile(path, body); err == nil {
				return nil
			}
		}
		lastErr = err

		if attempt == c.opts.Attempts {
			log.Printf("[IMAGE] Image download failed for %s: %v", title, err)
			break
		}
		if ctx.Err() != nil {
			log.Printf("[IMAGE] Image download aborted for %s: %v", title, ctx.Err())
			return ctx.Err()
		}
		if c.opts.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.opts.RetryDelay):
			}
		}
	}
	return lastErr
}

// fetch performs one bounded GET. With requireImage set, the response must
// declare an image/* content type.
func (c *DiskCache) fetch(ctx context.Context, url string, requireImage bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageDownload, err)
	}
	req.Header.Set("User-Agent", "StoreHelper/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrImageDownload, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if requireImage && !strings.HasPrefix(contentType, "image") {
		return nil, fmt.Errorf("%w: unexpected content type %q", domain.ErrImageDownload, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageDownload, err)
	}
	return body, nil
}

// cachePath derives <dir>/<md5(url+sanitized title)[:10]>.png
func (c *DiskCache) cachePath(url, title string) string {
	sum := md5.Sum([]byte(url + SanitizeTitle(title)))
	key := hex.EncodeToString(sum[:])[:keyLength]
	return filepath.Join(c.opts.Dir, key+".png")
}

// SanitizeTitle keeps letters, digits, spaces, hyphens and underscores and
// truncates the result to 50 characters
func SanitizeTitle(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range title {
		if n == maxTitleLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}

func isHTTPURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func writeFile(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
