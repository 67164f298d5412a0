package usecase

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/storehelper/backend/internal/domain"
	"github.com/storehelper/backend/internal/metrics"
)

// titleSeparators are the hyphen-like characters that end a product title
const titleSeparators = "-–—"

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Normalizer turns raw search result items into products
type Normalizer struct {
	images domain.ImageResolver
	stores []string
}

// NewNormalizer creates a normalizer that labels products by the given store allow-list
func NewNormalizer(images domain.ImageResolver, stores []string) *Normalizer {
	return &Normalizer{
		images: images,
		stores: stores,
	}
}

// Normalize converts every decodable item. A bad item is logged and skipped;
// it never aborts the batch. A payload without items yields an empty list.
func (n *Normalizer) Normalize(ctx context.Context, results *domain.SearchResults) []domain.Product {
	products := []domain.Product{}
	if results == nil || !results.HasItems {
		return products
	}

	for i, raw := range results.Items {
		product, err := n.normalizeItem(ctx, raw)
		if err != nil {
			log.Printf("[NORMALIZE] Product processing error (item %d): %v", i, err)
			metrics.ItemsSkippedTotal.Inc()
			continue
		}

		products = append(products, product)
		metrics.ItemsNormalizedTotal.Inc()
		log.Printf("[NORMALIZE] Processed: %s", product.Title)
	}

	return products
}

func (n *Normalizer) normalizeItem(ctx context.Context, raw json.RawMessage) (domain.Product, error) {
	var item domain.SearchItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrInvalidItem, err)
	}

	title := ExtractTitle(item.Title)
	if title == "" {
		return domain.Product{}, fmt.Errorf("%w: empty title in %q", domain.ErrInvalidItem, item.Link)
	}

	product := domain.Product{
		ID:          ProductID(title),
		Title:       title,
		Description: newlineReplacer.Replace(item.Snippet),
		Link:        item.Link,
		Price:       domain.DefaultPrice,
		ImagePath:   n.images.PlaceholderPath(),
		Source:      MatchSource(item.Link, n.stores),
	}

	if item.PageMap == nil {
		return product, nil
	}

	if len(item.PageMap.Product) > 0 {
		price, ok, err := formatPrice(item.PageMap.Product[0].Price)
		if err != nil {
			return domain.Product{}, err
		}
		if ok {
			product.Price = price
		}
	}

	if len(item.PageMap.CSEImage) > 0 && item.PageMap.CSEImage[0].Src != "" {
		product.ImagePath = n.images.Resolve(ctx, item.PageMap.CSEImage[0].Src, title)
	}

	return product, nil
}

// ExtractTitle returns the trimmed text before the first hyphen-like separator
func ExtractTitle(raw string) string {
	if idx := strings.IndexAny(raw, titleSeparators); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

// ProductID is the first 10 hex characters of the MD5 of the title
func ProductID(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])[:10]
}

// MatchSource returns the host part of the first store contained in link,
// or the generic label when no store matches
func MatchSource(link string, stores []string) string {
	for _, store := range stores {
		if store != "" && strings.Contains(link, store) {
			host, _, _ := strings.Cut(store, "/")
			return host
		}
	}
	return domain.DefaultSource
}

// formatPrice renders a price as "$" + its literal text. Strings pass through
// untouched; numbers keep their JSON spelling. Empty, null and zero count as
// absent.
func formatPrice(raw json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false, fmt.Errorf("%w: price: %v", domain.ErrInvalidItem, err)
		}
		if s = strings.TrimSpace(s); s == "" {
			return "", false, nil
		}
		return "$" + s, true, nil
	}

	literal := string(trimmed)
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return "", false, fmt.Errorf("%w: price is neither string nor number: %s", domain.ErrInvalidItem, literal)
	}
	if f == 0 {
		return "", false, nil
	}
	return "$" + literal, true, nil
}
