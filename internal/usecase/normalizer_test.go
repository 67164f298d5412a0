package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/storehelper/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_EmptyInputs(t *testing.T) {
	n := NewNormalizer(&MockImageResolver{}, testStores)

	tests := []struct {
		name    string
		results *domain.SearchResults
	}{
		{"nil payload", nil},
		{"no items key", &domain.SearchResults{HasItems: false}},
		{"empty items", &domain.SearchResults{HasItems: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := n.Normalize(context.Background(), tt.results)
			assert.NotNil(t, products)
			assert.Empty(t, products)
		})
	}
}

func TestNormalize_PayloadWithoutItemsKey(t *testing.T) {
	var results domain.SearchResults
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"customsearch#search","queries":{}}`), &results))

	products := NewNormalizer(&MockImageResolver{}, testStores).Normalize(context.Background(), &results)

	assert.Empty(t, products)
}

func TestNormalize_FullItem(t *testing.T) {
	images := &MockImageResolver{}
	n := NewNormalizer(images, testStores)

	results := resultsOf(item(map[string]interface{}{
		"title":   "Eras Tour Hoodie - Official Store",
		"snippet": "Soft fleece hoodie\nwith tour dates.",
		"link":    "https://store.taylorswift.com/products/eras-hoodie",
		"pagemap": map[string]interface{}{
			"cse_image": []map[string]string{{"src": "https://cdn.example.com/hoodie.png"}},
			"product":   []map[string]interface{}{{"price": "65.00"}},
		},
	}))

	products := n.Normalize(context.Background(), results)

	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "Eras Tour Hoodie", p.Title)
	assert.Equal(t, ProductID("Eras Tour Hoodie"), p.ID)
	assert.Equal(t, "e0d45eb63a", p.ID)
	assert.Equal(t, "Soft fleece hoodie with tour dates.", p.Description)
	assert.Equal(t, "https://store.taylorswift.com/products/eras-hoodie", p.Link)
	assert.Equal(t, "$65.00", p.Price)
	assert.Equal(t, "store.taylorswift.com", p.Source)
	assert.NotEqual(t, testPlaceholder, p.ImagePath)
	assert.Equal(t, []string{"https://cdn.example.com/hoodie.png"}, images.calls)
}

func TestNormalize_Defaults(t *testing.T) {
	images := &MockImageResolver{}
	n := NewNormalizer(images, testStores)

	results := resultsOf(item(map[string]interface{}{
		"title": "Folklore Cardigan",
		"link":  "https://www.ebay.com/itm/123",
	}))

	products := n.Normalize(context.Background(), results)

	require.Len(t, products, 1)
	assert.Equal(t, domain.DefaultPrice, products[0].Price)
	assert.Equal(t, testPlaceholder, products[0].ImagePath)
	assert.Equal(t, domain.DefaultSource, products[0].Source)
	assert.Empty(t, images.calls)
}

func TestNormalize_SkipsBadItemsAndContinues(t *testing.T) {
	n := NewNormalizer(&MockImageResolver{}, testStores)

	results := resultsOf(
		json.RawMessage(`"not an object"`),
		item(map[string]interface{}{"title": "Lover Vinyl", "link": "https://shop.universalmusic.com/lover"}),
		item(map[string]interface{}{"title": "Broken", "pagemap": map[string]interface{}{"cse_image": "oops"}}),
		item(map[string]interface{}{"title": "Bad Price", "pagemap": map[string]interface{}{"product": []map[string]interface{}{{"price": map[string]int{"amount": 5}}}}}),
		item(map[string]interface{}{"title": " - no title before separator"}),
		item(map[string]interface{}{"title": "Midnights CD", "link": "https://www.amazon.com/Taylor-Swift-Midnights/dp/1"}),
	)

	products := n.Normalize(context.Background(), results)

	require.Len(t, products, 2)
	assert.Equal(t, "Lover Vinyl", products[0].Title)
	assert.Equal(t, "shop.universalmusic.com", products[0].Source)
	assert.Equal(t, "Midnights CD", products[1].Title)
	assert.Equal(t, "amazon.com", products[1].Source)
}

func TestNormalize_EmptyImageSrcKeepsPlaceholder(t *testing.T) {
	images := &MockImageResolver{}
	n := NewNormalizer(images, testStores)

	results := resultsOf(item(map[string]interface{}{
		"title":   "Poster",
		"pagemap": map[string]interface{}{"cse_image": []map[string]string{{"src": ""}}},
	}))

	products := n.Normalize(context.Background(), results)

	require.Len(t, products, 1)
	assert.Equal(t, testPlaceholder, products[0].ImagePath)
	assert.Empty(t, images.calls)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Eras Tour Hoodie - Official Store", "Eras Tour Hoodie"},
		{"Lover Vinyl – Universal Music", "Lover Vinyl"},
		{"Midnights CD — Amazon.com", "Midnights CD"},
		{"  No Separator  ", "No Separator"},
		{"T-Shirt - Store", "T"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.raw))
		})
	}
}

func TestMatchSource(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{"official store", "https://store.taylorswift.com/products/x", "store.taylorswift.com"},
		{"amazon path store", "https://www.amazon.com/Taylor-Swift/s?k=merch", "amazon.com"},
		{"etsy path store", "https://www.etsy.com/market/taylor_swift_poster", "etsy.com"},
		{"amazon without path", "https://www.amazon.com/dp/B0", domain.DefaultSource},
		{"no match", "https://example.com/merch", domain.DefaultSource},
		{"empty link", "", domain.DefaultSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchSource(tt.link, testStores))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		ok      bool
		wantErr bool
	}{
		{"string", `"29.99"`, "$29.99", true, false},
		{"string passes through", `"USD 29.99"`, "$USD 29.99", true, false},
		{"number keeps spelling", `19.5`, "$19.5", true, false},
		{"integer", `20`, "$20", true, false},
		{"empty string", `""`, "", false, false},
		{"null", `null`, "", false, false},
		{"missing", ``, "", false, false},
		{"zero", `0`, "", false, false},
		{"object", `{"v":1}`, "", false, true},
		{"bool", `true`, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := formatPrice(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidItem)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
