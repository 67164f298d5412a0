package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/storehelper/backend/internal/domain"
)

const testPlaceholder = "images/placeholder.png"

var testStores = []string{
	"store.taylorswift.com",
	"shop.universalmusic.com",
	"amazon.com/Taylor-Swift",
	"etsy.com/market/taylor_swift",
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string]interface{}
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockSearchClient returns canned results per query
type MockSearchClient struct {
	results map[string]*domain.SearchResults
	errors  map[string]error
	queries []string
}

func NewMockSearchClient() *MockSearchClient {
	return &MockSearchClient{
		results: make(map[string]*domain.SearchResults),
		errors:  make(map[string]error),
	}
}

func (m *MockSearchClient) Search(ctx context.Context, query string) (*domain.SearchResults, error) {
	m.queries = append(m.queries, query)
	if err, ok := m.errors[query]; ok {
		return nil, err
	}
	if r, ok := m.results[query]; ok {
		return r, nil
	}
	return &domain.SearchResults{HasItems: false}, nil
}

// MockImageResolver records calls and returns a deterministic path
type MockImageResolver struct {
	mu    sync.Mutex
	calls []string
}

func (m *MockImageResolver) Resolve(ctx context.Context, url, title string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	return "cache/images/" + ProductID(url+title) + ".png"
}

func (m *MockImageResolver) PlaceholderPath() string {
	return testPlaceholder
}

// MockRenderer captures the products handed to it
type MockRenderer struct {
	rendered []domain.Product
	calls    int
	err      error
}

func (m *MockRenderer) Render(products []domain.Product) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	m.rendered = products
	return "index.html", nil
}

// item builds one raw search item from a map
func item(fields map[string]interface{}) json.RawMessage {
	data, err := json.Marshal(fields)
	if err != nil {
		panic(fmt.Sprintf("item: %v", err))
	}
	return data
}

func resultsOf(items ...json.RawMessage) *domain.SearchResults {
	return &domain.SearchResults{Items: items, HasItems: true}
}
