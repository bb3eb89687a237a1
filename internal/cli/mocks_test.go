package cli

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alnah/go-fatsecret/internal/config"
	"github.com/alnah/go-fatsecret/internal/fatsecret"
	"github.com/alnah/go-fatsecret/internal/model"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{ConsumerKey: "test-key", ConsumerSecret: "test-secret"}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock ClientFactory
// ---------------------------------------------------------------------------

type mockClientFactory struct {
	NewClientFunc func(cfg config.Config, logger *slog.Logger) (API, error)

	// API is returned when NewClientFunc is nil.
	API *mockAPI

	mu      sync.Mutex
	configs []config.Config
}

func (m *mockClientFactory) NewClient(cfg config.Config, logger *slog.Logger) (API, error) {
	m.mu.Lock()
	m.configs = append(m.configs, cfg)
	m.mu.Unlock()

	if m.NewClientFunc != nil {
		return m.NewClientFunc(cfg, logger)
	}
	return m.API, nil
}

// LastConfig returns the config of the most recent NewClient call.
func (m *mockClientFactory) LastConfig() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.configs) == 0 {
		return config.Config{}
	}
	return m.configs[len(m.configs)-1]
}

// ---------------------------------------------------------------------------
// Mock API
// ---------------------------------------------------------------------------

// searchCall records the arguments of a search.
type searchCall struct {
	Query      string
	Page       int
	MaxResults int
	Options    int
}

type mockAPI struct {
	SearchFoodsFunc   func(ctx context.Context, query string, page, maxResults int) (*model.FoodSearchResult, error)
	GetFoodFunc       func(ctx context.Context, id string) (*model.Food, error)
	LookupBarcodeFunc func(ctx context.Context, barcode string) (*model.Food, error)
	SearchRecipesFunc func(ctx context.Context, query string, page, maxResults int) (*model.RecipeSearchResult, error)
	GetRecipeFunc     func(ctx context.Context, id string) (*model.Recipe, error)

	mu       sync.Mutex
	searches []searchCall
	gets     []string
	closed   int
}

func (m *mockAPI) recordSearch(query string, page, maxResults int, opts []fatsecret.SearchOption) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, searchCall{query, page, maxResults, len(opts)})
}

func (m *mockAPI) recordGet(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets = append(m.gets, id)
}

func (m *mockAPI) SearchFoods(ctx context.Context, query string, page, maxResults int, opts ...fatsecret.SearchOption) (*model.FoodSearchResult, error) {
	m.recordSearch(query, page, maxResults, opts)
	if m.SearchFoodsFunc != nil {
		return m.SearchFoodsFunc(ctx, query, page, maxResults)
	}
	return &model.FoodSearchResult{}, nil
}

func (m *mockAPI) GetFood(ctx context.Context, id string) (*model.Food, error) {
	m.recordGet(id)
	if m.GetFoodFunc != nil {
		return m.GetFoodFunc(ctx, id)
	}
	return &model.Food{ID: model.ID(id), Name: "Food " + id}, nil
}

func (m *mockAPI) LookupBarcode(ctx context.Context, barcode string) (*model.Food, error) {
	m.recordGet(barcode)
	if m.LookupBarcodeFunc != nil {
		return m.LookupBarcodeFunc(ctx, barcode)
	}
	return &model.Food{ID: "1", Name: "Scanned"}, nil
}

func (m *mockAPI) SearchRecipes(ctx context.Context, query string, page, maxResults int, opts ...fatsecret.SearchOption) (*model.RecipeSearchResult, error) {
	m.recordSearch(query, page, maxResults, opts)
	if m.SearchRecipesFunc != nil {
		return m.SearchRecipesFunc(ctx, query, page, maxResults)
	}
	return &model.RecipeSearchResult{}, nil
}

func (m *mockAPI) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	m.recordGet(id)
	if m.GetRecipeFunc != nil {
		return m.GetRecipeFunc(ctx, id)
	}
	return &model.Recipe{ID: model.ID(id), Name: "Recipe " + id}, nil
}

func (m *mockAPI) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *mockAPI) Searches() []searchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]searchCall(nil), m.searches...)
}

func (m *mockAPI) Gets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.gets...)
}

func (m *mockAPI) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Compile-time interface verification.
var (
	_ ConfigLoader  = (*mockConfigLoader)(nil)
	_ ClientFactory = (*mockClientFactory)(nil)
	_ API           = (*mockAPI)(nil)
)
