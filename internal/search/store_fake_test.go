package search

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ateliernoir/search/internal/config"
	"github.com/ateliernoir/search/internal/models"
	"github.com/ateliernoir/search/internal/query"
	"github.com/ateliernoir/search/internal/storage"
)

// fakeStore is a hand-written spy implementing storage.Store.
type fakeStore struct {
	mu sync.Mutex

	simRows      []storage.MatchRow
	simErr       error
	simCalls     int
	lastSimQuery string
	lastTokens   []string
	lastSimOpts  storage.SimilarityOptions

	hits         map[string]*storage.VocabularyHit
	termErr      error
	termCalls    []string
	lastTermOpts storage.TermOptions

	products     []*models.Product
	fetchErr     error
	fetchCalls   int
	lastFetchIDs []string

	listProducts []*models.Product
	listTotal    int
	listErr      error
	lastCond     storage.Condition
}

func (f *fakeStore) SimilaritySearch(ctx context.Context, q string, tokens []string, opts storage.SimilarityOptions) ([]storage.MatchRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.simCalls++
	f.lastSimQuery = q
	f.lastTokens = tokens
	f.lastSimOpts = opts
	return f.simRows, f.simErr
}

func (f *fakeStore) ClosestTerm(ctx context.Context, word string, opts storage.TermOptions) (*storage.VocabularyHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.termCalls = append(f.termCalls, word)
	f.lastTermOpts = opts
	if f.termErr != nil {
		return nil, f.termErr
	}
	return f.hits[word], nil
}

func (f *fakeStore) FetchByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	f.lastFetchIDs = ids
	return f.products, f.fetchErr
}

func (f *fakeStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("product not found: %s", id)
}

func (f *fakeStore) UpsertProduct(ctx context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, p)
	return nil
}

func (f *fakeStore) ListProducts(ctx context.Context, cond storage.Condition, offset, limit int) ([]*models.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCond = cond
	return f.listProducts, f.listTotal, f.listErr
}

func (f *fakeStore) RefreshVocabulary(ctx context.Context) error { return nil }

func (f *fakeStore) Close() error { return nil }

// newTestService builds a Service on top of store with default config.
func newTestService(store storage.Store) *Service {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	syn := query.NewSynonymTable(cfg.Synonyms.Groups, cfg.Synonyms.Exclusions)
	return NewService(store, syn, &cfg.Search, zap.NewNop())
}
