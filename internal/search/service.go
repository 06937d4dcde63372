// Package search implements fuzzy product search: matching, spelling
// suggestions, predicate building, and the quick-search orchestrator.
package search

import (
	"github.com/ateliernoir/search/internal/config"
	"github.com/ateliernoir/search/internal/query"
	"github.com/ateliernoir/search/internal/storage"
	"go.uber.org/zap"
)

// Service runs fuzzy search against the record store. Every public method
// is fail-soft: internal errors degrade to an empty or nil result and are
// logged, never surfaced to the caller. A broken search experience is worse
// than a zero-results page.
type Service struct {
	store    storage.Store
	tok      *query.Tokenizer
	synonyms *query.SynonymTable
	cfg      *config.SearchConfig
	logger   *zap.Logger
}

// NewService creates a search service with the given dependencies.
func NewService(store storage.Store, synonyms *query.SynonymTable, cfg *config.SearchConfig, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		tok:      query.NewTokenizer(cfg.MaxQueryLength, cfg.MaxTokens),
		synonyms: synonyms,
		cfg:      cfg,
		logger:   logger,
	}
}

// failSoft runs fn and converts any error to the zero value, logging it as
// a degradation signal. All public entry points go through this single
// combinator so the fail-soft contract cannot be bypassed by a new call
// site.
func failSoft[T any](logger *zap.Logger, op string, zero T, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		logger.Warn("search degraded", zap.String("op", op), zap.Error(err))
		return zero
	}
	return v
}
