package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/ateliernoir/search/internal/models"
	"github.com/ateliernoir/search/internal/storage"
)

// Suggest proposes a corrected spelling for q, or nil when no word improved.
// Each token long enough to correct gets its own bounded vocabulary lookup
// with a looser threshold than matching: the question is "did you mean",
// not "is this a match". The reported similarity and source are those of
// the single best-scoring corrected word. Store errors and timeouts
// degrade to nil.
func (s *Service) Suggest(ctx context.Context, q string) *models.Suggestion {
	tokens := s.tok.Tokenize(q)
	if len(tokens) == 0 {
		return nil
	}

	return failSoft(s.logger, "spell_suggest", nil, func() (*models.Suggestion, error) {
		words := make([]string, len(tokens))
		changed := false
		var best *storage.VocabularyHit
		for i, tok := range tokens {
			words[i] = tok
			// Very short tokens produce too many equally plausible
			// candidates to be worth correcting.
			if utf8.RuneCountInString(tok) < s.cfg.MinSuggestTokenLength {
				continue
			}
			hit, err := s.store.ClosestTerm(ctx, tok, storage.TermOptions{
				Threshold: s.cfg.SuggestionThreshold,
				Timeout:   s.cfg.SuggestionTimeout(),
			})
			if err != nil {
				return nil, err
			}
			if hit == nil || strings.EqualFold(hit.Word, tok) {
				continue
			}
			words[i] = hit.Word
			changed = true
			if best == nil || hit.Similarity > best.Similarity {
				best = hit
			}
		}
		if !changed {
			// A suggestion identical to the input is noise.
			return nil, nil
		}
		return &models.Suggestion{
			Query:      strings.Join(words, " "),
			Similarity: best.Similarity,
			Source:     best.Source,
		}, nil
	})
}
