package retrieve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ppiankov/graphgate/internal/cache"
	"github.com/ppiankov/graphgate/internal/model"
	"github.com/ppiankov/graphgate/internal/textutil"
)

// TextIndex returns candidate text-bearing records for free text
type TextIndex interface {
	SearchText(ctx context.Context, text string, limit int) ([]model.RawMatch, error)
}

// candidateFactor widens the candidate pool fetched from the index so
// overlap scoring has something to rank beyond the final cap
const candidateFactor = 4

// LexicalRetriever is the keyword fallback over titles and abstracts.
// It scores candidates by content-word overlap with the query text and
// returns its own raw score per item.
type LexicalRetriever struct {
	index   TextIndex
	cache   cache.Cache // nil disables caching
	timeout time.Duration
}

// NewLexicalRetriever creates a lexical retriever
func NewLexicalRetriever(index TextIndex, c cache.Cache, timeout time.Duration) *LexicalRetriever {
	return &LexicalRetriever{index: index, cache: c, timeout: timeout}
}

// Retrieve serves the text variants of queries, capped at cap. The
// first text variant with any scored hits wins.
func (r *LexicalRetriever) Retrieve(ctx context.Context, queries []model.StructuredQuery, cap int) ([]model.EvidenceItem, error) {
	for _, q := range queries {
		if q.Kind != model.QueryText || q.Text == "" {
			continue
		}

		items, err := r.search(ctx, q, cap)
		if err != nil {
			return nil, fmt.Errorf("text variant %d: %w", q.Variant, err)
		}
		if len(items) > 0 {
			return items, nil
		}
	}
	return nil, nil
}

func (r *LexicalRetriever) search(ctx context.Context, q model.StructuredQuery, cap int) ([]model.EvidenceItem, error) {
	queryWords := textutil.WordSet(q.Text)
	if len(queryWords) == 0 {
		return nil, nil
	}

	candidates, err := r.candidates(ctx, q, cap*candidateFactor)
	if err != nil {
		return nil, err
	}

	var items []model.EvidenceItem
	for _, c := range candidates {
		overlap := textutil.Overlap(queryWords, textutil.WordSet(c.Title+" "+c.Snippet))
		if overlap == 0 {
			continue
		}
		items = append(items, model.EvidenceItem{
			SourceID: c.SourceID,
			Origin:   model.OriginLexical,
			Title:    c.Title,
			Snippet:  c.Snippet,
			RawScore: float64(overlap) / float64(len(queryWords)),
		})
	}

	// Stable: equal scores keep index candidate order
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RawScore > items[j].RawScore
	})
	if len(items) > cap {
		items = items[:cap]
	}
	return items, nil
}

func (r *LexicalRetriever) candidates(ctx context.Context, q model.StructuredQuery, limit int) ([]model.RawMatch, error) {
	key := cache.Key("lexical", q.Fingerprint())
	if r.cache != nil {
		if data, ok := r.cache.Get(key); ok {
			var cached []model.RawMatch
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	matches, err := r.index.SearchText(callCtx, q.Text, limit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, err
	}

	if r.cache != nil {
		if data, err := json.Marshal(matches); err == nil {
			_ = r.cache.Set(key, data, 0)
		}
	}
	return matches, nil
}
