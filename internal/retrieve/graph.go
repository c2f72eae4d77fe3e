// Package retrieve executes query variants against the graph store and
// the lexical index, and orchestrates the fallback between them.
package retrieve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/graphgate/internal/cache"
	"github.com/ppiankov/graphgate/internal/model"
)

// ErrTimeout marks a retriever call that exceeded its per-call budget.
// Treated as zero evidence with an explicit error flag, distinguishable
// from zero evidence found.
var ErrTimeout = errors.New("retriever timed out")

// GraphStore executes one graph-pattern query variant
type GraphStore interface {
	Execute(ctx context.Context, q model.StructuredQuery, limit int) ([]model.RawMatch, error)
}

// GraphRetriever runs structured variants in priority order, stopping
// at the first variant that yields results unless configured to union
// all variants. Reads only; no side effects beyond the cache.
type GraphRetriever struct {
	store   GraphStore
	cache   cache.Cache // nil disables caching
	union   bool
	timeout time.Duration
}

// NewGraphRetriever creates a graph retriever
func NewGraphRetriever(store GraphStore, c cache.Cache, union bool, timeout time.Duration) *GraphRetriever {
	return &GraphRetriever{store: store, cache: c, union: union, timeout: timeout}
}

// Retrieve executes the graph variants of queries and returns evidence
// items capped at cap. Store failures and timeouts surface as errors
// rather than empty results.
func (r *GraphRetriever) Retrieve(ctx context.Context, queries []model.StructuredQuery, cap int) ([]model.EvidenceItem, error) {
	var items []model.EvidenceItem

	for _, q := range queries {
		if q.Kind != model.QueryGraph {
			continue
		}

		matches, err := r.execute(ctx, q, cap)
		if err != nil {
			return nil, fmt.Errorf("graph variant %d: %w", q.Variant, err)
		}

		for _, m := range matches {
			items = append(items, model.EvidenceItem{
				SourceID: m.SourceID,
				Origin:   model.OriginGraph,
				Title:    m.Title,
				Snippet:  m.Snippet,
				RawScore: m.Weight,
			})
			if len(items) >= cap {
				return items, nil
			}
		}

		// Priority order: any hit from a tighter variant wins outright
		if len(items) > 0 && !r.union {
			break
		}
	}

	return items, nil
}

func (r *GraphRetriever) execute(ctx context.Context, q model.StructuredQuery, limit int) ([]model.RawMatch, error) {
	key := cache.Key("graph", q.Fingerprint())
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

	matches, err := r.store.Execute(callCtx, q, limit)
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
