// Package evidence merges the two retrieval paths into one ranked,
// deduplicated evidence set.
package evidence

import (
	"sort"

	"github.com/ppiankov/graphgate/internal/model"
)

// Merger deduplicates, normalizes, ranks and truncates retriever output
type Merger struct {
	k int
}

// NewMerger creates a merger that caps ranked evidence at k
func NewMerger(k int) *Merger {
	if k <= 0 {
		k = 5
	}
	return &Merger{k: k}
}

type mergeItem struct {
	model.EvidenceItem
	order      int // Position in the concatenated input, for stable ties
	normalized float64
}

// Merge combines graph and lexical items into ranked evidence:
// duplicates by source id keep the higher raw score, each origin's raw
// scores are min-max normalized independently before comparison, and
// ties break graph-before-lexical then original order. Deterministic
// for identical inputs.
func (m *Merger) Merge(graph, lexical []model.EvidenceItem) model.RankedEvidence {
	var items []mergeItem
	seen := make(map[string]int) // source id -> index into items

	add := func(e model.EvidenceItem, order int) {
		if idx, ok := seen[e.SourceID]; ok {
			if e.RawScore > items[idx].RawScore {
				items[idx].EvidenceItem = e
			}
			return
		}
		seen[e.SourceID] = len(items)
		items = append(items, mergeItem{EvidenceItem: e, order: order})
	}

	order := 0
	for _, e := range graph {
		add(e, order)
		order++
	}
	for _, e := range lexical {
		add(e, order)
		order++
	}

	if len(items) == 0 {
		return model.RankedEvidence{}
	}

	normalizeOrigin(items, model.OriginGraph)
	normalizeOrigin(items, model.OriginLexical)

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].normalized != items[j].normalized {
			return items[i].normalized > items[j].normalized
		}
		if items[i].Origin != items[j].Origin {
			return items[i].Origin == model.OriginGraph
		}
		return items[i].order < items[j].order
	})

	if len(items) > m.k {
		items = items[:m.k]
	}

	ranked := make(model.RankedEvidence, len(items))
	for i, it := range items {
		ranked[i] = model.ScoredEvidence{
			EvidenceItem: it.EvidenceItem,
			Score:        it.normalized,
			Rank:         i + 1,
		}
	}
	return ranked
}

// normalizeOrigin min-max scales raw scores within one origin's batch
// to [0,1]. A batch with a single distinct value maps to 1.0: graph
// scores and lexical scores are not on comparable scales, so only the
// within-batch spread carries information.
func normalizeOrigin(items []mergeItem, origin model.Origin) {
	first := true
	var min, max float64
	for _, it := range items {
		if it.Origin != origin {
			continue
		}
		if first {
			min, max = it.RawScore, it.RawScore
			first = false
			continue
		}
		if it.RawScore < min {
			min = it.RawScore
		}
		if it.RawScore > max {
			max = it.RawScore
		}
	}
	if first {
		return // no items of this origin
	}

	span := max - min
	for i := range items {
		if items[i].Origin != origin {
			continue
		}
		if span == 0 {
			items[i].normalized = 1.0
			continue
		}
		items[i].normalized = (items[i].RawScore - min) / span
	}
}
