package evidence

import (
	"reflect"
	"testing"

	"github.com/ppiankov/graphgate/internal/model"
)

func graphItem(id string, score float64) model.EvidenceItem {
	return model.EvidenceItem{SourceID: id, Origin: model.OriginGraph, Title: "t-" + id, RawScore: score}
}

func lexicalItem(id string, score float64) model.EvidenceItem {
	return model.EvidenceItem{SourceID: id, Origin: model.OriginLexical, Title: "t-" + id, RawScore: score}
}

func TestMerge_DedupeKeepsHigherScore(t *testing.T) {
	m := NewMerger(10)

	graph := []model.EvidenceItem{graphItem("d1", 0.9), graphItem("d2", 0.5)}
	lexical := []model.EvidenceItem{lexicalItem("d1", 0.95), lexicalItem("d3", 0.2)}

	ranked := m.Merge(graph, lexical)

	ids := map[string]int{}
	for _, e := range ranked {
		ids[e.SourceID]++
	}
	for id, n := range ids {
		if n > 1 {
			t.Errorf("source id %s appears %d times", id, n)
		}
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 distinct items, got %d", len(ranked))
	}

	for _, e := range ranked {
		if e.SourceID == "d1" && e.RawScore != 0.95 {
			t.Errorf("duplicate should keep the higher raw score, got %v", e.RawScore)
		}
	}
}

func TestMerge_ScoresNonIncreasingAndRanked(t *testing.T) {
	m := NewMerger(10)

	graph := []model.EvidenceItem{graphItem("g1", 3), graphItem("g2", 1), graphItem("g3", 2)}
	lexical := []model.EvidenceItem{lexicalItem("l1", 0.9), lexicalItem("l2", 0.3)}

	ranked := m.Merge(graph, lexical)

	for i, e := range ranked {
		if e.Rank != i+1 {
			t.Errorf("item %d carries rank %d", i, e.Rank)
		}
		if e.Score < 0 || e.Score > 1 {
			t.Errorf("score out of [0,1]: %v", e.Score)
		}
		if i > 0 && ranked[i].Score > ranked[i-1].Score {
			t.Errorf("scores increase at rank %d: %v > %v", e.Rank, ranked[i].Score, ranked[i-1].Score)
		}
	}
}

func TestMerge_PerOriginNormalization(t *testing.T) {
	m := NewMerger(10)

	// Graph weights on a 0-3 scale, lexical on a 0-1 scale
	graph := []model.EvidenceItem{graphItem("g1", 3), graphItem("g2", 1)}
	lexical := []model.EvidenceItem{lexicalItem("l1", 0.8), lexicalItem("l2", 0.2)}

	ranked := m.Merge(graph, lexical)

	scores := map[string]float64{}
	for _, e := range ranked {
		scores[e.SourceID] = e.Score
	}

	// Each origin's best normalizes to 1.0, worst to 0.0
	if scores["g1"] != 1.0 || scores["l1"] != 1.0 {
		t.Errorf("origin maxima should normalize to 1.0: %v", scores)
	}
	if scores["g2"] != 0.0 || scores["l2"] != 0.0 {
		t.Errorf("origin minima should normalize to 0.0: %v", scores)
	}
}

func TestMerge_SingleValueBatchNormalizesToOne(t *testing.T) {
	m := NewMerger(10)

	ranked := m.Merge([]model.EvidenceItem{graphItem("g1", 0.4)}, nil)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 item, got %d", len(ranked))
	}
	if ranked[0].Score != 1.0 {
		t.Errorf("single-item batch should score 1.0, got %v", ranked[0].Score)
	}

	// Several items sharing one raw score all map to 1.0
	ranked = m.Merge([]model.EvidenceItem{graphItem("a", 2), graphItem("b", 2)}, nil)
	for _, e := range ranked {
		if e.Score != 1.0 {
			t.Errorf("zero-span batch should score 1.0, got %v for %s", e.Score, e.SourceID)
		}
	}
}

func TestMerge_GraphBeatsLexicalOnTies(t *testing.T) {
	m := NewMerger(10)

	// Both normalize to 1.0
	ranked := m.Merge(
		[]model.EvidenceItem{graphItem("g1", 5)},
		[]model.EvidenceItem{lexicalItem("l1", 0.5)},
	)

	if len(ranked) != 2 {
		t.Fatalf("expected 2 items, got %d", len(ranked))
	}
	if ranked[0].Origin != model.OriginGraph {
		t.Errorf("graph should outrank lexical on equal score, got %s first", ranked[0].Origin)
	}
}

func TestMerge_TruncatesToK(t *testing.T) {
	m := NewMerger(2)

	graph := []model.EvidenceItem{graphItem("g1", 3), graphItem("g2", 2), graphItem("g3", 1)}
	ranked := m.Merge(graph, nil)

	if len(ranked) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(ranked))
	}
	if ranked[0].SourceID != "g1" || ranked[1].SourceID != "g2" {
		t.Errorf("truncation should keep the best items, got %v", ranked.SourceIDs())
	}
}

func TestMerge_Deterministic(t *testing.T) {
	m := NewMerger(5)

	graph := []model.EvidenceItem{graphItem("g1", 2), graphItem("g2", 2), graphItem("g3", 1)}
	lexical := []model.EvidenceItem{lexicalItem("l1", 0.7), lexicalItem("l2", 0.7)}

	first := m.Merge(graph, lexical)
	for i := 0; i < 10; i++ {
		if again := m.Merge(graph, lexical); !reflect.DeepEqual(first, again) {
			t.Fatalf("merge is not deterministic: %v vs %v", first.SourceIDs(), again.SourceIDs())
		}
	}
}

func TestMerge_Empty(t *testing.T) {
	m := NewMerger(5)

	ranked := m.Merge(nil, nil)
	if len(ranked) != 0 {
		t.Errorf("expected empty ranked evidence, got %v", ranked)
	}
	if ranked.TopScore() != 0 || ranked.MeanScore() != 0 {
		t.Error("empty evidence should report zero scores")
	}
}
