package model

// Origin tags which retrieval path produced an evidence item
type Origin string

const (
	OriginGraph   Origin = "graph"   // Structured triple-store match
	OriginLexical Origin = "lexical" // Token-overlap match over text fields
)

// RawMatch is one raw result from the graph store or text index,
// before origin tagging and score normalization
type RawMatch struct {
	SourceID string  `json:"source_id"`         // Unique within a retrieval run
	Title    string  `json:"title,omitempty"`   // Label or document title
	Snippet  string  `json:"snippet,omitempty"` // Triple rendering or abstract text
	Weight   float64 `json:"weight"`            // Store-native score, per-origin scale
}

// EvidenceItem is the atomic retrieval result. Two items are the same
// evidence when their source identifiers match; origin does not affect
// identity.
type EvidenceItem struct {
	SourceID string  `json:"source_id"`
	Origin   Origin  `json:"origin"`
	Title    string  `json:"title,omitempty"`
	Snippet  string  `json:"snippet,omitempty"`
	RawScore float64 `json:"raw_score"` // Per-origin scale, not comparable across origins
}

// Payload returns the text used for claim verification and generation
func (e EvidenceItem) Payload() string {
	if e.Title == "" {
		return e.Snippet
	}
	if e.Snippet == "" {
		return e.Title
	}
	return e.Title + " " + e.Snippet
}

// ScoredEvidence is an evidence item after merging, carrying a unified
// score in [0,1] and a 1-based rank
type ScoredEvidence struct {
	EvidenceItem
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// RankedEvidence is the deduplicated, score-ordered evidence for one
// question. Scores are non-increasing by rank and source ids are unique.
type RankedEvidence []ScoredEvidence

// SourceIDs returns the ordered source identifiers
func (r RankedEvidence) SourceIDs() []string {
	ids := make([]string, len(r))
	for i, e := range r {
		ids[i] = e.SourceID
	}
	return ids
}

// TopScore returns the unified score of the first-ranked item, or 0 when empty
func (r RankedEvidence) TopScore() float64 {
	if len(r) == 0 {
		return 0
	}
	return r[0].Score
}

// MeanScore returns the mean unified score, or 0 when empty
func (r RankedEvidence) MeanScore() float64 {
	if len(r) == 0 {
		return 0
	}
	var sum float64
	for _, e := range r {
		sum += e.Score
	}
	return sum / float64(len(r))
}
