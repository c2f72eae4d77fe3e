package model

import (
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "threshold below zero",
			mutate:  func(c *Config) { c.Risk.Threshold = -0.1 },
			wantMsg: "risk threshold",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Risk.Threshold = 1.01 },
			wantMsg: "risk threshold",
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Risk.EvidenceWeight = -1 },
			wantMsg: "non-negative",
		},
		{
			name: "all weights zero",
			mutate: func(c *Config) {
				c.Risk.VerdictWeight = 0
				c.Risk.EvidenceWeight = 0
				c.Risk.ConfidenceWeight = 0
			},
			wantMsg: "at least one risk weight",
		},
		{
			name:    "zero top_k",
			mutate:  func(c *Config) { c.Retrieval.TopK = 0 },
			wantMsg: "top_k",
		},
		{
			name:    "zero max_per_variant",
			mutate:  func(c *Config) { c.Retrieval.MaxPerVariant = 0 },
			wantMsg: "max_per_variant",
		},
		{
			name:    "negative min_evidence",
			mutate:  func(c *Config) { c.Retrieval.MinEvidence = -1 },
			wantMsg: "min_evidence",
		},
		{
			name:    "zero min_overlap",
			mutate:  func(c *Config) { c.Verify.MinOverlap = 0 },
			wantMsg: "min_overlap",
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *Config) { c.Cache.Backend = "memcached" },
			wantMsg: "cache backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidateBoundaryThresholds(t *testing.T) {
	for _, tau := range []float64{0, 1} {
		cfg := DefaultConfig()
		cfg.Risk.Threshold = tau
		if err := cfg.Validate(); err != nil {
			t.Errorf("threshold %v should be valid: %v", tau, err)
		}
	}
}

func TestCountVerdicts(t *testing.T) {
	verdicts := []ClaimVerdict{
		{Verdict: VerdictSupported},
		{Verdict: VerdictSupported},
		{Verdict: VerdictNotEnoughInfo},
		{Verdict: VerdictContradicted},
	}

	c := CountVerdicts(verdicts)
	if c.Supported != 2 || c.NotEnoughInfo != 1 || c.Contradicted != 1 {
		t.Errorf("unexpected tallies: %+v", c)
	}
	if c.Total() != 4 {
		t.Errorf("expected total 4, got %d", c.Total())
	}
}

func TestEvidencePayload(t *testing.T) {
	tests := []struct {
		item EvidenceItem
		want string
	}{
		{EvidenceItem{Title: "Insulin", Snippet: "treats diabetes"}, "Insulin treats diabetes"},
		{EvidenceItem{Title: "Insulin"}, "Insulin"},
		{EvidenceItem{Snippet: "treats diabetes"}, "treats diabetes"},
	}
	for _, tt := range tests {
		if got := tt.item.Payload(); got != tt.want {
			t.Errorf("Payload() = %q, want %q", got, tt.want)
		}
	}
}

func TestRankedEvidenceScores(t *testing.T) {
	r := RankedEvidence{
		{EvidenceItem: EvidenceItem{SourceID: "a"}, Score: 1.0, Rank: 1},
		{EvidenceItem: EvidenceItem{SourceID: "b"}, Score: 0.5, Rank: 2},
	}

	if got := r.TopScore(); got != 1.0 {
		t.Errorf("TopScore() = %v, want 1.0", got)
	}
	if got := r.MeanScore(); got != 0.75 {
		t.Errorf("MeanScore() = %v, want 0.75", got)
	}
	ids := r.SourceIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("unexpected ids: %v", ids)
	}

	var empty RankedEvidence
	if empty.TopScore() != 0 || empty.MeanScore() != 0 {
		t.Error("empty evidence should score 0")
	}
}

func TestFingerprintDistinguishesVariants(t *testing.T) {
	a := StructuredQuery{Kind: QueryGraph, Intent: IntentTreatment, SubjectID: "D003924", Predicate: "treated_by"}
	b := StructuredQuery{Kind: QueryGraph, Intent: IntentTreatment, SubjectID: "D003924"}
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("queries differing in predicate should fingerprint differently")
	}
	if a.Fingerprint() != a.Fingerprint() {
		t.Error("fingerprint should be stable")
	}
}
