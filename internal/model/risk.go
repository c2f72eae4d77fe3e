package model

// AbstainReason explains a forced abstain decision
type AbstainReason string

const (
	AbstainNone           AbstainReason = ""                // Decision came from the threshold comparison
	AbstainNoClaims       AbstainReason = "no_claims"       // Empty answer: nothing asserted
	AbstainNoEvidence     AbstainReason = "no_evidence"     // Legitimate zero-result retrieval
	AbstainRetrievalError AbstainReason = "retrieval_error" // Store unreachable or retriever timeout
)

// RiskInputs records everything the risk score was derived from
type RiskInputs struct {
	Verdicts        VerdictCounts `json:"verdicts"`
	TopScore        float64       `json:"top_score"`  // Top-1 unified evidence score
	MeanScore       float64       `json:"mean_score"` // Mean unified evidence score
	EvidenceCount   int           `json:"evidence_count"`
	Confidence      float64       `json:"confidence,omitempty"` // Model self-confidence, when supplied
	HasConfidence   bool          `json:"has_confidence"`
	RetrievalFailed bool          `json:"retrieval_failed"` // Distinct from zero evidence found
}

// RiskAssessment is the terminal per-question decision record.
// Never mutated after creation; only read by the metrics aggregator.
type RiskAssessment struct {
	Risk      float64       `json:"risk"`      // Aggregated scalar in [0,1]
	Threshold float64       `json:"threshold"` // The tau the decision was made against
	Abstain   bool          `json:"abstain"`
	Forced    AbstainReason `json:"forced,omitempty"` // Non-empty when abstain was independent of tau
	Inputs    RiskInputs    `json:"inputs"`
}
