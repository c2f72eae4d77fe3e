package model

// MetricsSnapshot holds corpus-level retrieval and faithfulness metrics
// for one evaluation run. Recomputed from scratch each aggregation;
// never persisted incrementally.
type MetricsSnapshot struct {
	Samples int `json:"samples"`
	Labeled int `json:"labeled"` // Samples with a yes/no gold decision

	// QA metrics over labeled samples
	Accuracy float64 `json:"accuracy"`
	MacroF1  float64 `json:"macro_f1"`

	// Retrieval metrics
	Coverage      float64 `json:"coverage"` // Fraction with non-empty ranked evidence
	K             int     `json:"k"`
	RankedSamples int     `json:"ranked_samples"` // Samples with gold relevant-item ids
	PrecisionAtK  float64 `json:"precision_at_k"`
	RecallAtK     float64 `json:"recall_at_k"`
	MRR           float64 `json:"mrr"`
	NDCG          float64 `json:"ndcg"`

	// Faithfulness metrics over all claims
	TotalClaims       int     `json:"total_claims"`
	Supported         int     `json:"supported"`
	NotEnoughInfo     int     `json:"not_enough_info"`
	Contradicted      int     `json:"contradicted"`
	HallucinationRate float64 `json:"hallucination_rate"` // (Contradicted + NEI) / total claims
	FactualPrecision  float64 `json:"factual_precision"`  // Supported / total claims

	// Gate behavior
	AbstainRate      float64 `json:"abstain_rate"`
	CalibrationError float64 `json:"calibration_error"` // Binned |risk - observed error rate|
	CalibrationBins  int     `json:"calibration_bins"`  // Bins with enough samples to count
}
