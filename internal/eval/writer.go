package eval

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/ppiankov/graphgate/internal/model"
)

// WritePredictions writes one JSON object per prediction to path
func WritePredictions(predictions []Prediction, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create predictions file: %w", err)
	}
	defer func() { _ = file.Close() }()

	enc := json.NewEncoder(file)
	for _, p := range predictions {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode prediction %s: %w", p.Sample.ID, err)
		}
	}
	return nil
}

// WriteMetricsJSON writes the snapshot as indented JSON
func WriteMetricsJSON(snap model.MetricsSnapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// WriteMetricsCSV writes the snapshot as a two-column name,value table
func WriteMetricsCSV(snap model.MetricsSnapshot, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	rows := [][]string{
		{"metric", "value"},
		{"samples", strconv.Itoa(snap.Samples)},
		{"labeled", strconv.Itoa(snap.Labeled)},
		{"accuracy", formatFloat(snap.Accuracy)},
		{"macro_f1", formatFloat(snap.MacroF1)},
		{"coverage", formatFloat(snap.Coverage)},
		{"precision_at_k", formatFloat(snap.PrecisionAtK)},
		{"recall_at_k", formatFloat(snap.RecallAtK)},
		{"mrr", formatFloat(snap.MRR)},
		{"ndcg", formatFloat(snap.NDCG)},
		{"k", strconv.Itoa(snap.K)},
		{"total_claims", strconv.Itoa(snap.TotalClaims)},
		{"supported", strconv.Itoa(snap.Supported)},
		{"not_enough_info", strconv.Itoa(snap.NotEnoughInfo)},
		{"contradicted", strconv.Itoa(snap.Contradicted)},
		{"hallucination_rate", formatFloat(snap.HallucinationRate)},
		{"factual_precision", formatFloat(snap.FactualPrecision)},
		{"abstain_rate", formatFloat(snap.AbstainRate)},
		{"calibration_error", formatFloat(snap.CalibrationError)},
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write metrics row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
