package metrics

import (
	"math"
	"testing"

	"github.com/ppiankov/graphgate/internal/model"
)

func evidenceFor(ids ...string) model.RankedEvidence {
	ev := make(model.RankedEvidence, len(ids))
	for i, id := range ids {
		ev[i] = model.ScoredEvidence{
			EvidenceItem: model.EvidenceItem{SourceID: id, Origin: model.OriginGraph},
			Score:        1.0 - float64(i)*0.1,
			Rank:         i + 1,
		}
	}
	return ev
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}

func TestCompute_Empty(t *testing.T) {
	snap := Compute(nil, 5)
	if snap.Samples != 0 || snap.Labeled != 0 {
		t.Errorf("empty input should yield zero counts, got %+v", snap)
	}
}

func TestCompute_AccuracyAndMacroF1(t *testing.T) {
	samples := []Sample{
		{Gold: "yes", Pred: "yes"},
		{Gold: "yes", Pred: "no"},
		{Gold: "no", Pred: "no"},
		{Gold: "no", Pred: "no"},
	}
	snap := Compute(samples, 5)

	if snap.Labeled != 4 {
		t.Fatalf("expected 4 labeled, got %d", snap.Labeled)
	}
	approx(t, "accuracy", snap.Accuracy, 0.75)

	// yes: P=1, R=0.5, F1=2/3; no: P=2/3, R=1, F1=0.8
	approx(t, "macro F1", snap.MacroF1, (2.0/3.0+0.8)/2)
}

func TestCompute_GoldLabelNormalization(t *testing.T) {
	samples := []Sample{
		{Gold: " Yes ", Pred: "yes"},
		{Gold: "maybe", Pred: "yes"}, // not a usable label
		{Gold: "", Pred: "yes"},
	}
	snap := Compute(samples, 5)
	if snap.Labeled != 1 {
		t.Errorf("expected 1 labeled sample, got %d", snap.Labeled)
	}
	approx(t, "accuracy", snap.Accuracy, 1.0)
}

func TestCompute_RetrievalMetrics(t *testing.T) {
	samples := []Sample{
		{
			GoldIDs:  []string{"d1", "d9"},
			Evidence: evidenceFor("d1", "d2", "d3"),
		},
	}
	snap := Compute(samples, 3)

	if snap.RankedSamples != 1 {
		t.Fatalf("expected 1 ranked sample, got %d", snap.RankedSamples)
	}
	approx(t, "P@3", snap.PrecisionAtK, 1.0/3.0)
	approx(t, "R@3", snap.RecallAtK, 0.5)
	approx(t, "MRR", snap.MRR, 1.0)

	// One hit at rank 1 out of an ideal two hits
	idcg := 1.0 + 1.0/math.Log2(3)
	approx(t, "NDCG", snap.NDCG, 1.0/idcg)
}

func TestCompute_MRRLaterHit(t *testing.T) {
	samples := []Sample{
		{
			GoldIDs:  []string{"d3"},
			Evidence: evidenceFor("d1", "d2", "d3"),
		},
	}
	snap := Compute(samples, 3)
	approx(t, "MRR", snap.MRR, 1.0/3.0)
	approx(t, "NDCG", snap.NDCG, 1.0/math.Log2(4))
}

func TestCompute_FaithfulnessTallies(t *testing.T) {
	verdicts := []model.ClaimVerdict{
		{Verdict: model.VerdictSupported},
		{Verdict: model.VerdictSupported},
		{Verdict: model.VerdictNotEnoughInfo},
	}
	samples := []Sample{{Verdicts: verdicts}}
	snap := Compute(samples, 5)

	if snap.TotalClaims != 3 || snap.Supported != 2 || snap.NotEnoughInfo != 1 {
		t.Errorf("wrong tallies: %+v", snap)
	}
	approx(t, "factual precision", snap.FactualPrecision, 2.0/3.0)
	approx(t, "hallucination rate", snap.HallucinationRate, 1.0/3.0)
}

func TestCompute_CoverageAndAbstainRate(t *testing.T) {
	samples := []Sample{
		{Evidence: evidenceFor("d1")},
		{Evidence: evidenceFor("d2"), Assessment: model.RiskAssessment{Abstain: true}},
		{},
		{Assessment: model.RiskAssessment{Abstain: true}},
	}
	snap := Compute(samples, 5)
	approx(t, "coverage", snap.Coverage, 0.5)
	approx(t, "abstain rate", snap.AbstainRate, 0.5)
}

func TestCompute_CalibrationNeedsBinMass(t *testing.T) {
	// Four labeled samples in one bin is below the minimum and the
	// calibration term reports zero counted bins
	var samples []Sample
	for i := 0; i < 4; i++ {
		samples = append(samples, Sample{
			Gold:       "yes",
			Pred:       "yes",
			Assessment: model.RiskAssessment{Risk: 0.15},
		})
	}
	snap := Compute(samples, 5)
	if snap.CalibrationBins != 0 {
		t.Errorf("expected no counted bins, got %d", snap.CalibrationBins)
	}
}

func TestCompute_CalibrationError(t *testing.T) {
	// Ten samples at risk 0.2, three of them wrong: |0.2 - 0.3| = 0.1
	var samples []Sample
	for i := 0; i < 10; i++ {
		pred := "yes"
		if i < 3 {
			pred = "no"
		}
		samples = append(samples, Sample{
			Gold:       "yes",
			Pred:       pred,
			Assessment: model.RiskAssessment{Risk: 0.2},
		})
	}
	snap := Compute(samples, 5)
	if snap.CalibrationBins != 1 {
		t.Fatalf("expected 1 counted bin, got %d", snap.CalibrationBins)
	}
	approx(t, "calibration error", snap.CalibrationError, 0.1)
}
