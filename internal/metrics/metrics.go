// Package metrics computes corpus-level retrieval and faithfulness
// metrics from recorded per-question outcomes. Pure and stateless:
// every call recomputes from scratch.
package metrics

import (
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/graphgate/internal/model"
)

// calibrationBins is the number of equal-width risk bins; bins with
// fewer than minBinSamples labeled samples are skipped
const (
	calibrationBins = 10
	minBinSamples   = 5
)

// Sample is one finalized question outcome plus its ground truth
type Sample struct {
	Gold       string // yes/no gold decision; empty when unlabeled
	Pred       string // Final yes/no-style decision; empty on abstain
	GoldIDs    []string
	Evidence   model.RankedEvidence
	Verdicts   []model.ClaimVerdict
	Assessment model.RiskAssessment
}

// Labeled reports whether the sample carries a usable gold decision
func (s Sample) Labeled() bool {
	g := strings.ToLower(strings.TrimSpace(s.Gold))
	return g == "yes" || g == "no"
}

// Compute aggregates a batch of samples into one snapshot. k is the
// cutoff for the ranking metrics.
func Compute(samples []Sample, k int) model.MetricsSnapshot {
	if k <= 0 {
		k = 5
	}
	snap := model.MetricsSnapshot{Samples: len(samples), K: k}
	if len(samples) == 0 {
		return snap
	}

	var golds, preds []string
	nonEmpty := 0
	abstained := 0
	var precSum, recSum, mrrSum, ndcgSum float64

	for _, s := range samples {
		if s.Labeled() {
			golds = append(golds, normalize(s.Gold))
			preds = append(preds, normalize(s.Pred))
		}
		if len(s.Evidence) > 0 {
			nonEmpty++
		}
		if s.Assessment.Abstain {
			abstained++
		}

		if len(s.GoldIDs) > 0 {
			retrieved := normalizeAll(s.Evidence.SourceIDs())
			gold := normalizeAll(s.GoldIDs)
			p, r := precisionRecallAtK(gold, retrieved, k)
			precSum += p
			recSum += r
			mrrSum += mrrAtK(gold, retrieved, k)
			ndcgSum += ndcgAtK(gold, retrieved, k)
			snap.RankedSamples++
		}

		for _, v := range s.Verdicts {
			snap.TotalClaims++
			switch v.Verdict {
			case model.VerdictSupported:
				snap.Supported++
			case model.VerdictContradicted:
				snap.Contradicted++
			default:
				snap.NotEnoughInfo++
			}
		}
	}

	snap.Labeled = len(golds)
	if snap.Labeled > 0 {
		snap.Accuracy, snap.MacroF1 = accuracyMacroF1(golds, preds)
	}
	snap.Coverage = float64(nonEmpty) / float64(len(samples))
	snap.AbstainRate = float64(abstained) / float64(len(samples))

	if snap.RankedSamples > 0 {
		n := float64(snap.RankedSamples)
		snap.PrecisionAtK = precSum / n
		snap.RecallAtK = recSum / n
		snap.MRR = mrrSum / n
		snap.NDCG = ndcgSum / n
	}

	if snap.TotalClaims > 0 {
		snap.HallucinationRate = float64(snap.Contradicted+snap.NotEnoughInfo) / float64(snap.TotalClaims)
		snap.FactualPrecision = float64(snap.Supported) / float64(snap.TotalClaims)
	}

	snap.CalibrationError, snap.CalibrationBins = calibrationError(samples)
	return snap
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeAll(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if n := normalize(id); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// accuracyMacroF1 scores final decisions against gold labels, macro
// averaging F1 over the label set
func accuracyMacroF1(golds, preds []string) (float64, float64) {
	total := len(golds)
	correct := 0
	labelSet := make(map[string]bool)
	for i := range golds {
		if golds[i] == preds[i] {
			correct++
		}
		labelSet[golds[i]] = true
		if preds[i] != "" {
			labelSet[preds[i]] = true
		}
	}
	acc := float64(correct) / float64(total)

	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	var f1Sum float64
	for _, lab := range labels {
		var tp, fp, fn int
		for i := range golds {
			switch {
			case golds[i] == lab && preds[i] == lab:
				tp++
			case golds[i] != lab && preds[i] == lab:
				fp++
			case golds[i] == lab && preds[i] != lab:
				fn++
			}
		}
		var prec, rec float64
		if tp+fp > 0 {
			prec = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			rec = float64(tp) / float64(tp+fn)
		}
		if prec+rec > 0 {
			f1Sum += 2 * prec * rec / (prec + rec)
		}
	}
	if len(labels) == 0 {
		return acc, 0
	}
	return acc, f1Sum / float64(len(labels))
}

func precisionRecallAtK(gold, retrieved []string, k int) (float64, float64) {
	gset := toSet(gold)
	top := retrieved
	if len(top) > k {
		top = top[:k]
	}
	if len(top) == 0 {
		return 0, 0
	}
	hits := 0
	for _, id := range top {
		if gset[id] {
			hits++
		}
	}
	prec := float64(hits) / float64(len(top))
	var rec float64
	if len(gset) > 0 {
		rec = float64(hits) / float64(len(gset))
	}
	return prec, rec
}

func mrrAtK(gold, retrieved []string, k int) float64 {
	gset := toSet(gold)
	for i, id := range retrieved {
		if i >= k {
			break
		}
		if gset[id] {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// ndcgAtK scores binary relevance with a log2 discount
func ndcgAtK(gold, retrieved []string, k int) float64 {
	gset := toSet(gold)
	var dcg float64
	for i, id := range retrieved {
		if i >= k {
			break
		}
		if gset[id] {
			dcg += 1.0 / math.Log2(float64(i)+2)
		}
	}
	idealHits := len(gset)
	if idealHits > k {
		idealHits = k
	}
	var idcg float64
	for i := 0; i < idealHits; i++ {
		idcg += 1.0 / math.Log2(float64(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// calibrationError bins labeled samples by predicted risk and averages
// |predicted risk - observed error rate| weighted by bin size. Bins
// with too few samples are skipped; returns the bins that counted.
func calibrationError(samples []Sample) (float64, int) {
	type bin struct {
		riskSum float64
		errors  int
		count   int
	}
	bins := make([]bin, calibrationBins)

	for _, s := range samples {
		if !s.Labeled() {
			continue
		}
		idx := int(s.Assessment.Risk * calibrationBins)
		if idx >= calibrationBins {
			idx = calibrationBins - 1
		}
		bins[idx].riskSum += s.Assessment.Risk
		bins[idx].count++
		if normalize(s.Gold) != normalize(s.Pred) {
			bins[idx].errors++
		}
	}

	var weighted float64
	counted := 0
	totalCounted := 0
	for _, b := range bins {
		if b.count < minBinSamples {
			continue
		}
		meanRisk := b.riskSum / float64(b.count)
		errRate := float64(b.errors) / float64(b.count)
		weighted += math.Abs(meanRisk-errRate) * float64(b.count)
		counted++
		totalCounted += b.count
	}
	if totalCounted == 0 {
		return 0, 0
	}
	return weighted / float64(totalCounted), counted
}
