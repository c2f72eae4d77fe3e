// Package risk turns verifier output and retrieval quality into a
// calibrated abstain/answer decision.
package risk

import (
	"github.com/ppiankov/graphgate/internal/model"
)

// Gate computes a scalar risk score and compares it against tau. The
// threshold and weights are pure parameters: supplied externally,
// validated at configuration time, never learned or mutated here.
type Gate struct {
	cfg model.RiskConfig
}

// NewGate creates a risk gate from validated configuration
func NewGate(cfg model.RiskConfig) *Gate {
	return &Gate{cfg: cfg}
}

// Assess produces the terminal decision for one question. The score is
// a monotonic combination: a higher contradicted/not-enough-info
// fraction raises risk, stronger evidence lowers it. Zero claims, zero
// evidence and retrieval failures force an abstain independent of tau.
func (g *Gate) Assess(inputs model.RiskInputs) model.RiskAssessment {
	a := model.RiskAssessment{
		Threshold: g.cfg.Threshold,
		Inputs:    inputs,
	}

	switch {
	case inputs.RetrievalFailed:
		a.Risk = 1.0
		a.Abstain = true
		a.Forced = model.AbstainRetrievalError
		return a
	case inputs.EvidenceCount == 0:
		a.Risk = 1.0
		a.Abstain = true
		a.Forced = model.AbstainNoEvidence
		return a
	case inputs.Verdicts.Total() == 0:
		a.Risk = 1.0
		a.Abstain = true
		a.Forced = model.AbstainNoClaims
		return a
	}

	a.Risk = g.score(inputs)
	a.Abstain = a.Risk > g.cfg.Threshold
	return a
}

func (g *Gate) score(inputs model.RiskInputs) float64 {
	total := inputs.Verdicts.Total()
	unsupported := float64(inputs.Verdicts.NotEnoughInfo+inputs.Verdicts.Contradicted) / float64(total)

	// Evidence strength mixes the top-1 and mean unified scores equally
	strength := (inputs.TopScore + inputs.MeanScore) / 2

	wv, we, wc := g.cfg.VerdictWeight, g.cfg.EvidenceWeight, g.cfg.ConfidenceWeight
	if !inputs.HasConfidence {
		wc = 0
	}
	weightSum := wv + we + wc
	if weightSum == 0 {
		// Validation rejects all-zero weights; this only happens when
		// confidence was the sole weighted term and is absent
		return unsupported
	}

	score := wv*unsupported + we*(1-strength) + wc*(1-inputs.Confidence)
	return clamp01(score / weightSum)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
