package model

// Claim represents one factual assertion extracted from an answer.
// Claims partition the answer text: every non-whitespace character
// belongs to exactly one claim's extent.
type Claim struct {
	Text  string `json:"text"`  // The claim text itself, trimmed
	Index int    `json:"index"` // Position in the claim sequence (0-based)
	Start int    `json:"start"` // Byte offset of the extent in the answer
	End   int    `json:"end"`   // Byte offset one past the extent end
}

// Verdict classifies a claim against the ranked evidence
type Verdict string

const (
	VerdictSupported     Verdict = "supported"
	VerdictNotEnoughInfo Verdict = "not_enough_info"
	// VerdictContradicted is reserved for claims whose polarity is the
	// opposite of matching evidence. The current overlap judge never
	// emits it; non-support degrades to VerdictNotEnoughInfo.
	VerdictContradicted Verdict = "contradicted"
)

// ClaimVerdict attaches a verdict and its supporting evidence to a claim
type ClaimVerdict struct {
	Claim    Claim    `json:"claim"`
	Verdict  Verdict  `json:"verdict"`
	Evidence []string `json:"evidence,omitempty"` // Supporting EvidenceItem source ids
}

// VerdictCounts tallies a verdict distribution
type VerdictCounts struct {
	Supported     int `json:"supported"`
	NotEnoughInfo int `json:"not_enough_info"`
	Contradicted  int `json:"contradicted"`
}

// Total returns the number of claims counted
func (v VerdictCounts) Total() int {
	return v.Supported + v.NotEnoughInfo + v.Contradicted
}

// CountVerdicts tallies the distribution over a verdict list
func CountVerdicts(verdicts []ClaimVerdict) VerdictCounts {
	var c VerdictCounts
	for _, v := range verdicts {
		switch v.Verdict {
		case VerdictSupported:
			c.Supported++
		case VerdictContradicted:
			c.Contradicted++
		default:
			c.NotEnoughInfo++
		}
	}
	return c
}
