// Package extract splits a generated answer into atomic claims.
package extract

import (
	"strings"

	"github.com/ppiankov/graphgate/internal/model"
)

// ClaimExtractor segments answer text into sentence-like claims
type ClaimExtractor struct{}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor() *ClaimExtractor {
	return &ClaimExtractor{}
}

// Extract partitions the answer into an ordered claim sequence. Every
// non-whitespace character of the answer belongs to exactly one claim's
// extent; a single-sentence answer yields exactly one claim and an
// empty answer yields none. Never fails.
func (e *ClaimExtractor) Extract(answer string) []model.Claim {
	if strings.TrimSpace(answer) == "" {
		return nil
	}

	var claims []model.Claim
	segStart := 0
	i := 0
	for i < len(answer) {
		c := answer[i]
		if c == '.' || c == '!' || c == '?' {
			// Consume the terminator run, then cut if a boundary follows
			j := i + 1
			for j < len(answer) && (answer[j] == '.' || answer[j] == '!' || answer[j] == '?') {
				j++
			}
			if j >= len(answer) || answer[j] == ' ' || answer[j] == '\t' || answer[j] == '\n' {
				if claim, ok := makeClaim(answer, segStart, j, len(claims)); ok {
					claims = append(claims, claim)
				}
				segStart = j
			}
			i = j
			continue
		}
		i++
	}

	if claim, ok := makeClaim(answer, segStart, len(answer), len(claims)); ok {
		claims = append(claims, claim)
	}
	return claims
}

// makeClaim trims the segment and records the trimmed extent. Segments
// that are all whitespace produce no claim.
func makeClaim(answer string, start, end, index int) (model.Claim, bool) {
	seg := answer[start:end]
	trimmed := strings.TrimSpace(seg)
	if trimmed == "" {
		return model.Claim{}, false
	}
	lead := strings.Index(seg, trimmed)
	return model.Claim{
		Text:  trimmed,
		Index: index,
		Start: start + lead,
		End:   start + lead + len(trimmed),
	}, true
}
