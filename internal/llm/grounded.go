package llm

import (
	"context"
	"fmt"
	"strings"
)

// RefusalAnswer is the fixed text emitted when no usable evidence exists
const RefusalAnswer = "Not enough evidence to answer the question based on available sources."

// GroundedProvider is the deterministic, model-free default: it
// stitches the ranked evidence into a cited answer. Useful for
// evaluation runs that must be reproducible and for deployments with no
// model access.
type GroundedProvider struct{}

// NewGroundedProvider creates the deterministic provider
func NewGroundedProvider() *GroundedProvider {
	return &GroundedProvider{}
}

// Name returns the provider name
func (p *GroundedProvider) Name() string {
	return "grounded"
}

// IsAvailable always reports true; there is nothing to reach
func (p *GroundedProvider) IsAvailable(ctx context.Context) bool {
	return true
}

// Generate produces a stitched answer with one cited line per evidence
// item. With no evidence it returns the fixed refusal text; the risk
// gate independently forces an abstain in that case.
func (p *GroundedProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if len(req.Evidence) == 0 {
		return &GenerateResponse{Answer: RefusalAnswer, Model: "grounded"}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the retrieved evidence for %q:", strings.TrimSpace(req.Question))
	var citations []int
	for _, e := range req.Evidence {
		title := e.Title
		if title == "" {
			title = e.SourceID
		}
		fmt.Fprintf(&b, " %s [%d].", title, e.Rank)
		citations = append(citations, e.Rank)
	}

	return &GenerateResponse{
		Answer:    b.String(),
		Citations: citations,
		Model:     "grounded",
	}, nil
}
