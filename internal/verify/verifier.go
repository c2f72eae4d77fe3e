// Package verify checks answer claims against ranked evidence.
package verify

import (
	"context"
	"sync"

	"github.com/ppiankov/graphgate/internal/model"
	"github.com/ppiankov/graphgate/internal/textutil"
)

// Verifier judges claims by content-word overlap with evidence payloads
type Verifier struct {
	minOverlap int
	maxWorkers int
}

// NewVerifier creates a verifier. minOverlap is the number of shared
// content words required to call a claim supported.
func NewVerifier(minOverlap, maxWorkers int) *Verifier {
	if minOverlap <= 0 {
		minOverlap = 3
	}
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	return &Verifier{minOverlap: minOverlap, maxWorkers: maxWorkers}
}

// Verify judges one claim against the ranked evidence. A claim is
// supported when its overlap with any item meets the threshold; the ids
// of all such items are attached. Anything short of support degrades to
// not-enough-info, never to supported. Contradicted is reserved: this
// judge carries no polarity detector and never emits it.
func (v *Verifier) Verify(claim model.Claim, ev model.RankedEvidence) model.ClaimVerdict {
	claimWords := textutil.WordSet(claim.Text)
	if len(claimWords) == 0 {
		return model.ClaimVerdict{Claim: claim, Verdict: model.VerdictNotEnoughInfo}
	}

	var supporting []string
	for _, item := range ev {
		overlap := textutil.Overlap(claimWords, textutil.WordSet(item.Payload()))
		if overlap >= v.minOverlap {
			supporting = append(supporting, item.SourceID)
		}
	}

	if len(supporting) > 0 {
		return model.ClaimVerdict{Claim: claim, Verdict: model.VerdictSupported, Evidence: supporting}
	}
	return model.ClaimVerdict{Claim: claim, Verdict: model.VerdictNotEnoughInfo}
}

// VerifyAll judges every claim concurrently. Claims are independent, so
// verdicts never depend on each other and the output order matches the
// input order. A started verification runs to completion; ctx only
// bounds how many get started.
func (v *Verifier) VerifyAll(ctx context.Context, claims []model.Claim, ev model.RankedEvidence) []model.ClaimVerdict {
	if len(claims) == 0 {
		return nil
	}

	verdicts := make([]model.ClaimVerdict, len(claims))
	semaphore := make(chan struct{}, v.maxWorkers)
	var wg sync.WaitGroup

	for i, c := range claims {
		select {
		case <-ctx.Done():
			// Unstarted claims still need a defined verdict: fail
			// toward caution
			verdicts[i] = model.ClaimVerdict{Claim: c, Verdict: model.VerdictNotEnoughInfo}
			continue
		default:
		}

		wg.Add(1)
		go func(i int, c model.Claim) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			verdicts[i] = v.Verify(c, ev)
		}(i, c)
	}

	wg.Wait()
	return verdicts
}
