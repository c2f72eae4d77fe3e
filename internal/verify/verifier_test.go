package verify

import (
	"context"
	"testing"

	"github.com/ppiankov/graphgate/internal/model"
)

func rankedEvidence() model.RankedEvidence {
	return model.RankedEvidence{
		{
			EvidenceItem: model.EvidenceItem{
				SourceID: "d001",
				Origin:   model.OriginGraph,
				Title:    "Insulin therapy",
				Snippet:  "Insulin treats type 2 diabetes effectively",
			},
			Score: 1.0,
			Rank:  1,
		},
		{
			EvidenceItem: model.EvidenceItem{
				SourceID: "d002",
				Origin:   model.OriginLexical,
				Title:    "Exercise guidance",
				Snippet:  "Regular exercise improves glycemic control",
			},
			Score: 0.7,
			Rank:  2,
		},
	}
}

func TestVerify_Supported(t *testing.T) {
	v := NewVerifier(3, 4)
	claim := model.Claim{Text: "Insulin treats type 2 diabetes.", Index: 0}

	verdict := v.Verify(claim, rankedEvidence())

	if verdict.Verdict != model.VerdictSupported {
		t.Fatalf("expected supported, got %s", verdict.Verdict)
	}
	if len(verdict.Evidence) != 1 || verdict.Evidence[0] != "d001" {
		t.Errorf("expected supporting id d001, got %v", verdict.Evidence)
	}
}

func TestVerify_NotEnoughInfo(t *testing.T) {
	v := NewVerifier(3, 4)
	claim := model.Claim{Text: "Aspirin prevents migraines completely."}

	verdict := v.Verify(claim, rankedEvidence())

	if verdict.Verdict != model.VerdictNotEnoughInfo {
		t.Errorf("expected not_enough_info, got %s", verdict.Verdict)
	}
	if len(verdict.Evidence) != 0 {
		t.Errorf("unsupported claim should carry no evidence ids, got %v", verdict.Evidence)
	}
}

func TestVerify_NeverContradicted(t *testing.T) {
	v := NewVerifier(3, 4)
	// Opposite polarity but high overlap still judges supported, and
	// anything below threshold judges not_enough_info
	claims := []model.Claim{
		{Text: "Insulin never treats type 2 diabetes."},
		{Text: "Completely unrelated statement about astronomy."},
		{Text: ""},
	}
	for _, c := range claims {
		if got := v.Verify(c, rankedEvidence()).Verdict; got == model.VerdictContradicted {
			t.Errorf("%q: overlap judge must never emit contradicted", c.Text)
		}
	}
}

func TestVerify_EmptyEvidence(t *testing.T) {
	v := NewVerifier(3, 4)
	verdict := v.Verify(model.Claim{Text: "Insulin treats diabetes."}, nil)
	if verdict.Verdict != model.VerdictNotEnoughInfo {
		t.Errorf("expected not_enough_info with no evidence, got %s", verdict.Verdict)
	}
}

func TestVerify_MultipleSupportingItems(t *testing.T) {
	v := NewVerifier(2, 4)
	ev := model.RankedEvidence{
		{EvidenceItem: model.EvidenceItem{SourceID: "a", Snippet: "metformin lowers glucose"}, Score: 1, Rank: 1},
		{EvidenceItem: model.EvidenceItem{SourceID: "b", Snippet: "glucose is lowered by metformin"}, Score: 0.5, Rank: 2},
	}
	verdict := v.Verify(model.Claim{Text: "Metformin lowers glucose levels."}, ev)

	if verdict.Verdict != model.VerdictSupported {
		t.Fatalf("expected supported, got %s", verdict.Verdict)
	}
	if len(verdict.Evidence) != 2 {
		t.Errorf("expected both supporting ids attached, got %v", verdict.Evidence)
	}
}

func TestVerifyAll_OrderPreserved(t *testing.T) {
	v := NewVerifier(3, 2)
	claims := []model.Claim{
		{Text: "Insulin treats type 2 diabetes.", Index: 0},
		{Text: "Nothing relevant here at all.", Index: 1},
		{Text: "Regular exercise improves glycemic control.", Index: 2},
	}

	verdicts := v.VerifyAll(context.Background(), claims, rankedEvidence())

	if len(verdicts) != len(claims) {
		t.Fatalf("expected %d verdicts, got %d", len(claims), len(verdicts))
	}
	for i, verdict := range verdicts {
		if verdict.Claim.Index != i {
			t.Errorf("verdict %d carries claim index %d", i, verdict.Claim.Index)
		}
	}
	if verdicts[0].Verdict != model.VerdictSupported {
		t.Errorf("claim 0 should be supported, got %s", verdicts[0].Verdict)
	}
	if verdicts[1].Verdict != model.VerdictNotEnoughInfo {
		t.Errorf("claim 1 should be not_enough_info, got %s", verdicts[1].Verdict)
	}
	if verdicts[2].Verdict != model.VerdictSupported {
		t.Errorf("claim 2 should be supported, got %s", verdicts[2].Verdict)
	}
}

func TestVerifyAll_MatchesSequential(t *testing.T) {
	v := NewVerifier(3, 4)
	claims := []model.Claim{
		{Text: "Insulin treats type 2 diabetes.", Index: 0},
		{Text: "Exercise improves glycemic control.", Index: 1},
	}
	ev := rankedEvidence()

	parallel := v.VerifyAll(context.Background(), claims, ev)
	for i, c := range claims {
		sequential := v.Verify(c, ev)
		if parallel[i].Verdict != sequential.Verdict {
			t.Errorf("claim %d: parallel %s differs from sequential %s", i, parallel[i].Verdict, sequential.Verdict)
		}
	}
}

func TestVerifyAll_CancelledContext(t *testing.T) {
	v := NewVerifier(3, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	claims := []model.Claim{
		{Text: "Insulin treats type 2 diabetes.", Index: 0},
		{Text: "Exercise improves glycemic control.", Index: 1},
	}
	verdicts := v.VerifyAll(ctx, claims, rankedEvidence())

	if len(verdicts) != len(claims) {
		t.Fatalf("cancelled run must still yield a verdict per claim, got %d", len(verdicts))
	}
	for _, verdict := range verdicts {
		if verdict.Verdict != model.VerdictNotEnoughInfo {
			t.Errorf("unstarted claims must fail toward caution, got %s", verdict.Verdict)
		}
	}
}

func TestVerifyAll_Empty(t *testing.T) {
	v := NewVerifier(3, 4)
	if verdicts := v.VerifyAll(context.Background(), nil, rankedEvidence()); verdicts != nil {
		t.Errorf("expected nil for no claims, got %v", verdicts)
	}
}
