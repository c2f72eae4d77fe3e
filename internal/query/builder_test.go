package query

import (
	"testing"

	"github.com/ppiankov/graphgate/internal/model"
)

func TestBuild_KnownIntent(t *testing.T) {
	b := NewBuilder()
	mentions := []model.Mention{
		{Text: "type 2 diabetes", CanonicalID: "D003924", Confidence: 0.9},
	}

	queries := b.Build(mentions, model.IntentTreatment, "What treats type 2 diabetes?")

	if len(queries) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(queries))
	}

	if queries[0].Kind != model.QueryGraph || queries[0].Predicate != "treated_by" {
		t.Errorf("variant 0 should be the intent-specific graph query, got %+v", queries[0])
	}
	if queries[0].SubjectID != "D003924" {
		t.Errorf("expected subject id D003924, got %q", queries[0].SubjectID)
	}

	if queries[1].Kind != model.QueryGraph || queries[1].Predicate != "" {
		t.Errorf("variant 1 should be the generic outgoing-edges query, got %+v", queries[1])
	}

	if queries[2].Kind != model.QueryText {
		t.Errorf("variant 2 should be the text fallback, got %+v", queries[2])
	}
	if queries[2].Text != "What treats type 2 diabetes?" {
		t.Errorf("text fallback should carry the question, got %q", queries[2].Text)
	}

	for i, q := range queries {
		if q.Variant != i {
			t.Errorf("variant %d numbered %d", i, q.Variant)
		}
	}
}

func TestBuild_UnknownIntent(t *testing.T) {
	b := NewBuilder()
	mentions := []model.Mention{{Text: "metformin", CanonicalID: "D008687"}}

	queries := b.Build(mentions, model.IntentUnknown, "Tell me about metformin")

	if len(queries) != 2 {
		t.Fatalf("expected 2 variants for unknown intent, got %d", len(queries))
	}
	if queries[0].Kind != model.QueryGraph || queries[0].Predicate != "" {
		t.Errorf("expected generic graph query first, got %+v", queries[0])
	}
	if queries[1].Kind != model.QueryText {
		t.Errorf("expected text fallback last, got %+v", queries[1])
	}
}

func TestBuild_NoMentions(t *testing.T) {
	b := NewBuilder()

	queries := b.Build(nil, model.IntentTreatment, "  What treats it?  ")

	if len(queries) != 1 {
		t.Fatalf("expected only the text fallback, got %d variants", len(queries))
	}
	if queries[0].Kind != model.QueryText {
		t.Errorf("expected text query, got %+v", queries[0])
	}
	if queries[0].Text != "What treats it?" {
		t.Errorf("expected trimmed question, got %q", queries[0].Text)
	}
}

func TestBuild_SubjectPreference(t *testing.T) {
	b := NewBuilder()

	// Linked beats entity-looking even when it appears later
	mentions := []model.Mention{
		{Text: "Aspirin", Confidence: 0.5},
		{Text: "hypertension", CanonicalID: "D006973", Confidence: 0.9},
	}
	queries := b.Build(mentions, model.IntentTreatment, "Does Aspirin treat hypertension?")
	if queries[0].SubjectID != "D006973" {
		t.Errorf("expected linked mention as subject, got %+v", queries[0])
	}

	// Without any linked mention the entity-looking one wins
	mentions = []model.Mention{
		{Text: "elderly"},
		{Text: "Warfarin"},
	}
	queries = b.Build(mentions, model.IntentTreatment, "Is Warfarin safe for elderly?")
	if queries[0].SubjectText != "Warfarin" {
		t.Errorf("expected entity-looking mention as subject, got %+v", queries[0])
	}
}

func TestBuild_IntentPredicates(t *testing.T) {
	b := NewBuilder()
	mention := []model.Mention{{Text: "aspirin", CanonicalID: "D001241"}}

	tests := []struct {
		intent    model.Intent
		predicate string
	}{
		{model.IntentTreatment, "treated_by"},
		{model.IntentDefinition, "defined_as"},
		{model.IntentMechanism, "mechanism_of_action"},
		{model.IntentAdverseEffect, "has_adverse_effect"},
		{model.IntentContraindication, "contraindicated_in"},
		{model.IntentDose, "recommended_dose"},
		{model.IntentTarget, "targets"},
	}
	for _, tt := range tests {
		queries := b.Build(mention, tt.intent, "q")
		if queries[0].Predicate != tt.predicate {
			t.Errorf("%s: expected predicate %q, got %q", tt.intent, tt.predicate, queries[0].Predicate)
		}
	}
}
