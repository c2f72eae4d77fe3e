package query

import (
	"strings"

	"github.com/ppiankov/graphgate/internal/model"
)

// predicateForIntent maps a detected intent to the graph predicate it
// asks about
var predicateForIntent = map[model.Intent]string{
	model.IntentTreatment:        "treated_by",
	model.IntentDefinition:       "defined_as",
	model.IntentMechanism:        "mechanism_of_action",
	model.IntentAdverseEffect:    "has_adverse_effect",
	model.IntentContraindication: "contraindicated_in",
	model.IntentDose:             "recommended_dose",
	model.IntentTarget:           "targets",
}

// Builder maps mentions and intent into priority-ordered query variants
type Builder struct{}

// NewBuilder creates a query builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build returns one or more query variants ordered by priority:
// the intent-specific query first, the generic outgoing-edges fallback
// next, and a text-only fallback last. With no usable mentions only the
// text-only fallback is produced, served downstream by the lexical path.
// Build never fails; it degrades to fewer, looser queries.
func (b *Builder) Build(mentions []model.Mention, intent model.Intent, question string) []model.StructuredQuery {
	subject, ok := pickSubject(mentions)
	if !ok {
		return []model.StructuredQuery{textFallback(intent, question, 0)}
	}

	var queries []model.StructuredQuery
	variant := 0

	if pred, known := predicateForIntent[intent]; known {
		queries = append(queries, model.StructuredQuery{
			Kind:        model.QueryGraph,
			Intent:      intent,
			Variant:     variant,
			SubjectID:   subject.CanonicalID,
			SubjectText: subject.Text,
			Predicate:   pred,
		})
		variant++
	}

	// Generic fallback: all outgoing edges of the subject. Well-formed
	// for any linked mention, including unknown intent.
	queries = append(queries, model.StructuredQuery{
		Kind:        model.QueryGraph,
		Intent:      intent,
		Variant:     variant,
		SubjectID:   subject.CanonicalID,
		SubjectText: subject.Text,
	})
	variant++

	queries = append(queries, textFallback(intent, question, variant))
	return queries
}

func textFallback(intent model.Intent, question string, variant int) model.StructuredQuery {
	return model.StructuredQuery{
		Kind:    model.QueryText,
		Intent:  intent,
		Variant: variant,
		Text:    strings.TrimSpace(question),
	}
}

// pickSubject chooses the best subject mention: linked mentions first,
// then entity-looking surface forms, then anything left. Mention order
// is position order, so earlier wins within a class.
func pickSubject(mentions []model.Mention) (model.Mention, bool) {
	for _, m := range mentions {
		if m.Linked() {
			return m, true
		}
	}
	for _, m := range mentions {
		if strings.ContainsAny(m.Text, "0123456789-") || hasUpper(m.Text) {
			return m, true
		}
	}
	if len(mentions) > 0 {
		return mentions[0], true
	}
	return model.Mention{}, false
}

func hasUpper(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
