package model

// Mention represents a span of question text linked to an entity
type Mention struct {
	Text        string  `json:"text"`                   // Surface form as it appears in the question
	Start       int     `json:"start"`                  // Byte offset of the span start
	End         int     `json:"end"`                    // Byte offset one past the span end
	CanonicalID string  `json:"canonical_id,omitempty"` // Ontology identifier (e.g., MeSH-style); empty when unresolved
	Confidence  float64 `json:"confidence"`             // Linking confidence in [0,1]
}

// Linked reports whether the mention resolved to a canonical identifier
func (m Mention) Linked() bool {
	return m.CanonicalID != ""
}

// Intent categorizes what relation the question is asking about
type Intent string

const (
	IntentTreatment        Intent = "treatment"        // "treatment of", "used for"
	IntentDefinition       Intent = "definition"       // "what is", "define"
	IntentMechanism        Intent = "mechanism"        // "mechanism of action", "acts by"
	IntentAdverseEffect    Intent = "adverse_effect"   // "side effects", "toxicity"
	IntentContraindication Intent = "contraindication" // "contraindicated", "avoid in"
	IntentDose             Intent = "dose"             // "dose", "dosage"
	IntentTarget           Intent = "target"           // "targets", "binds", "receptor"
	IntentUnknown          Intent = "unknown"          // Fallback; always valid, never an error
)

// QueryKind distinguishes graph-pattern queries from text-only fallbacks
type QueryKind string

const (
	QueryGraph QueryKind = "graph" // Executed against the triple store
	QueryText  QueryKind = "text"  // Served only by the lexical path
)

// StructuredQuery is one parameterized query variant, immutable once built
type StructuredQuery struct {
	Kind        QueryKind `json:"kind"`
	Intent      Intent    `json:"intent"`
	Variant     int       `json:"variant"`                // 0 = primary, higher = looser fallback
	SubjectID   string    `json:"subject_id,omitempty"`   // Canonical id of the subject, when linked
	SubjectText string    `json:"subject_text,omitempty"` // Literal label text for subject binding
	Predicate   string    `json:"predicate,omitempty"`    // Empty matches any predicate
	Text        string    `json:"text,omitempty"`         // Raw question text for QueryText variants
}

// Fingerprint returns a stable identity string for caching
func (q StructuredQuery) Fingerprint() string {
	return string(q.Kind) + "|" + string(q.Intent) + "|" + q.SubjectID + "|" + q.SubjectText + "|" + q.Predicate + "|" + q.Text
}
