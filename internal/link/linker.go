package link

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/graphgate/internal/model"
)

// maxSpanTokens bounds how many tokens a lexicon lookup may cover
const maxSpanTokens = 4

// LexiconEntry maps a surface form to a canonical ontology identifier
type LexiconEntry struct {
	Surface string // As found in text; matched case-insensitively
	ID      string // Canonical id (e.g., MeSH-style)
	Label   string // Preferred label; defaults to Surface
}

// Lexicon is a case-insensitive surface-form dictionary
type Lexicon map[string]LexiconEntry

// NewLexicon builds a lexicon from entries, keyed by lowercased surface
func NewLexicon(entries []LexiconEntry) Lexicon {
	lex := make(Lexicon, len(entries))
	for _, e := range entries {
		if e.Surface == "" {
			continue
		}
		if e.Label == "" {
			e.Label = e.Surface
		}
		lex[strings.ToLower(e.Surface)] = e
	}
	return lex
}

// Linker turns question text into entity mentions plus an intent tag.
// It never fails: malformed or empty input yields no mentions and
// IntentUnknown.
type Linker struct {
	lexicon Lexicon
}

// NewLinker creates a linker over the given lexicon
func NewLinker(lex Lexicon) *Linker {
	if lex == nil {
		lex = Lexicon{}
	}
	return &Linker{lexicon: lex}
}

// Mentions we never want to treat as a subject
var stopMentions = map[string]bool{
	"what": true, "which": true, "who": true, "where": true, "when": true,
	"why": true, "how": true, "enzyme": true, "drug": true, "medicine": true,
	"do": true, "does": true, "did": true, "is": true, "are": true,
	"was": true, "were": true, "can": true, "could": true, "would": true,
	"should": true, "may": true, "might": true, "will": true, "shall": true,
	"the": true, "for": true, "and": true, "with": true, "this": true, "that": true,
}

// Intent detection patterns, checked in order; first match wins
var intentPatterns = []struct {
	intent model.Intent
	re     *regexp.Regexp
}{
	{model.IntentTreatment, regexp.MustCompile(`(?i)\btreat(s|ed|ment|ments)?\b|\bused for\b|\btherap(y|ies)\b|\bindication(s)?\b`)},
	{model.IntentContraindication, regexp.MustCompile(`(?i)\bcontraindicat(ion|ions|ed)\b|\bavoid in\b`)},
	{model.IntentAdverseEffect, regexp.MustCompile(`(?i)\bside effect(s)?\b|\badverse\b|\btoxicit(y|ies)\b`)},
	{model.IntentDose, regexp.MustCompile(`(?i)\bdos(e|es|age|ing)\b`)},
	{model.IntentMechanism, regexp.MustCompile(`(?i)\bmechanism of action\b|\bacts by\b|\binhibit(s|ing)?\b|\bstimulate(s|ing)?\b`)},
	{model.IntentTarget, regexp.MustCompile(`(?i)\btarget(s)?\b|\bbinds?\b|\breceptor\b`)},
	{model.IntentDefinition, regexp.MustCompile(`(?i)^\s*what (is|are)\b|\bdefine(d)?\b|\bdefinition\b|\bmeaning of\b`)},
}

// Link extracts an ordered, non-overlapping set of mentions and one
// intent from the question text. Canonical-id resolution is attempted
// first; unresolved mentions are kept with lower confidence. Overlaps
// resolve longest-match-wins, tie-broken by higher confidence.
func (l *Linker) Link(text string) ([]model.Mention, model.Intent) {
	intent := detectIntent(text)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, intent
	}

	var candidates []model.Mention

	// Lexicon lookups over sliding token windows, widest first
	for n := maxSpanTokens; n >= 1; n-- {
		for i := 0; i+n <= len(tokens); i++ {
			start, end := tokens[i].start, tokens[i+n-1].end
			surface := text[start:end]
			if entry, ok := l.lexicon[strings.ToLower(surface)]; ok {
				candidates = append(candidates, model.Mention{
					Text:        surface,
					Start:       start,
					End:         end,
					CanonicalID: entry.ID,
					Confidence:  0.9,
				})
			}
		}
	}

	// Unlinked single-token candidates: capitalized or chemical-looking
	for _, tok := range tokens {
		surface := text[tok.start:tok.end]
		if stopMentions[strings.ToLower(surface)] {
			continue
		}
		if len(surface) >= 3 && looksEntityLike(surface) {
			candidates = append(candidates, model.Mention{
				Text:       surface,
				Start:      tok.start,
				End:        tok.end,
				Confidence: 0.5,
			})
		}
	}

	selected := resolveOverlaps(candidates)

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].Start < selected[j].Start
	})
	return selected, intent
}

func detectIntent(text string) model.Intent {
	for _, p := range intentPatterns {
		if p.re.MatchString(text) {
			return p.intent
		}
	}
	return model.IntentUnknown
}

type token struct {
	start int
	end   int
}

// tokenize finds word runs (letters, digits, hyphens, Greek letters)
func tokenize(text string) []token {
	var tokens []token
	inWord := false
	start := 0
	for i, r := range text {
		if isWordRune(r) {
			if !inWord {
				inWord = true
				start = i
			}
			continue
		}
		if inWord {
			tokens = append(tokens, token{start: start, end: i})
			inWord = false
		}
	}
	if inWord {
		tokens = append(tokens, token{start: start, end: len(text)})
	}
	return tokens
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-':
		return true
	case r >= 'α' && r <= 'ω', r >= 'Α' && r <= 'Ω':
		return true
	}
	return false
}

// looksEntityLike reports whether a token resembles a drug, gene or
// chemical name: capitalized, or carrying digits or hyphens
func looksEntityLike(s string) bool {
	if strings.ContainsAny(s, "0123456789-") {
		return true
	}
	first := s[0]
	return first >= 'A' && first <= 'Z'
}

// resolveOverlaps keeps a non-overlapping subset of candidates:
// longest span wins, ties broken by higher confidence, then earlier start
func resolveOverlaps(candidates []model.Mention) []model.Mention {
	sort.SliceStable(candidates, func(i, j int) bool {
		li, lj := candidates[i].End-candidates[i].Start, candidates[j].End-candidates[j].Start
		if li != lj {
			return li > lj
		}
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Start < candidates[j].Start
	})

	var selected []model.Mention
	for _, c := range candidates {
		overlaps := false
		for _, s := range selected {
			if c.Start < s.End && s.Start < c.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			selected = append(selected, c)
		}
	}
	return selected
}
