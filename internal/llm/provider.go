package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/ppiankov/graphgate/internal/model"
)

// Provider defines the interface for the generation collaborator. The
// pipeline hands it ranked evidence and a question; it returns answer
// text with optional inline [n] citation markers referencing evidence
// ranks.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces an answer grounded in the supplied evidence
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for answer generation
type GenerateRequest struct {
	// Question is the (possibly context-enriched) question text
	Question string

	// Evidence is the ranked evidence for the question, read-only.
	// Citation markers in the answer must reference these ranks.
	Evidence model.RankedEvidence

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the generated answer
type GenerateResponse struct {
	// Answer is the generated answer text, possibly carrying [n] markers
	Answer string

	// Citations are the evidence ranks the answer actually cited
	Citations []int

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds generation provider configuration
type Config struct {
	// Provider name: "grounded", "openai", "ollama", "anthropic"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictCitations rejects answers citing ranks outside the evidence
	StrictCitations bool

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:        "grounded",
		Timeout:         30,
		StrictCitations: true,
		MaxTokens:       1000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:        cfg.Provider,
		Model:           cfg.Model,
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		Timeout:         cfg.Timeout,
		StrictCitations: true,
		MaxTokens:       cfg.MaxTokens,
	}
}

// BuildPrompt constructs the default generation prompt with the
// evidence allowlist inlined
func BuildPrompt(question string, evidence model.RankedEvidence) string {
	prompt := `Answer the question using ONLY the numbered evidence below.

RULES:
1. Cite evidence with inline markers like [1] or [2] after each statement they support.
2. Do not use any knowledge beyond the listed evidence.
3. If the evidence is insufficient, say so explicitly instead of guessing.

Evidence:
`
	if len(evidence) == 0 {
		prompt += "(none)\n"
	}
	for _, e := range evidence {
		prompt += fmt.Sprintf("[%d] %s\n", e.Rank, e.Payload())
	}
	prompt += fmt.Sprintf("\nQuestion: %s\n\nAnswer in 2-4 sentences.", question)
	return prompt
}

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// extractCitations pulls the [n] markers from answer text, deduplicated
// in order of first appearance
func extractCitations(text string) []int {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[int]bool)
	var ranks []int
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		ranks = append(ranks, n)
	}
	return ranks
}

// checkCitations rejects markers that reference ranks outside the
// evidence list, so a leaked citation is an error instead of a silent
// hallucination
func checkCitations(ranks []int, evidence model.RankedEvidence) error {
	for _, n := range ranks {
		if n < 1 || n > len(evidence) {
			return fmt.Errorf("citation leak: answer cited evidence [%d] outside the %d supplied items", n, len(evidence))
		}
	}
	return nil
}
