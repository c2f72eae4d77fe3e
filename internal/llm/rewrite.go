package llm

import (
	"context"
	"fmt"
	"strings"
)

// Rewriter enriches a question with free-text context before
// tokenization. Never required for correctness: the static merge is a
// valid default and the identity behavior applies when context is empty.
type Rewriter interface {
	Rewrite(ctx context.Context, question, contextBlock string) (string, error)
}

// StaticRewriter merges the context block in front of the question
// without interpreting its internal structure
type StaticRewriter struct{}

// Rewrite returns the question unchanged when context is empty,
// otherwise the context followed by the question
func (StaticRewriter) Rewrite(_ context.Context, question, contextBlock string) (string, error) {
	contextBlock = strings.TrimSpace(contextBlock)
	if contextBlock == "" {
		return question, nil
	}
	return contextBlock + "\n\n" + question, nil
}

// ProviderRewriter asks a generation provider to fold the context into
// a standalone question. Falls back to the static merge on any error so
// enrichment can never break a question.
type ProviderRewriter struct {
	provider Provider
	static   StaticRewriter
}

// NewProviderRewriter creates an LLM-backed rewriter
func NewProviderRewriter(provider Provider) *ProviderRewriter {
	return &ProviderRewriter{provider: provider}
}

// Rewrite produces an enriched question
func (r *ProviderRewriter) Rewrite(ctx context.Context, question, contextBlock string) (string, error) {
	contextBlock = strings.TrimSpace(contextBlock)
	if contextBlock == "" {
		return question, nil
	}

	prompt := fmt.Sprintf(`Rewrite the question so it incorporates the relevant details from the context. Return ONLY the rewritten question, nothing else.

Context:
%s

Question: %s`, contextBlock, question)

	resp, err := r.provider.Generate(ctx, GenerateRequest{
		Question: question,
		Prompt:   prompt,
	})
	if err != nil {
		return r.static.Rewrite(ctx, question, contextBlock)
	}

	rewritten := strings.TrimSpace(resp.Answer)
	if rewritten == "" {
		return r.static.Rewrite(ctx, question, contextBlock)
	}
	return rewritten, nil
}
