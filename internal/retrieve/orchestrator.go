package retrieve

import (
	"context"

	"github.com/ppiankov/graphgate/internal/model"
)

// Result is the joined output of both retrieval paths for one question.
// Err marks a retrieval-layer failure (store unreachable, timeout),
// distinct from legitimately finding nothing.
type Result struct {
	Graph        []model.EvidenceItem
	Lexical      []model.EvidenceItem
	LexicalTried bool
	Err          error
}

// Failed reports whether retrieval could not search at all
func (r Result) Failed() bool {
	return r.Err != nil
}

// Orchestrator runs the graph path and triggers the lexical fallback
// when the graph union stays below the minimum evidence count. When the
// lexical path is not triggered it contributes an empty result
// deterministically; this is a join, not a race.
type Orchestrator struct {
	graph       *GraphRetriever
	lexical     *LexicalRetriever
	cap         int
	minEvidence int
}

// NewOrchestrator creates the retrieval orchestrator
func NewOrchestrator(graph *GraphRetriever, lexical *LexicalRetriever, cap, minEvidence int) *Orchestrator {
	return &Orchestrator{graph: graph, lexical: lexical, cap: cap, minEvidence: minEvidence}
}

// Run retrieves evidence for the query variants. The graph path runs
// first as its own suspend point; the lexical path is invoked only when
// the graph result is below the configured minimum. Failures from
// either path are carried in Result.Err rather than silently dropped.
func (o *Orchestrator) Run(ctx context.Context, queries []model.StructuredQuery) Result {
	type graphOut struct {
		items []model.EvidenceItem
		err   error
	}

	graphCh := make(chan graphOut, 1)
	go func() {
		items, err := o.graph.Retrieve(ctx, queries, o.cap)
		graphCh <- graphOut{items: items, err: err}
	}()

	g := <-graphCh
	if g.err != nil {
		return Result{Err: g.err}
	}

	res := Result{Graph: g.items}
	if len(g.items) >= o.minEvidence && len(g.items) > 0 {
		return res
	}

	res.LexicalTried = true
	lexItems, err := o.lexical.Retrieve(ctx, queries, o.cap)
	if err != nil {
		res.Err = err
		return res
	}
	res.Lexical = lexItems
	return res
}
