// Package pipeline wires question enrichment, entity linking, retrieval,
// generation, verification and risk gating into a single Ask call.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/graphgate/internal/cache"
	"github.com/ppiankov/graphgate/internal/evidence"
	"github.com/ppiankov/graphgate/internal/extract"
	"github.com/ppiankov/graphgate/internal/link"
	"github.com/ppiankov/graphgate/internal/llm"
	"github.com/ppiankov/graphgate/internal/model"
	"github.com/ppiankov/graphgate/internal/patient"
	"github.com/ppiankov/graphgate/internal/query"
	"github.com/ppiankov/graphgate/internal/retrieve"
	"github.com/ppiankov/graphgate/internal/risk"
	"github.com/ppiankov/graphgate/internal/store"
	"github.com/ppiankov/graphgate/internal/verify"
)

// Request is one question to answer
type Request struct {
	ID        string `json:"id,omitempty"`
	Question  string `json:"question"`
	PatientID string `json:"patient_id,omitempty"`
	Context   string `json:"context,omitempty"` // Free-text context prepended to the question
}

// Result is the complete outcome for one question
type Result struct {
	Request    Request              `json:"request"`
	Answer     string               `json:"answer"`
	Abstained  bool                 `json:"abstained"`
	Mentions   []model.Mention      `json:"mentions,omitempty"`
	Intent     model.Intent         `json:"intent"`
	Evidence   model.RankedEvidence `json:"evidence,omitempty"`
	Verdicts   []model.ClaimVerdict `json:"verdicts,omitempty"`
	Assessment model.RiskAssessment `json:"assessment"`
	Elapsed    time.Duration        `json:"elapsed_ns"`
}

// HistorySource supplies per-patient context text
type HistorySource interface {
	History(ctx context.Context, patientID string) (string, error)
}

// Pipeline orchestrates the complete answer process
type Pipeline struct {
	rewriter     llm.Rewriter
	linker       *link.Linker
	builder      *query.Builder
	orchestrator *retrieve.Orchestrator
	merger       *evidence.Merger
	provider     llm.Provider
	extractor    *extract.ClaimExtractor
	verifier     *verify.Verifier
	gate         *risk.Gate
	history      HistorySource
	config       *model.Config

	store    *store.Store
	patients *patient.Store
}

// NewPipeline builds a pipeline from configuration, opening the triple
// store and, when configured, the patient store
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	labels, err := st.Labels(context.Background())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	entries := make([]link.LexiconEntry, len(labels))
	for i, l := range labels {
		entries[i] = link.LexiconEntry{Surface: l.Label, ID: l.ID}
	}

	c, err := cache.FromConfig(cfg.Cache)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init cache: %w", err)
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init provider: %w", err)
	}

	var rewriter llm.Rewriter = llm.StaticRewriter{}
	if cfg.LLM.RewriteQueries {
		rewriter = llm.NewProviderRewriter(provider)
	}

	var patients *patient.Store
	var history HistorySource
	if cfg.Patient.Path != "" {
		patients, err = patient.Open(cfg.Patient.Path)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("open patient store: %w", err)
		}
		history = patients
	}

	graph := retrieve.NewGraphRetriever(st, c, cfg.Retrieval.UnionVariants, cfg.Retrieval.Timeout)
	lexical := retrieve.NewLexicalRetriever(st, c, cfg.Retrieval.Timeout)

	return &Pipeline{
		rewriter:     rewriter,
		linker:       link.NewLinker(link.NewLexicon(entries)),
		builder:      query.NewBuilder(),
		orchestrator: retrieve.NewOrchestrator(graph, lexical, cfg.Retrieval.MaxPerVariant, cfg.Retrieval.MinEvidence),
		merger:       evidence.NewMerger(cfg.Retrieval.TopK),
		provider:     provider,
		extractor:    extract.NewClaimExtractor(),
		verifier:     verify.NewVerifier(cfg.Verify.MinOverlap, cfg.Concurrency.VerifyWorkers),
		gate:         risk.NewGate(cfg.Risk),
		history:      history,
		config:       cfg,
		store:        st,
		patients:     patients,
	}, nil
}

// New assembles a pipeline from pre-built components, for callers that
// manage their own stores and collaborators
func New(cfg *model.Config, linker *link.Linker, orch *retrieve.Orchestrator, provider llm.Provider, rewriter llm.Rewriter, history HistorySource) *Pipeline {
	if rewriter == nil {
		rewriter = llm.StaticRewriter{}
	}
	return &Pipeline{
		rewriter:     rewriter,
		linker:       linker,
		builder:      query.NewBuilder(),
		orchestrator: orch,
		merger:       evidence.NewMerger(cfg.Retrieval.TopK),
		provider:     provider,
		extractor:    extract.NewClaimExtractor(),
		verifier:     verify.NewVerifier(cfg.Verify.MinOverlap, cfg.Concurrency.VerifyWorkers),
		gate:         risk.NewGate(cfg.Risk),
		history:      history,
		config:       cfg,
	}
}

// Close releases the stores held by the pipeline
func (p *Pipeline) Close() error {
	var first error
	if p.patients != nil {
		if err := p.patients.Close(); err != nil {
			first = err
		}
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Ask answers a single question end to end. A retrieval-layer failure
// returns both an error and a well-formed forced-abstain result, so
// batch callers can keep uniform records.
func (p *Pipeline) Ask(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()

	question, err := p.enrich(ctx, req)
	if err != nil {
		return nil, err
	}

	mentions, intent := p.linker.Link(question)
	queries := p.builder.Build(mentions, intent, question)

	res := &Result{
		Request:  req,
		Mentions: mentions,
		Intent:   intent,
	}

	retrieved := p.orchestrator.Run(ctx, queries)
	if retrieved.Failed() {
		res.Answer = llm.RefusalAnswer
		res.Abstained = true
		res.Assessment = p.gate.Assess(model.RiskInputs{RetrievalFailed: true})
		res.Elapsed = time.Since(started)
		return res, fmt.Errorf("retrieve evidence: %w", retrieved.Err)
	}

	ranked := p.merger.Merge(retrieved.Graph, retrieved.Lexical)
	res.Evidence = ranked

	if len(ranked) == 0 {
		res.Answer = llm.RefusalAnswer
		res.Abstained = true
		res.Assessment = p.gate.Assess(model.RiskInputs{EvidenceCount: 0})
		res.Elapsed = time.Since(started)
		return res, nil
	}

	gen, err := p.provider.Generate(ctx, llm.GenerateRequest{
		Question:  question,
		Evidence:  ranked,
		Model:     p.config.LLM.Model,
		MaxTokens: p.config.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	claims := p.extractor.Extract(gen.Answer)
	verdicts := p.verifier.VerifyAll(ctx, claims, ranked)
	res.Verdicts = verdicts

	res.Assessment = p.gate.Assess(model.RiskInputs{
		Verdicts:      model.CountVerdicts(verdicts),
		TopScore:      ranked.TopScore(),
		MeanScore:     ranked.MeanScore(),
		EvidenceCount: len(ranked),
	})

	if res.Assessment.Abstain {
		res.Answer = llm.RefusalAnswer
		res.Abstained = true
	} else {
		res.Answer = gen.Answer
	}
	res.Elapsed = time.Since(started)
	return res, nil
}

// enrich prepends patient history or explicit context to the question
func (p *Pipeline) enrich(ctx context.Context, req Request) (string, error) {
	contextBlock := req.Context
	if req.PatientID != "" && p.history != nil {
		history, err := p.history.History(ctx, req.PatientID)
		if err != nil {
			return "", fmt.Errorf("patient history: %w", err)
		}
		if history != "" {
			if contextBlock != "" {
				contextBlock = history + "\n" + contextBlock
			} else {
				contextBlock = history
			}
		}
	}
	if contextBlock == "" {
		return req.Question, nil
	}
	return p.rewriter.Rewrite(ctx, req.Question, contextBlock)
}
