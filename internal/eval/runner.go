package eval

import (
	"context"
	"sort"
	"strings"

	"github.com/ppiankov/graphgate/internal/metrics"
	"github.com/ppiankov/graphgate/internal/model"
	"github.com/ppiankov/graphgate/internal/pipeline"
	"github.com/ppiankov/graphgate/internal/worker"
)

// Prediction pairs a dataset sample with its pipeline outcome
type Prediction struct {
	Sample Sample           `json:"sample"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Runner answers a dataset concurrently and aggregates metrics
type Runner struct {
	asker   worker.Asker
	limiter *worker.Limiter
	name    string // Provider name used as the rate-limit key
	workers int
	topK    int
}

// NewRunner creates an evaluation runner. limiter may be nil when the
// generation provider needs no rate limiting.
func NewRunner(asker worker.Asker, limiter *worker.Limiter, providerName string, workers, topK int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		asker:   asker,
		limiter: limiter,
		name:    providerName,
		workers: workers,
		topK:    topK,
	}
}

// limitedAsker gates each Ask behind the provider rate limiter
type limitedAsker struct {
	asker   worker.Asker
	limiter *worker.Limiter
	name    string
}

func (a *limitedAsker) Ask(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	if err := a.limiter.Wait(ctx, a.name); err != nil {
		return nil, err
	}
	return a.asker.Ask(ctx, req)
}

// Run answers every sample and returns per-question predictions in
// dataset order together with the aggregated metrics snapshot
func (r *Runner) Run(ctx context.Context, samples []Sample) ([]Prediction, model.MetricsSnapshot) {
	asker := r.asker
	if r.limiter != nil {
		asker = &limitedAsker{asker: r.asker, limiter: r.limiter, name: r.name}
	}

	requests := make([]pipeline.Request, len(samples))
	byID := make(map[string]Sample, len(samples))
	order := make(map[string]int, len(samples))
	for i, s := range samples {
		requests[i] = pipeline.Request{ID: s.ID, Question: s.Question, Context: s.Context}
		byID[s.ID] = s
		order[s.ID] = i
	}

	batch := worker.NewBatchProcessor(asker, r.workers)
	results := batch.Process(ctx, requests)

	predictions := make([]Prediction, 0, len(results))
	for _, res := range results {
		p := Prediction{Sample: byID[res.Request.ID], Result: res.Result}
		if res.Error != nil {
			p.Error = res.Error.Error()
		}
		predictions = append(predictions, p)
	}
	// Pool results arrive in completion order
	sort.Slice(predictions, func(i, j int) bool {
		return order[predictions[i].Sample.ID] < order[predictions[j].Sample.ID]
	})

	return predictions, r.compute(predictions)
}

func (r *Runner) compute(predictions []Prediction) model.MetricsSnapshot {
	msamples := make([]metrics.Sample, 0, len(predictions))
	for _, p := range predictions {
		ms := metrics.Sample{
			Gold:    p.Sample.Gold,
			GoldIDs: p.Sample.GoldIDs,
		}
		if p.Result != nil {
			ms.Evidence = p.Result.Evidence
			ms.Verdicts = p.Result.Verdicts
			ms.Assessment = p.Result.Assessment
			if !p.Result.Abstained {
				ms.Pred = Decide(p.Result.Answer)
			}
		}
		msamples = append(msamples, ms)
	}
	return metrics.Compute(msamples, r.topK)
}

// Decide maps a free-text answer onto a yes/no decision by its first
// word. Anything else yields an empty decision.
func Decide(answer string) string {
	fields := strings.Fields(strings.ToLower(answer))
	if len(fields) == 0 {
		return ""
	}
	first := strings.Trim(fields[0], ".,:;!?")
	switch first {
	case "yes", "no":
		return first
	}
	return ""
}
