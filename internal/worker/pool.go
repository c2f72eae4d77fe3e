package worker

import (
	"context"
	"sync"
)

// Job is one unit of work, typically a single question to answer
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one executed job
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed set of workers. Results accumulate in
// completion order; callers that need submission order sort afterwards.
type Pool struct {
	workers int
	jobs    chan Job

	mu      sync.Mutex
	results []Result

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a pool with the given number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers: workers,
		jobs:    make(chan Job),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)

			p.mu.Lock()
			p.results = append(p.results, result)
			p.mu.Unlock()
		}
	}
}

// Submit hands a job to the pool. Blocks until a worker is free;
// returns immediately after Shutdown.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the job queue, waits for the workers to drain it and
// returns the accumulated results
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

// Shutdown cancels in-flight work without draining the queue. The pool
// cannot be reused afterwards.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
