package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countJob struct {
	executed *int32
	err      error
}

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(ctx context.Context) Result {
	atomic.AddInt32(j.executed, 1)
	return &countResult{err: j.err}
}

type jobFunc func(ctx context.Context) Result

func (f jobFunc) Execute(ctx context.Context) Result { return f(ctx) }

func TestNewPoolClampsWorkers(t *testing.T) {
	for _, n := range []int{0, -3} {
		p := NewPool(n)
		if p.workers != 1 {
			t.Errorf("NewPool(%d) should clamp to 1 worker, got %d", n, p.workers)
		}
	}
	if p := NewPool(5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
}

func TestPoolExecutesAllJobs(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var executed int32
	for i := 0; i < 10; i++ {
		pool.Submit(&countJob{executed: &executed})
	}

	results := pool.Wait()
	if len(results) != 10 {
		t.Errorf("expected 10 results, got %d", len(results))
	}
	if atomic.LoadInt32(&executed) != 10 {
		t.Errorf("expected 10 executions, got %d", executed)
	}
}

func TestPoolCollectsErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var executed int32
	pool.Submit(&countJob{executed: &executed, err: errors.New("boom")})
	pool.Submit(&countJob{executed: &executed})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	var failed int
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly 1 failed result, got %d", failed)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const workers = 2
	pool := NewPool(workers)
	pool.Start()

	var running, peak, executed int32
	job := jobFunc(func(ctx context.Context) Result {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		atomic.AddInt32(&executed, 1)
		return &countResult{}
	})

	for i := 0; i < 8; i++ {
		pool.Submit(job)
	}
	pool.Wait()

	if p := atomic.LoadInt32(&peak); p > workers {
		t.Errorf("expected at most %d concurrent jobs, saw %d", workers, p)
	}
	if atomic.LoadInt32(&executed) != 8 {
		t.Errorf("expected 8 executions, got %d", executed)
	}
}

func TestPoolShutdownStopsAcceptingJobs(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	var executed int32
	finished := make(chan struct{})
	go func() {
		pool.Submit(&countJob{executed: &executed})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked after shutdown")
	}
	if atomic.LoadInt32(&executed) != 0 {
		t.Error("no job should execute after shutdown")
	}
}

func TestPoolShutdownCancelsInFlight(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	var executed int32
	started := make(chan struct{})
	go pool.Submit(jobFunc(func(ctx context.Context) Result {
		close(started)
		select {
		case <-ctx.Done():
			return &countResult{err: ctx.Err()}
		case <-time.After(5 * time.Second):
			atomic.AddInt32(&executed, 1)
			return &countResult{}
		}
	}))

	<-started
	pool.Shutdown()

	if atomic.LoadInt32(&executed) != 0 {
		t.Error("in-flight job should have been cancelled")
	}
}
