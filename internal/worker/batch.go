package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/graphgate/internal/pipeline"
)

// Asker defines the interface for answering a single question
type Asker interface {
	Ask(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// AskJob represents one question to answer
type AskJob struct {
	Request pipeline.Request
	Asker   Asker
}

// Execute executes the ask job
func (j *AskJob) Execute(ctx context.Context) Result {
	result, err := j.Asker.Ask(ctx, j.Request)
	return &AskResult{
		Request: j.Request,
		Result:  result,
		Error:   err,
	}
}

// AskResult represents the outcome of an ask job
type AskResult struct {
	Request pipeline.Request
	Result  *pipeline.Result
	Error   error
}

// GetError returns the error from the ask result
func (r *AskResult) GetError() error {
	return r.Error
}

// BatchProcessor answers multiple questions concurrently
type BatchProcessor struct {
	asker       Asker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(asker Asker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		asker:       asker,
		concurrency: concurrency,
	}
}

// Process answers multiple questions concurrently
func (b *BatchProcessor) Process(ctx context.Context, requests []pipeline.Request) []*AskResult {
	if len(requests) == 0 {
		return []*AskResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, req := range requests {
		pool.Submit(&AskJob{Request: req, Asker: b.asker})
	}

	results := pool.Wait()

	askResults := make([]*AskResult, len(results))
	for i, result := range results {
		askResults[i] = result.(*AskResult)
	}

	return askResults
}

// ProcessFile reads questions from a file and answers them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AskResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	requests := make([]pipeline.Request, len(questions))
	for i, q := range questions {
		requests[i] = pipeline.Request{ID: fmt.Sprintf("q%d", i+1), Question: q}
	}

	return b.Process(ctx, requests), nil
}

// ReadQuestionsFromFile reads questions from a file (one per line)
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
