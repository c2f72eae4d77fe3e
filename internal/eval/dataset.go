// Package eval runs labeled question sets through the pipeline and
// reports retrieval and faithfulness metrics.
package eval

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Sample is one labeled question from an evaluation dataset
type Sample struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Gold     string   `json:"gold,omitempty"`     // yes/no gold decision
	GoldIDs  []string `json:"gold_ids,omitempty"` // Relevant source ids
	Context  string   `json:"context,omitempty"`  // Free-text context for the question
}

// LoadDataset reads samples from a JSONL file, one object per line.
// Blank lines and lines starting with # are skipped.
func LoadDataset(path string) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = file.Close() }()

	var samples []Sample
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var s Sample
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", lineNo, err)
		}
		if s.Question == "" {
			return nil, fmt.Errorf("dataset line %d: question is required", lineNo)
		}
		if s.ID == "" {
			s.ID = fmt.Sprintf("s%d", lineNo)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan dataset: %w", err)
	}
	return samples, nil
}
