package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Triple is one ingestable graph edge
type Triple struct {
	SubjectID    string  `json:"subject_id"`
	SubjectLabel string  `json:"subject_label"`
	Predicate    string  `json:"predicate"`
	ObjectID     string  `json:"object_id,omitempty"`
	ObjectLabel  string  `json:"object_label"`
	SourceID     string  `json:"source_id,omitempty"`
	Weight       float64 `json:"weight,omitempty"`
}

// Document is one ingestable text-bearing record (title plus abstract)
type Document struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// InsertTriples stores triples in one transaction and upserts the
// entity labels they reference
func (s *Store) InsertTriples(ctx context.Context, triples []Triple) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	insTriple, err := tx.PrepareContext(ctx,
		`INSERT INTO triples (subject_id, subject_label, predicate, object_id, object_label, source_id, weight)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing triple insert: %w", err)
	}
	defer insTriple.Close()

	insEntity, err := tx.PrepareContext(ctx,
		`INSERT INTO entities (id, label) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET label = excluded.label`)
	if err != nil {
		return fmt.Errorf("preparing entity insert: %w", err)
	}
	defer insEntity.Close()

	for _, t := range triples {
		weight := t.Weight
		if weight == 0 {
			weight = 1.0
		}
		if _, err := insTriple.ExecContext(ctx,
			t.SubjectID, t.SubjectLabel, t.Predicate, t.ObjectID, t.ObjectLabel, t.SourceID, weight); err != nil {
			return fmt.Errorf("inserting triple: %w", err)
		}
		if t.SubjectID != "" && t.SubjectLabel != "" {
			if _, err := insEntity.ExecContext(ctx, t.SubjectID, t.SubjectLabel); err != nil {
				return fmt.Errorf("inserting subject entity: %w", err)
			}
		}
		if t.ObjectID != "" && t.ObjectLabel != "" {
			if _, err := insEntity.ExecContext(ctx, t.ObjectID, t.ObjectLabel); err != nil {
				return fmt.Errorf("inserting object entity: %w", err)
			}
		}
	}

	return tx.Commit()
}

// InsertDocuments stores documents in one transaction, replacing
// existing ids
func (s *Store) InsertDocuments(ctx context.Context, docs []Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ins, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO documents (id, title, abstract) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing document insert: %w", err)
	}
	defer ins.Close()

	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document with empty id")
		}
		if _, err := ins.ExecContext(ctx, d.ID, d.Title, d.Abstract); err != nil {
			return fmt.Errorf("inserting document %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

// LoadTriplesJSONL reads triples from a JSONL file, one object per line
func LoadTriplesJSONL(path string) ([]Triple, error) {
	var triples []Triple
	err := readJSONL(path, func(line []byte) error {
		var t Triple
		if err := json.Unmarshal(line, &t); err != nil {
			return err
		}
		triples = append(triples, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return triples, nil
}

// LoadDocumentsJSONL reads documents from a JSONL file, one object per line
func LoadDocumentsJSONL(path string) ([]Document, error) {
	var docs []Document
	err := readJSONL(path, func(line []byte) error {
		var d Document
		if err := json.Unmarshal(line, &d); err != nil {
			return err
		}
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func readJSONL(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}
