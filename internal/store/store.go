// Package store persists the knowledge graph and serves structured and
// text queries over it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ppiankov/graphgate/internal/model"
)

// ErrUnreachable marks retrieval-layer failures: the store could not be
// queried at all. Distinct from a legitimate empty result set so the
// risk gate can force an abstain instead of treating it as no evidence.
var ErrUnreachable = errors.New("store unreachable")

// IsUnreachable reports whether err is a retrieval-layer failure
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// Store manages the SQLite triple store and its full-text document index
type Store struct {
	db *sql.DB
}

// Open opens or creates the store at path, creating the schema if it
// does not exist
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_label ON entities(label)`,
		`CREATE TABLE IF NOT EXISTS triples (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id TEXT NOT NULL,
			subject_label TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object_id TEXT,
			object_label TEXT NOT NULL,
			source_id TEXT NOT NULL,
			weight REAL NOT NULL DEFAULT 1.0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_subject ON triples(subject_id)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_predicate ON triples(predicate)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			abstract TEXT
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			title, abstract,
			content='documents', content_rowid='rowid'
		)`,
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO documents_fts(rowid, title, abstract)
			VALUES (new.rowid, new.title, new.abstract);
		END`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, title, abstract)
			VALUES ('delete', old.rowid, old.title, old.abstract);
		END`,
		`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, title, abstract)
			VALUES ('delete', old.rowid, old.title, old.abstract);
			INSERT INTO documents_fts(rowid, title, abstract)
			VALUES (new.rowid, new.title, new.abstract);
		END`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Execute runs one graph-pattern query variant and returns raw matches,
// best-weighted first. A connection-level failure is wrapped as
// ErrUnreachable rather than returned as an empty result.
func (s *Store) Execute(ctx context.Context, q model.StructuredQuery, limit int) ([]model.RawMatch, error) {
	if q.Kind != model.QueryGraph {
		return nil, fmt.Errorf("execute: not a graph query: %s", q.Kind)
	}
	if limit <= 0 {
		limit = 50
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT subject_label, predicate, object_label, source_id, weight
		FROM triples WHERE 1=1`)

	switch {
	case q.SubjectID != "":
		qb.WriteString(` AND (subject_id = ? OR instr(lower(subject_label), lower(?)) > 0)`)
		args = append(args, q.SubjectID, q.SubjectText)
	case q.SubjectText != "":
		qb.WriteString(` AND instr(lower(subject_label), lower(?)) > 0`)
		args = append(args, q.SubjectText)
	default:
		// No subject binding matches nothing, mirroring an empty VALUES
		// clause; a harmless always-empty query.
		return nil, nil
	}

	if q.Predicate != "" {
		qb.WriteString(` AND predicate = ?`)
		args = append(args, q.Predicate)
	}

	qb.WriteString(` ORDER BY weight DESC, rowid LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying triples: %v", ErrUnreachable, err)
	}
	defer rows.Close()

	var matches []model.RawMatch
	for rows.Next() {
		var (
			subj, pred, obj, sourceID string
			weight                    float64
		)
		if err := rows.Scan(&subj, &pred, &obj, &sourceID, &weight); err != nil {
			return nil, fmt.Errorf("%w: scanning triple: %v", ErrUnreachable, err)
		}
		if sourceID == "" {
			sourceID = subj + "|" + pred + "|" + obj
		}
		matches = append(matches, model.RawMatch{
			SourceID: sourceID,
			Title:    obj,
			Snippet:  subj + " " + pred + " " + obj,
			Weight:   weight,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading triples: %v", ErrUnreachable, err)
	}
	return matches, nil
}

// SearchText returns candidate documents for the lexical path using the
// FTS index, best-ranked first. The caller computes its own overlap
// score; Weight here only orders candidates.
func (s *Store) SearchText(ctx context.Context, text string, limit int) ([]model.RawMatch, error) {
	if limit <= 0 {
		limit = 50
	}

	match := ftsQuery(text)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.title, d.abstract, documents_fts.rank
		FROM documents_fts
		JOIN documents d ON d.rowid = documents_fts.rowid
		WHERE documents_fts MATCH ?
		ORDER BY documents_fts.rank
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying documents: %v", ErrUnreachable, err)
	}
	defer rows.Close()

	var matches []model.RawMatch
	for rows.Next() {
		var (
			id       string
			title    sql.NullString
			abstract sql.NullString
			rank     float64
		)
		if err := rows.Scan(&id, &title, &abstract, &rank); err != nil {
			return nil, fmt.Errorf("%w: scanning document: %v", ErrUnreachable, err)
		}
		matches = append(matches, model.RawMatch{
			SourceID: id,
			Title:    title.String,
			Snippet:  abstract.String,
			Weight:   -rank, // fts5 rank is lower-is-better
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading documents: %v", ErrUnreachable, err)
	}
	return matches, nil
}

// ftsQuery turns free text into an OR-joined FTS5 match expression,
// quoting each token to avoid operator injection
func ftsQuery(text string) string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	var terms []string
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		terms = append(terms, `"`+f+`"`)
	}
	return strings.Join(terms, " OR ")
}

// LabelEntry pairs a canonical entity id with its label, for building
// the linker lexicon
type LabelEntry struct {
	ID    string
	Label string
}

// Labels returns all entity labels known to the graph
func (s *Store) Labels(ctx context.Context) ([]LabelEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, label FROM entities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying entities: %v", ErrUnreachable, err)
	}
	defer rows.Close()

	var entries []LabelEntry
	for rows.Next() {
		var e LabelEntry
		if err := rows.Scan(&e.ID, &e.Label); err != nil {
			return nil, fmt.Errorf("%w: scanning entity: %v", ErrUnreachable, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading entities: %v", ErrUnreachable, err)
	}
	return entries, nil
}
