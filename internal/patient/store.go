// Package patient persists patient records and notes, and renders them
// as the free-text context block injected into questions.
package patient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one patient's structured fields
type Record struct {
	PatientID        string   `json:"patient_id"`
	Name             string   `json:"name,omitempty"`
	Age              int      `json:"age,omitempty"`
	Sex              string   `json:"sex,omitempty"`
	PastSurgeries    []string `json:"past_surgeries,omitempty"`
	AvgBloodPressure string   `json:"avg_blood_pressure,omitempty"`
}

// Store manages the patient SQLite database
type Store struct {
	db *sql.DB
}

// Open opens or creates the patient store at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening patient database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating patient schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS patients (
			patient_id TEXT PRIMARY KEY,
			name TEXT,
			age INTEGER,
			sex TEXT,
			past_surgeries TEXT,
			avg_blood_pressure TEXT,
			created_at TEXT DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS patient_notes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			patient_id TEXT NOT NULL REFERENCES patients(patient_id) ON DELETE CASCADE,
			note_date TEXT DEFAULT (datetime('now')),
			note TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_patient ON patient_notes(patient_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Add inserts a patient, ignoring an existing id
func (s *Store) Add(ctx context.Context, r Record) error {
	if r.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO patients (patient_id, name, age, sex, past_surgeries, avg_blood_pressure)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(patient_id) DO NOTHING`,
		r.PatientID, r.Name, r.Age, r.Sex, strings.Join(r.PastSurgeries, "; "), r.AvgBloodPressure)
	if err != nil {
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

// AddNote appends a free-text note to a patient's history
func (s *Store) AddNote(ctx context.Context, patientID, note string) error {
	if note == "" {
		return fmt.Errorf("note is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO patient_notes (patient_id, note) VALUES (?, ?)`, patientID, note)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	return nil
}

// History renders the patient's record and notes as one opaque text
// blob suitable for question enrichment. An unknown id yields an empty
// blob, not an error: missing context never blocks a question.
func (s *Store) History(ctx context.Context, patientID string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, age, sex, past_surgeries, avg_blood_pressure
		FROM patients WHERE patient_id = ?`, patientID)

	var (
		name, sex, surgeries, bp sql.NullString
		age                      sql.NullInt64
	)
	err := row.Scan(&name, &age, &sex, &surgeries, &bp)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading patient %s: %w", patientID, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Patient %s", patientID)
	if name.String != "" {
		fmt.Fprintf(&b, " (%s)", name.String)
	}
	b.WriteString(":")
	if age.Valid {
		fmt.Fprintf(&b, " age %d,", age.Int64)
	}
	if sex.String != "" {
		fmt.Fprintf(&b, " sex %s,", sex.String)
	}
	if bp.String != "" {
		fmt.Fprintf(&b, " average blood pressure %s,", bp.String)
	}
	if surgeries.String != "" {
		fmt.Fprintf(&b, " past surgeries: %s,", surgeries.String)
	}

	notes, err := s.notes(ctx, patientID)
	if err != nil {
		return "", err
	}
	text := strings.TrimSuffix(b.String(), ",")
	if len(notes) > 0 {
		text += "\nNotes:\n- " + strings.Join(notes, "\n- ")
	}
	return text, nil
}

// CompareNotes returns the two most recent notes side by side, or a
// placeholder when fewer than two exist
func (s *Store) CompareNotes(ctx context.Context, patientID string) (string, error) {
	notes, err := s.notes(ctx, patientID)
	if err != nil {
		return "", err
	}
	if len(notes) < 2 {
		return "Not enough notes to compare yet.", nil
	}
	prev, latest := notes[len(notes)-2], notes[len(notes)-1]
	return fmt.Sprintf("Previous note:\n%s\n\nNew note:\n%s", prev, latest), nil
}

func (s *Store) notes(ctx context.Context, patientID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT note FROM patient_notes WHERE patient_id = ? ORDER BY note_date ASC, rowid ASC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("reading notes for %s: %w", patientID, err)
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
