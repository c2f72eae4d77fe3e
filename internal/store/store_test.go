package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/graphgate/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedTriples(t *testing.T, s *Store) {
	t.Helper()
	err := s.InsertTriples(context.Background(), []Triple{
		{SubjectID: "D003924", SubjectLabel: "Type 2 diabetes", Predicate: "treated_by", ObjectID: "D007328", ObjectLabel: "Insulin", SourceID: "d001", Weight: 0.9},
		{SubjectID: "D003924", SubjectLabel: "Type 2 diabetes", Predicate: "treated_by", ObjectID: "D015444", ObjectLabel: "Exercise", SourceID: "d002", Weight: 0.7},
		{SubjectID: "D003924", SubjectLabel: "Type 2 diabetes", Predicate: "has_adverse_effect", ObjectLabel: "Neuropathy", SourceID: "d003", Weight: 0.5},
		{SubjectID: "D008687", SubjectLabel: "Metformin", Predicate: "targets", ObjectLabel: "AMPK", SourceID: "d004"},
	})
	require.NoError(t, err)
}

func TestExecute_SubjectAndPredicate(t *testing.T) {
	s := testStore(t)
	seedTriples(t, s)

	q := model.StructuredQuery{
		Kind:      model.QueryGraph,
		SubjectID: "D003924",
		Predicate: "treated_by",
	}
	matches, err := s.Execute(context.Background(), q, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Weight-descending order
	assert.Equal(t, "d001", matches[0].SourceID)
	assert.Equal(t, "Insulin", matches[0].Title)
	assert.Equal(t, "Type 2 diabetes treated_by Insulin", matches[0].Snippet)
	assert.Equal(t, 0.9, matches[0].Weight)
	assert.Equal(t, "d002", matches[1].SourceID)
}

func TestExecute_GenericOutgoingEdges(t *testing.T) {
	s := testStore(t)
	seedTriples(t, s)

	q := model.StructuredQuery{Kind: model.QueryGraph, SubjectID: "D003924"}
	matches, err := s.Execute(context.Background(), q, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestExecute_SubjectLabelFallback(t *testing.T) {
	s := testStore(t)
	seedTriples(t, s)

	// Unresolved mention binds by label substring, case-insensitively
	q := model.StructuredQuery{Kind: model.QueryGraph, SubjectText: "metformin"}
	matches, err := s.Execute(context.Background(), q, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "AMPK", matches[0].Title)
}

func TestExecute_NoSubjectBinding(t *testing.T) {
	s := testStore(t)
	seedTriples(t, s)

	matches, err := s.Execute(context.Background(), model.StructuredQuery{Kind: model.QueryGraph}, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestExecute_NoResults(t *testing.T) {
	s := testStore(t)
	seedTriples(t, s)

	q := model.StructuredQuery{Kind: model.QueryGraph, SubjectID: "D999999", SubjectText: "nonexistent"}
	matches, err := s.Execute(context.Background(), q, 10)
	require.NoError(t, err, "empty results are not a failure")
	assert.Empty(t, matches)
}

func TestExecute_RejectsTextQuery(t *testing.T) {
	s := testStore(t)

	_, err := s.Execute(context.Background(), model.StructuredQuery{Kind: model.QueryText, Text: "x"}, 10)
	assert.Error(t, err)
}

func TestExecute_Limit(t *testing.T) {
	s := testStore(t)
	seedTriples(t, s)

	q := model.StructuredQuery{Kind: model.QueryGraph, SubjectID: "D003924"}
	matches, err := s.Execute(context.Background(), q, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestExecute_UnreachableStore(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Close())

	q := model.StructuredQuery{Kind: model.QueryGraph, SubjectID: "D003924"}
	_, err := s.Execute(context.Background(), q, 10)
	require.Error(t, err)
	assert.True(t, IsUnreachable(err), "closed store should report unreachable, got %v", err)
}

func TestSearchText_FTS(t *testing.T) {
	s := testStore(t)
	err := s.InsertDocuments(context.Background(), []Document{
		{ID: "d001", Title: "Insulin therapy", Abstract: "Insulin effectively treats type 2 diabetes in most patients"},
		{ID: "d002", Title: "Stellar formation", Abstract: "Stars form from collapsing clouds of gas"},
		{ID: "d003", Title: "Diabetes management", Abstract: "Lifestyle changes and metformin for glycemic control"},
	})
	require.NoError(t, err)

	matches, err := s.SearchText(context.Background(), "what treats type 2 diabetes", 10)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	ids := make(map[string]bool)
	for _, m := range matches {
		ids[m.SourceID] = true
	}
	assert.True(t, ids["d001"], "expected d001 in candidates")
	assert.True(t, ids["d003"], "expected d003 in candidates")
	assert.False(t, ids["d002"], "unrelated document should not match")
}

func TestSearchText_EmptyQuery(t *testing.T) {
	s := testStore(t)

	matches, err := s.SearchText(context.Background(), "??? !! a", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchText_OperatorInjection(t *testing.T) {
	s := testStore(t)
	err := s.InsertDocuments(context.Background(), []Document{
		{ID: "d001", Title: "Insulin therapy", Abstract: "treats diabetes"},
	})
	require.NoError(t, err)

	// FTS operators in the question must not break the query
	_, err = s.SearchText(context.Background(), `insulin AND NOT (diabetes OR "therapy`, 10)
	assert.NoError(t, err)
}

func TestLabels(t *testing.T) {
	s := testStore(t)
	seedTriples(t, s)

	labels, err := s.Labels(context.Background())
	require.NoError(t, err)

	byID := make(map[string]string)
	for _, l := range labels {
		byID[l.ID] = l.Label
	}
	assert.Equal(t, "Type 2 diabetes", byID["D003924"])
	assert.Equal(t, "Insulin", byID["D007328"])
	assert.Equal(t, "Metformin", byID["D008687"])
}

func TestInsertTriples_DefaultWeight(t *testing.T) {
	s := testStore(t)
	seedTriples(t, s)

	q := model.StructuredQuery{Kind: model.QueryGraph, SubjectID: "D008687"}
	matches, err := s.Execute(context.Background(), q, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Weight)
}

func TestInsertDocuments_Replace(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertDocuments(ctx, []Document{{ID: "d001", Title: "Old title", Abstract: "old words entirely"}}))
	require.NoError(t, s.InsertDocuments(ctx, []Document{{ID: "d001", Title: "Insulin therapy", Abstract: "treats diabetes"}}))

	matches, err := s.SearchText(ctx, "insulin therapy", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Insulin therapy", matches[0].Title)

	// The replaced text must no longer match
	matches, err = s.SearchText(ctx, "old words entirely", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestInsertDocuments_EmptyID(t *testing.T) {
	s := testStore(t)
	err := s.InsertDocuments(context.Background(), []Document{{Title: "No id"}})
	assert.Error(t, err)
}
