package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTriplesJSONL(t *testing.T) {
	path := writeFile(t, "kg.jsonl", `{"subject_id":"D003924","subject_label":"Type 2 diabetes","predicate":"treated_by","object_id":"D007328","object_label":"Insulin","source_id":"d001","weight":0.9}

{"subject_id":"D008687","subject_label":"Metformin","predicate":"targets","object_label":"AMPK"}
`)

	triples, err := LoadTriplesJSONL(path)
	require.NoError(t, err)
	require.Len(t, triples, 2)
	assert.Equal(t, "treated_by", triples[0].Predicate)
	assert.Equal(t, 0.9, triples[0].Weight)
	assert.Equal(t, "AMPK", triples[1].ObjectLabel)
}

func TestLoadTriplesJSONL_BadLine(t *testing.T) {
	path := writeFile(t, "bad.jsonl", `{"subject_id":"x"}
not json
`)
	_, err := LoadTriplesJSONL(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadDocumentsJSONL(t *testing.T) {
	path := writeFile(t, "docs.jsonl", `{"id":"d001","title":"Insulin therapy","abstract":"treats diabetes"}
{"id":"d002","title":"Metformin","abstract":"first-line agent"}
`)

	docs, err := LoadDocumentsJSONL(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "d001", docs[0].ID)
	assert.Equal(t, "first-line agent", docs[1].Abstract)
}

func TestLoadDocumentsJSONL_MissingFile(t *testing.T) {
	_, err := LoadDocumentsJSONL("no_such_file.jsonl")
	assert.Error(t, err)
}
