package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/parse"
	"github.com/sells-group/coach-directory/internal/validate"
)

func TestParseResponse(t *testing.T) {
	text := "NAME: Jane Doe\nPOSITION: Head Coach\nEMAIL: jane@school.edu\n---\nNAME: JOHN SMITH\nPOSITION: Athletic Trainer\n"

	recs := parseResponse(text, "https://a.edu/staff", parse.New(), validate.Default(), 15)
	require.Len(t, recs, 1)
	assert.Equal(t, model.CoachRecord{
		Name:            "Jane Doe",
		Position:        "Head Coach",
		Email:           "jane@school.edu",
		SourceReference: "https://a.edu/staff",
	}, recs[0])
}

func TestParseResponse_Unparseable(t *testing.T) {
	recs := parseResponse("no staff listed here", "", parse.New(), validate.Default(), 15)
	assert.Empty(t, recs)
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resp.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	got, err := readInput(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = readInput(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
