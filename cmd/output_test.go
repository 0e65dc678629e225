package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/coach-directory/internal/model"
)

var sampleRecords = []model.CoachRecord{
	{Name: "Jane Doe", Position: "Head Coach", Email: "jane@school.edu", SourceReference: "https://a.edu/staff"},
	{Name: "Sam Lee", Position: "Assistant Coach", SocialHandle: "https://twitter.com/samlee"},
}

func TestEmitRecords_Table(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, emitRecords(&out, &errOut, sampleRecords, false, ""))

	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "Jane Doe")
	assert.Contains(t, out.String(), "https://twitter.com/samlee")
	assert.Empty(t, errOut.String())
}

func TestEmitRecords_JSONKeepsEmptyFields(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, emitRecords(&out, &errOut, sampleRecords[1:], true, ""))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	for _, key := range []string{"name", "position", "email", "phone", "social_handle", "source_reference"} {
		_, ok := got[0][key]
		assert.True(t, ok, "missing key %s", key)
	}
	assert.Equal(t, "", got[0]["email"])
}

func TestEmitRecords_EmptyWarnsWithoutError(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, emitRecords(&out, &errOut, nil, true, ""))

	assert.Contains(t, errOut.String(), emptyWarning)
	assert.JSONEq(t, "[]", out.String())
}

func TestEmitRecords_WritesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	var out, errOut bytes.Buffer
	require.NoError(t, emitRecords(&out, &errOut, sampleRecords, false, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "coach_name,coach_position")
	assert.Contains(t, string(data), "Jane Doe,Head Coach,jane@school.edu")
	assert.Contains(t, errOut.String(), "Wrote 2 records")
}
