package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microtix/lead-platform/internal/leads"
)

const sampleResponse = `{"leads":[
	{"name":"Harbor Coffee","phone":"555-0100"},
	{"name":"Lakeside Bistro","email":"hello@lakeside.example"}
]}`

func TestRunJSONFromStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{
		"--industry", "restaurant",
		"--location", "Austin, TX",
		"--batch-time", "2024-05-01T12:30:00Z",
	}, strings.NewReader(sampleResponse), &stdout, &stderr)
	require.NoError(t, err)

	var out []leads.Lead
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "Austin", out[0].City)
	assert.Equal(t, "TX", out[0].State)
	assert.Equal(t, "restaurant", out[0].Category)
	assert.Contains(t, stderr.String(), "leads=2")
}

func TestRunCSVToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "response.json")
	out := filepath.Join(dir, "leads.csv")
	require.NoError(t, os.WriteFile(in, []byte(sampleResponse), 0o600))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--in", in, "--out", out, "--format", "csv"}, nil, &stdout, &stderr))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Harbor Coffee")
	assert.Empty(t, stdout.String())
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run([]string{"--format", "pdf"}, strings.NewReader(`[]`), &stdout, &stderr))
	assert.Error(t, run(nil, strings.NewReader(`{not json`), &stdout, &stderr))
	assert.Error(t, run([]string{"--batch-time", "yesterday"}, strings.NewReader(`[]`), &stdout, &stderr))
	assert.Error(t, run([]string{"--in", filepath.Join(t.TempDir(), "missing.json")}, nil, &stdout, &stderr))
}
