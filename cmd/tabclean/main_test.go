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

	"tabclean/internal/shared/testutil"
	"tabclean/pkg/contracts"
)

// execute runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, contracts.Version)
}

func TestInspectCommand(t *testing.T) {
	input := testutil.WriteSurveyCSV(t)

	out, err := execute(t, "inspect", input, "--rows", "2")
	require.NoError(t, err)

	var preview struct {
		Columns []string        `json:"columns"`
		Rows    int             `json:"rows"`
		Sample  json.RawMessage `json:"sample"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, 5, preview.Rows)
	assert.Contains(t, preview.Columns, "Latitude")
}

func TestFixCoordinatesCommand(t *testing.T) {
	input := testutil.WriteSurveyCSV(t)
	output := filepath.Join(t.TempDir(), "fixed.csv")

	out, err := execute(t, "fix-coordinates", input, "--lat", "Latitude", "--lon", "Longitude", "-o", output)
	require.NoError(t, err)

	var result struct {
		LatMean *float64 `json:"lat_mean"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.LatMean)
	assert.InDelta(t, -6.95, *result.LatMean, 1e-9)

	assert.FileExists(t, output)
}

func TestCommandErrors(t *testing.T) {
	input := testutil.WriteSurveyCSV(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"inspect", filepath.Join(t.TempDir(), "absent.csv")}},
		{"unknown column", []string{"fix-coordinates", input, "--lat", "lat", "--lon", "lon"}},
		{"bad region", []string{"geocode", input, "--region", "7"}},
		{"missing required flag", []string{"replace-nulls", input, "-o", "out.csv"}},
		{"bad layout", []string{"split", "rows", input, "--chunk-size", "2", "--layout", "zip", "-o", t.TempDir()}},
		{"unsupported output", []string{"replace-nulls", input, "--with", "0", "-o", "out.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestReplaceNullsCommand(t *testing.T) {
	input := testutil.WriteSurveyCSV(t)
	output := filepath.Join(t.TempDir(), "clean.csv")

	_, err := execute(t, "replace-nulls", input, "--with", "0", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "#NULL!")
}

func TestSplitCommands(t *testing.T) {
	input := testutil.WriteSurveyCSV(t)

	t.Run("column", func(t *testing.T) {
		dest := t.TempDir()
		out, err := execute(t, "split", "column", input, "--column", "PDISTRICT", "-o", dest)
		require.NoError(t, err)

		var result struct {
			Parts       []string `json:"parts"`
			InvalidRows int      `json:"invalid_rows"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Len(t, result.Parts, 2)
		assert.Equal(t, 2, result.InvalidRows)
		assert.FileExists(t, filepath.Join(dest, "Invalid_Rows.xlsx"))
	})

	t.Run("rows into one workbook", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "chunks.xlsx")
		out, err := execute(t, "split", "rows", input, "--chunk-size", "2", "--layout", "single", "--format", "xlsx", "-o", dest)
		require.NoError(t, err)
		assert.True(t, strings.Contains(out, "parts"))
		assert.FileExists(t, dest)
	})
}
