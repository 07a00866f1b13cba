package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabclean/pkg/contracts/domain"
)

func sampleTable(t *testing.T) *domain.Table {
	t.Helper()
	table := domain.MustTable("ID", "NAME", "LAT")
	require.NoError(t, table.AppendRow(domain.Number(1), domain.Text("alpha"), domain.Number(10.25)))
	require.NoError(t, table.AppendRow(domain.Number(2), domain.Missing(), domain.Number(math.NaN())))
	require.NoError(t, table.AppendRow(domain.Number(3), domain.Text("a,b"), domain.Text("x")))
	return table
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteTable(t *testing.T) {
	tests := []struct {
		name string
		bom  bool
	}{
		{"without BOM", false},
		{"with BOM", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")
			writer := NewCSVWriter(tt.bom)

			require.NoError(t, writer.WriteTable(path, sampleTable(t)))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.bom, bytes.HasPrefix(data, utf8BOM))

			assert.Equal(t, [][]string{
				{"ID", "NAME", "LAT"},
				{"1", "alpha", "10.25"},
				{"2", "", ""},
				{"3", "a,b", "x"},
			}, readCSV(t, path))
		})
	}
}

func TestCSVWriter_WriteCSVAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	writer := NewCSVWriter(false)

	require.NoError(t, writer.WriteCSV(path, WriteOptions{
		Headers: []string{"A"},
		Records: [][]string{{"1"}},
	}))
	require.NoError(t, writer.WriteCSV(path, WriteOptions{
		Headers: []string{"ignored"},
		Records: [][]string{{"2"}},
		Append:  true,
	}))

	assert.Equal(t, [][]string{{"A"}, {"1"}, {"2"}}, readCSV(t, path))
}

func TestStreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.csv")
	writer := NewCSVWriter(true)

	stream, err := writer.CreateStreamWriter(path, []string{"ID", "NAME", "LAT"})
	require.NoError(t, err)

	table := sampleTable(t)
	require.NoError(t, stream.WriteTable(table.Slice(0, 1)))
	require.NoError(t, stream.WriteTable(table.Slice(1, 3)))
	require.NoError(t, stream.WriteRecord([]string{"4", "delta", "1"}))
	require.NoError(t, stream.Close())

	records := readCSV(t, path)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"ID", "NAME", "LAT"}, records[0])
	assert.Equal(t, []string{"4", "delta", "1"}, records[4])
}

func TestStreamWriterColumnMismatch(t *testing.T) {
	writer := NewCSVWriter(false)
	stream, err := writer.CreateStreamWriter(filepath.Join(t.TempDir(), "x.csv"), []string{"A"})
	require.NoError(t, err)
	defer stream.Close()

	assert.Error(t, stream.WriteTable(sampleTable(t)))
}

func TestCSVWriterUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	writer := NewCSVWriter(false)
	err := writer.WriteTable(filepath.Join(blocker, "out.csv"), sampleTable(t))
	assert.Error(t, err)
}
