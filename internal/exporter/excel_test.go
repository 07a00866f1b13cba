package exporter

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestExcelWriter_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	writer := NewExcelWriter(SheetNameLimit)

	require.NoError(t, writer.WriteTable(path, sampleTable(t), ""))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"ID", "NAME", "LAT"}, rows[0])
	assert.Equal(t, []string{"1", "alpha", "10.25"}, rows[1])
	assert.Equal(t, []string{"2"}, rows[2])
}

func TestWorkbookMultipleSheets(t *testing.T) {
	table := sampleTable(t)
	long := strings.Repeat("x", 35)

	wb := NewWorkbook()
	first, err := wb.AddSheet("North", table.Slice(0, 1))
	require.NoError(t, err)
	assert.Equal(t, "North", first)

	truncated, err := wb.AddSheet(long, table.Slice(1, 2))
	require.NoError(t, err)
	assert.Equal(t, long[:31], truncated)

	path := filepath.Join(t.TempDir(), "parts.xlsx")
	require.NoError(t, wb.SaveAs(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"North", long[:31]}, f.GetSheetList())
}

func TestWorkbookCollisionLastWins(t *testing.T) {
	table := sampleTable(t)
	prefix := strings.Repeat("k", 31)

	wb := NewWorkbook()
	_, err := wb.AddSheet(prefix+"AAA", table.Slice(0, 1))
	require.NoError(t, err)
	_, err = wb.AddSheet(prefix+"BBB", table.Slice(2, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, wb.Len())

	path := filepath.Join(t.TempDir(), "collide.xlsx")
	require.NoError(t, wb.SaveAs(path))

	rows := openRows(t, path, prefix)
	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[1][0])
}

func TestWorkbookEmpty(t *testing.T) {
	wb := NewWorkbook()
	assert.Error(t, wb.SaveAs(filepath.Join(t.TempDir(), "empty.xlsx")))

	_, err := wb.AddSheet("x", nil)
	assert.Error(t, err)
}
