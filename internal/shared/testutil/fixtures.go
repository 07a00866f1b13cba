package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"tabclean/pkg/contracts/domain"
)

// SurveyCSV is a small survey extract with gaps in the coordinates and two
// rows whose district is null-like
const SurveyCSV = `PREGION,PDISTRICT,PCOUNCIL,PCONSTITUENCY,PDIVISION,PWARD,PVILLAGE,PHAMLET,Latitude,Longitude,Name
7,1,3,2,1,4,12,5,-6.5,39.1,Amina
7,1,3,2,1,4,12,6,,39.3,Baraka
7,2,1,1,2,10,3,1,-6.9,,Chausiku
7,,1,1,2,10,3,2,-7.1,39.5,Daudi
7,#NULL!,1,1,2,11,3,2,-7.3,39.7,Eliya
`

// WriteFile writes content to name under a fresh temp dir and returns the path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// WriteSurveyCSV writes SurveyCSV to a temp file
func WriteSurveyCSV(t *testing.T) string {
	return WriteFile(t, "survey.csv", SurveyCSV)
}

// TableFromRecords builds a table from text records. Empty cells become
// missing and cells that parse as numbers become numeric.
func TableFromRecords(t *testing.T, header []string, rows ...[]string) *domain.Table {
	t.Helper()
	table, err := domain.NewTable(header...)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	for _, row := range rows {
		values := make([]domain.Value, len(row))
		for i, cell := range row {
			values[i] = cellValue(cell)
		}
		if err := table.AppendRow(values...); err != nil {
			t.Fatalf("append row: %v", err)
		}
	}
	return table
}

func cellValue(cell string) domain.Value {
	if cell == "" {
		return domain.Missing()
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return domain.Number(f)
	}
	return domain.Text(cell)
}
