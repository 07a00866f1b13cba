package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tabclean/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// ParseOptions controls how cells are typed while loading
type ParseOptions struct {
	// AllText keeps every non-empty cell as text. The splitter loads this way
	// so grouping is purely value based and writers never re-infer types.
	AllText bool
	// Sheet selects a worksheet by name; empty means the first sheet
	Sheet string
}

// ParseFile loads a .csv or .xlsx file into a Table. The first row is the
// header. Empty cells become missing.
func ParseFile(filePath string, opts ParseOptions) (*domain.Table, error) {
	format, err := domain.FormatFromPath(filePath)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch format {
	case domain.FormatCSV:
		rows, err = readCSV(filePath)
	case domain.FormatXLSX:
		rows, err = readXLSX(filePath, opts.Sheet)
	}
	if err != nil {
		return nil, err
	}

	table, err := buildTable(rows, opts.AllText)
	if err != nil {
		return nil, fmt.Errorf("failed to build table from %s: %w", filePath, err)
	}

	slog.Info("File parsed",
		slog.String("path", filePath),
		slog.String("format", string(format)),
		slog.Int("rows", table.Len()),
		slog.Int("columns", table.Width()),
		slog.Bool("all_text", opts.AllText))
	return table, nil
}

func readCSV(filePath string) ([][]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

func readXLSX(filePath, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if sheet == "" {
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	slog.Debug("Sheet information",
		slog.String("sheet_name", sheet),
		slog.Int("total_rows", len(rows)))
	return rows, nil
}

// buildTable turns raw string rows into a Table. Without allText a column is
// numeric when every non-empty cell parses as a float.
func buildTable(rows [][]string, allText bool) (*domain.Table, error) {
	if len(rows) == 0 {
		return domain.NewTable()
	}

	header := headerNames(rows[0], widest(rows))
	body := rows[1:]

	numeric := make([]bool, len(header))
	if !allText {
		for c := range header {
			numeric[c] = isNumericColumn(body, c)
		}
	}

	table, err := domain.NewTable(header...)
	if err != nil {
		return nil, err
	}
	for _, raw := range body {
		values := make([]domain.Value, len(header))
		for c := range header {
			values[c] = cellValue(raw, c, numeric[c])
		}
		if err := table.AppendRow(values...); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func widest(rows [][]string) int {
	n := 0
	for _, r := range rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// headerNames fills blank headers with "Unnamed: i" and suffixes repeated
// names with ".1", ".2" so column names stay unique.
func headerNames(raw []string, width int) []string {
	names := make([]string, width)
	taken := make(map[string]bool, width)
	repeats := make(map[string]int)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(raw) {
			name = strings.TrimSpace(raw[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for taken[name] {
			repeats[base]++
			name = fmt.Sprintf("%s.%d", base, repeats[base])
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func isNumericColumn(body [][]string, c int) bool {
	found := false
	for _, r := range body {
		if c >= len(r) || r[c] == "" {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(r[c]), 64); err != nil {
			return false
		}
		found = true
	}
	return found
}

func cellValue(raw []string, c int, numeric bool) domain.Value {
	if c >= len(raw) || raw[c] == "" {
		return domain.Missing()
	}
	if numeric {
		f, err := strconv.ParseFloat(strings.TrimSpace(raw[c]), 64)
		if err == nil {
			return domain.Number(f)
		}
	}
	return domain.Text(raw[c])
}
