package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tabclean/pkg/contracts/domain"
)

// DefaultSheet is the sheet name used for single table workbooks
const DefaultSheet = "Sheet1"

type stagedSheet struct {
	name  string
	table *domain.Table
}

// Workbook collects named sheets and writes them as one .xlsx container.
// Sheet names compare case-insensitively, as they do in the file format.
type Workbook struct {
	sheets []stagedSheet
	index  map[string]int
	limit  int
}

// NewWorkbook creates an empty workbook with the standard name limit
func NewWorkbook() *Workbook {
	return NewWorkbookWithLimit(SheetNameLimit)
}

// NewWorkbookWithLimit creates an empty workbook truncating names to limit
func NewWorkbookWithLimit(limit int) *Workbook {
	return &Workbook{
		index: make(map[string]int),
		limit: limit,
	}
}

// AddSheet stages table under a sheet derived from name and returns the name
// used. When two names collide after truncation the later table wins.
func (wb *Workbook) AddSheet(name string, table *domain.Table) (string, error) {
	if table == nil {
		return "", fmt.Errorf("nil table for sheet %q", name)
	}
	sheet := SheetName(name, wb.limit)
	key := strings.ToLower(sheet)
	if i, ok := wb.index[key]; ok {
		slog.Warn("Sheet name collision, replacing earlier sheet",
			slog.String("sheet_name", sheet),
			slog.String("key", name))
		wb.sheets[i].table = table
		return wb.sheets[i].name, nil
	}
	wb.index[key] = len(wb.sheets)
	wb.sheets = append(wb.sheets, stagedSheet{name: sheet, table: table})
	return sheet, nil
}

// Len returns the number of distinct sheets
func (wb *Workbook) Len() int {
	return len(wb.sheets)
}

// SheetNames returns the sheet names in insertion order
func (wb *Workbook) SheetNames() []string {
	out := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		out[i] = s.name
	}
	return out
}

// SaveAs streams every sheet into a new workbook at filePath
func (wb *Workbook) SaveAs(filePath string) error {
	if len(wb.sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range wb.sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", s.name, err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", s.name, err)
		}
		if err := streamSheet(f, s.name, s.table); err != nil {
			return err
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	slog.Info("Workbook saved",
		slog.String("file_path", filePath),
		slog.Int("sheet_count", len(wb.sheets)))
	return nil
}

func streamSheet(f *excelize.File, sheet string, table *domain.Table) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream for sheet %q: %w", sheet, err)
	}

	header := make([]interface{}, table.Width())
	for i, name := range table.Columns() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header of sheet %q: %w", sheet, err)
	}

	for r := 0; r < table.Len(); r++ {
		row := table.Row(r)
		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d of sheet %q: %w", r+1, sheet, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %q: %w", sheet, err)
	}
	return nil
}

// ExcelWriter writes single sheet workbooks
type ExcelWriter struct {
	limit int
}

// NewExcelWriter creates a writer truncating sheet names to limit
func NewExcelWriter(limit int) *ExcelWriter {
	return &ExcelWriter{limit: limit}
}

// WriteTable writes table as the only sheet of a new workbook
func (w *ExcelWriter) WriteTable(filePath string, table *domain.Table, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	wb := NewWorkbookWithLimit(w.limit)
	if _, err := wb.AddSheet(sheet, table); err != nil {
		return err
	}
	return wb.SaveAs(filePath)
}
