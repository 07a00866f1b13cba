package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tabclean/internal/dataprocessing"
	"tabclean/internal/exporter"
	"tabclean/internal/operations"
	"tabclean/pkg/contracts/domain"
)

// Options configures how tables are persisted
type Options struct {
	CSVBOM         bool
	SheetNameLimit int
}

// Manager provides table persistence operations
type Manager struct {
	csv   *exporter.CSVWriter
	excel *exporter.ExcelWriter
	limit int
}

// NewManager creates a new file manager instance
func NewManager(opts Options) *Manager {
	limit := opts.SheetNameLimit
	if limit <= 0 || limit > exporter.SheetNameLimit {
		limit = exporter.SheetNameLimit
	}
	return &Manager{
		csv:   exporter.NewCSVWriter(opts.CSVBOM),
		excel: exporter.NewExcelWriter(limit),
		limit: limit,
	}
}

// Load reads a .csv or .xlsx file. With allText every non-empty cell stays
// textual.
func (m *Manager) Load(path string, allText bool) (*domain.Table, error) {
	if _, err := domain.FormatFromPath(path); err != nil {
		return nil, operations.NewValidationError("load", err.Error())
	}
	table, err := dataprocessing.ParseFile(path, dataprocessing.ParseOptions{AllText: allText})
	if err != nil {
		return nil, operations.NewIOError("load", err).WithContext("path", path)
	}
	return table, nil
}

// Save writes table to path in the given format. sheet names the only sheet
// of a workbook and is ignored for CSV.
func (m *Manager) Save(table *domain.Table, path string, format domain.Format, sheet string) error {
	var err error
	switch format {
	case domain.FormatCSV:
		err = m.csv.WriteTable(path, table)
	case domain.FormatXLSX:
		err = m.excel.WriteTable(path, table, sheet)
	default:
		return operations.NewValidationErrorf("save", "unsupported format %q", format)
	}
	if err != nil {
		return operations.NewIOError("save", err).WithContext("path", path)
	}
	slog.Info("Table saved",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", table.Len()))
	return nil
}

// SaveAs picks the format from the extension of path
func (m *Manager) SaveAs(table *domain.Table, path string) error {
	format, err := domain.FormatFromPath(path)
	if err != nil {
		return operations.NewValidationError("save", err.Error())
	}
	return m.Save(table, path, format, "")
}

// NewWorkbook returns a multi-sheet workbook honouring the sheet name limit
func (m *Manager) NewWorkbook() *exporter.Workbook {
	return exporter.NewWorkbookWithLimit(m.limit)
}

// CreateCSVStream opens a CSV file for appending several tables
func (m *Manager) CreateCSVStream(path string, headers []string) (*exporter.StreamWriter, error) {
	return m.csv.CreateStreamWriter(path, headers)
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	exists := err == nil

	slog.Debug("FileExists check",
		slog.String("path", path),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates path and its parents when missing
func (m *Manager) EnsureDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("empty directory path")
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// SafeFileName makes a partition key usable as a file name inside a
// destination directory. Path separators become "_" and an empty or dot-only
// key gets a placeholder.
func SafeFileName(key string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator || r == 0 {
			return '_'
		}
		return r
	}, key)
	if strings.Trim(name, ".") == "" {
		name = "_" + name
	}
	return name
}
