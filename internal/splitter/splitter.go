package splitter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"tabclean/internal/files"
	"tabclean/internal/operations"
	"tabclean/internal/validation"
	"tabclean/pkg/contracts/domain"
	"tabclean/pkg/contracts/events"
)

const (
	stepSplit = "split"

	// DefaultInvalidRowsName is the base name of the quarantine workbook
	DefaultInvalidRowsName = "Invalid_Rows"
)

// Options configures a Splitter
type Options struct {
	InvalidRowsName string
}

// Splitter persists the parts of a table as separate outputs and reports
// per-part progress on the split channel
type Splitter struct {
	files       *files.Manager
	validator   *validation.FileValidator
	logger      *slog.Logger
	invalidName string

	partsWritten metric.Int64Counter
	rowsWritten  metric.Int64Counter
}

// NewSplitter creates a splitter writing through fm
func NewSplitter(fm *files.Manager, opts Options, logger *slog.Logger) *Splitter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.InvalidRowsName == "" {
		opts.InvalidRowsName = DefaultInvalidRowsName
	}
	meter := otel.Meter("tabclean.splitter")
	parts, _ := meter.Int64Counter("tabclean_split_parts_written_total",
		metric.WithDescription("Partitions persisted by split operations"))
	rows, _ := meter.Int64Counter("tabclean_split_rows_written_total",
		metric.WithDescription("Rows persisted by split operations, quarantine included"))

	return &Splitter{
		files:        fm,
		validator:    validation.NewFileValidator(logger),
		logger:       logger.With(slog.String("component", "splitter")),
		invalidName:  opts.InvalidRowsName,
		partsWritten: parts,
		rowsWritten:  rows,
	}
}

// target is a validated output location
type target struct {
	layout domain.Layout
	format domain.Format
	dest   string
}

// SplitByColumn writes one output per distinct value of req.Column. Rows whose
// key is null-like go to a separate quarantine workbook that does not count
// toward progress. An empty destination is a benign cancellation.
func (s *Splitter) SplitByColumn(ctx context.Context, table *domain.Table, req domain.ColumnSplitRequest, rep operations.Reporter) (*domain.SplitResult, error) {
	if rep == nil {
		rep = operations.NopReporter{}
	}
	if err := validation.Struct(stepSplit, req); err != nil {
		return nil, err
	}
	if missing := table.MissingColumns(req.Column); len(missing) > 0 {
		return nil, operations.NewMissingColumnsError(stepSplit, missing)
	}
	if req.Destination == "" {
		return s.cancelled(rep), nil
	}
	tgt, err := s.resolveTarget(req.Layout, req.Format, req.Destination)
	if err != nil {
		return nil, err
	}

	partition, err := GroupByColumn(table, req.Column)
	if err != nil {
		return nil, operations.NewValidationError(stepSplit, err.Error())
	}
	if partition.Invalid.Len() > 0 && tgt.layout == domain.LayoutSingle &&
		samePath(tgt.dest, s.InvalidRowsPath(tgt.layout, tgt.dest)) {
		return nil, operations.NewValidationErrorf(stepSplit,
			"destination %s is reserved for invalid rows", tgt.dest)
	}

	s.logger.InfoContext(ctx, "Splitting by column",
		slog.String("column", req.Column),
		slog.Int("groups", len(partition.Groups)),
		slog.Int("invalid_rows", partition.Invalid.Len()),
		slog.String("layout", string(tgt.layout)),
		slog.String("format", string(tgt.format)))

	result := &domain.SplitResult{Destination: tgt.dest}

	if err := s.prepare(tgt); err != nil {
		return nil, s.fail(ctx, rep, err)
	}
	if err := s.writeInvalid(ctx, tgt, partition.Invalid, result, rep); err != nil {
		return nil, s.fail(ctx, rep, err)
	}
	if err := s.writeParts(ctx, tgt, partition.Groups, req.Column, result, rep); err != nil {
		return nil, s.fail(ctx, rep, err)
	}

	if tgt.layout == domain.LayoutFolder {
		rep.Log(fmt.Sprintf("Data split by column '%s' and saved in '%s'.", req.Column, tgt.dest))
	} else {
		rep.Log(fmt.Sprintf("Data saved as a single file: %s.", tgt.dest))
	}
	return result, nil
}

// SplitByRows writes contiguous chunks of req.ChunkSize rows named Part_1,
// Part_2 and so on. Every row belongs to exactly one chunk.
func (s *Splitter) SplitByRows(ctx context.Context, table *domain.Table, req domain.RowSplitRequest, rep operations.Reporter) (*domain.SplitResult, error) {
	if rep == nil {
		rep = operations.NopReporter{}
	}
	if req.ChunkSize <= 0 {
		return nil, operations.NewValidationError(stepSplit, "row count must be a positive integer")
	}
	if err := validation.Struct(stepSplit, req); err != nil {
		return nil, err
	}
	if req.Destination == "" {
		return s.cancelled(rep), nil
	}
	tgt, err := s.resolveTarget(req.Layout, req.Format, req.Destination)
	if err != nil {
		return nil, err
	}

	chunks, err := ChunkRows(table, req.ChunkSize)
	if err != nil {
		return nil, operations.NewValidationError(stepSplit, err.Error())
	}

	s.logger.InfoContext(ctx, "Splitting by rows",
		slog.Int("chunk_size", req.ChunkSize),
		slog.Int("chunks", len(chunks)),
		slog.String("layout", string(tgt.layout)),
		slog.String("format", string(tgt.format)))

	result := &domain.SplitResult{Destination: tgt.dest}

	if err := s.prepare(tgt); err != nil {
		return nil, s.fail(ctx, rep, err)
	}
	if err := s.writeParts(ctx, tgt, chunks, "", result, rep); err != nil {
		return nil, s.fail(ctx, rep, err)
	}

	if tgt.layout == domain.LayoutFolder {
		rep.Log(fmt.Sprintf("Data split into parts and saved in '%s'.", tgt.dest))
	} else {
		rep.Log(fmt.Sprintf("Data saved as a single file: %s.", tgt.dest))
	}
	return result, nil
}

func (s *Splitter) cancelled(rep operations.Reporter) *domain.SplitResult {
	rep.Log("Save operation canceled.")
	s.logger.Info("Split cancelled, no destination chosen")
	return &domain.SplitResult{Cancelled: true}
}

func (s *Splitter) resolveTarget(layout domain.Layout, format domain.Format, dest string) (target, error) {
	tgt := target{layout: layout, format: format, dest: dest}
	switch layout {
	case domain.LayoutFolder:
		if err := s.validator.ValidateOutputDirectory(stepSplit, dest); err != nil {
			return target{}, err
		}
	case domain.LayoutSingle:
		path, err := s.validator.ValidateDestinationFile(stepSplit, dest, format)
		if err != nil {
			return target{}, err
		}
		tgt.dest = path
	}
	return tgt, nil
}

// InvalidRowsPath returns where the quarantine workbook goes for a target:
// inside the destination directory, or beside the destination file.
func (s *Splitter) InvalidRowsPath(layout domain.Layout, dest string) string {
	dir := dest
	if layout == domain.LayoutSingle {
		dir = filepath.Dir(dest)
	}
	return filepath.Join(dir, s.invalidName+domain.FormatXLSX.Extension())
}

// samePath compares paths case-insensitively so the check also holds on
// case-insensitive filesystems
func samePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}

// partPath names the file for one part inside a folder destination. A part
// whose name would land on the quarantine workbook gets a numeric suffix.
func (s *Splitter) partPath(tgt target, key, reserved string) string {
	base := files.SafeFileName(key)
	path := filepath.Join(tgt.dest, base+tgt.format.Extension())
	for n := 1; reserved != "" && samePath(path, reserved); n++ {
		path = filepath.Join(tgt.dest, fmt.Sprintf("%s_%d%s", base, n, tgt.format.Extension()))
	}
	return path
}

func (s *Splitter) prepare(tgt target) error {
	dir := tgt.dest
	if tgt.layout == domain.LayoutSingle {
		dir = filepath.Dir(tgt.dest)
	}
	if err := s.files.EnsureDirectory(dir); err != nil {
		return operations.NewIOError(stepSplit, err)
	}
	return nil
}

// writeInvalid always uses the spreadsheet format, whatever the layout
func (s *Splitter) writeInvalid(ctx context.Context, tgt target, invalid *domain.Table, result *domain.SplitResult, rep operations.Reporter) error {
	if invalid.Len() == 0 {
		rep.Log("No invalid rows detected.")
		return nil
	}
	path := s.InvalidRowsPath(tgt.layout, tgt.dest)
	if err := s.files.Save(invalid, path, domain.FormatXLSX, ""); err != nil {
		return err
	}
	s.count(ctx, s.rowsWritten, int64(invalid.Len()), "invalid")
	result.InvalidPath = path
	result.InvalidRows = invalid.Len()
	rep.Log(fmt.Sprintf("Saved invalid rows to: %s", path))
	return nil
}

// writeParts persists parts in order, reporting progress after each one. A
// non-empty keyColumn is re-stamped with the group key when several groups
// share one CSV file.
func (s *Splitter) writeParts(ctx context.Context, tgt target, parts []Part, keyColumn string, result *domain.SplitResult, rep operations.Reporter) error {
	total := len(parts)
	if tgt.layout == domain.LayoutSingle && tgt.format == domain.FormatXLSX {
		// the workbook only reaches disk in the final save, which counts as a step
		total++
	}
	tracker := operations.NewProgressTracker(stepSplit, events.ChannelSplit, total, rep)
	if len(parts) == 0 {
		rep.Log("Nothing to split: no parts were produced.")
		tracker.Complete()
		return nil
	}

	switch {
	case tgt.layout == domain.LayoutFolder:
		return s.writeFolder(ctx, tgt, parts, result, rep, tracker)
	case tgt.format == domain.FormatXLSX:
		return s.writeWorkbook(ctx, tgt, parts, result, rep, tracker)
	default:
		return s.writeCombinedCSV(ctx, tgt, parts, keyColumn, result, rep, tracker)
	}
}

func (s *Splitter) writeFolder(ctx context.Context, tgt target, parts []Part, result *domain.SplitResult, rep operations.Reporter, tracker *operations.ProgressTracker) error {
	for _, p := range parts {
		path := s.partPath(tgt, p.Key, result.InvalidPath)
		if err := s.files.Save(p.Table, path, tgt.format, ""); err != nil {
			return err
		}
		s.count(ctx, s.partsWritten, 1, string(tgt.layout))
		s.count(ctx, s.rowsWritten, int64(p.Table.Len()), "part")
		result.Parts = append(result.Parts, path)
		tracker.Increment()
		rep.Log(fmt.Sprintf("Saved: %s", path))
	}
	return nil
}

func (s *Splitter) writeWorkbook(ctx context.Context, tgt target, parts []Part, result *domain.SplitResult, rep operations.Reporter, tracker *operations.ProgressTracker) error {
	wb := s.files.NewWorkbook()
	for _, p := range parts {
		sheet, err := wb.AddSheet(p.Key, p.Table)
		if err != nil {
			return operations.NewIOError(stepSplit, err)
		}
		s.count(ctx, s.rowsWritten, int64(p.Table.Len()), "part")
		tracker.Increment()
		rep.Log(fmt.Sprintf("Added sheet: %s", sheet))
	}
	if err := wb.SaveAs(tgt.dest); err != nil {
		return operations.NewIOError(stepSplit, err).WithContext("path", tgt.dest)
	}
	tracker.Increment()
	s.count(ctx, s.partsWritten, int64(wb.Len()), string(tgt.layout))
	result.Parts = wb.SheetNames()
	rep.Log(fmt.Sprintf("Saved: %s", tgt.dest))
	return nil
}

func (s *Splitter) writeCombinedCSV(ctx context.Context, tgt target, parts []Part, keyColumn string, result *domain.SplitResult, rep operations.Reporter, tracker *operations.ProgressTracker) (err error) {
	stream, err := s.files.CreateCSVStream(tgt.dest, parts[0].Table.Columns())
	if err != nil {
		return operations.NewIOError(stepSplit, err).WithContext("path", tgt.dest)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = operations.NewIOError(stepSplit, cerr).WithContext("path", tgt.dest)
		}
	}()

	for _, p := range parts {
		out := p.Table
		if keyColumn != "" {
			out = restamp(p.Table, keyColumn, p.Key)
		}
		if err := stream.WriteTable(out); err != nil {
			return operations.NewIOError(stepSplit, err).WithContext("path", tgt.dest)
		}
		s.count(ctx, s.partsWritten, 1, string(tgt.layout))
		s.count(ctx, s.rowsWritten, int64(out.Len()), "part")
		result.Parts = append(result.Parts, p.Key)
		tracker.Increment()
		rep.Log(fmt.Sprintf("Appended: %s", p.Key))
	}
	return nil
}

// restamp returns a copy of t whose keyColumn holds key on every row
func restamp(t *domain.Table, keyColumn, key string) *domain.Table {
	out := t.Clone()
	values := make([]domain.Value, out.Len())
	for i := range values {
		values[i] = domain.Text(key)
	}
	_ = out.SetColumn(keyColumn, values)
	return out
}

// fail resets the indicator and surfaces err. Outputs already flushed stay
// in place.
func (s *Splitter) fail(ctx context.Context, rep operations.Reporter, err error) error {
	rep.ReportProgress(0, events.ChannelSplit)
	rep.Log(fmt.Sprintf("Error splitting data: %v", err))
	s.logger.ErrorContext(ctx, "Split failed", slog.String("error", err.Error()))
	if operations.TypeOf(err) == "" {
		return operations.NewIOError(stepSplit, err)
	}
	return err
}

func (s *Splitter) count(ctx context.Context, c metric.Int64Counter, n int64, kind string) {
	if c == nil || n == 0 {
		return
	}
	c.Add(ctx, n, metric.WithAttributes(attribute.String("kind", kind)))
}
