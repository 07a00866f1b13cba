package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"tabclean/internal/dataprocessing"
	"tabclean/internal/files"
	"tabclean/internal/operations"
	"tabclean/internal/splitter"
	"tabclean/internal/validation"
	"tabclean/pkg/contracts/domain"
	"tabclean/pkg/contracts/events"
)

// Operation kinds, also used as job kinds and error steps
const (
	OpLoad           = "load"
	OpLoadSplit      = "load_split"
	OpFixCoordinates = "fix_coordinates"
	OpGeocode        = "generate_geocode"
	OpReplaceNulls   = "replace_nulls"
	OpSaveAs         = "save_as"
	OpSplitColumn    = "split_column"
	OpSplitRows      = "split_rows"
)

// DefaultPreviewRows bounds the sample returned with a preview
const DefaultPreviewRows = 50

// WorkspaceService owns the table of record and runs every cleaning and
// splitting operation against it, one at a time. Transforms work on a private
// copy which replaces the table of record only when the operation succeeds.
type WorkspaceService struct {
	files     *files.Manager
	splitter  *splitter.Splitter
	jobs      *operations.JobQueue
	validator *validation.FileValidator
	reporter  operations.Reporter
	logger    *slog.Logger

	mu          sync.RWMutex
	table       *domain.Table
	source      string
	splitTable  *domain.Table
	splitSource string
}

// NewWorkspaceService creates a workspace. reporter receives the
// human-readable messages and progress of every operation.
func NewWorkspaceService(fm *files.Manager, sp *splitter.Splitter, jobs *operations.JobQueue, reporter operations.Reporter, logger *slog.Logger) *WorkspaceService {
	if logger == nil {
		logger = slog.Default()
	}
	if reporter == nil {
		reporter = operations.NopReporter{}
	}
	return &WorkspaceService{
		files:     fm,
		splitter:  sp,
		jobs:      jobs,
		validator: validation.NewFileValidator(logger),
		reporter:  reporter,
		logger:    logger.With(slog.String("component", "workspace")),
	}
}

// Await waits for a submitted job and returns its result. It takes the
// submit return values directly: Await(ws.Load(ctx, req)).
func Await(job *operations.Job, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	if err := job.Wait(context.Background()); err != nil {
		return nil, err
	}
	return job.Snapshot().Result, nil
}

// Job looks up a submitted operation
func (s *WorkspaceService) Job(id string) (*operations.Job, error) {
	return s.jobs.GetJob(id)
}

// Busy reports whether an operation is running
func (s *WorkspaceService) Busy() bool {
	return s.jobs.Busy()
}

// Source returns the path of the table of record
func (s *WorkspaceService) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Loaded reports whether a table of record exists
func (s *WorkspaceService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table != nil
}

// Table returns a copy of the table of record
func (s *WorkspaceService) Table() (*domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, operations.NewNotLoadedError("table")
	}
	return s.table.Clone(), nil
}

// Preview returns at most limit rows of the table of record
func (s *WorkspaceService) Preview(limit int) (domain.Preview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return domain.Preview{}, operations.NewNotLoadedError("preview")
	}
	return domain.NewPreview(s.table, limit), nil
}

// SplitSource describes the all-text copy used for splitting
func (s *WorkspaceService) SplitSource() (string, []string, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.splitTable == nil {
		return "", nil, 0, false
	}
	return s.splitSource, s.splitTable.Columns(), s.splitTable.Len(), true
}

// Load reads path into the table of record. Progress goes to the load
// channel: 0 when reading starts and 100 once the table is in place.
func (s *WorkspaceService) Load(ctx context.Context, req domain.LoadRequest) (*operations.Job, error) {
	if err := validation.Struct(OpLoad, req); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateSourceFile(req.Path); err != nil {
		return nil, err
	}

	return s.jobs.Submit(ctx, OpLoad, func(ctx context.Context) (interface{}, error) {
		s.reporter.Log("Starting to load file...")
		s.reporter.ReportProgress(0, events.ChannelLoad)

		if strings.EqualFold(filepath.Ext(req.Path), ".csv") {
			s.reporter.Log("Loading CSV file...")
		} else {
			s.reporter.Log("Loading Excel file...")
		}

		table, err := s.files.Load(req.Path, false)
		if err != nil {
			s.reporter.ReportProgress(0, events.ChannelLoad)
			s.reporter.Log(fmt.Sprintf("Error loading file: %v", err))
			return nil, err
		}

		s.mu.Lock()
		s.table = table
		s.source = req.Path
		// a stale split source would describe a different file
		if s.splitSource != req.Path {
			s.splitTable = nil
			s.splitSource = ""
		}
		s.mu.Unlock()

		s.logger.InfoContext(ctx, "Table loaded",
			slog.String("path", req.Path),
			slog.Int("rows", table.Len()),
			slog.Int("columns", table.Width()))
		s.reporter.ReportProgress(100, events.ChannelLoad)
		s.reporter.Log("File loaded successfully.")
		return domain.NewPreview(table, DefaultPreviewRows), nil
	})
}

// OpenSplitSource loads path with every value kept as text so that split
// outputs preserve the source representation. An empty path reuses the
// source of the table of record.
func (s *WorkspaceService) OpenSplitSource(ctx context.Context, path string) (*operations.Job, error) {
	if path == "" {
		path = s.Source()
	}
	if path == "" {
		return nil, operations.NewNotLoadedError(OpLoadSplit)
	}
	if err := s.validator.ValidateSourceFile(path); err != nil {
		return nil, err
	}

	return s.jobs.Submit(ctx, OpLoadSplit, func(ctx context.Context) (interface{}, error) {
		table, err := s.loadSplitTable(path)
		if err != nil {
			return nil, err
		}
		return table.Columns(), nil
	})
}

func (s *WorkspaceService) loadSplitTable(path string) (*domain.Table, error) {
	s.reporter.Log("Loading data for Splitter...")
	table, err := s.files.Load(path, true)
	if err != nil {
		s.reporter.Log(fmt.Sprintf("Error loading data for Splitter: %v", err))
		return nil, err
	}
	s.mu.Lock()
	s.splitTable = table
	s.splitSource = path
	s.mu.Unlock()
	s.reporter.Log("Data loaded successfully for Splitter.")
	return table, nil
}

// FixCoordinates fills missing latitude and longitude values with the mean
// of each column
func (s *WorkspaceService) FixCoordinates(ctx context.Context, req domain.CoordinateRequest) (*operations.Job, error) {
	if err := validation.Struct(OpFixCoordinates, req); err != nil {
		return nil, err
	}
	return s.transform(ctx, OpFixCoordinates, func(table *domain.Table) (interface{}, error) {
		lat, lon, err := dataprocessing.FixCoordinates(table, req.LatColumn, req.LonColumn, s.reporter)
		if err != nil {
			return nil, err
		}
		return domain.CoordinateResult{LatMean: finite(lat), LonMean: finite(lon)}, nil
	})
}

// GenerateGeocode derives CODE1, CODE2 and GEOCODE from the administrative
// columns and drops them
func (s *WorkspaceService) GenerateGeocode(ctx context.Context, req domain.GeocodeRequest) (*operations.Job, error) {
	req.Region = strings.TrimSpace(req.Region)
	if err := dataprocessing.ValidateRegion(req.Region); err != nil {
		return nil, err
	}
	return s.transform(ctx, OpGeocode, func(table *domain.Table) (interface{}, error) {
		if err := dataprocessing.GenerateGeocode(table, req.Region, s.reporter); err != nil {
			return nil, err
		}
		return domain.NewPreview(table, DefaultPreviewRows), nil
	})
}

// ReplaceNulls rewrites every null-like cell and persists the result to
// req.Destination. An empty destination cancels before the table changes.
func (s *WorkspaceService) ReplaceNulls(ctx context.Context, req domain.ReplaceRequest) (*operations.Job, error) {
	if err := validation.Struct(OpReplaceNulls, req); err != nil {
		return nil, err
	}
	if req.Destination != "" {
		if _, err := domain.FormatFromPath(req.Destination); err != nil {
			return nil, operations.NewValidationError(OpReplaceNulls, err.Error())
		}
	}

	return s.transform(ctx, OpReplaceNulls, func(table *domain.Table) (interface{}, error) {
		if req.Destination == "" {
			s.reporter.Log("Save operation canceled.")
			return domain.ReplaceResult{Cancelled: true}, errSkipCommit
		}
		n, err := dataprocessing.ReplaceNulls(table, req.Replacement, s.reporter)
		if err != nil {
			return nil, err
		}
		if err := s.files.SaveAs(table, req.Destination); err != nil {
			s.reporter.Log(fmt.Sprintf("Error saving file: %v", err))
			return nil, err
		}
		s.reporter.Log(fmt.Sprintf("File saved as: %s", req.Destination))
		return domain.ReplaceResult{Replaced: n, Path: req.Destination}, nil
	})
}

// SaveAs persists the table of record. The format follows the extension.
func (s *WorkspaceService) SaveAs(ctx context.Context, req domain.SaveRequest) (*operations.Job, error) {
	if !s.Loaded() {
		return nil, operations.NewNotLoadedError(OpSaveAs)
	}
	if req.Destination != "" {
		if _, err := domain.FormatFromPath(req.Destination); err != nil {
			return nil, operations.NewValidationError(OpSaveAs, err.Error())
		}
	}

	return s.jobs.Submit(ctx, OpSaveAs, func(ctx context.Context) (interface{}, error) {
		if req.Destination == "" {
			s.reporter.Log("Save operation canceled.")
			return domain.SaveResult{Cancelled: true}, nil
		}
		s.mu.RLock()
		table := s.table
		s.mu.RUnlock()
		if table == nil {
			return nil, operations.NewNotLoadedError(OpSaveAs)
		}
		if err := s.files.SaveAs(table, req.Destination); err != nil {
			s.reporter.Log(fmt.Sprintf("Error saving file: %v", err))
			return nil, err
		}
		s.reporter.Log(fmt.Sprintf("File saved as: %s", req.Destination))
		return domain.SaveResult{Path: req.Destination}, nil
	})
}

// SplitByColumn partitions the split source by the values of one column
func (s *WorkspaceService) SplitByColumn(ctx context.Context, req domain.ColumnSplitRequest) (*operations.Job, error) {
	if err := validation.Struct(OpSplitColumn, req); err != nil {
		return nil, err
	}
	if err := s.requireSplitSource(OpSplitColumn); err != nil {
		return nil, err
	}
	return s.jobs.Submit(ctx, OpSplitColumn, func(ctx context.Context) (interface{}, error) {
		table, err := s.splitInput()
		if err != nil {
			return nil, err
		}
		return s.splitter.SplitByColumn(ctx, table, req, s.reporter)
	})
}

// SplitByRows cuts the split source into chunks of req.ChunkSize rows
func (s *WorkspaceService) SplitByRows(ctx context.Context, req domain.RowSplitRequest) (*operations.Job, error) {
	if err := validation.Struct(OpSplitRows, req); err != nil {
		return nil, err
	}
	if err := s.requireSplitSource(OpSplitRows); err != nil {
		return nil, err
	}
	return s.jobs.Submit(ctx, OpSplitRows, func(ctx context.Context) (interface{}, error) {
		table, err := s.splitInput()
		if err != nil {
			return nil, err
		}
		return s.splitter.SplitByRows(ctx, table, req, s.reporter)
	})
}

func (s *WorkspaceService) requireSplitSource(step string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.splitTable == nil && s.source == "" {
		return operations.NewNotLoadedError(step)
	}
	return nil
}

// splitInput returns the all-text split table, loading it from the source of
// the table of record on first use
func (s *WorkspaceService) splitInput() (*domain.Table, error) {
	s.mu.RLock()
	table, source := s.splitTable, s.source
	s.mu.RUnlock()
	if table != nil {
		return table, nil
	}
	return s.loadSplitTable(source)
}

// errSkipCommit ends a transform successfully without replacing the table
var errSkipCommit = errors.New("skip commit")

// transform runs fn on a copy of the table of record and swaps the copy in
// when fn succeeds
func (s *WorkspaceService) transform(ctx context.Context, kind string, fn func(table *domain.Table) (interface{}, error)) (*operations.Job, error) {
	if !s.Loaded() {
		return nil, operations.NewNotLoadedError(kind)
	}
	return s.jobs.Submit(ctx, kind, func(ctx context.Context) (interface{}, error) {
		s.mu.RLock()
		current := s.table
		s.mu.RUnlock()
		if current == nil {
			return nil, operations.NewNotLoadedError(kind)
		}

		work := current.Clone()
		result, err := fn(work)
		if errors.Is(err, errSkipCommit) {
			return result, nil
		}
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.table = work
		s.mu.Unlock()
		s.logger.InfoContext(ctx, "Table updated",
			slog.String("operation", kind),
			slog.Int("rows", work.Len()),
			slog.Int("columns", work.Width()))
		s.reporter.Log("Data updated successfully.")
		return result, nil
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
