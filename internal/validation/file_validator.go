package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tabclean/internal/operations"
	"tabclean/pkg/contracts/domain"
)

// FileValidator runs pre-flight checks on sources and destinations before
// any table is touched
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateSourceFile checks path names a readable .csv or .xlsx file
func (v *FileValidator) ValidateSourceFile(path string) error {
	if path == "" {
		return operations.NewValidationError("load", "please select a file first")
	}
	if _, err := domain.FormatFromPath(path); err != nil {
		v.logger.Error("Unsupported source file",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return operations.NewValidationError("load", err.Error())
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return operations.NewValidationErrorf("load", "file %s is a temporary Excel file", path)
	}
	return v.ValidateFile(path)
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return operations.NewNotFoundError("load", fmt.Sprintf("file %s", path))
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return operations.NewIOError("load", fmt.Errorf("failed to stat file %s: %w", path, err))
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return operations.NewValidationErrorf("load", "%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return operations.NewIOError("load", fmt.Errorf("file %s is not readable: %w", path, err))
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateDestinationFile checks a single-file destination against the
// requested format. A destination without an extension gets the format's
// extension appended.
func (v *FileValidator) ValidateDestinationFile(step, path string, format domain.Format) (string, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return path + format.Extension(), nil
	}
	got, err := domain.FormatFromPath(path)
	if err != nil {
		return "", operations.NewValidationError(step, err.Error())
	}
	if got != format {
		return "", operations.NewValidationErrorf(step,
			"destination extension %s does not match format %s", ext, format)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "", operations.NewValidationErrorf(step, "%s is a directory, not a file", path)
	}
	return path, nil
}

// ValidateOutputDirectory rejects a destination directory that exists as a
// regular file. A missing directory is fine; writers create it.
func (v *FileValidator) ValidateOutputDirectory(step, dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return operations.NewIOError(step, fmt.Errorf("failed to stat directory %s: %w", dir, err))
	}
	if !info.IsDir() {
		v.logger.Error("Output path is not a directory",
			slog.String("path", dir))
		return operations.NewValidationErrorf(step, "%s is not a directory", dir)
	}
	return nil
}
