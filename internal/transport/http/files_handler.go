package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "tabclean/internal/errors"
	"tabclean/internal/files"
	"tabclean/internal/operations"
)

// FilesHandler lists candidate source files, standing in for the open dialog
type FilesHandler struct {
	discovery    *files.Discovery
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(discovery *files.Discovery, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *FilesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilesHandler{
		discovery:    discovery,
		logger:       logger.With(slog.String("handler", "files")),
		errorHandler: errorHandler,
	}
}

// Routes returns the files routes
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.ListSourceFiles)
	r.Get("/dirs", h.ListDirectories)
	return r
}

// ListSourceFiles handles GET /api/files?dir=. The response names the
// latest file when there is one.
func (h *FilesHandler) ListSourceFiles(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	found, err := h.discovery.FindSourceFiles(dir)
	if err != nil {
		h.logger.DebugContext(r.Context(), "directory listing failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, operations.NewNotFoundError("list_files", "directory "+dir))
		return
	}
	if found == nil {
		found = []files.FileInfo{}
	}
	resp := map[string]interface{}{"files": found}
	// the most recently modified file is the usual pick for the next load
	if latest, ok := files.GetLatestFile(found); ok {
		resp["latest"] = latest.Path
	}
	render.JSON(w, r, resp)
}

// ListDirectories handles GET /api/files/dirs?dir=
func (h *FilesHandler) ListDirectories(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	dirs, err := h.discovery.ListDirectories(dir)
	if err != nil {
		h.logger.DebugContext(r.Context(), "directory listing failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, operations.NewNotFoundError("list_directories", "directory "+dir))
		return
	}
	if dirs == nil {
		dirs = []files.FileInfo{}
	}
	render.JSON(w, r, map[string]interface{}{"directories": dirs})
}
