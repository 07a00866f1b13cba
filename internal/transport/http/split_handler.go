package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "tabclean/internal/errors"
	"tabclean/internal/operations"
	"tabclean/internal/services"
	api "tabclean/pkg/contracts/api/v1"
	"tabclean/pkg/contracts/domain"
)

// SplitHandler exposes the partitioner
type SplitHandler struct {
	workspace    *services.WorkspaceService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSplitHandler creates a new split handler
func NewSplitHandler(workspace *services.WorkspaceService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SplitHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SplitHandler{
		workspace:    workspace,
		logger:       logger.With(slog.String("handler", "split")),
		errorHandler: errorHandler,
	}
}

// Routes returns the split routes
func (h *SplitHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/source", h.GetSource)
	r.Post("/source", h.OpenSource)
	r.Post("/column", h.SplitByColumn)
	r.Post("/rows", h.SplitByRows)
	return r
}

// GetSource handles GET /api/split/source and lists the selectable grouping
// columns once the split source has loaded
func (h *SplitHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	source, columns, rows, loaded := h.workspace.SplitSource()
	if columns == nil {
		columns = []string{}
	}
	render.JSON(w, r, api.SplitSourceResponse{
		Source:  source,
		Loaded:  loaded,
		Columns: columns,
		Rows:    rows,
	})
}

// OpenSource handles POST /api/split/source. An empty path reuses the
// dataset's source file.
func (h *SplitHandler) OpenSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	submit(h.errorHandler, w, r, &req, func(ctx context.Context) (*operations.Job, error) {
		return h.workspace.OpenSplitSource(ctx, req.Path)
	})
}

// SplitByColumn handles POST /api/split/column
func (h *SplitHandler) SplitByColumn(w http.ResponseWriter, r *http.Request) {
	var req domain.ColumnSplitRequest
	submit(h.errorHandler, w, r, &req, func(ctx context.Context) (*operations.Job, error) {
		return h.workspace.SplitByColumn(ctx, req)
	})
}

// SplitByRows handles POST /api/split/rows
func (h *SplitHandler) SplitByRows(w http.ResponseWriter, r *http.Request) {
	var req domain.RowSplitRequest
	submit(h.errorHandler, w, r, &req, func(ctx context.Context) (*operations.Job, error) {
		return h.workspace.SplitByRows(ctx, req)
	})
}
