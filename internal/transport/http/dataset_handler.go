package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "tabclean/internal/errors"
	"tabclean/internal/operations"
	"tabclean/internal/services"
	api "tabclean/pkg/contracts/api/v1"
	"tabclean/pkg/contracts/domain"
)

// DatasetHandler exposes the table of record and its transforms
type DatasetHandler struct {
	workspace    *services.WorkspaceService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(workspace *services.WorkspaceService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetHandler{
		workspace:    workspace,
		logger:       logger.With(slog.String("handler", "dataset")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetDataset)
	r.Post("/load", h.Load)
	r.Post("/fix-coordinates", h.FixCoordinates)
	r.Post("/geocode", h.GenerateGeocode)
	r.Post("/replace-nulls", h.ReplaceNulls)
	r.Post("/save", h.SaveAs)
	return r
}

// GetDataset handles GET /api/dataset?limit=N
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	limit := services.DefaultPreviewRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.errorHandler.HandleError(w, r, operations.NewValidationErrorf("preview", "limit must be a non-negative integer, got %q", raw))
			return
		}
		limit = n
	}

	resp := api.DatasetResponse{Source: h.workspace.Source()}
	preview, err := h.workspace.Preview(limit)
	if err == nil {
		resp.Loaded = true
		resp.Preview = preview
	} else if operations.TypeOf(err) != operations.ErrorTypeNotLoaded {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// Load handles POST /api/dataset/load
func (h *DatasetHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req domain.LoadRequest
	submit(h.errorHandler, w, r, &req, func(ctx context.Context) (*operations.Job, error) {
		return h.workspace.Load(ctx, req)
	})
}

// FixCoordinates handles POST /api/dataset/fix-coordinates
func (h *DatasetHandler) FixCoordinates(w http.ResponseWriter, r *http.Request) {
	var req domain.CoordinateRequest
	submit(h.errorHandler, w, r, &req, func(ctx context.Context) (*operations.Job, error) {
		return h.workspace.FixCoordinates(ctx, req)
	})
}

// GenerateGeocode handles POST /api/dataset/geocode
func (h *DatasetHandler) GenerateGeocode(w http.ResponseWriter, r *http.Request) {
	var req domain.GeocodeRequest
	submit(h.errorHandler, w, r, &req, func(ctx context.Context) (*operations.Job, error) {
		return h.workspace.GenerateGeocode(ctx, req)
	})
}

// ReplaceNulls handles POST /api/dataset/replace-nulls
func (h *DatasetHandler) ReplaceNulls(w http.ResponseWriter, r *http.Request) {
	var req domain.ReplaceRequest
	submit(h.errorHandler, w, r, &req, func(ctx context.Context) (*operations.Job, error) {
		return h.workspace.ReplaceNulls(ctx, req)
	})
}

// SaveAs handles POST /api/dataset/save
func (h *DatasetHandler) SaveAs(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveRequest
	submit(h.errorHandler, w, r, &req, func(ctx context.Context) (*operations.Job, error) {
		return h.workspace.SaveAs(ctx, req)
	})
}

// submit decodes the body into req, then starts the task built by start.
// start runs after decoding, so closures over req see the decoded value.
func submit(eh *apierrors.ErrorHandler, w http.ResponseWriter, r *http.Request, req interface{}, start func(ctx context.Context) (*operations.Job, error)) {
	if err := decode(r, req); err != nil {
		eh.HandleError(w, r, err)
		return
	}
	job, err := start(r.Context())
	if err != nil {
		eh.HandleError(w, r, err)
		return
	}
	accepted(w, r, job)
}
