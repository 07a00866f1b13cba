package http

import (
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

// TaskHandler reports the state of submitted operations
type TaskHandler struct {
	workspace    *services.WorkspaceService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(workspace *services.WorkspaceService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		workspace:    workspace,
		logger:       logger.With(slog.String("handler", "task")),
		errorHandler: errorHandler,
	}
}

// Routes returns the task routes
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/{id}", h.GetTask)
	return r
}

// GetTask handles GET /api/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	job, err := h.workspace.Job(chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, TaskStatus(job.Snapshot()))
}

// TaskStatus converts a job snapshot into its wire form
func TaskStatus(snap operations.JobSnapshot) api.TaskStatusResponse {
	resp := api.TaskStatusResponse{
		TaskID:      snap.ID,
		Kind:        snap.Kind,
		Status:      string(snap.Status),
		CreatedAt:   snap.CreatedAt,
		CompletedAt: snap.CompletedAt,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
		resp.Cancelled = operations.IsCancelled(snap.Err)
	}

	switch result := snap.Result.(type) {
	case nil:
	case *domain.SplitResult:
		if result != nil {
			resp.Split = result
			resp.Output = result.Destination
			resp.Cancelled = result.Cancelled
		}
	case domain.ReplaceResult:
		resp.Output = result.Path
		resp.Cancelled = result.Cancelled
		resp.Result = result
	case domain.SaveResult:
		resp.Output = result.Path
		resp.Cancelled = result.Cancelled
	default:
		resp.Result = result
	}
	return resp
}
