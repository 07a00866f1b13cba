package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tabclean/internal/operations"
)

// Problem types following RFC 7807
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeRateLimit   = "/errors/rate-limit"
	TypeInternal    = "/errors/internal"
	TypeTimeout     = "/errors/timeout"
	TypeUnsupported = "/errors/unsupported-media-type"

	TypeNotLoaded = "/errors/dataset/not-loaded"
	TypeBusy      = "/errors/operation/busy"
	TypeStorage   = "/errors/storage"
)

// CancelledResponse is rendered with 200 when the caller dismissed an
// operation's destination
type CancelledResponse struct {
	Cancelled bool   `json:"cancelled"`
	Detail    string `json:"detail,omitempty"`
}

// ErrorHandler converts errors to RFC 7807 responses
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and renders it as problem details
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	// a dismissed destination is an outcome, not a failure
	if operations.IsCancelled(err) {
		h.logger.InfoContext(r.Context(), "operation cancelled",
			slog.String("request_id", reqID),
			slog.String("path", r.URL.Path))
		render.JSON(w, r, CancelledResponse{Cancelled: true, Detail: err.Error()})
		return
	}

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", string(debug.Stack()))
	}

	render.Render(w, r, problem)
}

// ErrorToProblem maps an error onto problem details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProblem(apiErr, r)
	}

	var opErr *operations.OperationError
	if errors.As(err, &opErr) {
		return operationErrorToProblem(opErr, r)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

func operationErrorToProblem(opErr *operations.OperationError, r *http.Request) *ProblemDetails {
	var (
		status int
		typ    string
		title  string
		detail = opErr.Message
	)
	switch opErr.Type {
	case operations.ErrorTypeValidation:
		status, typ, title = http.StatusBadRequest, TypeValidation, "Validation Failed"
	case operations.ErrorTypeNotLoaded:
		status, typ, title = http.StatusConflict, TypeNotLoaded, "No Data Loaded"
	case operations.ErrorTypeBusy:
		status, typ, title = http.StatusConflict, TypeBusy, "Operation In Progress"
	case operations.ErrorTypeNotFound:
		status, typ, title = http.StatusNotFound, TypeNotFound, "Resource Not Found"
	case operations.ErrorTypeIO:
		status, typ, title = http.StatusInternalServerError, TypeStorage, "Storage Error"
		if opErr.Cause != nil {
			detail = fmt.Sprintf("%s: %v", opErr.Message, opErr.Cause)
		}
	default:
		status, typ, title = http.StatusInternalServerError, TypeInternal, "Internal Server Error"
	}

	problem := NewProblemDetails(status, typ, title, detail, r.URL.Path).
		WithExtension("error_type", string(opErr.Type))
	if opErr.Step != "" {
		problem.WithExtension("operation", opErr.Step)
	}
	for k, v := range opErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

func apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "INVALID_REQUEST":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "UNSUPPORTED_MEDIA_TYPE":
		problemType = TypeUnsupported
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)
	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// HandlePanic renders a recovered panic as a 500 problem
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())))

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
	}

	render.Render(w, r, problem)
}

// NotFound renders a 404 problem for unknown routes
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		ErrNotFound.Message,
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed renders a 405 problem
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeInternal,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// RecoveryMiddleware provides panic recovery with problem responses
func RecoveryMiddleware(handler *ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					handler.HandlePanic(w, r, rec)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
