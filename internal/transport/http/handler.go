package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "tabclean/internal/errors"
	"tabclean/internal/operations"
	api "tabclean/pkg/contracts/api/v1"
)

// decode reads a JSON body into v. An empty body leaves v at its zero value
// so validation reports the missing fields.
func decode(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return apierrors.InvalidRequestWithError(err)
	}
	return nil
}

// accepted answers 202 with the task handle
func accepted(w http.ResponseWriter, r *http.Request, job *operations.Job) {
	snap := job.Snapshot()
	w.Header().Set("Location", "/api/tasks/"+snap.ID)
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, api.TaskAccepted{
		TaskID: snap.ID,
		Kind:   snap.Kind,
		Status: string(snap.Status),
	})
}
