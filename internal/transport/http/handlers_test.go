package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "tabclean/internal/errors"
	"tabclean/internal/files"
	"tabclean/internal/operations"
	"tabclean/internal/services"
	"tabclean/internal/shared/testutil"
	"tabclean/internal/splitter"
	api "tabclean/pkg/contracts/api/v1"
)

type testServer struct {
	router    chi.Router
	workspace *services.WorkspaceService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	fm := files.NewManager(files.Options{})
	jobs := operations.NewJobQueue(logger, nil)
	t.Cleanup(func() { _ = jobs.Stop(5 * time.Second) })

	ws := services.NewWorkspaceService(fm, splitter.NewSplitter(fm, splitter.Options{}, logger), jobs, operations.NopReporter{}, logger)
	eh := apierrors.NewErrorHandler(logger, false)

	r := chi.NewRouter()
	r.NotFound(eh.NotFound)
	r.Route("/api", func(r chi.Router) {
		r.Mount("/dataset", NewDatasetHandler(ws, logger, eh).Routes())
		r.Mount("/split", NewSplitHandler(ws, logger, eh).Routes())
		r.Mount("/tasks", NewTaskHandler(ws, logger, eh).Routes())
		r.Mount("/files", NewFilesHandler(files.NewDiscovery(""), logger, eh).Routes())
	})
	return &testServer{router: r, workspace: ws}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// run submits an operation, waits for it and returns its final status
func (s *testServer) run(t *testing.T, path string, body interface{}) api.TaskStatusResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var acc api.TaskAccepted
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	assert.Equal(t, "/api/tasks/"+acc.TaskID, rec.Header().Get("Location"))

	job, err := s.workspace.Job(acc.TaskID)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	select {
	case <-job.Done():
	case <-ctx.Done():
		t.Fatalf("task %s did not finish", acc.TaskID)
	}

	rec = s.do(t, http.MethodGet, "/api/tasks/"+acc.TaskID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status api.TaskStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return status
}

func problemType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	typ, _ := body["type"].(string)
	return typ
}

func TestDatasetLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/dataset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ds api.DatasetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
	assert.False(t, ds.Loaded)

	status := s.run(t, "/api/dataset/load", map[string]string{"path": testutil.WriteSurveyCSV(t)})
	assert.Equal(t, "completed", status.Status)

	rec = s.do(t, http.MethodGet, "/api/dataset?limit=2", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
	assert.True(t, ds.Loaded)
	assert.Equal(t, 5, ds.Preview.Rows)
	assert.Len(t, ds.Preview.Sample, 2)

	status = s.run(t, "/api/dataset/fix-coordinates", map[string]string{"lat_column": "Latitude", "lon_column": "Longitude"})
	assert.Equal(t, "completed", status.Status)
	result, ok := status.Result.(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, -6.95, result["lat_mean"], 1e-9)

	out := filepath.Join(t.TempDir(), "clean.xlsx")
	status = s.run(t, "/api/dataset/save", map[string]string{"destination": out})
	assert.Equal(t, "completed", status.Status)
	assert.Equal(t, out, status.Output)
	assert.FileExists(t, out)
}

func TestDatasetCancelledSave(t *testing.T) {
	s := newTestServer(t)
	s.run(t, "/api/dataset/load", map[string]string{"path": testutil.WriteSurveyCSV(t)})

	status := s.run(t, "/api/dataset/replace-nulls", map[string]string{"replacement": "0"})
	assert.Equal(t, "completed", status.Status)
	assert.True(t, status.Cancelled)
	assert.Empty(t, status.Output)
}

func TestDatasetErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
		wantType   string
	}{
		{"transform before load", http.MethodPost, "/api/dataset/fix-coordinates",
			map[string]string{"lat_column": "Latitude", "lon_column": "Longitude"}, http.StatusConflict, apierrors.TypeNotLoaded},
		{"missing path", http.MethodPost, "/api/dataset/load",
			map[string]string{}, http.StatusBadRequest, apierrors.TypeValidation},
		{"bad region", http.MethodPost, "/api/dataset/geocode",
			map[string]string{"region": "7"}, http.StatusBadRequest, apierrors.TypeValidation},
		{"bad limit", http.MethodGet, "/api/dataset?limit=x", nil, http.StatusBadRequest, apierrors.TypeValidation},
		{"unknown task", http.MethodGet, "/api/tasks/nope", nil, http.StatusNotFound, apierrors.TypeNotFound},
		{"unknown route", http.MethodGet, "/api/nope", nil, http.StatusNotFound, apierrors.TypeNotFound},
		{"zero chunk", http.MethodPost, "/api/split/rows",
			map[string]interface{}{"chunk_size": 0, "layout": "folder", "format": "csv"}, http.StatusBadRequest, apierrors.TypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantType, problemType(t, rec))
		})
	}
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/dataset/load", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.TypeValidation, problemType(t, rec))
}

func TestSplitByColumnEndpoint(t *testing.T) {
	s := newTestServer(t)
	src := testutil.WriteSurveyCSV(t)

	status := s.run(t, "/api/split/source", map[string]string{"path": src})
	require.Equal(t, "completed", status.Status)

	rec := s.do(t, http.MethodGet, "/api/split/source", nil)
	var source api.SplitSourceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &source))
	assert.True(t, source.Loaded)
	assert.Contains(t, source.Columns, "PDISTRICT")
	assert.Equal(t, 5, source.Rows)

	dest := t.TempDir()
	status = s.run(t, "/api/split/column", map[string]string{
		"column":      "PDISTRICT",
		"layout":      "folder",
		"format":      "csv",
		"destination": dest,
	})
	require.Equal(t, "completed", status.Status, status.Error)
	require.NotNil(t, status.Split)
	assert.Len(t, status.Split.Parts, 2)
	assert.Equal(t, 2, status.Split.InvalidRows)
	assert.FileExists(t, filepath.Join(dest, "Invalid_Rows.xlsx"))
}

func TestSplitByRowsCancelled(t *testing.T) {
	s := newTestServer(t)
	s.run(t, "/api/split/source", map[string]string{"path": testutil.WriteSurveyCSV(t)})

	status := s.run(t, "/api/split/rows", map[string]interface{}{
		"chunk_size": 2,
		"layout":     "single",
		"format":     "xlsx",
	})
	assert.Equal(t, "completed", status.Status)
	assert.True(t, status.Cancelled)
}

func TestFilesEndpoint(t *testing.T) {
	s := newTestServer(t)
	src := testutil.WriteSurveyCSV(t)
	testutil.WriteFile(t, "notes.txt", "skip")

	rec := s.do(t, http.MethodGet, "/api/files?dir="+filepath.Dir(src), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Files  []files.FileInfo `json:"files"`
		Latest string           `json:"latest"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Files, 1)
	assert.Equal(t, filepath.Base(src), body.Files[0].Name)
	assert.Equal(t, body.Files[0].Path, body.Latest)

	rec = s.do(t, http.MethodGet, "/api/files?dir="+filepath.Join(t.TempDir(), "missing"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
