package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/taskboard/internal/api"
	apiMiddleware "github.com/phrazzld/taskboard/internal/api/middleware"
	"github.com/phrazzld/taskboard/internal/service"
	"github.com/phrazzld/taskboard/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := quietLogger()

	svc, err := service.NewTaskService(memory.New(memory.WithLogger(log)), log)
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(svc, log))
	t.Cleanup(srv.Close)
	return srv
}

func send(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestRouter_Health(t *testing.T) {
	srv := newTestAPIServer(t)

	resp, body := send(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
}

func TestRouter_TraceHeader(t *testing.T) {
	srv := newTestAPIServer(t)

	resp, body := send(t, srv, http.MethodGet, "/api/tasks/999", "")

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	traceID := resp.Header.Get(apiMiddleware.TraceIDHeader)
	require.Len(t, traceID, 32)
	assert.Contains(t, body, traceID)
}

func TestRouter_TaskFlow(t *testing.T) {
	srv := newTestAPIServer(t)

	resp, body := send(t, srv, http.MethodPost, "/api/tasks", `{"title":"Report bug"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	var created api.TaskResponse
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Equal(t, "open", created.Status)
	assert.Equal(t, "medium", created.Priority)
	assert.Nil(t, created.Description)
	assert.Nil(t, created.DueDate)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	resp, _ = send(t, srv, http.MethodPost, "/api/tasks", `{"title":"Buy milk","status":"progress"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// stats is not captured by /{id}
	resp, body = send(t, srv, http.MethodGet, "/api/tasks/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"total":2,"open":1,"inProgress":1,"completed":0,"overdue":0}`, body)

	resp, body = send(t, srv, http.MethodGet, "/api/tasks?status=progress&search=report", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []api.TaskResponse
	require.NoError(t, json.Unmarshal([]byte(body), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Report bug", found[0].Title)

	resp, body = send(t, srv, http.MethodPut, "/api/tasks/1", `{"priority":"high","dueDate":"2000-01-01"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, body = send(t, srv, http.MethodGet, "/api/tasks/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"total":2,"open":1,"inProgress":1,"completed":0,"overdue":1}`, body)

	resp, _ = send(t, srv, http.MethodDelete, "/api/tasks/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = send(t, srv, http.MethodGet, "/api/tasks/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = send(t, srv, http.MethodPut, "/api/tasks/1", `{"title":"gone"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = send(t, srv, http.MethodDelete, "/api/tasks/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
