package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/service"
	"github.com/phrazzld/taskboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskService implements service.TaskService with function fields.
type mockTaskService struct {
	ListTasksFn  func(ctx context.Context, filter service.ListFilter) ([]*domain.Task, error)
	GetTaskFn    func(ctx context.Context, id int64) (*domain.Task, error)
	CreateTaskFn func(ctx context.Context, input domain.NewTask) (*domain.Task, error)
	UpdateTaskFn func(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTaskFn func(ctx context.Context, id int64) error
	StatsFn      func(ctx context.Context) (domain.TaskStats, error)
}

func (m *mockTaskService) ListTasks(ctx context.Context, filter service.ListFilter) ([]*domain.Task, error) {
	return m.ListTasksFn(ctx, filter)
}

func (m *mockTaskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	return m.GetTaskFn(ctx, id)
}

func (m *mockTaskService) CreateTask(ctx context.Context, input domain.NewTask) (*domain.Task, error) {
	return m.CreateTaskFn(ctx, input)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	return m.UpdateTaskFn(ctx, id, patch)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, id int64) error {
	return m.DeleteTaskFn(ctx, id)
}

func (m *mockTaskService) Stats(ctx context.Context) (domain.TaskStats, error) {
	return m.StatsFn(ctx)
}

var fixedTime = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func sampleTask(id int64) *domain.Task {
	return &domain.Task{
		ID:        id,
		Title:     "Write report",
		Status:    domain.StatusOpen,
		Priority:  domain.PriorityMedium,
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}
}

func newTestRouter(t *testing.T, svc service.TaskService) http.Handler {
	t.Helper()
	_, log := logger.NewTestLogger(t)
	h := NewTaskHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/stats", h.GetStats)
		r.Get("/{id}", h.GetTask)
		r.Put("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
	})
	return r
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func fieldNames(fields []domain.FieldError) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return names
}

func TestNewTaskHandler_PanicsWithoutLogger(t *testing.T) {
	assert.Panics(t, func() { NewTaskHandler(&mockTaskService{}, nil) })
}

func TestListTasks_FilterPrecedence(t *testing.T) {
	progress := domain.StatusProgress
	high := domain.PriorityHigh

	tests := []struct {
		name   string
		query  string
		expect service.ListFilter
	}{
		{"no_filter", "", service.ListFilter{}},
		{"search_wins_over_status", "?status=progress&search=foo", service.ListFilter{Search: "foo"}},
		{"search_ignores_invalid_status", "?status=bogus&search=foo", service.ListFilter{Search: "foo"}},
		{"status_wins_over_priority", "?status=progress&priority=high", service.ListFilter{Status: &progress}},
		{"priority_only", "?priority=high", service.ListFilter{Priority: &high}},
		{"empty_values_are_absent", "?search=&status=&priority=high", service.ListFilter{Priority: &high}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got service.ListFilter
			svc := &mockTaskService{
				ListTasksFn: func(_ context.Context, filter service.ListFilter) ([]*domain.Task, error) {
					got = filter
					return []*domain.Task{sampleTask(2), sampleTask(1)}, nil
				},
			}

			rr := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/tasks"+tc.query, "")

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.expect, got)

			var tasks []TaskResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tasks))
			require.Len(t, tasks, 2)
			assert.Equal(t, int64(2), tasks[0].ID)
		})
	}
}

func TestListTasks_EmptyIsArray(t *testing.T) {
	svc := &mockTaskService{
		ListTasksFn: func(context.Context, service.ListFilter) ([]*domain.Task, error) {
			return []*domain.Task{}, nil
		},
	}

	rr := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/tasks", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListTasks_InvalidEnumFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"status", "?status=done", "status"},
		{"priority", "?priority=urgent", "priority"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTaskService{
				ListTasksFn: func(context.Context, service.ListFilter) ([]*domain.Task, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}

			rr := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/tasks"+tc.query, "")

			require.Equal(t, http.StatusBadRequest, rr.Code)
			resp := decodeError(t, rr)
			assert.Equal(t, "Invalid data", resp.Message)
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, tc.field, resp.Errors[0].Field)
			assert.Equal(t, "oneof", resp.Errors[0].Rule)
		})
	}
}

func TestListTasks_ServiceFailure(t *testing.T) {
	svc := &mockTaskService{
		ListTasksFn: func(context.Context, service.ListFilter) ([]*domain.Task, error) {
			return nil, errors.New("connection refused to postgres://admin:secret@db:5432")
		},
	}

	rr := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/tasks", "")

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, "Failed to load tasks", resp.Message)
	assert.NotContains(t, rr.Body.String(), "secret")
}

func TestGetTask(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &mockTaskService{
			GetTaskFn: func(_ context.Context, id int64) (*domain.Task, error) {
				return sampleTask(id), nil
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/tasks/7", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{
			"id": 7,
			"title": "Write report",
			"description": null,
			"status": "open",
			"priority": "medium",
			"dueDate": null,
			"createdAt": "2025-04-01T12:00:00Z",
			"updatedAt": "2025-04-01T12:00:00Z"
		}`, rr.Body.String())
	})

	t.Run("not_found", func(t *testing.T) {
		svc := &mockTaskService{
			GetTaskFn: func(context.Context, int64) (*domain.Task, error) {
				return nil, store.ErrTaskNotFound
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/tasks/99", "")

		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Task not found", decodeError(t, rr).Message)
	})

	t.Run("invalid_id", func(t *testing.T) {
		svc := &mockTaskService{
			GetTaskFn: func(context.Context, int64) (*domain.Task, error) {
				t.Fatal("service must not be called")
				return nil, nil
			},
		}

		for _, id := range []string{"abc", "1.5", "1e3"} {
			rr := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/tasks/"+id, "")

			require.Equal(t, http.StatusBadRequest, rr.Code, id)
			resp := decodeError(t, rr)
			assert.Equal(t, "Invalid task ID", resp.Message)
			assert.Equal(t, []string{"id"}, fieldNames(resp.Errors))
		}
	})

	t.Run("service_failure", func(t *testing.T) {
		svc := &mockTaskService{
			GetTaskFn: func(context.Context, int64) (*domain.Task, error) {
				return nil, service.NewTaskServiceError("get_task", "failed", errors.New("boom"))
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/tasks/1", "")

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to load task", decodeError(t, rr).Message)
	})
}

func TestCreateTask(t *testing.T) {
	t.Run("title_only", func(t *testing.T) {
		var got domain.NewTask
		svc := &mockTaskService{
			CreateTaskFn: func(_ context.Context, input domain.NewTask) (*domain.Task, error) {
				got = input
				return sampleTask(1), nil
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodPost, "/api/tasks", `{"title":"Write report"}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, domain.NewTask{Title: "Write report"}, got)

		var task TaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &task))
		assert.Equal(t, int64(1), task.ID)
		assert.Equal(t, "open", task.Status)
	})

	t.Run("all_fields", func(t *testing.T) {
		var got domain.NewTask
		svc := &mockTaskService{
			CreateTaskFn: func(_ context.Context, input domain.NewTask) (*domain.Task, error) {
				got = input
				return sampleTask(1), nil
			},
		}

		body := `{"title":"Ship","description":"v2","status":"progress","priority":"high","dueDate":"2025-05-01"}`
		rr := doRequest(t, newTestRouter(t, svc), http.MethodPost, "/api/tasks", body)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "Ship", got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, "v2", *got.Description)
		assert.Equal(t, domain.StatusProgress, got.Status)
		assert.Equal(t, domain.PriorityHigh, got.Priority)
		require.NotNil(t, got.DueDate)
		assert.True(t, got.DueDate.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("validation_errors", func(t *testing.T) {
		svc := &mockTaskService{
			CreateTaskFn: func(context.Context, domain.NewTask) (*domain.Task, error) {
				t.Fatal("service must not be called")
				return nil, nil
			},
		}

		tests := []struct {
			name   string
			body   string
			fields []string
		}{
			{"missing_title", `{}`, []string{"title"}},
			{"empty_title", `{"title":""}`, []string{"title"}},
			{"long_title", `{"title":"` + strings.Repeat("x", 256) + `"}`, []string{"title"}},
			{"bad_enums", `{"title":"a","status":"done","priority":"urgent"}`, []string{"status", "priority"}},
			{"bad_due", `{"title":"a","dueDate":"next week"}`, []string{"dueDate"}},
			{"wrong_type", `{"title":42}`, []string{"title"}},
			{"malformed", `{"title":`, []string{"body"}},
			{"empty_body", ``, []string{"body"}},
			{"trailing_data", `{"title":"a"} {}`, []string{"body"}},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				rr := doRequest(t, newTestRouter(t, svc), http.MethodPost, "/api/tasks", tc.body)

				require.Equal(t, http.StatusBadRequest, rr.Code)
				resp := decodeError(t, rr)
				assert.Equal(t, "Invalid data", resp.Message)
				assert.ElementsMatch(t, tc.fields, fieldNames(resp.Errors))
			})
		}
	})

	t.Run("service_failure", func(t *testing.T) {
		svc := &mockTaskService{
			CreateTaskFn: func(context.Context, domain.NewTask) (*domain.Task, error) {
				return nil, errors.New("disk full")
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodPost, "/api/tasks", `{"title":"a"}`)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to create task", decodeError(t, rr).Message)
	})
}

func TestUpdateTask(t *testing.T) {
	t.Run("partial_patch", func(t *testing.T) {
		var (
			gotID    int64
			gotPatch domain.TaskPatch
		)
		svc := &mockTaskService{
			UpdateTaskFn: func(_ context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
				gotID, gotPatch = id, patch
				return sampleTask(id), nil
			},
		}

		body := `{"status":"completed","description":null,"dueDate":"2025-06-01T09:30:00+02:00"}`
		rr := doRequest(t, newTestRouter(t, svc), http.MethodPut, "/api/tasks/3", body)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(3), gotID)
		assert.Nil(t, gotPatch.Title)
		assert.Nil(t, gotPatch.Priority)
		require.NotNil(t, gotPatch.Status)
		assert.Equal(t, domain.StatusCompleted, *gotPatch.Status)
		assert.True(t, gotPatch.Description.IsNull())
		require.True(t, gotPatch.DueDate.Set)
		require.NotNil(t, gotPatch.DueDate.Value)
		assert.True(t, gotPatch.DueDate.Value.Equal(time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC)))
	})

	t.Run("empty_object_is_noop_patch", func(t *testing.T) {
		var gotPatch domain.TaskPatch
		svc := &mockTaskService{
			UpdateTaskFn: func(_ context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
				gotPatch = patch
				return sampleTask(id), nil
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodPut, "/api/tasks/3", `{}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.TaskPatch{}, gotPatch)
	})

	t.Run("clear_due_date", func(t *testing.T) {
		var gotPatch domain.TaskPatch
		svc := &mockTaskService{
			UpdateTaskFn: func(_ context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
				gotPatch = patch
				return sampleTask(id), nil
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodPut, "/api/tasks/3", `{"dueDate":null}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, gotPatch.DueDate.IsNull())
		assert.False(t, gotPatch.Description.Set)
	})

	t.Run("validation_errors", func(t *testing.T) {
		svc := &mockTaskService{
			UpdateTaskFn: func(context.Context, int64, domain.TaskPatch) (*domain.Task, error) {
				t.Fatal("service must not be called")
				return nil, nil
			},
		}

		tests := []struct {
			name   string
			body   string
			fields []string
		}{
			{"null_title", `{"title":null}`, []string{"title"}},
			{"empty_title", `{"title":""}`, []string{"title"}},
			{"bad_status", `{"status":"done"}`, []string{"status"}},
			{"bad_priority", `{"priority":"urgent"}`, []string{"priority"}},
			{"bad_due", `{"dueDate":"soon"}`, []string{"dueDate"}},
			{"malformed", `not json`, []string{"body"}},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				rr := doRequest(t, newTestRouter(t, svc), http.MethodPut, "/api/tasks/3", tc.body)

				require.Equal(t, http.StatusBadRequest, rr.Code)
				assert.ElementsMatch(t, tc.fields, fieldNames(decodeError(t, rr).Errors))
			})
		}
	})

	t.Run("invalid_id", func(t *testing.T) {
		rr := doRequest(t, newTestRouter(t, &mockTaskService{}), http.MethodPut, "/api/tasks/x", `{"title":"a"}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid task ID", decodeError(t, rr).Message)
	})

	t.Run("not_found", func(t *testing.T) {
		svc := &mockTaskService{
			UpdateTaskFn: func(context.Context, int64, domain.TaskPatch) (*domain.Task, error) {
				return nil, store.ErrTaskNotFound
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodPut, "/api/tasks/3", `{"title":"a"}`)

		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Task not found", decodeError(t, rr).Message)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		var gotID int64
		svc := &mockTaskService{
			DeleteTaskFn: func(_ context.Context, id int64) error {
				gotID = id
				return nil
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodDelete, "/api/tasks/5", "")

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
		assert.Equal(t, int64(5), gotID)
	})

	t.Run("not_found", func(t *testing.T) {
		svc := &mockTaskService{
			DeleteTaskFn: func(context.Context, int64) error { return store.ErrTaskNotFound },
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodDelete, "/api/tasks/5", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid_id", func(t *testing.T) {
		rr := doRequest(t, newTestRouter(t, &mockTaskService{}), http.MethodDelete, "/api/tasks/five", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("service_failure", func(t *testing.T) {
		svc := &mockTaskService{
			DeleteTaskFn: func(context.Context, int64) error { return errors.New("boom") },
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodDelete, "/api/tasks/5", "")

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to delete task", decodeError(t, rr).Message)
	})
}

func TestGetStats(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := &mockTaskService{
			StatsFn: func(context.Context) (domain.TaskStats, error) {
				return domain.TaskStats{Total: 3, Open: 1, InProgress: 1, Completed: 1, Overdue: 1}, nil
			},
			GetTaskFn: func(context.Context, int64) (*domain.Task, error) {
				t.Fatal("stats must not be routed to GetTask")
				return nil, nil
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/tasks/stats", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t,
			`{"total":3,"open":1,"inProgress":1,"completed":1,"overdue":1}`,
			rr.Body.String())
	})

	t.Run("service_failure", func(t *testing.T) {
		svc := &mockTaskService{
			StatsFn: func(context.Context) (domain.TaskStats, error) {
				return domain.TaskStats{}, errors.New("boom")
			},
		}

		rr := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/tasks/stats", "")

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to load statistics", decodeError(t, rr).Message)
	})
}
