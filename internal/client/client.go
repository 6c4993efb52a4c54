package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/taskboard/internal/api"
	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/domain"
)

// HTTPDoer describes the HTTP client used to reach the API.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Filter selects tasks for ListTasks. The server applies at most one of
// Search, Status, Priority in that order.
type Filter struct {
	Search   string
	Status   domain.Status
	Priority domain.Priority
}

// Client talks to the task API over HTTP.
type Client struct {
	baseURL string
	http    HTTPDoer
}

// New creates a Client for baseURL. A nil doer uses an http.Client with a
// 30 second timeout.
func New(baseURL string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    doer,
	}
}

// ListTasks returns tasks matching filter, newest first.
func (c *Client) ListTasks(ctx context.Context, filter Filter) ([]api.TaskResponse, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Priority != "" {
		q.Set("priority", string(filter.Priority))
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	tasks := []api.TaskResponse{}
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id int64) (*api.TaskResponse, error) {
	var task api.TaskResponse
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a task and returns it as stored.
func (c *Client) CreateTask(ctx context.Context, req api.CreateTaskRequest) (*api.TaskResponse, error) {
	var task api.TaskResponse
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update. Unset fields in req are omitted from
// the request body.
func (c *Client) UpdateTask(ctx context.Context, id int64, req api.UpdateTaskRequest) (*api.TaskResponse, error) {
	var task api.TaskResponse
	if err := c.do(ctx, http.MethodPut, taskPath(id), updateBody(req), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// Stats fetches the aggregate counts.
func (c *Client) Stats(ctx context.Context) (api.StatsResponse, error) {
	var stats api.StatsResponse
	err := c.do(ctx, http.MethodGet, "/api/tasks/stats", nil, &stats)
	return stats, err
}

func taskPath(id int64) string {
	return "/api/tasks/" + strconv.FormatInt(id, 10)
}

// updateBody keeps absent fields out of the JSON so the server leaves them
// unchanged, while explicit nulls are sent as null.
func updateBody(req api.UpdateTaskRequest) map[string]any {
	body := map[string]any{}
	if req.Title.Set {
		body["title"] = req.Title
	}
	if req.Description.Set {
		body["description"] = req.Description
	}
	if req.Status != nil {
		body["status"] = *req.Status
	}
	if req.Priority != nil {
		body["priority"] = *req.Priority
	}
	if req.DueDate.Set {
		body["dueDate"] = req.DueDate
	}
	return body
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, shared.MaxBodyBytes))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body shared.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}
	apiErr.Message = body.Message
	apiErr.Errors = body.Errors
	apiErr.TraceID = body.TraceID
	return apiErr
}
