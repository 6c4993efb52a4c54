package api

import (
	"time"

	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/domain"
)

// CreateTaskRequest defines the payload for POST /api/tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=255"`
	Description *string `json:"description"`
	Status      string  `json:"status"      validate:"omitempty,oneof=open progress completed"`
	Priority    string  `json:"priority"    validate:"omitempty,oneof=low medium high"`
	// DueDate is RFC 3339 or YYYY-MM-DD; null or absent means no due date.
	DueDate *string `json:"dueDate"`
}

// ToDomain validates the request and converts it to a domain.NewTask.
// Every failing field is reported in a single *domain.ValidationError.
func (req *CreateTaskRequest) ToDomain() (domain.NewTask, error) {
	verr := shared.ValidateStruct(req)

	var due *time.Time
	if req.DueDate != nil {
		if t, ok := parseDueDate(*req.DueDate); ok {
			due = &t
		} else {
			verr.Add("dueDate", "datetime", dueDateMessage)
		}
	}

	if err := verr.OrNil(); err != nil {
		return domain.NewTask{}, err
	}

	return domain.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.Status(req.Status),
		Priority:    domain.Priority(req.Priority),
		DueDate:     due,
	}, nil
}

// UpdateTaskRequest defines the payload for PUT /api/tasks/{id}.
// Every field is optional. Description and DueDate accept null to clear the
// stored value; Title must not be null.
type UpdateTaskRequest struct {
	Title       domain.Nullable[string] `json:"title"`
	Description domain.Nullable[string] `json:"description"`
	Status      *string                 `json:"status"   validate:"omitnil,oneof=open progress completed"`
	Priority    *string                 `json:"priority" validate:"omitnil,oneof=low medium high"`
	DueDate     domain.Nullable[string] `json:"dueDate"`
}

// ToDomain validates the request and converts it to a domain.TaskPatch.
func (req *UpdateTaskRequest) ToDomain() (domain.TaskPatch, error) {
	verr := shared.ValidateStruct(req)
	patch := domain.TaskPatch{Description: req.Description}

	if req.Title.Set {
		switch {
		case req.Title.Value == nil:
			verr.Add("title", "required", "must not be null")
		case *req.Title.Value == "":
			verr.Add("title", "required", "is required")
		case len([]rune(*req.Title.Value)) > domain.MaxTitleLength:
			verr.Add("title", "max", "must be at most 255 characters")
		default:
			patch.Title = req.Title.Value
		}
	}

	if req.Status != nil {
		status := domain.Status(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		patch.Priority = &priority
	}

	if req.DueDate.Set {
		switch {
		case req.DueDate.Value == nil:
			patch.DueDate = domain.Null[time.Time]()
		default:
			if t, ok := parseDueDate(*req.DueDate.Value); ok {
				patch.DueDate = domain.Some(t)
			} else {
				verr.Add("dueDate", "datetime", dueDateMessage)
			}
		}
	}

	if err := verr.OrNil(); err != nil {
		return domain.TaskPatch{}, err
	}
	return patch, nil
}

// TaskResponse is the JSON representation of a task. Timestamps are UTC
// RFC 3339; description and dueDate are null when unset.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// StatsResponse is the JSON body of GET /api/tasks/stats.
type StatsResponse struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}

func statsToResponse(stats domain.TaskStats) StatsResponse {
	return StatsResponse(stats)
}
