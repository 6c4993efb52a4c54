package store

import (
	"context"

	"github.com/phrazzld/taskboard/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Every list operation returns tasks newest first (CreatedAt descending,
// then ID descending). Returned tasks are copies owned by the caller.
type TaskStore interface {
	// GetAll retrieves every task.
	GetAll(ctx context.Context) ([]*domain.Task, error)

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Create assigns the next ID, applies defaults, stamps both timestamps
	// and saves the task. Returns a *domain.ValidationError for invalid input.
	Create(ctx context.Context, input domain.NewTask) (*domain.Task, error)

	// Update merges the patch into an existing task and bumps UpdatedAt.
	// Returns ErrTaskNotFound if the task does not exist; nothing is created.
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task. IDs are never reassigned.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// FindByStatus retrieves all tasks with the given status.
	FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Task, error)

	// FindByPriority retrieves all tasks with the given priority.
	FindByPriority(ctx context.Context, priority domain.Priority) ([]*domain.Task, error)

	// Search retrieves tasks whose title or description contains query,
	// ignoring case.
	Search(ctx context.Context, query string) ([]*domain.Task, error)
}
