package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/store"
)

// ListFilter selects which tasks ListTasks returns. At most one criterion is
// applied: a non-empty Search wins over Status, which wins over Priority.
type ListFilter struct {
	Search   string
	Status   *domain.Status
	Priority *domain.Priority
}

// TaskService provides task-related operations.
type TaskService interface {
	// ListTasks returns tasks matching the filter, newest first.
	ListTasks(ctx context.Context, filter ListFilter) ([]*domain.Task, error)

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, id int64) (*domain.Task, error)

	// CreateTask validates and stores a new task.
	CreateTask(ctx context.Context, input domain.NewTask) (*domain.Task, error)

	// UpdateTask applies a partial update to an existing task.
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, id int64) error

	// Stats computes aggregate counts over all tasks.
	Stats(ctx context.Context) (domain.TaskStats, error)
}

// Option customizes the task service.
type Option func(*taskServiceImpl)

// WithClock overrides the time source used for overdue checks and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *taskServiceImpl) {
		s.now = now
	}
}

// WithEventEmitter publishes lifecycle events after successful mutations.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(s *taskServiceImpl) {
		s.emitter = emitter
	}
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks   store.TaskStore
	emitter events.EventEmitter
	now     func() time.Time
	logger  *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the store is nil.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger, opts ...Option) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		tasks:  tasks,
		now:    time.Now,
		logger: logger.With(slog.String("component", "task_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, filter ListFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		tasks []*domain.Task
		err   error
	)
	switch {
	case filter.Search != "":
		log.Debug("listing tasks by search", slog.String("search", filter.Search))
		tasks, err = s.tasks.Search(ctx, filter.Search)
	case filter.Status != nil:
		log.Debug("listing tasks by status", slog.String("status", string(*filter.Status)))
		tasks, err = s.tasks.FindByStatus(ctx, *filter.Status)
	case filter.Priority != nil:
		log.Debug("listing tasks by priority", slog.String("priority", string(*filter.Priority)))
		tasks, err = s.tasks.FindByPriority(ctx, *filter.Priority)
	default:
		tasks, err = s.tasks.GetAll(ctx)
	}
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("list_tasks", "failed to retrieve tasks", err)
	}
	return tasks, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap(ctx, "get_task", "failed to retrieve task", id, err)
	}
	return task, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, input domain.NewTask) (*domain.Task, error) {
	task, err := s.tasks.Create(ctx, input)
	if err != nil {
		return nil, s.wrap(ctx, "create_task", "failed to create task", 0, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task created", slog.Int64("task_id", task.ID))
	s.emit(ctx, events.TaskCreated, task.ID, task)
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, s.wrap(ctx, "update_task", "failed to update task", id, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task updated", slog.Int64("task_id", id))
	s.emit(ctx, events.TaskUpdated, id, task)
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return s.wrap(ctx, "delete_task", "failed to delete task", id, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted", slog.Int64("task_id", id))
	s.emit(ctx, events.TaskDeleted, id, nil)
	return nil
}

// Stats implements TaskService.Stats
func (s *taskServiceImpl) Stats(ctx context.Context) (domain.TaskStats, error) {
	tasks, err := s.tasks.GetAll(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load tasks for stats",
			slog.String("error", err.Error()))
		return domain.TaskStats{}, NewTaskServiceError("stats", "failed to retrieve tasks", err)
	}
	return domain.ComputeStats(tasks, s.now()), nil
}

// wrap passes not-found and validation errors through untouched so callers
// can match them, and wraps anything else.
func (s *taskServiceImpl) wrap(ctx context.Context, op, msg string, id int64, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Debug("task not found", slog.String("operation", op), slog.Int64("task_id", id))
		return err
	case errors.Is(err, domain.ErrValidation):
		log.Debug("task input rejected", slog.String("operation", op), slog.String("error", err.Error()))
		return err
	default:
		log.Error(msg, slog.String("operation", op), slog.Int64("task_id", id), slog.String("error", err.Error()))
		return NewTaskServiceError(op, msg, err)
	}
}

// emit publishes an event. Handler failures are logged and never undo the mutation.
func (s *taskServiceImpl) emit(ctx context.Context, eventType events.EventType, id int64, payload any) {
	if s.emitter == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskEvent(eventType, id, payload, s.now())
	if err != nil {
		log.Error("failed to build task event",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("task event handler failed",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
	}
}
