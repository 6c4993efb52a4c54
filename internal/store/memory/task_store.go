// Package memory provides the process-scoped, in-memory implementation of
// store.TaskStore. Nothing survives a restart.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/store"
)

// TaskStore keeps tasks in a map guarded by a RWMutex.
// IDs come from a counter that only ever increases.
type TaskStore struct {
	mu     sync.RWMutex
	lastID int64
	tasks  map[int64]domain.Task
	now    func() time.Time
	logger *slog.Logger
}

// Option customizes a TaskStore.
type Option func(*TaskStore)

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) {
		s.now = now
	}
}

// WithLogger sets the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *TaskStore) {
		s.logger = l
	}
}

// New creates an empty TaskStore.
func New(opts ...Option) *TaskStore {
	s := &TaskStore{
		tasks:  make(map[int64]domain.Task),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "memory_task_store"))
	return s
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// GetAll implements store.TaskStore.GetAll
func (s *TaskStore) GetAll(ctx context.Context) ([]*domain.Task, error) {
	return s.filter(func(*domain.Task) bool { return true }), nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	s.mu.RLock()
	task, ok := s.tasks[id]
	s.mu.RUnlock()

	if !ok {
		logger.FromContextOrDefault(ctx, s.logger).Debug("task not found", slog.Int64("task_id", id))
		return nil, store.ErrTaskNotFound
	}
	return task.Clone(), nil
}

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, input domain.NewTask) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := input.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The ID is only consumed once the task is known to be valid.
	task, err := input.Build(s.lastID+1, s.now())
	if err != nil {
		return nil, err
	}
	s.lastID = task.ID
	s.tasks[task.ID] = *task

	log.Debug("task created", slog.Int64("task_id", task.ID))
	return task.Clone(), nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[id]
	if !ok {
		log.Debug("task not found for update", slog.Int64("task_id", id))
		return nil, store.ErrTaskNotFound
	}

	updated := existing.Clone()
	updated.Apply(patch, s.now())
	s.tasks[id] = *updated

	log.Debug("task updated", slog.Int64("task_id", id))
	return updated.Clone(), nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)

	logger.FromContextOrDefault(ctx, s.logger).Debug("task deleted", slog.Int64("task_id", id))
	return nil
}

// FindByStatus implements store.TaskStore.FindByStatus
func (s *TaskStore) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Task, error) {
	return s.filter(func(t *domain.Task) bool { return t.Status == status }), nil
}

// FindByPriority implements store.TaskStore.FindByPriority
func (s *TaskStore) FindByPriority(ctx context.Context, priority domain.Priority) ([]*domain.Task, error) {
	return s.filter(func(t *domain.Task) bool { return t.Priority == priority }), nil
}

// Search implements store.TaskStore.Search
func (s *TaskStore) Search(ctx context.Context, query string) ([]*domain.Task, error) {
	return s.filter(func(t *domain.Task) bool { return t.MatchesText(query) }), nil
}

// Len returns the number of stored tasks.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *TaskStore) filter(keep func(*domain.Task) bool) []*domain.Task {
	s.mu.RLock()
	result := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(&t) {
			result = append(result, t.Clone())
		}
	}
	s.mu.RUnlock()

	domain.SortNewestFirst(result)
	return result
}
