package service

import (
	"context"

	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockTaskStore mocks the store.TaskStore interface
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) tasks(args mock.Arguments) ([]*domain.Task, error) {
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskStore) task(args mock.Arguments) (*domain.Task, error) {
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskStore) GetAll(ctx context.Context) ([]*domain.Task, error) {
	return m.tasks(m.Called(ctx))
}

func (m *MockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return m.task(m.Called(ctx, id))
}

func (m *MockTaskStore) Create(ctx context.Context, input domain.NewTask) (*domain.Task, error) {
	return m.task(m.Called(ctx, input))
}

func (m *MockTaskStore) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	return m.task(m.Called(ctx, id, patch))
}

func (m *MockTaskStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaskStore) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Task, error) {
	return m.tasks(m.Called(ctx, status))
}

func (m *MockTaskStore) FindByPriority(ctx context.Context, priority domain.Priority) ([]*domain.Task, error) {
	return m.tasks(m.Called(ctx, priority))
}

func (m *MockTaskStore) Search(ctx context.Context, query string) ([]*domain.Task, error) {
	return m.tasks(m.Called(ctx, query))
}
