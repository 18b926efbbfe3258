package usecase

import (
	"context"
	"tasc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock

	completeCtx context.Context
}

func (m *mockStore) Save(ctx context.Context, t domain.Task) error {
	return m.Called(t).Error(0)
}

func (m *mockStore) Status(ctx context.Context, id domain.TaskID) (domain.TaskStatus, error) {
	args := m.Called(id)
	return args.Get(0).(domain.TaskStatus), args.Error(1)
}

func (m *mockStore) Complete(ctx context.Context, t domain.Task, status domain.TaskStatus) error {
	m.completeCtx = ctx
	return m.Called(t, status).Error(0)
}

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(ctx context.Context, t domain.Task) (domain.TaskStatus, error) {
	args := m.Called(t)
	return args.Get(0).(domain.TaskStatus), args.Error(1)
}

type fixedID string

func (f fixedID) NewID() string { return string(f) }
