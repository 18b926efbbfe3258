// Package storetest checks a ports.TaskStore implementation against the
// behaviour the task scheduler relies on.
package storetest

import (
	"context"
	"testing"

	"tasc/internal/domain"
	"tasc/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store from newStore in each subtest.
func Run(t *testing.T, newStore func(t *testing.T) ports.TaskStore) {
	t.Run("SaveStartsScheduled", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Save(ctx, domain.Task{ID: "a", Command: "ls"}))

		status, err := s.Status(ctx, domain.ByID("a"))
		require.NoError(t, err)
		assert.Equal(t, domain.Scheduled(), status)
	})

	t.Run("CompleteByID", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		task := domain.Task{ID: "a", Command: "ls /home"}

		require.NoError(t, s.Save(ctx, task))
		require.NoError(t, s.Complete(ctx, task, domain.Success("file1\nfile2")))

		status, err := s.Status(ctx, domain.ByID("a"))
		require.NoError(t, err)
		assert.Equal(t, domain.Success("file1\nfile2"), status)
	})

	t.Run("NameAndIDResolveToSameRecord", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		task := domain.Task{ID: "a", Name: "backup", Command: "tar"}

		require.NoError(t, s.Save(ctx, task))
		require.NoError(t, s.Complete(ctx, task, domain.Failure("tar: no input")))

		byName, err := s.Status(ctx, domain.ByName("backup"))
		require.NoError(t, err)
		byID, err := s.Status(ctx, domain.ByID("a"))
		require.NoError(t, err)
		assert.Equal(t, domain.Failure("tar: no input"), byName)
		assert.Equal(t, byID, byName)
	})

	t.Run("EmptyLogIsKept", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		task := domain.Task{ID: "a", Command: "true"}

		require.NoError(t, s.Save(ctx, task))
		require.NoError(t, s.Complete(ctx, task, domain.Success("")))

		status, err := s.Status(ctx, domain.ByID("a"))
		require.NoError(t, err)
		assert.Equal(t, domain.Success(""), status)
	})

	t.Run("DuplicateIDRejected", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Save(ctx, domain.Task{ID: "a", Command: "ls"}))
		assert.ErrorIs(t, s.Save(ctx, domain.Task{ID: "a", Command: "pwd"}), domain.ErrTaskExists)
	})

	t.Run("DuplicateNameRejected", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Save(ctx, domain.Task{ID: "a", Name: "job", Command: "ls"}))
		err := s.Save(ctx, domain.Task{ID: "b", Name: "job", Command: "pwd"})
		assert.ErrorIs(t, err, domain.ErrTaskExists)

		_, err = s.Status(ctx, domain.ByID("b"))
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("UnnamedTasksDoNotCollide", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Save(ctx, domain.Task{ID: "a", Command: "ls"}))
		require.NoError(t, s.Save(ctx, domain.Task{ID: "b", Command: "ls"}))
	})

	t.Run("UnknownTask", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.Status(ctx, domain.ByID("missing"))
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
		_, err = s.Status(ctx, domain.ByName("missing"))
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		err = s.Complete(ctx, domain.Task{ID: "missing"}, domain.Success("x"))
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("SingleTransition", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		task := domain.Task{ID: "a", Command: "ls"}

		require.NoError(t, s.Save(ctx, task))
		require.NoError(t, s.Complete(ctx, task, domain.Success("once")))

		assert.ErrorIs(t, s.Complete(ctx, task, domain.Failure("twice")), domain.ErrTaskCompleted)
		status, err := s.Status(ctx, domain.ByID("a"))
		require.NoError(t, err)
		assert.Equal(t, domain.Success("once"), status)
	})

	t.Run("ScheduledIsNotACompletion", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		task := domain.Task{ID: "a", Command: "ls"}

		require.NoError(t, s.Save(ctx, task))
		assert.ErrorIs(t, s.Complete(ctx, task, domain.Scheduled()), domain.ErrInvalidStatus)
	})
}

// TaskLoader is implemented by stores able to return the full task record.
type TaskLoader interface {
	Task(ctx context.Context, id domain.TaskID) (domain.Task, error)
}

// RunEnvRoundTrip checks the environment mapping survives storage.
func RunEnvRoundTrip(t *testing.T, s ports.TaskStore, l TaskLoader) {
	ctx := context.Background()
	task := domain.Task{
		ID:      "env-task",
		Name:    "with-env",
		Command: "env",
		Env:     map[string]string{"B": "2", "A": "1", "PATH_LIST": "/bin;/usr/bin", "EXPR": "x=y"},
	}
	require.NoError(t, s.Save(ctx, task))

	got, err := l.Task(ctx, domain.ByName("with-env"))
	require.NoError(t, err)
	assert.Equal(t, task, got)

	require.NoError(t, s.Save(ctx, domain.Task{ID: "no-env", Command: "env"}))
	got, err = l.Task(ctx, domain.ByID("no-env"))
	require.NoError(t, err)
	assert.Nil(t, got.Env)
}
