package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tasc/internal/config"
	"tasc/internal/domain"
	"tasc/internal/infra/memstore"
	"tasc/internal/infra/redisstore"
	"tasc/internal/infra/sqlstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreSelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(ctx, config.Storage{Kind: config.StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, s)

	s, err = NewStore(ctx, config.Storage{
		Kind:   config.StorageSQLite,
		SQLite: config.SQLite{DatabaseURL: filepath.Join(t.TempDir(), "tasks.db")},
	})
	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Store{}, s)
	require.NoError(t, s.(*sqlstore.Store).Close())

	srv := miniredis.RunT(t)
	s, err = NewStore(ctx, config.Storage{Kind: config.StorageRedis, Redis: config.Redis{Addr: srv.Addr()}})
	require.NoError(t, err)
	assert.IsType(t, &redisstore.Client{}, s)
	require.NoError(t, s.(*redisstore.Client).Close())

	_, err = NewStore(ctx, config.Storage{Kind: "postgres"})
	assert.Error(t, err)
}

func TestAppRunsTask(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.Kind = config.StorageSQLite
	cfg.Storage.SQLite.DatabaseURL = filepath.Join(t.TempDir(), "tasks.db")

	a, err := New(ctx, &cfg)
	require.NoError(t, err)
	defer a.Close()

	id, err := a.Scheduler.Schedule(ctx, domain.Submission{Command: "echo hello"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindID, id.Kind)

	status, err := a.Scheduler.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.Success("hello\n"), status)

	_, err = a.Scheduler.Schedule(ctx, domain.Submission{Name: "broken", Command: "ls /definitely/not/here"})
	require.Error(t, err)

	status, err = a.Scheduler.Status(ctx, domain.ByName("broken"))
	require.NoError(t, err)
	assert.Equal(t, domain.StateError, status.State)
	assert.NotEmpty(t, status.Log)
}

func TestAppRecordsFailureWhenInterrupted(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Kind = config.StorageSQLite
	cfg.Storage.SQLite.DatabaseURL = filepath.Join(t.TempDir(), "tasks.db")

	a, err := New(context.Background(), &cfg)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = a.Scheduler.Schedule(ctx, domain.Submission{Name: "long", Command: "sleep 5"})
	require.Error(t, err)
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageExecute, stageErr.Stage)

	status, err := a.Scheduler.Status(context.Background(), domain.ByName("long"))
	require.NoError(t, err)
	assert.Equal(t, domain.StateError, status.State)
	assert.Contains(t, status.Log, "interrupted")
}
