package app

import (
	"context"
	"fmt"
	"io"
	"tasc/internal/config"
	"tasc/internal/infra/executor"
	"tasc/internal/infra/idgen"
	"tasc/internal/infra/memstore"
	"tasc/internal/infra/redisstore"
	"tasc/internal/infra/sqlstore"
	"tasc/internal/ports"
	"tasc/internal/usecase"

	"github.com/rs/zerolog/log"
)

// App bundles the scheduler with the resources backing it.
type App struct {
	Scheduler ports.Scheduler
	store     ports.TaskStore
}

// New wires the collaborators selected by cfg into a scheduler.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := NewStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Debug().
		Str("storage", cfg.Storage.Kind).
		Str("tokenizer", cfg.Executor.Tokenizer).
		Msg("task scheduler ready")

	return &App{
		Scheduler: usecase.NewTaskScheduler(store, executor.New(cfg.Executor), idgen.UUID{}),
		store:     store,
	}, nil
}

func NewStore(ctx context.Context, cfg config.Storage) (ports.TaskStore, error) {
	switch cfg.Kind {
	case config.StorageMemory:
		return memstore.New(), nil
	case config.StorageSQLite:
		return sqlstore.Open(ctx, cfg.SQLite)
	case config.StorageRedis:
		cli := redisstore.New(cfg.Redis)
		if err := cli.Connect(ctx); err != nil {
			_ = cli.Close()
			return nil, err
		}
		return cli, nil
	}
	return nil, fmt.Errorf("%s is not a valid configuration for storage", cfg.Kind)
}

func (a *App) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
