package usecase

import (
	"context"
	"tasc/internal/domain"
	"tasc/internal/ports"

	"github.com/rs/zerolog/log"
)

var _ ports.Scheduler = TaskScheduler{}

// TaskScheduler runs submitted tasks immediately and records their outcome.
// It holds no state besides its collaborators.
type TaskScheduler struct {
	Store    ports.TaskStore
	Executor ports.Executor
	IDs      ports.IDGenerator
}

func NewTaskScheduler(store ports.TaskStore, executor ports.Executor, ids ports.IDGenerator) TaskScheduler {
	return TaskScheduler{Store: store, Executor: executor, IDs: ids}
}

// Schedule saves the task, executes it synchronously and persists the
// outcome. The returned identifier is name based when a name was given.
func (s TaskScheduler) Schedule(ctx context.Context, sub domain.Submission) (domain.TaskID, error) {
	t := domain.NewTask(sub, s.IDs.NewID())
	logger := log.Ctx(ctx).With().Str("task", t.ID).Logger()

	if err := s.Store.Save(ctx, t); err != nil {
		return domain.TaskID{}, &domain.StageError{TaskID: t.ID, Stage: domain.StageSave, Err: err}
	}
	logger.Debug().Str("command", t.Command).Msg("task saved, executing")

	status, execErr := s.Executor.Execute(ctx, t)

	// An interrupted run must still leave a terminal status behind.
	completeCtx := context.WithoutCancel(ctx)

	if execErr != nil {
		logger.Debug().Err(execErr).Msg("task execution failed")
		if err := s.Store.Complete(completeCtx, t, domain.Failure(domain.StatusMessage(execErr))); err != nil {
			logger.Warn().Err(err).AnErr("execution", execErr).Msg("could not record task failure")
			return domain.TaskID{}, &domain.StageError{
				TaskID:    t.ID,
				Stage:     domain.StageComplete,
				Err:       err,
				Execution: execErr,
			}
		}
		return domain.TaskID{}, &domain.StageError{TaskID: t.ID, Stage: domain.StageExecute, Err: execErr}
	}

	// The store error already names the task; it is surfaced verbatim.
	if err := s.Store.Complete(completeCtx, t, status); err != nil {
		return domain.TaskID{}, err
	}
	logger.Debug().Str("state", string(status.State)).Msg("task completed")

	return t.Identifier(), nil
}

// Status returns the current status of the task addressed by id.
func (s TaskScheduler) Status(ctx context.Context, id domain.TaskID) (domain.TaskStatus, error) {
	status, err := s.Store.Status(ctx, id)
	if err != nil {
		return domain.TaskStatus{}, &domain.StageError{TaskID: id.String(), Stage: domain.StageStatus, Err: err}
	}
	return status, nil
}
