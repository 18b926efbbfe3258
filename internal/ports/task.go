package ports

import (
	"context"
	"tasc/internal/domain"
)

// Scheduler is the primary port used by the CLI.
type Scheduler interface {
	Schedule(ctx context.Context, s domain.Submission) (domain.TaskID, error)
	Status(ctx context.Context, id domain.TaskID) (domain.TaskStatus, error)
}

// TaskStore persists tasks and their status.
type TaskStore interface {
	// Save inserts t with a Scheduled status. It fails with domain.ErrTaskExists
	// when the id or the name is already taken.
	Save(ctx context.Context, t domain.Task) error
	// Status fails with domain.ErrTaskNotFound or domain.ErrAmbiguousTask
	// unless exactly one task matches.
	Status(ctx context.Context, id domain.TaskID) (domain.TaskStatus, error)
	// Complete moves the task matching t.Identifier() to a terminal status.
	Complete(ctx context.Context, t domain.Task, status domain.TaskStatus) error
}

// Executor runs a task's command to completion.
type Executor interface {
	Execute(ctx context.Context, t domain.Task) (domain.TaskStatus, error)
}

type IDGenerator interface {
	NewID() string
}
