package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound  = errors.New("no task corresponds to the selection")
	ErrAmbiguousTask = errors.New("more than one task corresponds to the selection")
	ErrTaskExists    = errors.New("task already exists")
	ErrTaskCompleted = errors.New("task already reached a terminal status")
	ErrInvalidStatus = errors.New("invalid completion status")
)

// CommandError means the command ran and exited unsuccessfully.
type CommandError struct {
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command exited with code %d: %s", e.ExitCode, e.Stderr)
}

// ExecutionError means the command could not be run at all.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return "error executing the command: " + e.Err.Error() }

func (e *ExecutionError) Unwrap() error { return e.Err }

// UnexpectedError covers environment level anomalies such as output that is
// not valid text.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string { return "unexpected error: " + e.Err.Error() }

func (e *UnexpectedError) Unwrap() error { return e.Err }

// StatusMessage is the text persisted in an Error status for a failed execution.
func StatusMessage(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Stderr
	}
	return err.Error()
}

type Stage string

const (
	StageSave     Stage = "save"
	StageExecute  Stage = "execute"
	StageComplete Stage = "complete"
	StageStatus   Stage = "status"
)

// StageError attributes a lifecycle failure to a task and a stage. When the
// completion write fails after a failed execution, Err is the store failure
// and Execution keeps the execution failure.
type StageError struct {
	// TaskID is the generated task id, except at StageStatus where no task
	// has been resolved yet and it holds the lookup identifier (TaskID.String).
	TaskID    string
	Stage     Stage
	Err       error
	Execution error
}

func (e *StageError) Error() string {
	msg := fmt.Sprintf("task %s: %s: %v", e.TaskID, e.Stage, e.Err)
	if e.Execution != nil {
		msg += fmt.Sprintf(" (after execution failure: %v)", e.Execution)
	}
	return msg
}

func (e *StageError) Unwrap() []error {
	if e.Execution != nil {
		return []error{e.Err, e.Execution}
	}
	return []error{e.Err}
}
