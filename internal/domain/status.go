package domain

import "fmt"

type State string

const (
	StateScheduled State = "SCHEDULED"
	StateSuccess   State = "SUCCESS"
	StateError     State = "ERROR"
)

// TaskStatus is the lifecycle state of a task. Log holds the captured stdout
// of a successful run or the failure description of an unsuccessful one.
type TaskStatus struct {
	State State
	Log   string
}

func Scheduled() TaskStatus { return TaskStatus{State: StateScheduled} }

func Success(output string) TaskStatus { return TaskStatus{State: StateSuccess, Log: output} }

func Failure(message string) TaskStatus { return TaskStatus{State: StateError, Log: message} }

// Terminal reports whether no further transition may happen from s.
func (s TaskStatus) Terminal() bool {
	return s.State == StateSuccess || s.State == StateError
}

func (s TaskStatus) String() string {
	if s.State == StateScheduled {
		return string(s.State)
	}
	return fmt.Sprintf("%s(%q)", s.State, s.Log)
}

// ParseStatus rebuilds a status from its stored state and log. Terminal
// states must carry a log.
func ParseStatus(state string, log *string) (TaskStatus, error) {
	switch State(state) {
	case StateScheduled:
		return Scheduled(), nil
	case StateSuccess, StateError:
		if log == nil {
			return TaskStatus{}, fmt.Errorf("status %s has no status log", state)
		}
		return TaskStatus{State: State(state), Log: *log}, nil
	}
	return TaskStatus{}, fmt.Errorf("%q is not a valid status", state)
}
