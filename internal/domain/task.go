package domain

import "maps"

// Task is a single command submitted for execution. It is never mutated
// after creation; only its status record changes.
type Task struct {
	ID      string            `json:"id"`
	Name    string            `json:"name,omitempty"`
	Command string            `json:"command"`
	Env     map[string]string `json:"env,omitempty"`
}

// Submission is what a caller hands to the scheduler. Name and Env are optional.
type Submission struct {
	Name    string
	Command string
	Env     map[string]string
}

// NewTask builds the task for a submission under the given id.
func NewTask(s Submission, id string) Task {
	var env map[string]string
	if len(s.Env) > 0 {
		env = maps.Clone(s.Env)
	}
	return Task{
		ID:      id,
		Name:    s.Name,
		Command: s.Command,
		Env:     env,
	}
}

// Identifier returns the name based identifier when the task is named,
// the id based one otherwise.
func (t Task) Identifier() TaskID {
	if t.Name != "" {
		return ByName(t.Name)
	}
	return ByID(t.ID)
}

type IDKind string

const (
	KindID   IDKind = "id"
	KindName IDKind = "name"
)

// TaskID addresses a task either by its generated id or by its name.
type TaskID struct {
	Kind  IDKind
	Value string
}

func ByID(id string) TaskID { return TaskID{Kind: KindID, Value: id} }

func ByName(name string) TaskID { return TaskID{Kind: KindName, Value: name} }

// Matches reports whether t is addressed by id.
func (id TaskID) Matches(t Task) bool {
	switch id.Kind {
	case KindID:
		return t.ID == id.Value
	case KindName:
		return t.Name != "" && t.Name == id.Value
	}
	return false
}

func (id TaskID) String() string {
	return string(id.Kind) + ": " + id.Value
}
