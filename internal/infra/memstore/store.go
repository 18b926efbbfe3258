package memstore

import (
	"context"
	"fmt"
	"sync"
	"tasc/internal/domain"
	"tasc/internal/ports"
)

var _ ports.TaskStore = (*Store)(nil)

type record struct {
	task   domain.Task
	status domain.TaskStatus
}

// Store keeps tasks in process memory. Records are matched linearly so a
// duplicated name surfaces as domain.ErrAmbiguousTask rather than being
// hidden by an index.
type Store struct {
	mu      sync.Mutex
	records []*record
}

func New() *Store {
	return &Store{}
}

func (s *Store) Save(_ context.Context, t domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.task.ID == t.ID {
			return fmt.Errorf("saving task %s: %w", t.ID, domain.ErrTaskExists)
		}
		if t.Name != "" && r.task.Name == t.Name {
			return fmt.Errorf("saving task %s with name %q: %w", t.ID, t.Name, domain.ErrTaskExists)
		}
	}
	s.records = append(s.records, &record{task: t, status: domain.Scheduled()})
	return nil
}

func (s *Store) Status(_ context.Context, id domain.TaskID) (domain.TaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.findOne(id)
	if err != nil {
		return domain.TaskStatus{}, fmt.Errorf("searching for %s: %w", id, err)
	}
	return r.status, nil
}

func (s *Store) Complete(_ context.Context, t domain.Task, status domain.TaskStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("completing task %s with %s: %w", t.ID, status.State, domain.ErrInvalidStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.findOne(t.Identifier())
	if err != nil {
		return fmt.Errorf("completing task %s: %w", t.ID, err)
	}
	if r.status.Terminal() {
		return fmt.Errorf("completing task %s: %w", t.ID, domain.ErrTaskCompleted)
	}
	r.status = status
	return nil
}

func (s *Store) findOne(id domain.TaskID) (*record, error) {
	var found []*record
	for _, r := range s.records {
		if id.Matches(r.task) {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return nil, domain.ErrTaskNotFound
	case 1:
		return found[0], nil
	default:
		return nil, domain.ErrAmbiguousTask
	}
}

// Task returns the stored task record. The scheduler only needs statuses;
// this is used to check what a saved task reads back as.
func (s *Store) Task(_ context.Context, id domain.TaskID) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.findOne(id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("searching for %s: %w", id, err)
	}
	return r.task, nil
}
