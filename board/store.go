// Package board holds the client-side task state: an in-memory store of one
// user's tasks, the status transition engine behind drag-and-drop, and the
// pure view projections (Kanban grouping, list filter/sort).
//
// The store models a single-threaded UI: mutations are applied synchronously
// from interaction callbacks, so it is deliberately not safe for concurrent
// use. Background sync completions never touch the store.
package board

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trustbyte/domain"
)

// Store is the authoritative in-memory collection of the current user's
// tasks plus the single draft task backing the add/edit form.
type Store struct {
	tasks []domain.Task
	draft *domain.Task
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// SetTasks replaces the entire collection, typically after the initial fetch.
func (s *Store) SetTasks(list []domain.Task) {
	s.tasks = append(s.tasks[:0:0], list...)
}

// Tasks returns a copy of the collection in store order.
func (s *Store) Tasks() []domain.Task {
	return append([]domain.Task(nil), s.tasks...)
}

// Len reports the number of tasks held.
func (s *Store) Len() int {
	return len(s.tasks)
}

// TaskByID looks up a task by its id.
func (s *Store) TaskByID(id primitive.ObjectID) (domain.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// AddTask appends a server-confirmed task. A task whose id is already present
// is ignored; avoiding that is the caller's responsibility.
func (s *Store) AddTask(t domain.Task) {
	if _, exists := s.TaskByID(t.ID); exists {
		return
	}
	s.tasks = append(s.tasks, t)
}

// UpdateTask replaces the record matching t.ID in place and reports whether
// a match existed. A no-match is surfaced rather than swallowed so callers
// can react to updates against deleted tasks.
func (s *Store) UpdateTask(t domain.Task) bool {
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return true
		}
	}
	return false
}

// RemoveTask deletes the record with the given id, reporting whether it was
// present.
func (s *Store) RemoveTask(id primitive.ObjectID) bool {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// SetDraft stores the working copy used by the add/edit form. The draft is
// independent of the persisted collection.
func (s *Store) SetDraft(t domain.Task) {
	copy := t
	s.draft = &copy
}

// Draft returns the current working copy, if any.
func (s *Store) Draft() (domain.Task, bool) {
	if s.draft == nil {
		return domain.Task{}, false
	}
	return *s.draft, true
}

// ClearDraft discards the working copy.
func (s *Store) ClearDraft() {
	s.draft = nil
}
