// Package ui is the terminal todo client.
package ui

import (
	"github.com/ent0n29/todolist/internal/todos"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

// EditState is the in-progress title edit of a single todo.
type EditState struct {
	ID    string
	Draft string
}

// State is the client's cached view of the todo list. The cache is only
// changed from server responses; nothing here talks to the network.
type State struct {
	Todos    []todos.Todo
	NewTitle string
	Filter   Filter
	Edit     *EditState
	Loading  bool
	Err      string
}

func NewState() State {
	return State{Filter: FilterAll}
}

func (s *State) Prepend(todo todos.Todo) {
	s.Todos = append([]todos.Todo{todo}, s.Todos...)
}

// Replace swaps the cached record with the same id. Unknown ids are ignored.
func (s *State) Replace(todo todos.Todo) {
	for i := range s.Todos {
		if s.Todos[i].ID == todo.ID {
			s.Todos[i] = todo
			return
		}
	}
}

func (s *State) Remove(id string) {
	out := s.Todos[:0]
	for _, t := range s.Todos {
		if t.ID != id {
			out = append(out, t)
		}
	}
	s.Todos = out
}

func (s *State) RemoveCompleted() {
	out := s.Todos[:0]
	for _, t := range s.Todos {
		if !t.Completed {
			out = append(out, t)
		}
	}
	s.Todos = out
}

// Visible is the cache projected through the active filter.
func (s State) Visible() []todos.Todo {
	if s.Filter == FilterAll || s.Filter == "" {
		return s.Todos
	}
	out := make([]todos.Todo, 0, len(s.Todos))
	for _, t := range s.Todos {
		if t.Completed == (s.Filter == FilterCompleted) {
			out = append(out, t)
		}
	}
	return out
}

// AllCompleted reports whether the list is non-empty and fully completed.
func (s State) AllCompleted() bool {
	if len(s.Todos) == 0 {
		return false
	}
	for _, t := range s.Todos {
		if !t.Completed {
			return false
		}
	}
	return true
}

// RebuildBuckets applies the given records to the cache and reorders it as
// the incomplete bucket followed by the completed bucket.
func (s *State) RebuildBuckets(updated []todos.Todo) {
	for _, t := range updated {
		s.Replace(t)
	}
	s.Todos = todos.SplitByCompletion(s.Todos)
}

// StartEdit begins editing id, dropping any draft already in progress.
func (s *State) StartEdit(id string) bool {
	for _, t := range s.Todos {
		if t.ID == id {
			s.Edit = &EditState{ID: id, Draft: t.Title}
			return true
		}
	}
	return false
}
