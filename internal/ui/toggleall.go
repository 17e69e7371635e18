package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/ent0n29/todolist/internal/todos"
)

// Toggler flips a single todo on the server.
type Toggler interface {
	Toggle(ctx context.Context, id string) (todos.Todo, error)
}

// ToggleResult is the outcome of one toggle in a toggle-all pass.
type ToggleResult struct {
	ID    string
	Todo  todos.Todo
	Error error
}

// ToggleAllTarget is the completion state toggle-all drives every todo to.
func ToggleAllTarget(list []todos.Todo) bool {
	return !State{Todos: list}.AllCompleted()
}

// ToggleAll toggles every todo whose state differs from the target, all at
// once, and returns after the last request finishes. Results are in the order
// the todos were given; failed entries carry Error and a zero Todo.
func ToggleAll(ctx context.Context, api Toggler, list []todos.Todo) ([]ToggleResult, []error) {
	target := ToggleAllTarget(list)

	var pending []string
	for _, t := range list {
		if t.Completed != target {
			pending = append(pending, t.ID)
		}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		results = make([]ToggleResult, len(pending))
	)
	for i, id := range pending {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			todo, err := api.Toggle(ctx, id)
			results[i] = ToggleResult{ID: id, Todo: todo, Error: err}
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("toggle %s: %w", id, err))
				mu.Unlock()
			}
		}(i, id)
	}
	wg.Wait()

	return results, errs
}

// Succeeded returns the server records of the toggles that went through.
func Succeeded(results []ToggleResult) []todos.Todo {
	out := make([]todos.Todo, 0, len(results))
	for _, r := range results {
		if r.Error == nil {
			out = append(out, r.Todo)
		}
	}
	return out
}
