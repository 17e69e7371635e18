package ui

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ent0n29/todolist/internal/todos"
)

// fakeAPI is an in-memory API with per-call error injection.
type fakeAPI struct {
	mu     sync.Mutex
	items  []todos.Todo
	nextID int
	calls  map[string]int

	ListErr            error
	CreateErr          error
	UpdateErr          error
	DeleteErr          error
	DeleteCompletedErr error
	ToggleErr          map[string]error
}

func newFakeAPI(seed ...todos.Todo) *fakeAPI {
	return &fakeAPI{
		items:     append([]todos.Todo(nil), seed...),
		nextID:    len(seed) + 1,
		calls:     make(map[string]int),
		ToggleErr: make(map[string]error),
	}
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeAPI) List(context.Context) ([]todos.Todo, error) {
	f.record("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]todos.Todo(nil), f.items...), nil
}

func (f *fakeAPI) Create(_ context.Context, title string) (todos.Todo, error) {
	f.record("create")
	if f.CreateErr != nil {
		return todos.Todo{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	todo := todos.Todo{ID: strconv.Itoa(f.nextID), Title: title, CreatedAt: time.Now()}
	f.nextID++
	f.items = append([]todos.Todo{todo}, f.items...)
	return todo, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, patch todos.Patch) (todos.Todo, error) {
	f.record("update")
	if f.UpdateErr != nil {
		return todos.Todo{}, f.UpdateErr
	}
	return f.mutate(id, func(t *todos.Todo) {
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
	})
}

func (f *fakeAPI) Toggle(_ context.Context, id string) (todos.Todo, error) {
	f.record("toggle")
	f.mu.Lock()
	err := f.ToggleErr[id]
	f.mu.Unlock()
	if err != nil {
		return todos.Todo{}, err
	}
	return f.mutate(id, func(t *todos.Todo) { t.Completed = !t.Completed })
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.record("delete")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.items {
		if t.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return todos.ErrStoreNotFound
}

func (f *fakeAPI) DeleteCompleted(context.Context) (int64, error) {
	f.record("delete_completed")
	if f.DeleteCompletedErr != nil {
		return 0, f.DeleteCompletedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	var n int64
	for _, t := range f.items {
		if t.Completed {
			n++
			continue
		}
		kept = append(kept, t)
	}
	f.items = kept
	return n, nil
}

func (f *fakeAPI) mutate(id string, fn func(*todos.Todo)) (todos.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			fn(&f.items[i])
			f.items[i].UpdatedAt = time.Now()
			return f.items[i], nil
		}
	}
	return todos.Todo{}, todos.ErrStoreNotFound
}
