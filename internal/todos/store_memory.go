package todos

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a process-local store for local/dev use and tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	todos map[string]Todo
	seq   map[string]uint64
	next  uint64
	now   func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		todos: make(map[string]Todo),
		seq:   make(map[string]uint64),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryStore) List(_ context.Context) ([]Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Todo, 0, len(s.todos))
	for _, t := range s.todos {
		out = append(out, t)
	}
	// Newest first by insertion sequence.
	sort.Slice(out, func(i, j int) bool {
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out, nil
}

func (s *InMemoryStore) Create(_ context.Context, title string) (Todo, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return Todo{}, err
	}
	now := s.now()
	t := Todo{
		ID:        uuid.NewString(),
		Title:     title,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.todos[t.ID] = t
	s.seq[t.ID] = s.next
	return t, nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	if !ok {
		return Todo{}, ErrStoreNotFound
	}
	return t, nil
}

func (s *InMemoryStore) Update(_ context.Context, id string, patch Patch) (Todo, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return Todo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok {
		return Todo{}, ErrStoreNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.UpdatedAt = s.now()
	s.todos[id] = t
	return t, nil
}

func (s *InMemoryStore) Toggle(_ context.Context, id string) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok {
		return Todo{}, ErrStoreNotFound
	}
	t.Completed = !t.Completed
	t.UpdatedAt = s.now()
	s.todos[id] = t
	return t, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.todos[id]; !ok {
		return ErrStoreNotFound
	}
	delete(s.todos, id)
	delete(s.seq, id)
	return nil
}

func (s *InMemoryStore) DeleteCompleted(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.todos {
		if t.Completed {
			delete(s.todos, id)
			delete(s.seq, id)
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) Ping(_ context.Context) error { return nil }

func (s *InMemoryStore) Close() error { return nil }
