package todos

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrStoreNotFound    = errors.New("todo not found")
	ErrStoreUnavailable = errors.New("todo store unavailable")
	ErrInvalidTitle     = errors.New("title is required")
	ErrEmptyPatch       = errors.New("update must set title or completed")
)

// Store is the persistent todo collection. Implementations assign ids and
// return ErrStoreNotFound for unknown ids; any backend failure is reported
// wrapped in ErrStoreUnavailable.
type Store interface {
	List(ctx context.Context) ([]Todo, error)
	Create(ctx context.Context, title string) (Todo, error)
	Get(ctx context.Context, id string) (Todo, error)
	Update(ctx context.Context, id string, patch Patch) (Todo, error)
	Toggle(ctx context.Context, id string) (Todo, error)
	Delete(ctx context.Context, id string) error
	DeleteCompleted(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
