package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const todoColumns = `id, title, completed, created_at, updated_at`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initTodoSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initTodoSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS todos (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL CHECK (btrim(title) <> ''),
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_todos_created ON todos (created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_todos_completed ON todos (completed) WHERE completed;`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init todo schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Todo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+todoColumns+` FROM todos ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, unavailable("list todos", err)
	}
	defer rows.Close()

	out := make([]Todo, 0, 16)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, unavailable("scan todo row", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate todo rows", err)
	}
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, title string) (Todo, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return Todo{}, err
	}
	now := time.Now().UTC()
	row := s.pool.QueryRow(ctx,
		`INSERT INTO todos (id, title, completed, created_at, updated_at)
		 VALUES ($1, $2, FALSE, $3, $3)
		 RETURNING `+todoColumns,
		uuid.NewString(), title, now,
	)
	t, err := scanTodo(row)
	if err != nil {
		return Todo{}, unavailable("insert todo", err)
	}
	return t, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Todo, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id=$1`, id)
	return s.one(row, "get todo")
}

func (s *PostgresStore) Update(ctx context.Context, id string, patch Patch) (Todo, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return Todo{}, err
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE todos
		    SET title = COALESCE($2, title),
		        completed = COALESCE($3, completed),
		        updated_at = $4
		  WHERE id=$1
		  RETURNING `+todoColumns,
		id, patch.Title, patch.Completed, time.Now().UTC(),
	)
	return s.one(row, "update todo")
}

func (s *PostgresStore) Toggle(ctx context.Context, id string) (Todo, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE todos SET completed = NOT completed, updated_at = $2
		  WHERE id=$1
		  RETURNING `+todoColumns,
		id, time.Now().UTC(),
	)
	return s.one(row, "toggle todo")
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id=$1`, id)
	if err != nil {
		return unavailable("delete todo", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStoreNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteCompleted(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE completed`)
	if err != nil {
		return 0, unavailable("delete completed todos", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return unavailable("ping postgres", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) one(row pgx.Row, op string) (Todo, error) {
	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Todo{}, ErrStoreNotFound
		}
		return Todo{}, unavailable(op, err)
	}
	return t, nil
}

func scanTodo(row pgx.Row) (Todo, error) {
	var t Todo
	if err := row.Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Todo{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
