package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"tasknotify/internal/domain"
)

var ErrNotFound = errors.New("task not found")

// EnsureSchema creates tables if they don't exist.
func EnsureSchema(db *sql.DB) error {
	schema := `
PRAGMA journal_mode=WAL;
CREATE TABLE IF NOT EXISTS todos (
  id TEXT PRIMARY KEY,
  content TEXT NOT NULL CHECK(length(content) <= 200),
  due_time DATETIME NOT NULL,
  done INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_todos_due ON todos(due_time);
CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

type Repository interface {
	Create(ctx context.Context, t domain.Todo) (string, error)
	Get(ctx context.Context, id string) (domain.Todo, error)
	List(ctx context.Context) ([]domain.Todo, error)
	Update(ctx context.Context, t domain.Todo) error
	SetDone(ctx context.Context, id string, done bool) error
	Delete(ctx context.Context, id string) error

	Nickname(ctx context.Context) (string, error)
	SetNickname(ctx context.Context, name string) error

	// Snapshot reads every task plus the nickname in one pass.
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

type sqliteRepo struct{ db *sql.DB }

func NewSQLiteRepo(db *sql.DB) Repository { return &sqliteRepo{db: db} }

const todoColumns = `id,content,due_time,done,created_at,updated_at`

func (r *sqliteRepo) Create(ctx context.Context, t domain.Todo) (string, error) {
	id := t.ID
	if id == "" {
		id = "tdo_" + uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO todos (id,content,due_time,done,created_at,updated_at)
VALUES (?,?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)
`, id, t.Content, t.DueAt.UTC(), t.Done)
	if err != nil {
		return "", fmt.Errorf("insert todo: %w", err)
	}
	return id, nil
}

func (r *sqliteRepo) Get(ctx context.Context, id string) (domain.Todo, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id=?`, id)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, ErrNotFound
	}
	return t, err
}

func (r *sqliteRepo) List(ctx context.Context) ([]domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY due_time, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (r *sqliteRepo) Update(ctx context.Context, t domain.Todo) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE todos SET content=?,due_time=?,updated_at=CURRENT_TIMESTAMP WHERE id=?`, t.Content, t.DueAt.UTC(), t.ID)
	return affectedOne(res, err)
}

func (r *sqliteRepo) SetDone(ctx context.Context, id string, done bool) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE todos SET done=?,updated_at=CURRENT_TIMESTAMP WHERE id=?`, done, id)
	return affectedOne(res, err)
}

func (r *sqliteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM todos WHERE id=?", id)
	return affectedOne(res, err)
}

func (r *sqliteRepo) Nickname(ctx context.Context) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key='nickname'`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return name, err
}

func (r *sqliteRepo) SetNickname(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO settings (key,value) VALUES ('nickname',?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value`, name)
	return err
}

func (r *sqliteRepo) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	todos, err := r.List(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list todos: %w", err)
	}
	nick, err := r.Nickname(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read nickname: %w", err)
	}
	items := make([]domain.TaskItem, 0, len(todos))
	for _, t := range todos {
		items = append(items, domain.TaskItem{Text: t.Content, DueAt: t.DueAt, Done: t.Done})
	}
	return domain.Snapshot{Items: items, Nickname: nick}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (domain.Todo, error) {
	var t domain.Todo
	err := s.Scan(&t.ID, &t.Content, &t.DueAt, &t.Done, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
