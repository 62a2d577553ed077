package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"todoapi/internal/models"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given database path.
// ":memory:" gives a private database that lives as long as the store.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every pooled connection to ":memory:" would get its own empty database.
	db.SetMaxOpenConns(1)

	if err := newMigrator(db).migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateTodo inserts a todo. AUTOINCREMENT keeps assigned ids increasing and
// never hands out an id twice, even after deletes or explicit ids.
func (s *SQLiteStore) CreateTodo(ctx context.Context, todo *models.Todo) error {
	if todo.ID > MaxExplicitID {
		return ErrIDExhausted
	}

	var (
		result sql.Result
		err    error
	)
	if todo.ID == 0 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO todos (name, is_complete) VALUES (?, ?)
		`, nullString(todo.Name), todo.IsComplete)
	} else {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO todos (id, name, is_complete) VALUES (?, ?, ?)
		`, todo.ID, nullString(todo.Name), todo.IsComplete)
	}
	if err != nil {
		switch {
		case isPrimaryKeyViolation(err):
			return ErrConflict
		case isFull(err):
			// AUTOINCREMENT reports SQLITE_FULL once the largest rowid is taken.
			return ErrIDExhausted
		}
		return fmt.Errorf("failed to create todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	todo.ID = id

	return nil
}

// GetTodo retrieves a todo by ID.
func (s *SQLiteStore) GetTodo(ctx context.Context, id int64) (*models.Todo, error) {
	return getTodo(ctx, s.db, id)
}

// ListTodos retrieves all todos ordered by id.
func (s *SQLiteStore) ListTodos(ctx context.Context) ([]models.Todo, error) {
	return s.listTodos(ctx, `SELECT id, name, is_complete FROM todos ORDER BY id ASC`)
}

// ListCompleteTodos retrieves the completed todos ordered by id.
func (s *SQLiteStore) ListCompleteTodos(ctx context.Context) ([]models.Todo, error) {
	return s.listTodos(ctx, `SELECT id, name, is_complete FROM todos WHERE is_complete = TRUE ORDER BY id ASC`)
}

func (s *SQLiteStore) listTodos(ctx context.Context, query string, args ...interface{}) ([]models.Todo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}

	return todos, rows.Err()
}

// UpdateTodo reads, mutates and writes back a todo inside one transaction.
func (s *SQLiteStore) UpdateTodo(ctx context.Context, id int64, fn func(*models.Todo)) (*models.Todo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	todo, err := getTodo(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	fn(todo)
	todo.ID = id

	_, err = tx.ExecContext(ctx, `
		UPDATE todos SET name = ?, is_complete = ? WHERE id = ?
	`, nullString(todo.Name), todo.IsComplete, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit todo update: %w", err)
	}

	return todo, nil
}

// DeleteTodo deletes a todo by ID.
func (s *SQLiteStore) DeleteTodo(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func getTodo(ctx context.Context, q queryer, id int64) (*models.Todo, error) {
	row := q.QueryRowContext(ctx, `SELECT id, name, is_complete FROM todos WHERE id = ?`, id)
	todo, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return todo, nil
}

func scanTodo(row scanner) (*models.Todo, error) {
	todo := &models.Todo{}
	var name sql.NullString

	if err := row.Scan(&todo.ID, &name, &todo.IsComplete); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan todo: %w", err)
	}

	if name.Valid {
		todo.Name = models.StringPtr(name.String)
	}

	return todo, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func isFull(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrFull
}
