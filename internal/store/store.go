package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"todoapi/internal/models"
)

var (
	// ErrNotFound is returned when no todo has the requested id.
	ErrNotFound = errors.New("todo not found")
	// ErrConflict is returned when a todo is created with an id that is already in use.
	ErrConflict = errors.New("todo id already exists")
	// ErrIDExhausted is returned when the id sequence has no room left for
	// another todo.
	ErrIDExhausted = errors.New("todo id space exhausted")
)

// MaxExplicitID is the largest id a client may choose. math.MaxInt64 is left
// for the sequence, since taking it would leave no larger id to assign next.
const MaxExplicitID = math.MaxInt64 - 1

// Backend kinds accepted by Open.
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
)

// Store defines the interface for todo persistence operations.
type Store interface {
	// CreateTodo stores todo, assigning an id when todo.ID is zero.
	CreateTodo(ctx context.Context, todo *models.Todo) error
	GetTodo(ctx context.Context, id int64) (*models.Todo, error)
	ListTodos(ctx context.Context) ([]models.Todo, error)
	ListCompleteTodos(ctx context.Context) ([]models.Todo, error)
	// UpdateTodo finds the todo, applies fn to it and commits the result as
	// one atomic step.
	UpdateTodo(ctx context.Context, id int64, fn func(*models.Todo)) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error

	// Lifecycle
	Close() error
}

// Open returns the store backend named by kind. dbPath is only used by the
// SQLite backend.
func Open(ctx context.Context, kind, dbPath string) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite:
		return NewSQLiteStore(ctx, dbPath)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
