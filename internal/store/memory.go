package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"todoapi/internal/models"
)

// MemoryStore keeps todos in a map for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	todos  map[int64]*models.Todo
	nextID int64
	// exhausted is set once math.MaxInt64 has been handed out.
	exhausted bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		todos:  make(map[int64]*models.Todo),
		nextID: 1,
	}
}

// CreateTodo inserts todo. An explicit id is kept as long as it is free, and
// the id sequence moves past it so assigned ids keep increasing.
func (s *MemoryStore) CreateTodo(ctx context.Context, todo *models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case todo.ID == 0:
		if s.exhausted {
			return ErrIDExhausted
		}
		todo.ID = s.nextID
	case todo.ID > MaxExplicitID:
		return ErrIDExhausted
	default:
		if _, exists := s.todos[todo.ID]; exists {
			return ErrConflict
		}
	}
	if todo.ID >= s.nextID {
		if todo.ID == math.MaxInt64 {
			s.exhausted = true
		} else {
			s.nextID = todo.ID + 1
		}
	}

	stored := todo.Clone()
	s.todos[todo.ID] = &stored
	return nil
}

// GetTodo returns a copy of the todo with the given id.
func (s *MemoryStore) GetTodo(ctx context.Context, id int64) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todo, ok := s.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := todo.Clone()
	return &found, nil
}

// ListTodos returns all todos ordered by id.
func (s *MemoryStore) ListTodos(ctx context.Context) ([]models.Todo, error) {
	return s.list(func(models.Todo) bool { return true }), nil
}

// ListCompleteTodos returns the completed todos ordered by id.
func (s *MemoryStore) ListCompleteTodos(ctx context.Context) ([]models.Todo, error) {
	return s.list(func(t models.Todo) bool { return t.IsComplete }), nil
}

func (s *MemoryStore) list(keep func(models.Todo) bool) []models.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := make([]models.Todo, 0, len(s.todos))
	for _, todo := range s.todos {
		if keep(*todo) {
			todos = append(todos, todo.Clone())
		}
	}
	sort.Slice(todos, func(i, j int) bool {
		return todos[i].ID < todos[j].ID
	})
	return todos
}

// UpdateTodo applies fn to the stored todo while holding the write lock.
func (s *MemoryStore) UpdateTodo(ctx context.Context, id int64, fn func(*models.Todo)) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[id]
	if !ok {
		return nil, ErrNotFound
	}

	updated := todo.Clone()
	fn(&updated)
	updated.ID = id
	s.todos[id] = &updated

	result := updated.Clone()
	return &result, nil
}

// DeleteTodo removes the todo with the given id.
func (s *MemoryStore) DeleteTodo(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[id]; !ok {
		return ErrNotFound
	}
	delete(s.todos, id)
	return nil
}

// Close is a no-op; the data goes away with the process.
func (s *MemoryStore) Close() error {
	return nil
}
