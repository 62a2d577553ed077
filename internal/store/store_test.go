package store

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapi/internal/models"
)

type backend struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backend {
	return []backend{
		{
			name: KindMemory,
			open: func(t *testing.T) Store {
				return NewMemoryStore()
			},
		},
		{
			name: KindSQLite,
			open: func(t *testing.T) Store {
				s, err := NewSQLiteStore(context.Background(), ":memory:")
				require.NoError(t, err)
				t.Cleanup(func() { s.Close() })
				return s
			},
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b.open(t))
		})
	}
}

func createTodo(t *testing.T, s Store, name string, complete bool) *models.Todo {
	t.Helper()
	todo := &models.Todo{Name: models.StringPtr(name), IsComplete: complete}
	require.NoError(t, s.CreateTodo(context.Background(), todo))
	return todo
}

func TestCreateTodo_AssignsIncreasingIDs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		var last int64
		for i := 0; i < 5; i++ {
			todo := createTodo(t, s, "task", false)
			assert.Greater(t, todo.ID, last)
			last = todo.ID
		}

		require.NoError(t, s.DeleteTodo(ctx, last))
		next := createTodo(t, s, "after delete", false)
		assert.Greater(t, next.ID, last, "deleted ids must not be reused")
	})
}

func TestCreateTodo_ExplicitID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		explicit := &models.Todo{ID: 10, Name: models.StringPtr("explicit")}
		require.NoError(t, s.CreateTodo(ctx, explicit))
		assert.Equal(t, int64(10), explicit.ID)

		next := createTodo(t, s, "auto", false)
		assert.Greater(t, next.ID, int64(10))

		dup := &models.Todo{ID: 10, Name: models.StringPtr("dup")}
		assert.ErrorIs(t, s.CreateTodo(ctx, dup), ErrConflict)

		got, err := s.GetTodo(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, "explicit", got.NameOrEmpty())
	})
}

func TestCreateTodo_IDSpaceEnd(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		top := &models.Todo{ID: math.MaxInt64}
		assert.ErrorIs(t, s.CreateTodo(ctx, top), ErrIDExhausted)

		_, err := s.GetTodo(ctx, math.MaxInt64)
		assert.ErrorIs(t, err, ErrNotFound)

		highest := &models.Todo{ID: MaxExplicitID}
		require.NoError(t, s.CreateTodo(ctx, highest))

		last := createTodo(t, s, "last", false)
		assert.Equal(t, int64(math.MaxInt64), last.ID)
		assert.Greater(t, last.ID, highest.ID)

		overflow := &models.Todo{Name: models.StringPtr("one too many")}
		assert.ErrorIs(t, s.CreateTodo(ctx, overflow), ErrIDExhausted)
		assert.Equal(t, int64(0), overflow.ID)

		all, err := s.ListTodos(ctx)
		require.NoError(t, err)
		for _, todo := range all {
			assert.Positive(t, todo.ID)
		}
		assert.Len(t, all, 2)
	})
}

func TestGetTodo_RoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		created := createTodo(t, s, "wash car", true)

		got, err := s.GetTodo(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, *created, *got)
	})
}

func TestGetTodo_NilName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		todo := &models.Todo{}
		require.NoError(t, s.CreateTodo(ctx, todo))

		got, err := s.GetTodo(ctx, todo.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Name)
		assert.False(t, got.IsComplete)
	})
}

func TestMissingID_ReturnsNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		createTodo(t, s, "present", false)

		for _, id := range []int64{-1, 0, 999} {
			_, err := s.GetTodo(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.UpdateTodo(ctx, id, func(*models.Todo) {})
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, s.DeleteTodo(ctx, id), ErrNotFound)
		}
	})
}

func TestDeleteTodo_SecondDeleteIsNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		todo := createTodo(t, s, "once", false)

		require.NoError(t, s.DeleteTodo(ctx, todo.ID))
		assert.ErrorIs(t, s.DeleteTodo(ctx, todo.ID), ErrNotFound)

		_, err := s.GetTodo(ctx, todo.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListTodos(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		empty, err := s.ListTodos(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		a := createTodo(t, s, "a", false)
		b := createTodo(t, s, "b", true)
		c := createTodo(t, s, "c", true)
		require.NoError(t, s.DeleteTodo(ctx, c.ID))

		all, err := s.ListTodos(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.Todo{*a, *b}, all)
	})
}

func TestListCompleteTodos_IsFilteredSubset(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		empty, err := s.ListCompleteTodos(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empty)

		for i := 0; i < 6; i++ {
			createTodo(t, s, "item", i%2 == 0)
		}
		_, err = s.UpdateTodo(ctx, 2, func(todo *models.Todo) { todo.IsComplete = true })
		require.NoError(t, err)
		require.NoError(t, s.DeleteTodo(ctx, 1))

		all, err := s.ListTodos(ctx)
		require.NoError(t, err)
		complete, err := s.ListCompleteTodos(ctx)
		require.NoError(t, err)

		var want []models.Todo
		for _, todo := range all {
			if todo.IsComplete {
				want = append(want, todo)
			}
		}
		assert.Equal(t, want, complete)
		assert.Len(t, complete, 3)
	})
}

func TestUpdateTodo_AppliesMutation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		todo := createTodo(t, s, "buy milk", false)

		updated, err := s.UpdateTodo(ctx, todo.ID, func(t *models.Todo) {
			t.Apply(models.Todo{IsComplete: true})
		})
		require.NoError(t, err)
		assert.Equal(t, "buy milk", updated.NameOrEmpty())
		assert.True(t, updated.IsComplete)

		got, err := s.GetTodo(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, *updated, *got)
	})
}

func TestUpdateTodo_CannotChangeID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		todo := createTodo(t, s, "fixed", false)

		updated, err := s.UpdateTodo(ctx, todo.ID, func(t *models.Todo) { t.ID = 42 })
		require.NoError(t, err)
		assert.Equal(t, todo.ID, updated.ID)

		_, err = s.GetTodo(ctx, 42)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGetTodo_ReturnsCopy(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		todo := createTodo(t, s, "original", false)

		got, err := s.GetTodo(ctx, todo.ID)
		require.NoError(t, err)
		*got.Name = "mutated"
		got.IsComplete = true

		again, err := s.GetTodo(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", again.NameOrEmpty())
		assert.False(t, again.IsComplete)
	})
}

func TestConcurrentCreates_UniqueIDs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		const n = 50
		ids := make(chan int64, n)
		var wg sync.WaitGroup

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				todo := &models.Todo{Name: models.StringPtr("concurrent")}
				if assert.NoError(t, s.CreateTodo(context.Background(), todo)) {
					ids <- todo.ID
				}
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[int64]bool)
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
	})
}

func TestConcurrentUpdates_NoLostUpdates(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		todo := createTodo(t, s, "", false)

		const n = 40
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.UpdateTodo(ctx, todo.ID, func(t *models.Todo) {
					t.Name = models.StringPtr(t.NameOrEmpty() + "x")
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.GetTodo(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("x", n), got.NameOrEmpty())
	})
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), "", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(context.Background(), KindSQLite, ":memory:")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(context.Background(), "postgres", "")
	assert.Error(t, err)
}
