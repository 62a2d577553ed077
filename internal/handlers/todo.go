package handlers

import (
	"fmt"
	"net/http"

	"todoapi/internal/models"
)

// CreateTodo stores the posted todo and returns it with its location.
func (h *Handlers) CreateTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var todo models.Todo
	if err := decodeJSON(r, &todo); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.store.CreateTodo(ctx, &todo); err != nil {
		h.respondStoreError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", TodoBasePath, todo.ID))
	h.respondJSON(w, http.StatusCreated, todo)
}

// ListTodos returns every todo.
func (h *Handlers) ListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.store.ListTodos(r.Context())
	if err != nil {
		h.respondServerError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, todos)
}

// ListCompleteTodos returns the todos marked complete.
func (h *Handlers) ListCompleteTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.store.ListCompleteTodos(r.Context())
	if err != nil {
		h.respondServerError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, todos)
}

// GetTodo returns a single todo.
func (h *Handlers) GetTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid todo id")
		return
	}

	todo, err := h.store.GetTodo(ctx, id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, todo)
}

// UpdateTodo overwrites the name when one is given and always overwrites
// the completion flag.
func (h *Handlers) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid todo id")
		return
	}

	var input models.Todo
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	_, err = h.store.UpdateTodo(ctx, id, func(todo *models.Todo) {
		todo.Apply(input)
	})
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteTodo removes a todo.
func (h *Handlers) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid todo id")
		return
	}

	if err := h.store.DeleteTodo(ctx, id); err != nil {
		h.respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
