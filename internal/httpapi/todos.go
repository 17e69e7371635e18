package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ent0n29/todolist/internal/todos"
)

type createTodoRequest struct {
	Title string `json:"title"`
}

type updateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

type deleteTodoResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type deleteCompletedResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.storeError(w, r, "list", err)
		return
	}
	if list == nil {
		list = []todos.Todo{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeValidated(r, createTodoSchema, &req); err != nil {
		badRequest(w, err)
		return
	}
	title, err := todos.NormalizeTitle(req.Title)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	todo, err := s.store.Create(r.Context(), title)
	if err != nil {
		s.storeError(w, r, "create", err)
		return
	}
	s.metrics.ObserveTodoEvent("created")
	respondJSON(w, http.StatusCreated, todo)
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	todo, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "get", err)
		return
	}
	respondJSON(w, http.StatusOK, todo)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	var req updateTodoRequest
	if err := decodeValidated(r, updateTodoSchema, &req); err != nil {
		badRequest(w, err)
		return
	}
	patch := todos.Patch{Completed: req.Completed}
	if req.Title != nil {
		title, err := todos.NormalizeTitle(*req.Title)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		patch.Title = &title
	}
	if patch.Empty() {
		respondError(w, http.StatusBadRequest, "invalid_request", todos.ErrEmptyPatch.Error())
		return
	}

	todo, err := s.store.Update(r.Context(), id, patch)
	if err != nil {
		s.storeError(w, r, "update", err)
		return
	}
	s.metrics.ObserveTodoEvent("updated")
	respondJSON(w, http.StatusOK, todo)
}

func (s *Server) handleToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	todo, err := s.store.Toggle(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "toggle", err)
		return
	}
	s.metrics.ObserveTodoEvent("toggled")
	respondJSON(w, http.StatusOK, todo)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.storeError(w, r, "delete", err)
		return
	}
	s.metrics.ObserveTodoEvent("deleted")
	respondJSON(w, http.StatusOK, deleteTodoResponse{Message: "Todo deleted", ID: id})
}

func (s *Server) handleDeleteCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.DeleteCompleted(r.Context())
	if err != nil {
		s.storeError(w, r, "delete_completed", err)
		return
	}
	s.metrics.AddTodoEvents("deleted", n)
	respondJSON(w, http.StatusOK, deleteCompletedResponse{
		Message:      "Completed todos deleted",
		DeletedCount: n,
	})
}

func todoID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_todo_id", "missing todo id")
		return "", false
	}
	return id, true
}

func badRequest(w http.ResponseWriter, err error) {
	if errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body is required")
		return
	}
	respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
}

// storeError maps store failures onto HTTP statuses. Anything that is not a
// caller mistake is a server error and gets logged.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, todos.ErrStoreNotFound):
		respondError(w, http.StatusNotFound, "todo_not_found", err.Error())
	case errors.Is(err, todos.ErrInvalidTitle), errors.Is(err, todos.ErrEmptyPatch):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.metrics.ObserveStoreError(op)
		s.logger.Error("store operation failed",
			"op", op,
			"err", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		code := "internal_error"
		if errors.Is(err, todos.ErrStoreUnavailable) {
			code = "store_unavailable"
		}
		respondError(w, http.StatusInternalServerError, code, "todo store failed; try again later")
	}
}
