package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/service"
	"go.uber.org/zap"
)

type TodoHandler struct {
	todoService *service.TodoService
	logger      *zap.Logger
}

func NewTodoHandler(todoService *service.TodoService, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		logger:      logger,
	}
}

// @Summary List todos
// @Description The caller's personal todos, open items first
// @Tags Todos
// @Produce json
// @Success 200 {array} domain.TodoDTO
// @Security BearerAuth
// @Router /todos [get]
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todoService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list todos", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list todos")
		return
	}
	respondJSON(w, http.StatusOK, todos)
}

// @Summary Create todo
// @Description Create a personal todo for the caller
// @Tags Todos
// @Accept json
// @Produce json
// @Param request body domain.CreateTodoRequest true "Todo data"
// @Success 201 {object} domain.TodoDTO
// @Security BearerAuth
// @Router /todos [post]
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	todo, err := h.todoService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create todo", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create todo")
		return
	}

	respondJSON(w, http.StatusCreated, todo)
}

// @Summary Update todo
// @Description Update the caller's todo
// @Tags Todos
// @Accept json
// @Produce json
// @Param id path string true "Todo ID"
// @Param request body domain.UpdateTodoRequest true "Todo data"
// @Success 200 {object} domain.TodoDTO
// @Security BearerAuth
// @Router /todos/{id} [put]
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID: must be a valid UUID")
		return
	}

	var req domain.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	todo, err := h.todoService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Todo not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Todos can only be edited by their owner")
		default:
			h.logger.Error("failed to update todo", zap.Error(err), zap.String("todo_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to update todo")
		}
		return
	}

	respondJSON(w, http.StatusOK, todo)
}

// @Summary Delete todo
// @Description Delete the caller's todo
// @Tags Todos
// @Param id path string true "Todo ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID: must be a valid UUID")
		return
	}

	if err := h.todoService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Todo not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Todos can only be deleted by their owner")
		default:
			h.logger.Error("failed to delete todo", zap.Error(err), zap.String("todo_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to delete todo")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
