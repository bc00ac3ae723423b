package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/auth"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/mapper"
	"github.com/venditio/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TodoService handles business logic for personal todos
type TodoService struct {
	todoRepo *repository.TodoRepository
	logger   *zap.Logger
}

// NewTodoService creates a new TodoService
func NewTodoService(todoRepo *repository.TodoRepository, logger *zap.Logger) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
		logger:   logger,
	}
}

// Create creates a todo for the caller
func (s *TodoService) Create(ctx context.Context, req *domain.CreateTodoRequest) (*domain.TodoDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	todo := &domain.Todo{
		Title:   req.Title,
		Notes:   req.Notes,
		DueDate: req.DueDate,
		OwnerID: userCtx.UserID,
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, err
	}

	dto := mapper.ToTodoDTO(todo)
	return &dto, nil
}

// Update applies partial changes to the caller's todo
func (s *TodoService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateTodoRequest) (*domain.TodoDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	todo, err := s.todoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: todo %s", ErrNotFound, id)
		}
		return nil, err
	}

	// Todos are strictly personal, admins included.
	if todo.OwnerID != userCtx.UserID {
		return nil, ErrPermissionDenied
	}

	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Notes != nil {
		todo.Notes = *req.Notes
	}
	if req.DueDate != nil {
		todo.DueDate = req.DueDate
	}
	if req.Done != nil {
		todo.Done = *req.Done
	}

	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, err
	}

	dto := mapper.ToTodoDTO(todo)
	return &dto, nil
}

// Delete removes the caller's todo
func (s *TodoService) Delete(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	todo, err := s.todoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: todo %s", ErrNotFound, id)
		}
		return err
	}

	if todo.OwnerID != userCtx.UserID {
		return ErrPermissionDenied
	}

	return s.todoRepo.Delete(ctx, id)
}

// List returns the caller's todos
func (s *TodoService) List(ctx context.Context) ([]domain.TodoDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	todos, err := s.todoRepo.ListByOwner(ctx, userCtx.UserID)
	if err != nil {
		return nil, err
	}
	return mapper.ToTodoDTOs(todos), nil
}
