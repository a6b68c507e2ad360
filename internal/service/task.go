package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/task-board/internal/domain"
)

// TaskInput carries the caller-supplied fields of a new task. Empty
// Category and Status take their defaults.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Category    domain.Category
	Status      domain.Status
}

// TaskService handles owner-scoped task CRUD and validation.
type TaskService struct {
	tasks domain.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// List returns the owner's tasks newest-created-first. An invalid category
// or status filter fails with domain.ErrInvalidInput.
func (s *TaskService) List(ctx context.Context, ownerID string, filter domain.TaskFilter) ([]domain.Task, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, fmt.Errorf("%w: Invalid category", domain.ErrInvalidInput)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: Invalid status", domain.ErrInvalidInput)
	}

	tasks, err := s.tasks.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns one of the owner's tasks.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, ownerID, id)
}

// Create validates and stores a new task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, in TaskInput) (*domain.Task, error) {
	task := &domain.Task{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Status:      in.Status,
	}
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		task.DueDate = &due
	}
	if task.Category == "" {
		task.Category = domain.CategoryOther
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update applies a partial update to one of the owner's tasks. A patch that
// changes nothing returns the stored task without writing.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if !patch.Apply(task) {
		return task, nil
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes one of the owner's tasks.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	return s.tasks.Delete(ctx, ownerID, id)
}
