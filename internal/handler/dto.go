package handler

import (
	"time"

	"github.com/msomdec/task-board/internal/domain"
)

// UserDTO is the public JSON view of a user. The password hash never leaves
// the server.
type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// AuthResponseDTO is returned by register and login.
type AuthResponseDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// TaskDTO is the JSON representation of a task.
type TaskDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Owner       string  `json:"owner"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	dto := TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    string(t.Category),
		Status:      string(t.Status),
		Owner:       t.OwnerID,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339Nano),
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(time.RFC3339)
		dto.DueDate = &due
	}
	return dto
}

func toTaskDTOs(tasks []domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = toTaskDTO(&tasks[i])
	}
	return dtos
}
