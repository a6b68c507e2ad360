package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Category groups tasks into one of a fixed set of buckets.
type Category string

const (
	CategoryPersonal Category = "Personal"
	CategoryWork     Category = "Work"
	CategoryUrgent   Category = "Urgent"
	CategoryOther    Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryPersonal, CategoryWork, CategoryUrgent, CategoryOther}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategoryUrgent, CategoryOther:
		return true
	}
	return false
}

// Status is the progress state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the fixed statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	DueDate     *time.Time
	Category    Category
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the fields a stored task must always satisfy.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: Title is required", ErrInvalidInput)
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: Invalid category", ErrInvalidInput)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: Invalid status", ErrInvalidInput)
	}
	return nil
}

// TaskPatch is a partial update. A nil field is left unchanged.
// ClearDueDate removes the due date and takes precedence over DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Category     *Category
	Status       *Status
}

// Validate checks only the fields present in the patch.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: Title cannot be empty", ErrInvalidInput)
	}
	if p.Category != nil && !p.Category.Valid() {
		return fmt.Errorf("%w: Invalid category", ErrInvalidInput)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: Invalid status", ErrInvalidInput)
	}
	return nil
}

// Apply writes the supplied fields onto t and reports whether any value
// actually changed.
func (p TaskPatch) Apply(t *Task) bool {
	changed := false
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title != t.Title {
			t.Title = title
			changed = true
		}
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		if desc != t.Description {
			t.Description = desc
			changed = true
		}
	}
	switch {
	case p.ClearDueDate:
		if t.DueDate != nil {
			t.DueDate = nil
			changed = true
		}
	case p.DueDate != nil:
		if t.DueDate == nil || !t.DueDate.Equal(*p.DueDate) {
			due := p.DueDate.UTC()
			t.DueDate = &due
			changed = true
		}
	}
	if p.Category != nil && *p.Category != t.Category {
		t.Category = *p.Category
		changed = true
	}
	if p.Status != nil && *p.Status != t.Status {
		t.Status = *p.Status
		changed = true
	}
	return changed
}

// TaskFilter narrows a task set. Zero-valued fields do not filter.
type TaskFilter struct {
	Category Category
	Status   Status
	Search   string
}

// Match reports whether a task with the given category, status and title
// passes every active condition. Search is a case-insensitive substring
// match on the title.
func (f TaskFilter) Match(category Category, status Status, title string) bool {
	if f.Category != "" && category != f.Category {
		return false
	}
	if f.Status != "" && status != f.Status {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// Matches applies the filter to a stored task.
func (f TaskFilter) Matches(t *Task) bool {
	return f.Match(t.Category, t.Status, t.Title)
}

// TaskRepository defines persistence operations for tasks. Every lookup is
// scoped to an owner; a task owned by someone else reports ErrNotFound.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, ownerID, id string) (*Task, error)
	ListByOwner(ctx context.Context, ownerID string, filter TaskFilter) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, ownerID, id string) error
}
