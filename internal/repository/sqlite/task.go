package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/task-board/internal/domain"
)

const taskColumns = `id, owner_id, title, description, due_date, category, status, created_at, updated_at`

// TaskRepository implements domain.TaskRepository using SQLite.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite-backed TaskRepository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db.SqlDB}
}

// Create inserts the task and assigns its ID and timestamps.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, task.OwnerID, task.Title, task.Description, nullTime(task.DueDate),
		task.Category, task.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ListByOwner returns the owner's tasks newest-created-first. Category and
// status are filtered in SQL; the title search is applied in Go so that it
// matches the client-side predicate exactly.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string, filter domain.TaskFilter) ([]domain.Task, error) {
	where := []string{"owner_id = ?"}
	args := []any{ownerID}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY seq DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if filter.Matches(task) {
			tasks = append(tasks, *task)
		}
	}
	return tasks, rows.Err()
}

// Update writes every mutable field and bumps updated_at. The owner is never
// changed.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, due_date = ?, category = ?, status = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		task.Title, task.Description, nullTime(task.DueDate), task.Category, task.Status, now,
		task.ID, task.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t   domain.Task
		due sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &due,
		&t.Category, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
