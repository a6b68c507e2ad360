package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/msomdec/task-board/internal/domain"
	"github.com/msomdec/task-board/internal/service"
)

// TaskHandler handles the task REST API. Every route runs behind
// RequireAuth, so the caller is always in the request context.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleList returns the caller's tasks, newest first.
// GET /api/tasks?category=&status=&search=
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, domain.TaskFilter{
		Category: domain.Category(q.Get("category")),
		Status:   domain.Status(q.Get("status")),
		Search:   q.Get("search"),
	})
}

// HandleListByCategory returns the caller's tasks in one category.
// GET /api/tasks/category/{category}
func (h *TaskHandler) HandleListByCategory(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.TaskFilter{Category: domain.Category(r.PathValue("category"))})
}

// HandleListByStatus returns the caller's tasks with one status.
// GET /api/tasks/status/{status}
func (h *TaskHandler) HandleListByStatus(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.TaskFilter{Status: domain.Status(r.PathValue("status"))})
}

func (h *TaskHandler) list(w http.ResponseWriter, r *http.Request, filter domain.TaskFilter) {
	user := UserFromContext(r.Context())

	tasks, err := h.tasks.List(r.Context(), user.ID, filter)
	if err != nil {
		writeTaskError(w, err, "list tasks")
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

// HandleGet returns a single task.
// GET /api/tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	task, err := h.tasks.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeTaskError(w, err, "get task")
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleCreate creates a task owned by the caller. Any owner field in the
// body is ignored.
// POST /api/tasks
// Request:  {"title":"...","description":"...","dueDate":"...","category":"...","status":"..."}
// Response: 201 task
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		DueDate     string          `json:"dueDate"`
		Category    domain.Category `json:"category"`
		Status      domain.Status   `json:"status"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
	}
	if req.DueDate != "" {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			writeTaskError(w, err, "create task")
			return
		}
		in.DueDate = &due
	}

	task, err := h.tasks.Create(r.Context(), user.ID, in)
	if err != nil {
		writeTaskError(w, err, "create task")
		return
	}
	writeJSON(w, http.StatusCreated, toTaskDTO(task))
}

// taskPatchRequest is the closed set of fields PATCH accepts.
type taskPatchRequest struct {
	Title       *string
	Description *string
	DueDate     json.RawMessage
	Category    *domain.Category
	Status      *domain.Status
}

// decodeTaskPatch fills a taskPatchRequest from the raw body fields. Keys
// must match exactly; any other key is errUnknownField.
func decodeTaskPatch(fields map[string]json.RawMessage) (taskPatchRequest, error) {
	var req taskPatchRequest
	for key, raw := range fields {
		var err error
		switch key {
		case "title":
			err = json.Unmarshal(raw, &req.Title)
		case "description":
			err = json.Unmarshal(raw, &req.Description)
		case "dueDate":
			req.DueDate = raw
		case "category":
			err = json.Unmarshal(raw, &req.Category)
		case "status":
			err = json.Unmarshal(raw, &req.Status)
		default:
			return req, errUnknownField
		}
		if err != nil {
			return req, err
		}
	}
	return req, nil
}

func (p taskPatchRequest) toPatch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Status:      p.Status,
	}
	if len(p.DueDate) == 0 {
		return patch, nil
	}

	var raw *string
	if err := json.Unmarshal(p.DueDate, &raw); err != nil {
		return patch, fmt.Errorf("%w: Invalid due date", domain.ErrInvalidInput)
	}
	if raw == nil || *raw == "" {
		patch.ClearDueDate = true
		return patch, nil
	}
	due, err := parseDueDate(*raw)
	if err != nil {
		return patch, err
	}
	patch.DueDate = &due
	return patch, nil
}

// HandleUpdate applies a partial update.
// PATCH /api/tasks/{id}
// Request:  any subset of {"title","description","dueDate","category","status"}
// Response: 200 task
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var fields map[string]json.RawMessage
	if err := readJSON(w, r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := decodeTaskPatch(fields)
	if err != nil {
		if errors.Is(err, errUnknownField) {
			writeError(w, http.StatusBadRequest, "Invalid updates")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeTaskError(w, err, "update task")
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, r.PathValue("id"), patch)
	if err != nil {
		writeTaskError(w, err, "update task")
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleDelete removes a task.
// DELETE /api/tasks/{id}
// Response: 200 {"message":"Task deleted"}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.tasks.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeTaskError(w, err, "delete task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}

// writeTaskError maps service errors to responses. Store failures are
// logged and reported without detail.
func writeTaskError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// parseDueDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: Invalid due date", domain.ErrInvalidInput)
}
