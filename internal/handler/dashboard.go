package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/task-board/internal/domain"
	"github.com/msomdec/task-board/internal/service"
	"github.com/msomdec/task-board/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// DashboardHandler serves the browser board and its live filter.
type DashboardHandler struct {
	tasks *service.TaskService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(tasks *service.TaskService) *DashboardHandler {
	return &DashboardHandler{tasks: tasks}
}

// filterSignals mirrors the data-signals declared by the filter form.
type filterSignals struct {
	Category string `json:"category"`
	Status   string `json:"status"`
	Search   string `json:"search"`
}

func (s filterSignals) toFilter() domain.TaskFilter {
	return domain.TaskFilter{
		Category: domain.Category(s.Category),
		Status:   domain.Status(s.Status),
		Search:   s.Search,
	}
}

// HandleDashboard renders the full board page. Visitors are sent home.
// GET /dashboard?category=&status=&search=
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	q := r.URL.Query()
	filter := filterSignals{Category: q.Get("category"), Status: q.Get("status"), Search: q.Get("search")}.toFilter()

	tasks, err := h.tasks.List(r.Context(), user.ID, filter)
	if errors.Is(err, domain.ErrInvalidInput) {
		filter = domain.TaskFilter{Search: filter.Search}
		tasks, err = h.tasks.List(r.Context(), user.ID, filter)
	}
	if err != nil {
		slog.Error("list dashboard tasks", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view.DashboardPage(user.Name, tasks, filter).Render(r.Context(), w)
}

// HandleTaskList patches the task list fragment for the filter signals sent
// by the page.
// GET /dashboard/tasks
func (h *DashboardHandler) HandleTaskList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var signals filterSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, signals.toFilter())

	sse := datastar.NewSSE(w, r)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			sse.PatchElementTempl(view.FilterError(validationMessage(err)))
			return
		}
		slog.Error("filter dashboard tasks", "error", err)
		sse.PatchElementTempl(view.FilterError("Failed to fetch tasks"))
		return
	}

	if err := sse.PatchElementTempl(view.TaskList(tasks)); err != nil {
		slog.Error("patch task list", "error", err)
	}
}
