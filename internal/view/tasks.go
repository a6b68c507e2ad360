package view

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/msomdec/task-board/internal/domain"
)

// TaskListID is the element id patched when the filter changes.
const TaskListID = "task-list"

// filterSignals seeds the Datastar signals the filter controls bind to.
type filterSignals struct {
	Category string `json:"category"`
	Status   string `json:"status"`
	Search   string `json:"search"`
}

// DashboardPage renders the signed-in user's board with the filter controls
// and the initial task list.
func DashboardPage(userName string, tasks []domain.Task, filter domain.TaskFilter) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := templ.JSONString(filterSignals{
			Category: string(filter.Category),
			Status:   string(filter.Status),
			Search:   filter.Search,
		})
		if err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, `<h1>%s's tasks</h1>`, templ.EscapeString(userName))
		fmt.Fprintf(&b, `<form id="task-filter" data-signals="%s">`, templ.EscapeString(signals))

		b.WriteString(`<select data-bind-category data-on-change="@get('/dashboard/tasks')"><option value="">All categories</option>`)
		for _, c := range domain.Categories {
			writeOption(&b, string(c), string(c), c == filter.Category)
		}
		b.WriteString(`</select>`)

		b.WriteString(`<select data-bind-status data-on-change="@get('/dashboard/tasks')"><option value="">All statuses</option>`)
		for _, s := range domain.Statuses {
			writeOption(&b, string(s), statusLabel(s), s == filter.Status)
		}
		b.WriteString(`</select>`)

		b.WriteString(`<input type="search" placeholder="Search tasks" data-bind-search data-on-input__debounce.300ms="@get('/dashboard/tasks')">`)
		b.WriteString(`</form>`)

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		return TaskList(tasks).Render(ctx, w)
	})
	return layout("Dashboard", userName, body)
}

// TaskList renders the list fragment. It always carries TaskListID so a
// Datastar patch replaces it in place.
func TaskList(tasks []domain.Task) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<ul id="%s">`, TaskListID)
		if len(tasks) == 0 {
			b.WriteString(`<li class="empty">No tasks found.</li>`)
		}
		for _, t := range tasks {
			fmt.Fprintf(&b, `<li id="task-%s" class="task status-%s"><h3>%s</h3>`,
				templ.EscapeString(t.ID), templ.EscapeString(string(t.Status)), templ.EscapeString(t.Title))
			if t.Description != "" {
				fmt.Fprintf(&b, `<p>%s</p>`, templ.EscapeString(t.Description))
			}
			fmt.Fprintf(&b, `<span class="category">%s</span> <span class="status">%s</span>`,
				templ.EscapeString(string(t.Category)), statusLabel(t.Status))
			if t.DueDate != nil {
				fmt.Fprintf(&b, ` <time datetime="%s">Due %s</time>`,
					t.DueDate.Format("2006-01-02"), t.DueDate.Format("Jan 2, 2006"))
			}
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// FilterError renders a validation message above the list.
func FilterError(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<ul id="%s"><li class="error">%s</li></ul>`, TaskListID, templ.EscapeString(message))
		return err
	})
}

func writeOption(b *strings.Builder, value, label string, selected bool) {
	sel := ""
	if selected {
		sel = " selected"
	}
	fmt.Fprintf(b, `<option value="%s"%s>%s</option>`, templ.EscapeString(value), sel, templ.EscapeString(label))
}

func statusLabel(s domain.Status) string {
	switch s {
	case domain.StatusPending:
		return "Pending"
	case domain.StatusInProgress:
		return "In progress"
	case domain.StatusCompleted:
		return "Completed"
	}
	return string(s)
}
