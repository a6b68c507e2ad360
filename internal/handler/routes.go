package handler

import (
	"net/http"

	"github.com/msomdec/task-board/internal/domain"
	"github.com/msomdec/task-board/internal/service"
)

// Deps bundles what RegisterRoutes needs to wire the handlers.
type Deps struct {
	Auth         *service.AuthService
	Tasks        *service.TaskService
	AuthLimiter  *service.TokenBucket // nil disables auth rate limiting
	DB           domain.Database      // nil disables /readyz
	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	authH := NewAuthHandler(d.Auth, d.CookieSecure)
	taskH := NewTaskHandler(d.Tasks)
	dashH := NewDashboardHandler(d.Tasks)

	limited := func(h http.HandlerFunc) http.Handler {
		if d.AuthLimiter == nil {
			return h
		}
		return RateLimit(d.AuthLimiter, h)
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(d.Auth, h)
	}
	optional := func(h http.HandlerFunc) http.Handler {
		return OptionalAuth(d.Auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	if d.DB != nil {
		mux.Handle("GET /readyz", HandleReadyz(d.DB))
	}

	mux.Handle("POST /api/auth/register", limited(authH.HandleRegister))
	mux.Handle("POST /api/auth/login", limited(authH.HandleLogin))
	mux.HandleFunc("POST /api/auth/logout", authH.HandleLogout)
	mux.Handle("GET /api/auth/me", protected(authH.HandleMe))

	mux.Handle("GET /api/tasks", protected(taskH.HandleList))
	mux.Handle("POST /api/tasks", protected(taskH.HandleCreate))
	mux.Handle("GET /api/tasks/category/{category}", protected(taskH.HandleListByCategory))
	mux.Handle("GET /api/tasks/status/{status}", protected(taskH.HandleListByStatus))
	mux.Handle("GET /api/tasks/{id}", protected(taskH.HandleGet))
	mux.Handle("PATCH /api/tasks/{id}", protected(taskH.HandleUpdate))
	mux.Handle("DELETE /api/tasks/{id}", protected(taskH.HandleDelete))

	mux.Handle("GET /dashboard", optional(dashH.HandleDashboard))
	mux.Handle("GET /dashboard/tasks", optional(dashH.HandleTaskList))
	mux.Handle("GET /", optional(HandleHome))
}
