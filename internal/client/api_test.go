package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/task-board/internal/client"
	"github.com/msomdec/task-board/internal/domain"
	"github.com/msomdec/task-board/internal/handler"
	"github.com/msomdec/task-board/internal/repository/sqlite"
	"github.com/msomdec/task-board/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Auth:  service.NewAuthService(db.Users(), "client-integration-secret-0123456789", 4),
		Tasks: service.NewTaskService(db.Tasks()),
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_AgainstServer(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	api := client.NewHTTPClient(srv.URL+"/", srv.Client())

	session, err := client.NewSession(ctx, api, client.NewMemoryStorage())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	store := client.NewTaskStore(ctx, api, session)

	if err := session.Register(ctx, "Alice", "a@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	task, err := store.Add(ctx, client.NewTask{Title: "Buy milk", Category: domain.CategoryPersonal, DueDate: "2026-04-15"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if task.Owner != session.State().User.ID {
		t.Fatalf("expected owner %s, got %s", session.State().User.ID, task.Owner)
	}
	if task.DueDate == nil || task.DueDate.Format("2006-01-02") != "2026-04-15" {
		t.Fatalf("expected due date, got %v", task.DueDate)
	}

	updated, err := store.Update(ctx, task.ID, client.TaskPatch{Status: ptr(domain.StatusCompleted), DueDate: ptr("")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != domain.StatusCompleted || updated.Category != domain.CategoryPersonal || updated.DueDate != nil {
		t.Fatalf("unexpected update result %+v", updated)
	}

	completed, err := api.ListTasksByStatus(ctx, session.Token(), domain.StatusCompleted)
	if err != nil || len(completed) != 1 {
		t.Fatalf("expected one completed task, got %d err=%v", len(completed), err)
	}
	work, err := api.ListTasksByCategory(ctx, session.Token(), domain.CategoryWork)
	if err != nil || len(work) != 0 {
		t.Fatalf("expected no work tasks, got %d err=%v", len(work), err)
	}

	me, err := api.Me(ctx, session.Token())
	if err != nil || me.Email != "a@x.com" {
		t.Fatalf("Me: got %+v err=%v", me, err)
	}

	if err := store.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = api.GetTask(ctx, session.Token(), task.ID)
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "Task not found" {
		t.Fatalf("expected 404 Task not found, got %v", err)
	}
}

func TestHTTPClient_ServerMessagesReachState(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	api := client.NewHTTPClient(srv.URL, srv.Client())

	session, err := client.NewSession(ctx, api, client.NewMemoryStorage())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	session.Login(ctx, "nobody@x.com", "secret1")
	if got := session.State().Error; got != "Invalid credentials" {
		t.Fatalf("expected Invalid credentials, got %q", got)
	}

	session.Register(ctx, "Alice", "a@x.com", "12345")
	if got := session.State().Error; got != "Password must be at least 6 characters long" {
		t.Fatalf("expected password message, got %q", got)
	}

	_, err = api.ListTasks(ctx, "")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
