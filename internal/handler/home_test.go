package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/msomdec/task-board/internal/handler"
)

func TestHandleHome(t *testing.T) {
	srv := newTestServer(t, newTestDeps(t))

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestHandleHomeNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()

	handler.HandleHome(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleDashboard_RedirectsVisitors(t *testing.T) {
	srv := newTestServer(t, newTestDeps(t))
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %s", loc)
	}
}

func TestHandleDashboard_RendersOwnTasks(t *testing.T) {
	d := newTestDeps(t)
	srv := newTestServer(t, d)
	ctx := context.Background()

	res, err := d.Auth.Register(ctx, "Dash", "dash@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := d.Tasks.Create(ctx, res.User.ID, serviceInput("Water <plants>")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: res.Token})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /dashboard: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Water &lt;plants&gt;") {
		t.Fatal("expected escaped task title in dashboard")
	}
}

func TestHandleDashboardTasks_PatchesFilteredList(t *testing.T) {
	d := newTestDeps(t)
	srv := newTestServer(t, d)
	ctx := context.Background()

	res, err := d.Auth.Register(ctx, "Dash", "dash@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	for _, title := range []string{"Buy milk", "Write report"} {
		if _, err := d.Tasks.Create(ctx, res.User.ID, serviceInput(title)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/dashboard/tasks?datastar="+url.QueryEscape(`{"search":"MILK"}`), nil)
	req.Header.Set("Datastar-Request", "true")
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: res.Token})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /dashboard/tasks: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected event stream, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Buy milk") {
		t.Fatal("expected matching task in patch")
	}
	if strings.Contains(string(body), "Write report") {
		t.Fatal("expected non-matching task to be filtered out")
	}
}
