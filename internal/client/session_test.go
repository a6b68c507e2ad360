package client_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/msomdec/task-board/internal/client"
)

func TestReduceSession(t *testing.T) {
	auth := client.AuthResponse{Token: "tok", User: client.User{ID: "u1", Name: "Alice"}}

	s := client.ReduceSession(client.SessionState{Error: "old"}, client.LoginRequested{})
	if !s.IsLoading || s.Error != "" {
		t.Fatalf("request: expected loading with no error, got %+v", s)
	}

	s = client.ReduceSession(s, client.LoginSucceeded{Auth: auth})
	if !s.IsAuthenticated || s.IsLoading || s.Token != "tok" || s.User.ID != "u1" {
		t.Fatalf("success: unexpected state %+v", s)
	}

	s = client.ReduceSession(s, client.RegisterFailed{Message: "User already exists"})
	if s.IsAuthenticated || s.User != nil || s.Token != "" || s.Error != "User already exists" {
		t.Fatalf("failure: unexpected state %+v", s)
	}

	s = client.ReduceSession(client.ReduceSession(s, client.RegisterSucceeded{Auth: auth}), client.LoggedOut{})
	if s.IsAuthenticated || s.User != nil || s.Token != "" || s.IsLoading {
		t.Fatalf("logout: unexpected state %+v", s)
	}
}

func TestReduceSession_DoesNotShareUser(t *testing.T) {
	auth := client.AuthResponse{Token: "tok", User: client.User{ID: "u1"}}
	s := client.ReduceSession(client.SessionState{}, client.LoginSucceeded{Auth: auth})
	auth.User.ID = "changed"
	if s.User.ID != "u1" {
		t.Fatal("expected state to own its user")
	}
}

func TestSession_RestoresFromStorage(t *testing.T) {
	ctx := context.Background()
	storage := client.NewMemoryStorage()
	storage.Set(ctx, "token", testToken("u1", time.Now().Add(time.Hour)))
	storage.Set(ctx, "user", `{"id":"u1","name":"Alice","email":"a@x.com"}`)

	api := newFakeAPI()
	session, err := client.NewSession(ctx, api, storage)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	s := session.State()
	if !s.IsAuthenticated || s.User == nil || s.User.Name != "Alice" {
		t.Fatalf("expected restored session, got %+v", s)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no network calls, got %v", api.calls)
	}
}

func TestSession_ExpiredOrPartialStorageStartsSignedOut(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
		user  string
	}{
		{"expired token", testToken("u1", time.Now().Add(-time.Minute)), `{"id":"u1"}`},
		{"garbage token", "not-a-jwt", `{"id":"u1"}`},
		{"token without user", testToken("u1", time.Now().Add(time.Hour)), ""},
		{"user without token", "", `{"id":"u1"}`},
		{"corrupt user", testToken("u1", time.Now().Add(time.Hour)), "{"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			storage := client.NewMemoryStorage()
			if tc.token != "" {
				storage.Set(ctx, "token", tc.token)
			}
			if tc.user != "" {
				storage.Set(ctx, "user", tc.user)
			}

			session, err := client.NewSession(ctx, newFakeAPI(), storage)
			if err != nil {
				t.Fatalf("NewSession: %v", err)
			}
			if session.State().IsAuthenticated {
				t.Fatal("expected signed-out session")
			}
			if _, ok, _ := storage.Get(ctx, "token"); ok {
				t.Fatal("expected stale token to be cleared")
			}
			if _, ok, _ := storage.Get(ctx, "user"); ok {
				t.Fatal("expected stale user to be cleared")
			}
		})
	}
}

func TestSession_LoginPersistsAndLogoutClears(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.Register(ctx, "Alice", "a@x.com", "secret1")
	api.calls = nil

	storage := client.NewMemoryStorage()
	session, err := client.NewSession(ctx, api, storage)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	var transitions []client.SessionState
	session.Subscribe(func(_ context.Context, _, next client.SessionState) {
		transitions = append(transitions, next)
	})

	if err := session.Login(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(transitions) != 2 || !transitions[0].IsLoading || !transitions[1].IsAuthenticated {
		t.Fatalf("expected request then success, got %+v", transitions)
	}
	token, ok, _ := storage.Get(ctx, "token")
	if !ok || token != session.Token() {
		t.Fatal("expected token to be persisted")
	}

	if err := session.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if session.State().IsAuthenticated {
		t.Fatal("expected signed-out session")
	}
	if _, ok, _ := storage.Get(ctx, "token"); ok {
		t.Fatal("expected token to be cleared")
	}
}

func TestSession_FailuresCarryServerMessage(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	storage := client.NewMemoryStorage()
	storage.Set(ctx, "token", "stale")

	session, err := client.NewSession(ctx, api, storage)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	err = session.Login(ctx, "nobody@x.com", "secret1")
	var actionErr *client.ActionError
	if !errors.As(err, &actionErr) || actionErr.Message != "Invalid credentials" {
		t.Fatalf("expected Invalid credentials, got %v", err)
	}
	if got := session.State().Error; got != "Invalid credentials" {
		t.Fatalf("expected state error Invalid credentials, got %q", got)
	}

	api.fail(errors.New("connection refused"))
	session.Register(ctx, "Bob", "b@x.com", "secret1")
	if got := session.State().Error; got != "Registration failed" {
		t.Fatalf("expected fallback message, got %q", got)
	}

	api.fail(&client.APIError{Status: http.StatusInternalServerError})
	session.Login(ctx, "b@x.com", "secret1")
	if got := session.State().Error; got != "Login failed" {
		t.Fatalf("expected fallback for empty server message, got %q", got)
	}
}

// userWriteFails stores the token but refuses the user record.
type userWriteFails struct {
	*client.MemoryStorage
}

func (s userWriteFails) Set(ctx context.Context, key, value string) error {
	if key == "user" {
		return errors.New("disk full")
	}
	return s.MemoryStorage.Set(ctx, key, value)
}

func TestSession_PartialPersistIsCleared(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.Register(ctx, "Alice", "a@x.com", "secret1")

	storage := userWriteFails{client.NewMemoryStorage()}
	session, err := client.NewSession(ctx, api, storage)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	for name, act := range map[string]func() error{
		"login":    func() error { return session.Login(ctx, "a@x.com", "secret1") },
		"register": func() error { return session.Register(ctx, "Bob", "b@x.com", "secret1") },
	} {
		if err := act(); err == nil {
			t.Fatalf("%s: expected error when the user cannot be stored", name)
		}
		if session.State().IsAuthenticated {
			t.Fatalf("%s: expected signed-out session", name)
		}
		if _, ok, _ := storage.Get(ctx, "token"); ok {
			t.Fatalf("%s: expected half-written token to be cleared", name)
		}
	}
}
