package client_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/task-board/internal/client"
	"github.com/msomdec/task-board/internal/domain"
)

// fakeAPI is an in-memory server. Errors queued in failNext are returned by
// the next call.
type fakeAPI struct {
	mu       sync.Mutex
	users    map[string]client.User // by email
	password map[string]string
	tasks    []client.Task
	seq      int
	calls    []string
	failNext error
	listGate chan struct{} // when set, ListTasks blocks until it is closed
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{users: map[string]client.User{}, password: map[string]string{}}
}

func (f *fakeAPI) record(name string) error {
	f.calls = append(f.calls, name)
	if err := f.failNext; err != nil {
		f.failNext = nil
		return err
	}
	return nil
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = err
}

func testToken(sub string, exp time.Time) string {
	claims := jwt.RegisteredClaims{Subject: sub, ExpiresAt: jwt.NewNumericDate(exp)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("client-test-secret"))
	if err != nil {
		panic(err)
	}
	return token
}

func (f *fakeAPI) Register(_ context.Context, name, email, password string) (*client.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("register"); err != nil {
		return nil, err
	}
	if _, ok := f.users[email]; ok {
		return nil, &client.APIError{Status: http.StatusBadRequest, Message: "User already exists"}
	}
	u := client.User{ID: fmt.Sprintf("u%d", len(f.users)+1), Name: name, Email: email}
	f.users[email] = u
	f.password[email] = password
	return &client.AuthResponse{Token: testToken(u.ID, time.Now().Add(time.Hour)), User: u}, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*client.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("login"); err != nil {
		return nil, err
	}
	u, ok := f.users[email]
	if !ok || f.password[email] != password {
		return nil, &client.APIError{Status: http.StatusBadRequest, Message: "Invalid credentials"}
	}
	return &client.AuthResponse{Token: testToken(u.ID, time.Now().Add(time.Hour)), User: u}, nil
}

func (f *fakeAPI) ListTasks(_ context.Context, token string) ([]client.Task, error) {
	if f.listGate != nil {
		<-f.listGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list"); err != nil {
		return nil, err
	}
	out := make([]client.Task, len(f.tasks))
	for i, t := range f.tasks {
		out[len(f.tasks)-1-i] = t
	}
	return out, nil
}

func (f *fakeAPI) GetTask(_ context.Context, token, id string) (*client.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("get"); err != nil {
		return nil, err
	}
	for _, t := range f.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, &client.APIError{Status: http.StatusNotFound, Message: "Task not found"}
}

func (f *fakeAPI) CreateTask(_ context.Context, token string, in client.NewTask) (*client.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create"); err != nil {
		return nil, err
	}
	f.seq++
	t := client.Task{
		ID:       fmt.Sprintf("t%d", f.seq),
		Title:    in.Title,
		Category: in.Category,
		Status:   in.Status,
	}
	if t.Category == "" {
		t.Category = domain.CategoryOther
	}
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, token, id string, patch client.TaskPatch) (*client.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update"); err != nil {
		return nil, err
	}
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		if patch.Title != nil {
			f.tasks[i].Title = *patch.Title
		}
		if patch.Category != nil {
			f.tasks[i].Category = *patch.Category
		}
		if patch.Status != nil {
			f.tasks[i].Status = *patch.Status
		}
		t := f.tasks[i]
		return &t, nil
	}
	return nil, &client.APIError{Status: http.StatusNotFound, Message: "Task not found"}
}

func (f *fakeAPI) DeleteTask(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete"); err != nil {
		return err
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: http.StatusNotFound, Message: "Task not found"}
}
