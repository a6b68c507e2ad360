// Package client is the consumer side of the task API: an HTTP client, durable
// credential storage, and the session and task state machines that keep a
// local view of the server in sync.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/msomdec/task-board/internal/domain"
)

// APIError is a non-2xx response. Message is the server's message, if any.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// messageOr returns the server's message for err, or fallback when the
// server did not supply one.
func messageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// User is the public view of an account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Task mirrors the server's task representation.
type Task struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"dueDate"`
	Category    domain.Category `json:"category"`
	Status      domain.Status   `json:"status"`
	Owner       string          `json:"owner"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewTask is the body for creating a task. Empty category and status take
// the server defaults.
type NewTask struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	DueDate     string          `json:"dueDate,omitempty"`
	Category    domain.Category `json:"category,omitempty"`
	Status      domain.Status   `json:"status,omitempty"`
}

// TaskPatch carries only the fields to change. A non-nil empty DueDate
// clears the due date.
type TaskPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	DueDate     *string          `json:"dueDate,omitempty"`
	Category    *domain.Category `json:"category,omitempty"`
	Status      *domain.Status   `json:"status,omitempty"`
}

// AuthAPI is the part of the server the session talks to.
type AuthAPI interface {
	Register(ctx context.Context, name, email, password string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
}

// TaskAPI is the part of the server the task store talks to. Every call
// carries the caller's bearer token.
type TaskAPI interface {
	ListTasks(ctx context.Context, token string) ([]Task, error)
	GetTask(ctx context.Context, token, id string) (*Task, error)
	CreateTask(ctx context.Context, token string, in NewTask) (*Task, error)
	UpdateTask(ctx context.Context, token, id string, patch TaskPatch) (*Task, error)
	DeleteTask(ctx context.Context, token, id string) error
}

// HTTPClient talks JSON to a task-board server.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the server at baseURL. A nil hc uses a
// client with a 15 second timeout.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user the token belongs to.
func (c *HTTPClient) Me(ctx context.Context, token string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context, token string) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTasksByCategory asks the server for one category only.
func (c *HTTPClient) ListTasksByCategory(ctx context.Context, token string, category domain.Category) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/category/"+url.PathEscape(string(category)), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTasksByStatus asks the server for one status only.
func (c *HTTPClient) ListTasksByStatus(ctx context.Context, token string, status domain.Status) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/status/"+url.PathEscape(string(status)), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetTask(ctx context.Context, token, id string) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, token string, in NewTask) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, token, id string, patch TaskPatch) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), token, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), token, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
