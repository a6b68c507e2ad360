package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionState is the client's view of who is signed in.
type SessionState struct {
	User            *User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// SessionAction is an input to ReduceSession.
type SessionAction interface{ sessionAction() }

type (
	LoginRequested    struct{}
	LoginSucceeded    struct{ Auth AuthResponse }
	LoginFailed       struct{ Message string }
	RegisterRequested struct{}
	RegisterSucceeded struct{ Auth AuthResponse }
	RegisterFailed    struct{ Message string }
	LoggedOut         struct{}
	// SessionExpired is dispatched when the server rejects the stored token.
	SessionExpired struct{}
)

func (LoginRequested) sessionAction()    {}
func (LoginSucceeded) sessionAction()    {}
func (LoginFailed) sessionAction()       {}
func (RegisterRequested) sessionAction() {}
func (RegisterSucceeded) sessionAction() {}
func (RegisterFailed) sessionAction()    {}
func (LoggedOut) sessionAction()         {}
func (SessionExpired) sessionAction()    {}

// ReduceSession returns the state that follows s after a. It has no side
// effects.
func ReduceSession(s SessionState, a SessionAction) SessionState {
	switch a := a.(type) {
	case LoginRequested, RegisterRequested:
		s.IsLoading = true
		s.Error = ""
	case LoginSucceeded:
		return authenticated(a.Auth)
	case RegisterSucceeded:
		return authenticated(a.Auth)
	case LoginFailed:
		return SessionState{Error: a.Message}
	case RegisterFailed:
		return SessionState{Error: a.Message}
	case LoggedOut, SessionExpired:
		return SessionState{Error: s.Error}
	}
	return s
}

func authenticated(auth AuthResponse) SessionState {
	user := auth.User
	return SessionState{User: &user, Token: auth.Token, IsAuthenticated: true}
}

// SessionListener is told about every state change.
type SessionListener func(ctx context.Context, prev, next SessionState)

// Session is the shared handle over SessionState. Every change goes through
// ReduceSession.
type Session struct {
	api     AuthAPI
	storage Storage
	now     func() time.Time

	mu        sync.Mutex
	state     SessionState
	listeners []SessionListener
}

// NewSession restores the session from storage without contacting the
// server. A missing, unparsable or expired token starts the session signed
// out and clears what was stored.
func NewSession(ctx context.Context, api AuthAPI, storage Storage) (*Session, error) {
	return newSession(ctx, api, storage, time.Now)
}

func newSession(ctx context.Context, api AuthAPI, storage Storage, now func() time.Time) (*Session, error) {
	s := &Session{api: api, storage: storage, now: now}

	state, stale, err := restoreSession(ctx, storage, now())
	if err != nil {
		return nil, err
	}
	if stale {
		slog.Debug("discarding stored session")
		if err := s.clearStorage(ctx); err != nil {
			return nil, err
		}
	}
	s.state = state
	return s, nil
}

// restoreSession reports stale when something was stored but cannot be used.
func restoreSession(ctx context.Context, storage Storage, now time.Time) (state SessionState, stale bool, err error) {
	token, hasToken, err := storage.Get(ctx, tokenKey)
	if err != nil {
		return SessionState{}, false, err
	}
	rawUser, hasUser, err := storage.Get(ctx, userKey)
	if err != nil {
		return SessionState{}, false, err
	}
	if !hasToken && !hasUser {
		return SessionState{}, false, nil
	}
	if !hasToken || !hasUser || !tokenLive(token, now) {
		return SessionState{}, true, nil
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return SessionState{}, true, nil
	}
	return authenticated(AuthResponse{Token: token, User: user}), false, nil
}

// tokenLive checks the embedded expiry only. The signature is the server's
// business.
func tokenLive(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && now.Before(claims.ExpiresAt.Time)
}

// State returns a snapshot of the current state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current bearer token, or "" when signed out.
func (s *Session) Token() string {
	return s.State().Token
}

// Subscribe registers fn for every later state change.
func (s *Session) Subscribe(fn SessionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Dispatch applies a and notifies listeners.
func (s *Session) Dispatch(ctx context.Context, a SessionAction) SessionState {
	s.mu.Lock()
	prev := s.state
	next := ReduceSession(prev, a)
	s.state = next
	listeners := append([]SessionListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, prev, next)
	}
	return next
}

// Login signs in. On failure stored credentials are cleared and the returned
// error carries the message recorded in state.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.Dispatch(ctx, LoginRequested{})

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		msg := messageOr(err, "Login failed")
		s.clearStorageLogged(ctx)
		s.Dispatch(ctx, LoginFailed{Message: msg})
		return &ActionError{Message: msg, Err: err}
	}

	if err := s.persist(ctx, res); err != nil {
		s.clearStorageLogged(ctx)
		s.Dispatch(ctx, LoginFailed{Message: "Login failed"})
		return &ActionError{Message: "Login failed", Err: err}
	}
	s.Dispatch(ctx, LoginSucceeded{Auth: *res})
	return nil
}

// Register creates an account and signs in as it.
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	s.Dispatch(ctx, RegisterRequested{})

	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		msg := messageOr(err, "Registration failed")
		s.clearStorageLogged(ctx)
		s.Dispatch(ctx, RegisterFailed{Message: msg})
		return &ActionError{Message: msg, Err: err}
	}

	if err := s.persist(ctx, res); err != nil {
		s.clearStorageLogged(ctx)
		s.Dispatch(ctx, RegisterFailed{Message: "Registration failed"})
		return &ActionError{Message: "Registration failed", Err: err}
	}
	s.Dispatch(ctx, RegisterSucceeded{Auth: *res})
	return nil
}

// Logout forgets the credentials. It always leaves the session signed out,
// even if storage could not be cleared.
func (s *Session) Logout(ctx context.Context) error {
	err := s.clearStorage(ctx)
	s.Dispatch(ctx, LoggedOut{})
	return err
}

// Expire signs the session out after the server rejected its token.
func (s *Session) Expire(ctx context.Context) {
	s.clearStorageLogged(ctx)
	s.Dispatch(ctx, SessionExpired{})
}

func (s *Session) persist(ctx context.Context, res *AuthResponse) error {
	user, err := json.Marshal(res.User)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, tokenKey, res.Token); err != nil {
		return err
	}
	return s.storage.Set(ctx, userKey, string(user))
}

func (s *Session) clearStorage(ctx context.Context) error {
	if err := s.storage.Delete(ctx, tokenKey); err != nil {
		return err
	}
	return s.storage.Delete(ctx, userKey)
}

func (s *Session) clearStorageLogged(ctx context.Context) {
	if err := s.clearStorage(ctx); err != nil {
		slog.Warn("clear stored session", "error", err)
	}
}

// ActionError is returned when a session or task operation fails. Message is
// what the state recorded; Err is the underlying cause.
type ActionError struct {
	Message string
	Err     error
}

func (e *ActionError) Error() string { return e.Message }
func (e *ActionError) Unwrap() error { return e.Err }
