package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/task-board/internal/domain"
	"github.com/msomdec/task-board/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

// HandleRegister processes a JSON registration request.
// POST /api/auth/register
// Request:  {"name":"...","email":"...","password":"..."}
// Response: 201 {"token":"...","user":{...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "User already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, validationMessage(err))
		default:
			slog.Error("register user", "error", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	h.setAuthCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, AuthResponseDTO{Token: res.Token, User: toUserDTO(res.User)})
}

// HandleLogin processes a JSON login request.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: 200 {"token":"...","user":{...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusBadRequest, "Invalid credentials")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, validationMessage(err))
		default:
			slog.Error("login user", "error", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	h.setAuthCookie(w, res.Token)
	writeJSON(w, http.StatusOK, AuthResponseDTO{Token: res.Token, User: toUserDTO(res.User)})
}

// HandleLogout clears the auth cookie. Bearer clients simply discard their
// token; tokens are stateless and stay valid until they expire.
// POST /api/auth/logout
// Response: 204 No Content
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the currently authenticated user.
// GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "No token, authorization denied")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user)})
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(service.TokenTTL.Seconds()),
	})
}

// validationMessage strips the sentinel prefix from a wrapped
// domain.ErrInvalidInput so only the human-readable part reaches the client.
func validationMessage(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, domain.ErrInvalidInput.Error()+": "); ok {
		return rest
	}
	return msg
}
