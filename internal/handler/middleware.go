package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/CAFxX/httpcompression"
	"github.com/msomdec/task-board/internal/domain"
	"github.com/msomdec/task-board/internal/service"
)

type contextKey string

const userContextKey contextKey = "user"

const authCookieName = "auth_token"

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// RequireAuth is middleware that protects routes requiring authentication.
// The token is read from an "Authorization: Bearer" header, falling back to
// the auth_token cookie. Unauthenticated requests get a 401 JSON body.
func RequireAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		user, err := auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "Token is not valid")
				return
			}
			slog.Error("authenticate request", "error", err)
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth is middleware that attempts to authenticate but does not block
// unauthenticated requests.
func OptionalAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := tokenFromRequest(r); token != "" {
			if user, err := auth.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(authCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RateLimit rejects requests once the client's bucket is empty.
func RateLimit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := limiter.Allow(clientIP(r))
		if !ok {
			secs := max(int(retryAfter.Seconds()+0.5), 1)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders sets conservative browser security headers on every
// response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' 'unsafe-eval' https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// Compress wraps next with gzip/brotli response compression. Event streams
// are left uncompressed so SSE patches flush immediately.
func Compress(next http.Handler) (http.Handler, error) {
	adapter, err := httpcompression.DefaultAdapter(
		httpcompression.ContentTypes([]string{"text/event-stream"}, true),
	)
	if err != nil {
		return nil, err
	}
	return adapter(next), nil
}
