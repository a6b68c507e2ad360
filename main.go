package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/msomdec/task-board/internal/handler"
	"github.com/msomdec/task-board/internal/repository/sqlite"
	"github.com/msomdec/task-board/internal/service"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "task-board.db")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if len(jwtSecret) < 32 {
		slog.Error("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
		os.Exit(1)
	}

	// Default to secure cookies; disable only for local development.
	cookieSecure := os.Getenv("COOKIE_SECURE") != "false"

	bcryptCost, err := envInt("BCRYPT_COST", 12)
	if err != nil {
		slog.Error("invalid BCRYPT_COST", "error", err)
		os.Exit(1)
	}
	if bcryptCost < 4 || bcryptCost > 14 {
		slog.Error("BCRYPT_COST must be between 4 and 14", "value", bcryptCost)
		os.Exit(1)
	}

	authPerMinute, err := envInt("AUTH_RATE_LIMIT", 20)
	if err != nil {
		slog.Error("invalid AUTH_RATE_LIMIT", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "path", dbPath)

	deps := handler.Deps{
		Auth:         service.NewAuthService(db.Users(), jwtSecret, bcryptCost),
		Tasks:        service.NewTaskService(db.Tasks()),
		DB:           db,
		CookieSecure: cookieSecure,
	}
	// 0 turns the limiter off.
	if authPerMinute > 0 {
		deps.AuthLimiter = service.NewTokenBucket(ctx, float64(authPerMinute)/60, float64(authPerMinute))
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, deps)

	compressed, err := handler.Compress(mux)
	if err != nil {
		slog.Error("failed to create compression adapter", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.SecurityHeaders(compressed),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}
