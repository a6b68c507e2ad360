package client

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/msomdec/task-board/internal/repository/sqlite"
	"github.com/msomdec/task-board/internal/repository/sqlite/migrations"
)

// Keys the session persists under.
const (
	tokenKey = "token"
	userKey  = "user"
)

// Storage is durable key/value storage for client credentials.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps values for the life of the process.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

//go:embed schema/*.sql
var schemaFS embed.FS

// SQLiteStorage persists values in a local SQLite file so a session
// survives restarts of the CLI.
type SQLiteStorage struct {
	db *sqlite.DB
}

// OpenSQLiteStorage opens (or creates) the state database at path.
func OpenSQLiteStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}

	schema, err := fs.Sub(schemaFS, "schema")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("client schema: %w", err)
	}
	if err := migrations.RunFS(ctx, db.SqlDB, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate client state: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.SqlDB.QueryRowContext(ctx,
		"SELECT value FROM client_state WHERE key = ?", key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get client state: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.SqlDB.ExecContext(ctx,
		`INSERT INTO client_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set client state: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.SqlDB.ExecContext(ctx,
		"DELETE FROM client_state WHERE key = ?", key,
	)
	if err != nil {
		return fmt.Errorf("delete client state: %w", err)
	}
	return nil
}
