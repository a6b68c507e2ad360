package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/task-board/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection and hands out the repositories built on it.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies any pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

// Ping checks the connection is still usable.
func (d *DB) Ping(ctx context.Context) error {
	return d.SqlDB.PingContext(ctx)
}

// SchemaVersion returns the filename of the newest applied migration.
func (d *DB) SchemaVersion(ctx context.Context) (string, error) {
	return migrations.Version(ctx, d.SqlDB)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Users returns the credential store.
func (d *DB) Users() *UserRepository {
	return NewUserRepository(d)
}

// Tasks returns the task store.
func (d *DB) Tasks() *TaskRepository {
	return NewTaskRepository(d)
}
