package migrations_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/msomdec/task-board/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Each :memory: connection is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("Run: %v", err)
	}

	_, err := db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)",
		"u1", "Test User", "test@example.com", "hash123",
	)
	if err != nil {
		t.Fatalf("insert into users: %v", err)
	}

	version, err := migrations.Version(ctx, db)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != "002_create_tasks.sql" {
		t.Fatalf("expected version 002_create_tasks.sql, got %q", version)
	}
}

func TestRunIdempotent(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second run (idempotent): %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 migration records, got %d", count)
	}
}

func TestRunFS_FailedFileNotRecorded(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE a (x INTEGER);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE nope (")},
	}

	if err := migrations.RunFS(ctx, db, fsys); err == nil {
		t.Fatal("expected error from broken migration")
	}

	version, err := migrations.Version(ctx, db)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != "001_ok.sql" {
		t.Fatalf("expected only 001_ok.sql recorded, got %q", version)
	}
}

func TestVersion_Empty(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.RunFS(ctx, db, fstest.MapFS{}); err != nil {
		t.Fatalf("RunFS: %v", err)
	}
	version, err := migrations.Version(ctx, db)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != "" {
		t.Fatalf("expected empty version, got %q", version)
	}
}
