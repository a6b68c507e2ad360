package client_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/msomdec/task-board/internal/client"
)

func TestSQLiteStorage_RoundTripAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	storage, err := client.OpenSQLiteStorage(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLiteStorage: %v", err)
	}

	if _, ok, err := storage.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := storage.Set(ctx, "token", "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := storage.Set(ctx, "token", "second"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	storage.Close()

	reopened, err := client.OpenSQLiteStorage(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "token")
	if err != nil || !ok || v != "second" {
		t.Fatalf("expected second, got %q ok=%v err=%v", v, ok, err)
	}

	if err := reopened.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := reopened.Get(ctx, "token"); ok {
		t.Fatal("expected key to be gone")
	}
	if err := reopened.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete missing key: %v", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	storage := client.NewMemoryStorage()

	storage.Set(ctx, "user", "{}")
	if v, ok, _ := storage.Get(ctx, "user"); !ok || v != "{}" {
		t.Fatalf("expected stored value, got %q", v)
	}
	storage.Delete(ctx, "user")
	if _, ok, _ := storage.Get(ctx, "user"); ok {
		t.Fatal("expected key to be gone")
	}
}
