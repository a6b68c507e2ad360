package domain

import "context"

// Database is the lifecycle and health surface of the backing store.
// Each implementation owns its own migration files and strategy.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	// SchemaVersion names the newest migration applied.
	SchemaVersion(ctx context.Context) (string, error)
	Close() error
}
