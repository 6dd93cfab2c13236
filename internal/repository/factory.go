package repository

import (
	"context"
	"fmt"

	"streaksage/internal/db"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Options struct {
	Backend     string
	DatabaseURL string
	SQLitePath  string
	// Seed installs the demo data after migrations.
	Seed bool
}

// Open builds the Store for opts.Backend and applies migrations.
func Open(ctx context.Context, opts Options) (Store, error) {
	var store Store

	switch opts.Backend {
	case BackendMemory, "":
		store = NewMemoryStore()
	case BackendPostgres:
		pool, err := db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		pg := NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		store = pg
	case BackendSQLite:
		conn, err := db.OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		lite := NewSQLiteStore(conn)
		if err := lite.Migrate(ctx); err != nil {
			lite.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		store = lite
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}

	if opts.Seed {
		if err := Seed(ctx, store); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}
