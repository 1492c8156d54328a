// Package store is the public entry point of the lepidoptera work-item
// store. Open wires the SQLite storage layer and the manager together and
// returns the operation surface the CLI (or an embedding application)
// consumes.
package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pburrows/lepidoptera/internal/sqlite"
	"github.com/pburrows/lepidoptera/internal/workitems"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "lepidoptera.db"

// Pool sizing defaults.
const (
	DefaultPoolInitial = 2
	DefaultPoolMax     = 8
)

// Options configures Open. DataDir is required; everything else has a
// usable default.
type Options struct {
	DataDir     string
	User        string
	PoolInitial int
	PoolMax     int
	Logger      zerolog.Logger
}

// Store is the opened work-item store. It embeds the manager, so every
// operation (projects, types, items, relationships, allocation) is available
// directly on it.
type Store struct {
	*workitems.Service
}

// Open opens (creating if needed) the database under opts.DataDir and
// returns a ready store.
func Open(ctx context.Context, opts Options) (*Store, error) {
	initial := opts.PoolInitial
	if initial <= 0 {
		initial = DefaultPoolInitial
	}
	max := opts.PoolMax
	if max <= 0 {
		max = DefaultPoolMax
	}
	user := opts.User
	if user == "" {
		user = os.Getenv("USER")
	}
	if user == "" {
		user = "local"
	}

	db, err := sqlite.Open(ctx, filepath.Join(opts.DataDir, DatabaseFile), initial, max, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Store{Service: workitems.NewService(db, user, opts.Logger)}, nil
}
