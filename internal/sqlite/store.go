package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Store bundles the connection pool with one repository per table.
type Store struct {
	pool *Pool
	log  zerolog.Logger

	WorkItems     *WorkItemsRepo
	Types         *TypesRepo
	FieldValues   *FieldValuesRepo
	Ranges        *RangesRepo
	Projects      *ProjectsRepo
	Settings      *SettingsRepo
	Machines      *MachinesRepo
	Relationships *RelationshipsRepo
}

// Open creates the database file (and its parent directory) if needed,
// applies the schema, and returns a ready store.
func Open(ctx context.Context, path string, initial, max int, log zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	pool, err := NewPool(path, initial, max, log)
	if err != nil {
		return nil, err
	}

	s := &Store{
		pool: pool,
		log:  log,

		WorkItems:     NewWorkItemsRepo(pool),
		Types:         NewTypesRepo(pool),
		FieldValues:   NewFieldValuesRepo(pool),
		Ranges:        NewRangesRepo(pool),
		Projects:      NewProjectsRepo(pool),
		Settings:      NewSettingsRepo(pool),
		Machines:      NewMachinesRepo(pool),
		Relationships: NewRelationshipsRepo(pool),
	}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Debug().Str("path", path).Int("pool_max", max).Msg("store opened")
	return s, nil
}

// Pool exposes the store's connection pool.
func (s *Store) Pool() *Pool {
	return s.pool
}

// ensureSchema applies the table and index DDL. Every statement is
// idempotent, so reopening an existing database is a no-op.
func (s *Store) ensureSchema(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	for _, ddl := range schemaDDL {
		if _, err := conn.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := conn.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("applying indexes: %w", err)
		}
	}
	return nil
}

// WithTx runs fn inside a write transaction on one pooled connection.
// The transaction takes the database write lock at BEGIN, commits when fn
// returns nil, and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx Querier) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close shuts the connection pool down.
func (s *Store) Close() error {
	return s.pool.Close()
}
