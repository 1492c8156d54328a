package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Querier is the subset of database/sql execution methods the repositories
// need. *sql.DB, *sql.Tx, and *Conn all satisfy it, which lets callers
// compose several repository operations on one connection or transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RowScanner abstracts *sql.Row and *sql.Rows for entity decoders.
type RowScanner interface {
	Scan(dest ...any) error
}

// Codec declares the metadata and row codec for one entity type. The generic
// repository derives all CRUD SQL from it.
//
// Columns is the full ordered column list, primary key first. InsertValues
// must produce one Value per column in the same order; UpdateValues must
// produce one Value per non-key column, again in column order. The
// repository checks both lengths before binding so an entity whose value
// lists drift out of step with its column list fails loudly instead of
// writing shifted rows.
type Codec[E any] struct {
	Table        string
	PrimaryKey   string // empty means "id"
	Columns      []string
	Scan         func(row RowScanner) (*E, error)
	ID           func(e *E) string
	InsertValues func(e *E) []Value
	UpdateValues func(e *E) []Value
}

// key returns the primary key column name.
func (c *Codec[E]) key() string {
	if c.PrimaryKey == "" {
		return "id"
	}
	return c.PrimaryKey
}

// Scan helpers shared by the entity codecs. Timestamps are stored as
// RFC 3339 text; nullable text columns scan through sql.NullString.

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	return parseTime(s.String)
}

func stringOrEmpty(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
