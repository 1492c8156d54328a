package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pburrows/lepidoptera/pkg/types"
)

// Repository provides find-by-id, create, update, and delete for any entity
// with a Codec, deriving every statement from the declared column list so
// the column-order/parameter-order coupling lives in one code path.
//
// Every operation takes an optional Querier. When q is nil the operation
// acquires a pooled connection for itself, which means separate calls are
// not transactional with each other; callers that need atomicity across
// several operations pass the same *sql.Tx to each.
type Repository[E any] struct {
	pool  *Pool
	codec Codec[E]
}

// NewRepository builds a repository over pool for the given codec.
func NewRepository[E any](pool *Pool, codec Codec[E]) *Repository[E] {
	return &Repository[E]{pool: pool, codec: codec}
}

// Pool exposes the underlying connection pool for callers composing
// multi-statement work on a single connection.
func (r *Repository[E]) Pool() *Pool {
	return r.pool
}

// querier resolves the Querier for one operation: the supplied q, or a
// pooled connection released by the returned closure.
func (r *Repository[E]) querier(ctx context.Context, q Querier) (Querier, func(), error) {
	if q != nil {
		return q, func() {}, nil
	}
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquiring connection: %w", err)
	}
	return conn, conn.Release, nil
}

// FindByID returns the entity with the given primary key, or
// types.ErrNotFound when no row matches.
func (r *Repository[E]) FindByID(ctx context.Context, q Querier, id string) (*E, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	c := &r.codec
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?1",
		strings.Join(c.Columns, ", "), c.Table, c.key())

	e, err := c.Scan(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s by id: %w", c.Table, err)
	}
	return e, nil
}

// Create inserts the entity and returns it unchanged. The identifier is
// caller-supplied; no auto-generated key is assumed.
func (r *Repository[E]) Create(ctx context.Context, q Querier, e *E) (*E, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	c := &r.codec
	values := c.InsertValues(e)
	if len(values) != len(c.Columns) {
		return nil, fmt.Errorf("%s: insert values length %d does not match %d columns",
			c.Table, len(values), len(c.Columns))
	}

	placeholders := make([]string, len(c.Columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("?%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.Table, strings.Join(c.Columns, ", "), strings.Join(placeholders, ", "))

	if _, err := q.ExecContext(ctx, query, bindArgs(values)...); err != nil {
		return nil, fmt.Errorf("inserting into %s: %w", c.Table, err)
	}
	return e, nil
}

// Update writes every non-key column of the entity. It requires a non-empty
// identifier and returns types.ErrMissingID otherwise; the identifier binds
// as the final parameter.
func (r *Repository[E]) Update(ctx context.Context, q Querier, e *E) error {
	c := &r.codec
	id := c.ID(e)
	if id == "" {
		return fmt.Errorf("updating %s: %w", c.Table, types.ErrMissingID)
	}

	q, release, err := r.querier(ctx, q)
	if err != nil {
		return err
	}
	defer release()

	setCols := c.Columns[1:] // all but the primary key
	values := c.UpdateValues(e)
	if len(values) != len(setCols) {
		return fmt.Errorf("%s: update values length %d does not match %d columns",
			c.Table, len(values), len(setCols))
	}

	assignments := make([]string, len(setCols))
	for i, col := range setCols {
		assignments[i] = fmt.Sprintf("%s = ?%d", col, i+1)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?%d",
		c.Table, strings.Join(assignments, ", "), c.key(), len(setCols)+1)

	args := append(bindArgs(values), id)
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", c.Table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Delete removes the row with the given primary key.
func (r *Repository[E]) Delete(ctx context.Context, q Querier, id string) error {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return err
	}
	defer release()

	c := &r.codec
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?1", c.Table, c.key())
	res, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", c.Table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrNotFound
	}
	return nil
}
