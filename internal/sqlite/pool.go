// Package sqlite implements the storage layer of the lepidoptera work-item
// store: a bounded connection pool over one SQLite database file, a generic
// entity repository that derives SQL from entity metadata, the dynamic
// work-item query engine, and the per-entity repositories built on them.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/pburrows/lepidoptera/pkg/types"
)

// Pool manages a bounded set of long-lived connections to one database file.
// Each pooled connection is an independent driver handle configured with WAL
// journaling, a five second busy wait, and foreign key enforcement, so
// multiple readers can proceed alongside a single writer.
//
// The cap is soft: Acquire never blocks, and the size check happens only on
// release, so the number of live connections can transiently overshoot max
// under load. Overshoot connections are closed instead of pooled.
type Pool struct {
	mu     sync.Mutex
	idle   []*Conn
	closed bool
	path   string
	max    int

	log zerolog.Logger
}

// NewPool opens a pool against the database file at path, eagerly opening
// initial connections. It fails fast if any initial connection cannot be
// opened or pinged.
func NewPool(path string, initial, max int, log zerolog.Logger) (*Pool, error) {
	if initial < 1 || max < 1 || initial > max {
		return nil, types.ErrPoolSizeInvalid
	}

	p := &Pool{
		path: path,
		max:  max,
		log:  log,
	}
	for i := 0; i < initial; i++ {
		conn, err := p.open()
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("opening initial connection %d: %w", i+1, err)
		}
		p.idle = append(p.idle, conn)
	}
	return p, nil
}

// dsn builds the connection string with the per-connection pragmas.
// _txlock=immediate makes every write transaction take the database write
// lock up front, which the number range allocator relies on.
func (p *Pool) dsn() string {
	return fmt.Sprintf(
		"file:%s?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		p.path)
}

// open creates one new connection outside the pool.
func (p *Pool) open() (*Conn, error) {
	db, err := sql.Open("sqlite", p.dsn())
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", p.path, err)
	}
	// One driver connection per handle; the pool does the pooling.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database %s: %w", p.path, err)
	}
	return &Conn{db: db, pool: p}, nil
}

// Acquire pops an idle connection, or opens a new one when the pool is
// empty. The returned connection must be released with Release.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, types.ErrStoreClosed
	}
	if n := len(p.idle); n > 0 {
		conn := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return conn, nil
	}
	p.mu.Unlock()

	p.log.Debug().Str("path", p.path).Msg("pool empty, opening connection")
	return p.open()
}

// Close closes every idle connection and marks the pool unusable.
// Connections still out on loan are closed when released.
func (p *Pool) Close() error {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.closed = true
	p.mu.Unlock()

	var firstErr error
	for _, c := range idle {
		if err := c.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Conn is a pooled connection. It satisfies Querier and may open
// transactions. Release returns it to the pool.
type Conn struct {
	db   *sql.DB
	pool *Pool
}

// Release hands the connection back to the pool. It is kept only while the
// pool is below its max size; otherwise the connection is closed.
func (c *Conn) Release() {
	p := c.pool
	p.mu.Lock()
	if !p.closed && len(p.idle) < p.max {
		p.idle = append(p.idle, c)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	_ = c.db.Close()
}

// BeginTx starts a transaction on this connection.
func (c *Conn) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, nil)
}

// ExecContext implements Querier.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// QueryContext implements Querier.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

// QueryRowContext implements Querier.
func (c *Conn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}
