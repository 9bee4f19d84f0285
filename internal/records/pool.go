// Package records implements the C7 records-store adapter: a bounded
// connection pool over individual pgx connections, schema management, and
// the retired-player repository.
package records

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Pool is a small connection pool protecting a fixed set of database
// handles, deliberately built on individual *pgx.Conn rather than
// pgxpool.Pool: the spec calls for the pool itself — "a semaphore + FIFO
// waiter queue is sufficient" (§9) — so reaching for pgxpool's own
// internal pooling would make this type redundant rather than implement
// it.
type Pool struct {
	dsn string

	mu      sync.Mutex
	idle    []*pgx.Conn
	waiters *list.List // of chan *pgx.Conn
	size    int
	maxSize int
	closed  bool
}

// NewPool dials maxSize connections against dsn up front and returns a
// Pool ready to hand them out.
func NewPool(ctx context.Context, dsn string, maxSize int) (*Pool, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", maxSize)
	}
	p := &Pool{
		dsn:     dsn,
		maxSize: maxSize,
		waiters: list.New(),
	}
	for i := 0; i < maxSize; i++ {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			p.closeIdleLocked()
			return nil, fmt.Errorf("dial connection %d/%d: %w", i+1, maxSize, err)
		}
		p.idle = append(p.idle, conn)
		p.size++
	}
	return p, nil
}

// Conn is a scoped handle returned by Acquire; Release must be called
// exactly once to return the underlying connection to the pool.
type Conn struct {
	pool *Pool
	raw  *pgx.Conn
}

// Raw exposes the underlying *pgx.Conn for query execution.
func (c *Conn) Raw() *pgx.Conn {
	return c.raw
}

// Release returns the connection to the pool, waking one waiter if any is
// queued (§4.7).
func (c *Conn) Release() {
	c.pool.release(c.raw)
}

// Acquire blocks until a connection is free and returns a scoped handle.
// Fairness is FIFO: waiters are served in arrival order (§4.7).
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("pool is closed")
	}
	if len(p.idle) > 0 {
		conn := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		p.mu.Unlock()
		return &Conn{pool: p, raw: conn}, nil
	}

	wait := make(chan *pgx.Conn, 1)
	elem := p.waiters.PushBack(wait)
	p.mu.Unlock()

	select {
	case conn := <-wait:
		return &Conn{pool: p, raw: conn}, nil
	case <-ctx.Done():
		p.mu.Lock()
		p.waiters.Remove(elem)
		p.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (p *Pool) release(conn *pgx.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = conn.Close(context.Background())
		return
	}
	if front := p.waiters.Front(); front != nil {
		p.waiters.Remove(front)
		front.Value.(chan *pgx.Conn) <- conn
		return
	}
	p.idle = append(p.idle, conn)
}

// Close closes every idle connection. In-flight connections are closed as
// they are released.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.closeIdleLocked()
}

func (p *Pool) closeIdleLocked() error {
	var firstErr error
	for _, conn := range p.idle {
		if err := conn.Close(context.Background()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.idle = nil
	return firstErr
}
