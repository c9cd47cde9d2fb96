// Package pool provides a bounded pool of reusable connections with
// explicit acquire/release semantics: a base set of handles kept warm, a
// transient overflow above it, and FIFO hand-off to blocked waiters. The
// pool is generic over the connection type; the postgres package supplies
// a pgx-backed dialer for production use and tests supply fakes.
package pool

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned by Acquire after the pool has been closed, and
// delivered to waiters blocked at the moment of closing.
var ErrClosed = errors.New("pool is closed")

// Config sizes the pool.
type Config struct {
	// Size is the base pool size: handles kept warm across releases.
	Size int

	// Overflow is the number of transient handles that may be created
	// above Size under load. Overflow handles are torn down on release
	// once the base size is no longer exceeded.
	Overflow int
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("pool size must be positive, got %d", c.Size)
	}
	if c.Overflow < 0 {
		return fmt.Errorf("pool overflow must be non-negative, got %d", c.Overflow)
	}
	return nil
}

// DialFunc opens one physical connection.
type DialFunc[C any] func(ctx context.Context) (C, error)

// CloseFunc closes one physical connection. A nil CloseFunc is a no-op.
type CloseFunc[C any] func(ctx context.Context, conn C) error

// Handle is one pooled connection. The holder owns it exclusively from
// Acquire until Release; no two tasks may use the same handle
// concurrently. The same handle identity may be reissued to a later
// acquirer after release; reuse is observable through ID.
type Handle[C any] struct {
	id   uint64
	Conn C
}

// ID identifies the physical connection behind this handle. It is stable
// across reuse.
func (h *Handle[C]) ID() uint64 {
	return h.id
}

// Pool is a bounded set of reusable connections. Acquire blocks the
// calling goroutine (never the whole process) when Size+Overflow handles
// are out; Release hands the freed handle to the longest-waiting acquirer.
type Pool[C any] struct {
	cfg     Config
	dial    DialFunc[C]
	closeFn CloseFunc[C]

	mu      sync.Mutex
	idle    []*Handle[C]
	waiters *list.List // of *waiter[C], FIFO
	open    int        // physical connections in existence
	inUse   int        // handles currently held by callers
	nextID  uint64
	closed  bool
}

// waiter is one blocked acquirer. handedOff is set under the pool mutex
// before the handle is sent, so a cancelled waiter can tell whether a
// handle is already in flight on its channel.
type waiter[C any] struct {
	ch        chan *Handle[C]
	handedOff bool
}

// New creates a pool. No connections are opened until first Acquire.
func New[C any](cfg Config, dial DialFunc[C], closeFn CloseFunc[C]) (*Pool[C], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dial == nil {
		return nil, errors.New("pool dial function cannot be nil")
	}
	return &Pool[C]{
		cfg:     cfg,
		dial:    dial,
		closeFn: closeFn,
		waiters: list.New(),
	}, nil
}

// Acquire returns a connection handle. Preference order: an idle handle,
// then a freshly dialed one while the pool is below Size+Overflow, then
// blocking in FIFO order behind earlier waiters. Cancellation of ctx
// while blocked removes this waiter only; the pool imposes no timeout of
// its own.
func (p *Pool[C]) Acquire(ctx context.Context) (*Handle[C], error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClosed
		}

		if len(p.idle) > 0 {
			h := p.idle[0]
			p.idle = p.idle[1:]
			p.inUse++
			p.mu.Unlock()
			return h, nil
		}

		if p.open < p.cfg.Size+p.cfg.Overflow {
			// Reserve the slot, then dial outside the lock.
			p.open++
			p.inUse++
			p.nextID++
			id := p.nextID
			p.mu.Unlock()

			conn, err := p.dial(ctx)
			if err != nil {
				p.mu.Lock()
				p.open--
				p.inUse--
				w := p.popWaiter()
				p.mu.Unlock()

				// The freed slot must not strand the queue; the longest
				// waiter retries with its own dial.
				if w != nil {
					w.ch <- nil
				}
				return nil, err
			}
			return &Handle[C]{id: id, Conn: conn}, nil
		}

		// Pool is at its ceiling: join the waiter queue. Exhaustion is not
		// an error; it resolves by blocking until a release or ctx ends.
		w := &waiter[C]{ch: make(chan *Handle[C], 1)}
		elem := p.waiters.PushBack(w)
		p.mu.Unlock()

		select {
		case h, ok := <-w.ch:
			if !ok {
				return nil, ErrClosed
			}
			if h == nil {
				// Capacity freed up with no handle to deliver; retry.
				continue
			}
			return h, nil
		case <-ctx.Done():
			p.mu.Lock()
			p.waiters.Remove(elem)
			handedOff := w.handedOff
			p.mu.Unlock()

			if handedOff {
				// A hand-off beat the cancellation; take whatever is in
				// flight on the buffered channel and pass it on.
				if h := <-w.ch; h != nil {
					p.Release(context.Background(), h)
				} else {
					p.wakeOne()
				}
			}
			return nil, ctx.Err()
		}
	}
}

// popWaiter removes and returns the longest-queued waiter, marking it
// handed off. Caller must hold mu.
func (p *Pool[C]) popWaiter() *waiter[C] {
	e := p.waiters.Front()
	if e == nil {
		return nil
	}
	p.waiters.Remove(e)
	w := e.Value.(*waiter[C])
	w.handedOff = true
	return w
}

// wakeOne pops the head waiter and signals it to retry; used when
// capacity frees up without a handle changing hands.
func (p *Pool[C]) wakeOne() {
	p.mu.Lock()
	w := p.popWaiter()
	p.mu.Unlock()
	if w != nil {
		w.ch <- nil
	}
}

// Release returns a handle to the pool. If a waiter is queued it takes
// ownership immediately (FIFO); otherwise an overflow handle is torn down
// and a base handle goes back on the idle list.
func (p *Pool[C]) Release(ctx context.Context, h *Handle[C]) {
	if h == nil {
		return
	}

	p.mu.Lock()
	p.inUse--

	if p.closed {
		p.open--
		p.mu.Unlock()
		p.closeConn(ctx, h)
		return
	}

	if w := p.popWaiter(); w != nil {
		p.inUse++ // ownership transfers directly to the waiter
		p.mu.Unlock()
		w.ch <- h
		return
	}

	if p.open > p.cfg.Size {
		p.open--
		p.mu.Unlock()
		p.closeConn(ctx, h)
		return
	}

	p.idle = append(p.idle, h)
	p.mu.Unlock()
}

// Discard closes a handle instead of returning it to the pool. Use it
// when the physical connection is known broken so later acquirers are
// never issued a dead connection. The freed slot is offered to the queue
// so a blocked waiter can dial a replacement.
func (p *Pool[C]) Discard(ctx context.Context, h *Handle[C]) {
	if h == nil {
		return
	}

	p.mu.Lock()
	p.inUse--
	p.open--
	w := p.popWaiter()
	p.mu.Unlock()

	p.closeConn(ctx, h)
	if w != nil {
		w.ch <- nil
	}
}

// Close marks the pool closed, closes all idle connections, and fails any
// blocked waiters with ErrClosed. Handles still held may be released
// afterwards; they are then closed instead of pooled. Returns the first
// close error encountered.
func (p *Pool[C]) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	idle := p.idle
	p.idle = nil
	p.open -= len(idle)

	for p.waiters.Len() > 0 {
		e := p.waiters.Front()
		p.waiters.Remove(e)
		close(e.Value.(*waiter[C]).ch)
	}
	p.mu.Unlock()

	var firstErr error
	for _, h := range idle {
		if err := p.closeConn(ctx, h); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats is a point-in-time snapshot of the pool's counters.
type Stats struct {
	// Open is the number of physical connections in existence.
	Open int

	// Idle is the number of warm handles awaiting reuse.
	Idle int

	// InUse is the number of handles currently held by callers. It never
	// exceeds Size+Overflow.
	InUse int

	// Waiting is the number of acquirers blocked on the waiter queue.
	Waiting int
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool[C]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Open:    p.open,
		Idle:    len(p.idle),
		InUse:   p.inUse,
		Waiting: p.waiters.Len(),
	}
}

func (p *Pool[C]) closeConn(ctx context.Context, h *Handle[C]) error {
	if p.closeFn == nil {
		return nil
	}
	return p.closeFn(ctx, h.Conn)
}
