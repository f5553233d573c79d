package ocigo

import (
	"context"
	"database/sql/driver"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/go-ocilib/ocigo/internal/strbridge"
)

// ReleaseMode tells Pool.sessionRelease what to do with a returned session,
// per spec §4.3's pool "session_release(tag, mode)" operation.
type ReleaseMode int

const (
	// ReleaseDefault returns the session to the idle set for reuse.
	ReleaseDefault ReleaseMode = iota
	// ReleaseDrop detaches the session instead of recycling it, for a
	// caller that knows the session is in a bad state (e.g. after a
	// session-lost error).
	ReleaseDrop
)

// Pool is the session-pool half of component C7 (spec §4.3 "Connection and
// pool"). Where Connector hands database/sql one session per Connect, Pool
// keeps `min`..`max` sessions warm under a single lock and serves them out
// with an optional tag preference, mirroring the teacher's single
// Connector.Connect but generalized to the pool's own min/max/increment/tag
// knobs (no analogue exists in the teacher, which never pools beyond what
// database/sql itself does).
type Pool struct {
	connector *Connector

	min, max, increment int

	mu     sync.Mutex
	idle   []*Conn
	open   int
	closed bool
	wake   chan struct{}
}

// CreatePool attaches and begins `min` sessions against db/user/password,
// returning a Pool ready to serve SessionGet. The warm-fill spins up `min`
// sessions concurrently, capped at `increment` concurrent opens via
// errgroup.Group.SetLimit, so the pool never has more than `increment`
// attach/session-begin pairs in flight regardless of how large `min` is.
func CreatePool(ctx context.Context, dsn string, libPath string, charset string, min, max, increment int, mode SessionMode) (*Pool, error) {
	if min < 0 {
		min = 0
	}
	if increment <= 0 {
		increment = 1
	}
	if max < min {
		max = min
	}
	if max <= 0 {
		return nil, newError(KindArgumentInvalidValue, "CreatePool", "max must be positive")
	}

	cfg, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.mode = mode
	if libPath != "" {
		cfg.libPath = libPath
	}
	if charset != "" {
		cfg.charset = charset
	}

	envMode := strbridge.Wide
	if cfg.charset == "ansi" {
		envMode = strbridge.ANSI
	}
	env, err := OpenEnvironment(cfg.libPath, envMode)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		connector: &Connector{dsn: cfg, driver: &Driver{}, env: env},
		min:       min,
		max:       max,
		increment: increment,
		wake:      make(chan struct{}, 1),
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(increment)
	var mu sync.Mutex
	for i := 0; i < min; i++ {
		eg.Go(func() error {
			c, err := p.connector.Connect(egCtx)
			if err != nil {
				return err
			}
			mu.Lock()
			p.idle = append(p.idle, c.(*Conn))
			p.open++
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

// SessionGet returns a pooled connection, preferring an idle session whose
// sessionTag matches tag (empty tag matches any idle session). If the pool
// is exhausted (open == max and none idle) and wait is true, SessionGet
// blocks on ctx until a session is released or ctx is done; if wait is
// false it opens a new session immediately as long as open < max, per spec
// §4.3's "session_get(tag, wait)" operation.
//
// The returned driver.Conn's Close returns the session to the pool instead
// of detaching it — callers use it exactly like any other database/sql
// connection and the pool reclaims it transparently.
func (p *Pool) SessionGet(ctx context.Context, tag string, wait bool) (driver.Conn, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, newError(KindNotAvailable, "SessionGet", "pool is destroyed")
		}

		if idx := p.pickIdleLocked(tag); idx >= 0 {
			conn := p.idle[idx]
			p.idle = append(p.idle[:idx], p.idle[idx+1:]...)
			p.mu.Unlock()
			return &pooledConn{Conn: conn, pool: p, tag: tag}, nil
		}

		if p.open < p.max {
			p.open++
			p.mu.Unlock()
			c, err := p.connector.Connect(ctx)
			if err != nil {
				p.mu.Lock()
				p.open--
				p.mu.Unlock()
				return nil, err
			}
			conn := c.(*Conn)
			conn.sessionTag = tag
			return &pooledConn{Conn: conn, pool: p, tag: tag}, nil
		}

		if !wait {
			p.mu.Unlock()
			return nil, newError(KindQueueTimeout, "SessionGet", "pool exhausted and wait=false")
		}
		p.mu.Unlock()

		select {
		case <-p.wake:
		case <-ctx.Done():
			return nil, newError(KindQueueTimeout, "SessionGet", "context done waiting for a pooled session")
		}
	}
}

// pickIdleLocked returns the index of an idle session matching tag, or -1.
// Exact tag matches win over untagged idle sessions; callers hold p.mu.
func (p *Pool) pickIdleLocked(tag string) int {
	if tag == "" {
		if len(p.idle) > 0 {
			return 0
		}
		return -1
	}
	fallback := -1
	for i, c := range p.idle {
		if c.sessionTag == tag {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

// sessionRelease is called by pooledConn.Close; it is the implementation of
// the "session_release(tag, mode)" operation.
func (p *Pool) sessionRelease(conn *Conn, tag string, mode ReleaseMode) error {
	p.mu.Lock()
	if p.closed || mode == ReleaseDrop {
		wasOpen := !p.closed
		p.mu.Unlock()
		err := conn.Close()
		if wasOpen {
			p.mu.Lock()
			p.open--
			p.mu.Unlock()
			p.notifyWaiter()
		}
		return err
	}
	conn.sessionTag = tag
	p.idle = append(p.idle, conn)
	p.mu.Unlock()
	p.notifyWaiter()
	return nil
}

func (p *Pool) notifyWaiter() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Destroy closes every idle session and marks the pool unusable. Sessions
// currently checked out are detached as they are released.
func (p *Pool) Destroy() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var firstErr error
	for _, c := range idle {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats reports the pool's current open/idle counts, useful for monitoring
// min/max/increment tuning.
func (p *Pool) Stats() (open, idle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open, len(p.idle)
}

// pooledConn wraps a *Conn checked out of a Pool so that Close returns it to
// the pool instead of detaching the underlying OCI session.
type pooledConn struct {
	*Conn
	pool *Pool
	tag  string
}

// Close releases the session back to its pool (spec §4.3: "a session_get
// returns a connection whose close returns the session to the pool rather
// than detaching").
func (pc *pooledConn) Close() error {
	if !pc.Conn.IsValid() {
		return pc.pool.sessionRelease(pc.Conn, pc.tag, ReleaseDrop)
	}
	return pc.pool.sessionRelease(pc.Conn, pc.tag, ReleaseDefault)
}

var _ driver.Conn = (*pooledConn)(nil)
