// Package cache holds the short-lived home timeline cache.
//
// The cached list is never invalidated on writes: a new post shows up on the
// home page once the entry expires or someone calls Invalidate.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
)

const (
	// IndexKey names the single home timeline slot.
	IndexKey = "index_page"
	// DefaultTTL is how long a computed timeline is served.
	DefaultTTL = 20 * time.Second
)

// Timeline caches the full newest-first post list shown on the home page.
type Timeline interface {
	// Get returns the cached list, or false when absent or expired.
	Get(ctx context.Context) ([]*models.Post, bool)
	// Set stores posts and restarts the expiry window.
	Set(ctx context.Context, posts []*models.Post)
	// Invalidate drops the entry so the next Get misses.
	Invalidate(ctx context.Context)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock starts a clock at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// MemoryTimeline keeps one time-stamped slot in process memory.
type MemoryTimeline struct {
	mu       sync.Mutex
	ttl      time.Duration
	clock    Clock
	posts    []*models.Post
	storedAt time.Time
	present  bool
}

// NewMemoryTimeline creates a cache whose entries live for ttl.
func NewMemoryTimeline(ttl time.Duration, clock Clock) *MemoryTimeline {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemoryTimeline{ttl: ttl, clock: clock}
}

func (m *MemoryTimeline) Get(_ context.Context) ([]*models.Post, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.present {
		return nil, false
	}
	if m.clock.Now().Sub(m.storedAt) >= m.ttl {
		m.posts, m.present = nil, false
		return nil, false
	}
	return m.posts, true
}

func (m *MemoryTimeline) Set(_ context.Context, posts []*models.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts = posts
	m.storedAt = m.clock.Now()
	m.present = true
}

func (m *MemoryTimeline) Invalidate(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts, m.present = nil, false
}
