package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
)

func TestMemoryTimeline_ServesUntilTTL(t *testing.T) {
	ctx := context.Background()
	clock := NewManualClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	c := NewMemoryTimeline(20*time.Second, clock)

	_, ok := c.Get(ctx)
	assert.False(t, ok, "empty cache must miss")

	posts := []*models.Post{{ID: 2}, {ID: 1}}
	c.Set(ctx, posts)

	clock.Advance(19 * time.Second)
	got, ok := c.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, posts, got)

	clock.Advance(time.Second)
	_, ok = c.Get(ctx)
	assert.False(t, ok, "entry must expire at the TTL")
}

func TestMemoryTimeline_SetRestartsWindow(t *testing.T) {
	ctx := context.Background()
	clock := NewManualClock(time.Now())
	c := NewMemoryTimeline(20*time.Second, clock)

	c.Set(ctx, []*models.Post{{ID: 1}})
	clock.Advance(15 * time.Second)
	c.Set(ctx, []*models.Post{{ID: 2}})
	clock.Advance(15 * time.Second)

	got, ok := c.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestMemoryTimeline_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryTimeline(time.Minute, NewManualClock(time.Now()))

	c.Set(ctx, []*models.Post{{ID: 1}})
	c.Invalidate(ctx)

	_, ok := c.Get(ctx)
	assert.False(t, ok)
}

func TestMemoryTimeline_Defaults(t *testing.T) {
	c := NewMemoryTimeline(0, nil)
	assert.Equal(t, DefaultTTL, c.ttl)
	assert.IsType(t, SystemClock{}, c.clock)
}
