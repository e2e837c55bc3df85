package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
)

// RedisTimeline stores the timeline as JSON with a server-side expiry.
// Redis failures are logged and read as a miss.
type RedisTimeline struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisTimeline creates a Redis-backed timeline cache under key.
func NewRedisTimeline(client redis.Cmdable, key string, ttl time.Duration, logger zerolog.Logger) *RedisTimeline {
	if key == "" {
		key = IndexKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTimeline{client: client, key: key, ttl: ttl, logger: logger}
}

func (r *RedisTimeline) Get(ctx context.Context) ([]*models.Post, bool) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("key", r.key).Msg("Timeline cache read failed")
		}
		return nil, false
	}

	var posts []*models.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		r.logger.Warn().Err(err).Str("key", r.key).Msg("Discarding undecodable timeline cache entry")
		return nil, false
	}
	return posts, true
}

func (r *RedisTimeline) Set(ctx context.Context, posts []*models.Post) {
	raw, err := json.Marshal(posts)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to encode timeline for cache")
		return
	}
	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", r.key).Msg("Timeline cache write failed")
	}
}

func (r *RedisTimeline) Invalidate(ctx context.Context) {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", r.key).Msg("Timeline cache delete failed")
	}
}
