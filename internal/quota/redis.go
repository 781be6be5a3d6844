package quota

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	requestKeyPrefix = "quota:req:"

	// keyTTLSlack keeps keys a little past the window so Oldest stays
	// answerable right up to expiry.
	keyTTLSlack = 10 * time.Minute
)

// RedisWindow implements Window over a Redis sorted set per user: member
// scores are request times in milliseconds, trimmed to the window on every
// read. Suited to deployments where several instances share one quota.
type RedisWindow struct {
	rdb redis.Cmdable
}

// NewRedisWindow wraps an existing Redis client.
func NewRedisWindow(rdb redis.Cmdable) *RedisWindow {
	return &RedisWindow{rdb: rdb}
}

// Count trims expired members and returns the in-window cardinality.
func (w *RedisWindow) Count(ctx context.Context, userID string, window time.Duration) (int, error) {
	key := requestKeyPrefix + userID
	cutoff := time.Now().Add(-window).UnixMilli()

	pipe := w.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(card.Val()), nil
}

// Oldest returns the earliest in-window request time, or nil when empty.
func (w *RedisWindow) Oldest(ctx context.Context, userID string, window time.Duration) (*time.Time, error) {
	key := requestKeyPrefix + userID
	cutoff := time.Now().Add(-window).UnixMilli()

	members, err := w.rdb.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min:   strconv.FormatInt(cutoff, 10),
		Max:   "+inf",
		Count: 1,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	at := time.UnixMilli(int64(members[0].Score)).UTC()
	return &at, nil
}

// Record appends one request and refreshes the key TTL.
func (w *RedisWindow) Record(ctx context.Context, userID string, at time.Time) error {
	key := requestKeyPrefix + userID

	pipe := w.rdb.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: strconv.FormatInt(at.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, 24*time.Hour+keyTTLSlack)
	_, err := pipe.Exec(ctx)
	return err
}
