package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/McTechie/tubecafe-backend/config"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// LikeCountKeyTemplate is likes:count:{resource type}:{resource id}.
const LikeCountKeyTemplate = "likes:count:%s:%s"

func LikeCountKey(kind models.ResourceType, id bson.ObjectID) string {
	return fmt.Sprintf(LikeCountKeyTemplate, kind, id.Hex())
}

// LikeCounts caches like totals per resource. Misses and cache errors both
// report ok=false so callers fall back to the database.
type LikeCounts interface {
	Get(ctx context.Context, kind models.ResourceType, id bson.ObjectID) (int64, bool)
	Set(ctx context.Context, kind models.ResourceType, id bson.ObjectID, count int64)
	Invalidate(ctx context.Context, kind models.ResourceType, id bson.ObjectID)
}

type RedisLikeCounts struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisLikeCounts(client redis.Cmdable, ttl time.Duration) *RedisLikeCounts {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisLikeCounts{client: client, ttl: ttl}
}

func (c *RedisLikeCounts) Get(ctx context.Context, kind models.ResourceType, id bson.ObjectID) (int64, bool) {
	val, err := c.client.Get(ctx, LikeCountKey(kind, id)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithField("source", "cache").WithError(err).Warn("like count lookup failed")
		}
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *RedisLikeCounts) Set(ctx context.Context, kind models.ResourceType, id bson.ObjectID, count int64) {
	if err := c.client.Set(ctx, LikeCountKey(kind, id), count, c.ttl).Err(); err != nil {
		logrus.WithField("source", "cache").WithError(err).Warn("like count store failed")
	}
}

func (c *RedisLikeCounts) Invalidate(ctx context.Context, kind models.ResourceType, id bson.ObjectID) {
	if err := c.client.Del(ctx, LikeCountKey(kind, id)).Err(); err != nil {
		logrus.WithField("source", "cache").WithError(err).Warn("like count invalidation failed")
	}
}

// NoopLikeCounts is used when no Redis address is configured.
type NoopLikeCounts struct{}

func (NoopLikeCounts) Get(context.Context, models.ResourceType, bson.ObjectID) (int64, bool) {
	return 0, false
}
func (NoopLikeCounts) Set(context.Context, models.ResourceType, bson.ObjectID, int64) {}
func (NoopLikeCounts) Invalidate(context.Context, models.ResourceType, bson.ObjectID) {}

// New connects to Redis when REDIS_ADDR is set. The returned close func is
// always safe to call.
func New(ctx context.Context, cfg config.Redis) (LikeCounts, func() error, error) {
	if cfg.Addr == "" {
		return NoopLikeCounts{}, func() error { return nil }, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisLikeCounts(client, cfg.LikeCountTTL), client.Close, nil
}
