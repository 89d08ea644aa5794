package cache

import (
	"alcyxob/healthera/internal/config"
	"alcyxob/healthera/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statisticsKeyPrefix = "healthera:stats:"
	defaultTTL          = 10 * time.Minute
)

// redisStatisticsCache implements StatisticsCache on top of Redis.
type redisStatisticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatisticsCache connects to Redis and verifies the connection with a PING.
func NewRedisStatisticsCache(ctx context.Context, cfg config.RedisConfig) (StatisticsCache, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	log.Printf("INFO: Statistics cache connected to Redis at %s (db %d)", cfg.Addr, cfg.DB)
	return NewRedisStatisticsCacheFromClient(client, cfg.TTL), client, nil
}

// NewRedisStatisticsCacheFromClient wraps an existing client.
func NewRedisStatisticsCacheFromClient(client *redis.Client, ttl time.Duration) StatisticsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &redisStatisticsCache{client: client, ttl: ttl}
}

func statisticsKey(enrollmentID string) string {
	return statisticsKeyPrefix + enrollmentID
}

func (c *redisStatisticsCache) Get(ctx context.Context, enrollmentID string) (*domain.Statistics, error) {
	raw, err := c.client.Get(ctx, statisticsKey(enrollmentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var stats domain.Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		// Corrupt entry: drop it and report a miss
		log.Printf("WARN: Dropping unreadable statistics cache entry for %s: %v", enrollmentID, err)
		_ = c.client.Del(ctx, statisticsKey(enrollmentID)).Err()
		return nil, ErrCacheMiss
	}
	return &stats, nil
}

func (c *redisStatisticsCache) Set(ctx context.Context, stats *domain.Statistics) error {
	if stats == nil || stats.EnrollmentID == "" {
		return errors.New("statistics with an enrollment id are required")
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statisticsKey(stats.EnrollmentID), raw, c.ttl).Err()
}

func (c *redisStatisticsCache) Invalidate(ctx context.Context, enrollmentID string) error {
	return c.client.Del(ctx, statisticsKey(enrollmentID)).Err()
}
