package scoring

import (
	"context"
	"encoding/json"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/logger"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"time"
)

// ScoreCache remembers LLM scores by prompt hash. Failures are logged and
// treated as a miss.
type ScoreCache interface {
	Get(ctx context.Context, key string) (models.Score, bool)
	Set(ctx context.Context, key string, score models.Score)
}

type MemoryCache struct {
	cache *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(ttl, ttl*2)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (models.Score, bool) {
	if cached, found := c.cache.Get(key); found {
		return cached.(models.Score), true
	}
	return models.Score{}, false
}

func (c *MemoryCache) Set(_ context.Context, key string, score models.Score) {
	c.cache.Set(key, score, gocache.DefaultExpiration)
}

const redisKeyPrefix = "jobscout:score:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (models.Score, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to read score cache: %v", err)
		}
		return models.Score{}, false
	}

	var score models.Score
	if err = json.Unmarshal(raw, &score); err != nil {
		log.Errorf("failed to decode cached score: %v", err)
		return models.Score{}, false
	}
	return score, true
}

func (c *RedisCache) Set(ctx context.Context, key string, score models.Score) {
	raw, err := json.Marshal(score)
	if err != nil {
		log.Errorf("failed to encode score: %v", err)
		return
	}
	if err = c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to write score cache: %v", err)
	}
}
