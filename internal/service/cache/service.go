package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kapu/sdg-pulse/internal/constants"
	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService stores completion text in Redis so a re-run of a stage does not
// pay for prompts that were already answered.
type CacheService struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = constants.CacheTTL.Completion
	}

	logger.Info("Redis connected",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
		zap.Duration("ttl", ttl),
	)

	return &CacheService{
		client:    client,
		keyPrefix: constants.RedisConfig.KeyPrefix,
		ttl:       ttl,
		logger:    logger,
	}, nil
}

func (c *CacheService) key(k string) string {
	return c.keyPrefix + k
}

// GetCompletion returns the cached text for a fingerprint. A miss is not an error.
func (c *CacheService) GetCompletion(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return "", false, apperrors.NewCacheError("get failed", "get", key, err)
	}
	return value, true, nil
}

func (c *CacheService) SetCompletion(ctx context.Context, key, text string) error {
	if err := c.client.Set(ctx, c.key(key), text, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return apperrors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

// DeleteCompletion drops one fingerprint. Deleting a missing key is not an error.
func (c *CacheService) DeleteCompletion(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return apperrors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

// Flush removes every completion this service wrote, leaving other keys alone.
func (c *CacheService) Flush(ctx context.Context) (int64, error) {
	var deleted int64
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, apperrors.NewCacheError("flush failed", "del", iter.Val(), err)
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return deleted, apperrors.NewCacheError("flush scan failed", "scan", c.keyPrefix, err)
	}

	c.logger.Info("Completion cache flushed", zap.Int64("deleted", deleted))
	return deleted, nil
}

func (c *CacheService) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
