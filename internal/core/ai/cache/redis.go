package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// redisStore Redis 快取後端，多實例部署時共享 LLM 回應
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisStore(cfg *config.Config) (*redisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Cache.RedisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	common.LogInfo("Redis 快取已初始化",
		zap.String("addr", cfg.Cache.RedisAddr),
		zap.Duration("存活時間", cfg.Cache.TTL),
	)
	return &redisStore{client: client, ttl: cfg.Cache.TTL}, nil
}

// Get 獲取快取值
func (r *redisStore) Get(ctx context.Context, prompt string) (string, error) {
	value, err := r.client.Get(ctx, hashPrompt(prompt)).Result()
	if errors.Is(err, redis.Nil) {
		return "", common.ErrCacheMiss
	}
	if err != nil {
		common.LogWarn("Redis 讀取失敗",
			zap.Error(err),
		)
		return "", common.WrapError(common.ErrCacheMiss, err)
	}
	return value, nil
}

// Set 設置快取值
func (r *redisStore) Set(ctx context.Context, prompt, value string) error {
	return r.client.Set(ctx, hashPrompt(prompt), value, r.ttl).Err()
}

// Stats 獲取快取統計信息
func (r *redisStore) Stats(ctx context.Context) map[string]interface{} {
	stats := map[string]interface{}{
		"backend": "redis",
	}
	if size, err := r.client.DBSize(ctx).Result(); err == nil {
		stats["size"] = size
	}
	pool := r.client.PoolStats()
	stats["pool_hits"] = pool.Hits
	stats["pool_misses"] = pool.Misses
	stats["pool_total_conns"] = pool.TotalConns
	return stats
}

// Close 關閉快取
func (r *redisStore) Close() error {
	return r.client.Close()
}
