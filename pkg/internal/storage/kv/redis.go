//go:build !no_redis

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feyabloom/studio/pkg/configs"
)

// RedisKV 基于 Redis 的 KV 实现，TTL 直接使用 Redis 的过期机制.
type RedisKV struct {
	client *redis.Client
}

// scanCount 每次 SCAN 的建议数量.
const scanCount = 200

// NewRedisKV 创建 Redis KV 实例并检查连通性.
func NewRedisKV(ctx context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.RedisKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid redis kv config")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: "studio-kv",
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	return &RedisKV{client: rdb}, nil
}

// Get 获取键的值.
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(key)
	}

	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	return b, nil
}

// Set 设置键的值，ttl<=0 时不过期.
func (r *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Delete 删除键.
func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}

// Exists 检查键是否存在.
func (r *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}

	return n > 0, nil
}

// Keys 用 SCAN 列举键；Redis 的 glob 比前缀匹配宽，结果再用 matchPattern 过滤.
func (r *RedisKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	glob := pattern
	if glob == "" {
		glob = "*"
	}

	keys := []string{}

	iter := r.client.Scan(ctx, 0, glob, scanCount).Iterator()
	for iter.Next(ctx) {
		if k := iter.Val(); matchPattern(k, pattern) {
			keys = append(keys, k)
		}
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", glob, err)
	}

	return keys, nil
}

// Close 关闭 Redis 连接.
func (r *RedisKV) Close() error {
	return r.client.Close()
}

func init() {
	RegisterKVFactory(KVTypeRedis, NewRedisKV)
}
