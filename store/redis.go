package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/txnprep/core"
)

// RedisStore 是 Redis 实现的 Store，多个服务进程可以共享同一组产物。
// 所有 key 都加上 prefix，BatchSet 使用 MULTI/EXEC 事务一次提交。
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption 配置 RedisStore
type RedisOption func(*RedisStore)

// WithKeyPrefix 设置 key 前缀，例如 "txnprep:"
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisStore) {
		r.prefix = prefix
	}
}

func NewRedisStore(ctx context.Context, addr string, db int, opts ...RedisOption) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, ioError("store: redis ping failed", addr, err)
	}
	return NewRedisStoreWithClient(client, opts...), nil
}

// NewRedisStoreWithClient 使用已有的 Redis 客户端（单机/集群/哨兵均可）
func NewRedisStoreWithClient(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	r := &RedisStore{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStore) Name() string { return "redis" }

// Locate 返回 key 在 Redis 中的实际名称
func (r *RedisStore) Locate(key string) string { return r.prefix + key }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	full := r.Locate(key)
	val, err := r.client.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(full, nil)
	}
	if err != nil {
		return nil, ioError("store: redis get failed", full, err)
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	full := r.Locate(key)
	if err := r.client.Set(ctx, full, value, 0).Err(); err != nil {
		return ioError("store: redis set failed", full, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	full := r.Locate(key)
	if err := r.client.Del(ctx, full).Err(); err != nil {
		return ioError("store: redis del failed", full, err)
	}
	return nil
}

func (r *RedisStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return make(map[string][]byte), nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.Locate(k)
	}
	vals, err := r.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, ioError("store: redis mget failed", r.prefix, err)
	}

	result := make(map[string][]byte, len(keys))
	for i, k := range keys {
		if s, ok := vals[i].(string); ok {
			result[k] = []byte(s)
		}
	}
	return result, nil
}

func (r *RedisStore) BatchSet(ctx context.Context, kvs map[string][]byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range kvs {
			pipe.Set(ctx, r.Locate(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return ioError("store: redis transaction failed", r.prefix, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ core.Store = (*RedisStore)(nil)
