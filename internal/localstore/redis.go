package localstore

import (
	"context"
	"errors"
	"strings"

	redis "github.com/redis/go-redis/v9"
)

// RedisBackend stores values as plain Redis strings without expiry.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(addr string, password string, db int) *RedisBackend {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisBackend{client: client}
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func (r *RedisBackend) Read(ctx context.Context, name string) ([]byte, error) {
	val, err := r.client.Get(ctx, name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *RedisBackend) Write(ctx context.Context, name string, value []byte) error {
	err := r.client.Set(ctx, name, value, 0).Err()
	if err != nil && isOutOfMemory(err) {
		return ErrQuotaExceeded
	}
	return err
}

func (r *RedisBackend) Delete(ctx context.Context, name string) error {
	return r.client.Del(ctx, name).Err()
}

// maxmemory with a noeviction policy rejects writes with an OOM error.
func isOutOfMemory(err error) bool {
	var redisErr redis.Error
	if !errors.As(err, &redisErr) {
		return false
	}
	return strings.HasPrefix(redisErr.Error(), "OOM")
}
