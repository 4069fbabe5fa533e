package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a Cache shared by every API instance.
//
// Each namespace carries a generation counter; keys embed the current
// generation, so Invalidate is a single INCR and stale keys age out on
// their own TTL.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "barber"
	}
	return &Redis{client: client, prefix: prefix}
}

// NewRedisClient connects and pings before returning.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (r *Redis) genKey(namespace string) string {
	return fmt.Sprintf("%s:%s:gen", r.prefix, namespace)
}

func (r *Redis) key(ctx context.Context, namespace, key string) (string, error) {
	gen, err := r.client.Get(ctx, r.genKey(namespace)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:%s:%d:%s", r.prefix, namespace, gen, key), nil
}

func (r *Redis) Get(ctx context.Context, namespace, key string, dst any) (bool, error) {
	k, err := r.key(ctx, namespace, key)
	if err != nil {
		return false, err
	}

	data, err := r.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	k, err := r.key(ctx, namespace, key)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, k, data, ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, namespace string) error {
	return r.client.Incr(ctx, r.genKey(namespace)).Err()
}
