package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each entry under prefix+key with the entry's expiry as TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    Clock
}

func NewRedisStore(client *redis.Client, prefix string, now Clock) *RedisStore {
	if now == nil {
		now = time.Now
	}
	return &RedisStore{client: client, prefix: prefix, now: now}
}

// DialRedis connects and pings.
func DialRedis(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	c := redis.NewClient(&redis.Options{Addr: addr})
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return NewRedisStore(c, prefix, nil), nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	k := s.prefix + key
	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	e := Entry{Key: key, Value: val}
	ttl, err := s.client.TTL(ctx, k).Result()
	if err == nil && ttl > 0 {
		e.Expires = s.now().Add(ttl)
	}
	return e, true, nil
}

func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	if e.Key == "" {
		return ErrEmptyKey
	}
	var ttl time.Duration
	if !e.Expires.IsZero() {
		ttl = e.Expires.Sub(s.now())
		if ttl <= 0 {
			return s.client.Del(ctx, s.prefix+e.Key).Err()
		}
	}
	return s.client.Set(ctx, s.prefix+e.Key, e.Value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.client.Del(ctx, full...).Err()
}
