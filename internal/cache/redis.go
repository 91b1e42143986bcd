package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "link:"

// Redis shares the cache between instances.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// ConnectRedis dials addr and verifies the connection with PING.
func ConnectRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func (c *Redis) Get(ctx context.Context, code string) (Entry, error) {
	raw, err := c.rdb.Get(ctx, keyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, fmt.Errorf("corrupt cache entry for %q: %w", code, err)
	}
	return entry, nil
}

func (c *Redis) Set(ctx context.Context, code string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+code, raw, c.ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, code string) error {
	return c.rdb.Del(ctx, keyPrefix+code).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}
