// internal/kv/redis.go
package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Store on top of a go-redis client.
type Redis struct {
	client *redis.Client
}

// ConnectRedis dials Redis using environment variables and verifies the
// connection with a ping:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() (*Redis, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Redis{client: client}, nil
}

// NewRedis wraps an existing client, for callers that manage their own
// connection options.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// SetIfUnchanged runs an optimistic WATCH transaction: the write only commits
// if the watched key still holds old (or stays absent when old is nil).
func (r *Redis) SetIfUnchanged(ctx context.Context, key string, old, value []byte) error {
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if old != nil {
				return ErrModified
			}
		case err != nil:
			return fmt.Errorf("redis get %q: %w", key, err)
		default:
			if old == nil || !bytes.Equal(cur, old) {
				return ErrModified
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, 0)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrModified
	}
	return err
}

// Scan issues a single SCAN pass with a count hint, mirroring how a bounded
// directory listing reads the keyspace. It does not walk the cursor to
// exhaustion; callers get at most limit keys.
func (r *Redis) Scan(ctx context.Context, prefix string, limit int) ([]string, error) {
	keys, _, err := r.client.Scan(ctx, 0, prefix+"*", int64(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis scan %q: %w", prefix, err)
	}
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

func (r *Redis) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		switch s := v.(type) {
		case nil:
			// key vanished between scan and mget
		case string:
			out[i] = []byte(s)
		default:
			return nil, fmt.Errorf("redis mget: unexpected value type %T for key %q", v, keys[i])
		}
	}
	return out, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
