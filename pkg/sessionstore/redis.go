package sessionstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the redis backend. Zero fields fall back to
// the documented defaults.
type RedisOptions struct {
	Host          string // defaults to localhost
	Port          int    // defaults to 6379
	Password      string
	DatabaseIndex int
	KeyPrefix     string // defaults to "session:"
}

func (o *RedisOptions) withDefaults() *RedisOptions {
	resolved := *o
	if resolved.Host == "" {
		resolved.Host = "localhost"
	}
	if resolved.Port == 0 {
		resolved.Port = 6379
	}
	if resolved.KeyPrefix == "" {
		resolved.KeyPrefix = "session:"
	}
	return &resolved
}

// RedisBackend stores each session as a hash under KeyPrefix+sessionID.
// Field-level HSET/HDEL give the same sibling-field isolation as a
// document store's partial update. Redis cannot run a range query over
// hash fields, so the sweep scans keys and filters on the expires field
// in pipelined batches.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

var _ Backend = (*RedisBackend)(nil)

const sweepScanBatch = 256

func NewRedisBackend(ctx context.Context, opts *RedisOptions) (*RedisBackend, error) {
	opts = opts.withDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DatabaseIndex,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}

	return &RedisBackend{client: client, prefix: opts.KeyPrefix}, nil
}

func (b *RedisBackend) key(sessionID string) string {
	return b.prefix + sessionID
}

func (b *RedisBackend) FindProjected(ctx context.Context, sessionID string, fields ...string) (map[string]any, bool, error) {
	key := b.key(sessionID)

	if len(fields) == 0 {
		all, err := b.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, false, err
		}
		if len(all) == 0 {
			return nil, false, nil
		}
		record := make(map[string]any, len(all))
		for f, v := range all {
			stored, err := parseStored(f, v)
			if err != nil {
				return nil, false, err
			}
			record[f] = stored
		}
		return record, true, nil
	}

	// HMGET cannot distinguish a missing key from missing fields, so
	// existence is checked in the same pipeline.
	pipe := b.client.Pipeline()
	existsCmd := pipe.Exists(ctx, key)
	valsCmd := pipe.HMGet(ctx, key, fields...)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, err
	}
	if existsCmd.Val() == 0 {
		return nil, false, nil
	}

	record := make(map[string]any, len(fields))
	for i, raw := range valsCmd.Val() {
		if raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return nil, false, errors.Errorf("redis hash field %q holds %T", fields[i], raw)
		}
		stored, err := parseStored(fields[i], s)
		if err != nil {
			return nil, false, err
		}
		record[fields[i]] = stored
	}
	return record, true, nil
}

// parseStored maps a hash value to the store's representation: int64
// for the expires field, the raw string for everything else.
func parseStored(field, value string) (any, error) {
	if field != ExpiresField {
		return value, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing expires %q", value)
	}
	return n, nil
}

func (b *RedisBackend) SetField(ctx context.Context, sessionID, field string, value any) error {
	return b.client.HSet(ctx, b.key(sessionID), field, value).Err()
}

func (b *RedisBackend) UnsetField(ctx context.Context, sessionID, field string) error {
	return b.client.HDel(ctx, b.key(sessionID), field).Err()
}

func (b *RedisBackend) DeleteRecord(ctx context.Context, sessionID string) error {
	return b.client.Del(ctx, b.key(sessionID)).Err()
}

func (b *RedisBackend) DeleteExpiredBefore(ctx context.Context, cutoff int64) error {
	var cursor uint64
	for {
		keys, next, err := b.client.Scan(ctx, cursor, b.prefix+"*", sweepScanBatch).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			pipe := b.client.Pipeline()
			cmds := make([]*redis.StringCmd, len(keys))
			for i, key := range keys {
				cmds[i] = pipe.HGet(ctx, key, ExpiresField)
			}
			if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
				return err
			}

			var expired []string
			for i, cmd := range cmds {
				raw, err := cmd.Result()
				if err == redis.Nil {
					continue // no expires field, never swept
				}
				if err != nil {
					return err
				}
				deadline, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					continue
				}
				if deadline < cutoff {
					expired = append(expired, keys[i])
				}
			}
			if len(expired) > 0 {
				if err := b.client.Del(ctx, expired...).Err(); err != nil {
					return err
				}
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Close(ctx context.Context) error {
	return b.client.Close()
}
