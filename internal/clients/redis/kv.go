package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/varzia/worldcup-backend/internal/logger"
	"github.com/varzia/worldcup-backend/internal/utils"
)

// KV is the small slice of redis the services need: JSON values with TTLs
// plus the counter primitives the OTP rate limiter uses.
type KV interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Close() error
}

type kvStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewKV(log *logger.Logger) (KV, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "localhost:6379", log))
	password := utils.GetEnv("REDIS_PASSWORD", "", log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &kvStore{
		log: log.With("service", "RedisKV"),
		rdb: rdb,
	}, nil
}

func (k *kvStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := k.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode cached value for %s: %w", key, err)
	}
	return true, nil
}

func (k *kvStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %s: %w", key, err)
	}
	return k.rdb.Set(ctx, key, raw, ttl).Err()
}

func (k *kvStore) Del(ctx context.Context, key string) error {
	return k.rdb.Del(ctx, key).Err()
}

func (k *kvStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := k.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n == 1, nil
}

func (k *kvStore) Incr(ctx context.Context, key string) (int64, error) {
	return k.rdb.Incr(ctx, key).Result()
}

func (k *kvStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return k.rdb.Expire(ctx, key, ttl).Err()
}

func (k *kvStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return k.rdb.TTL(ctx, key).Result()
}

func (k *kvStore) Close() error {
	return k.rdb.Close()
}
