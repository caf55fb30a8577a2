package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore provides Redis persistence for the processed set (a SET of
// tx hashes) and the scan checkpoint (a string key).
type RedisStore struct {
	rdb          *redis.Client
	processedKey string
	cursorKey    string
}

// NewRedisStore connects to Redis. name scopes the keys so several
// relayers can share one instance.
func NewRedisStore(ctx context.Context, url, name string) (*RedisStore, error) {
	if name == "" {
		return nil, fmt.Errorf("store name is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &RedisStore{
		rdb:          rdb,
		processedKey: fmt.Sprintf("relayer:%s:processed", name),
		cursorKey:    fmt.Sprintf("relayer:%s:checkpoint", name),
	}, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Contains(ctx context.Context, txHash string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, s.processedKey, txHash).Result()
	if err != nil {
		return false, fmt.Errorf("sismember: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Mark(ctx context.Context, txHash string) error {
	if err := s.rdb.SAdd(ctx, s.processedKey, txHash).Err(); err != nil {
		return fmt.Errorf("sadd: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (uint64, bool, error) {
	val, err := s.rdb.Get(ctx, s.cursorKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get checkpoint: %w", err)
	}
	height, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("stored checkpoint is not a number: %q", val)
	}
	return height, true, nil
}

func (s *RedisStore) Save(ctx context.Context, height uint64) error {
	if err := s.rdb.Set(ctx, s.cursorKey, strconv.FormatUint(height, 10), 0).Err(); err != nil {
		return fmt.Errorf("set checkpoint: %w", err)
	}
	return nil
}
