package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps the snapshot under the fixed keys in one Redis database.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects and pings the server.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	values, err := encode(snap)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range values {
			pipe.Set(ctx, key, value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	keys := []string{KeyLyrics, KeySong, KeySRT}
	results, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load state: %w", err)
	}

	values := make(map[string][]byte, len(keys))
	for i, result := range results {
		// MGet yields nil for missing keys
		if str, ok := result.(string); ok {
			values[keys[i]] = []byte(str)
		}
	}
	return decode(values)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, KeyLyrics, KeySong, KeySRT).Err(); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
