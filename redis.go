package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gmllt/kboard/kanban"
)

const redisTimeout = 5 * time.Second

type redisStore struct {
	client *redis.Client
	key    string
}

func newRedisStore(ctx context.Context, cfg RedisConfig) (*redisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return &redisStore{client: client, key: cfg.Key}, nil
}

func (s *redisStore) LoadBoards(ctx context.Context) ([]*kanban.Board, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return defaultBoards(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading boards from redis: %w", err)
	}
	return decodeBoards(data)
}

func (s *redisStore) SaveBoards(ctx context.Context, boards []*kanban.Board) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	data, err := encodeBoards(boards)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("error saving boards to redis: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
