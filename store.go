package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gmllt/kboard/kanban"
)

// BoardStore loads and saves the full list of boards.
type BoardStore interface {
	LoadBoards(ctx context.Context) ([]*kanban.Board, error)
	SaveBoards(ctx context.Context, boards []*kanban.Board) error
}

// memoryStore keeps nothing: every load starts again from the default board.
type memoryStore struct{}

func (memoryStore) LoadBoards(context.Context) ([]*kanban.Board, error) {
	return defaultBoards(), nil
}

func (memoryStore) SaveBoards(context.Context, []*kanban.Board) error {
	return nil
}

func defaultBoards() []*kanban.Board {
	return []*kanban.Board{kanban.DefaultBoard()}
}

func encodeBoards(boards []*kanban.Board) ([]byte, error) {
	data, err := json.Marshal(boards)
	if err != nil {
		return nil, fmt.Errorf("error encoding boards json: %w", err)
	}
	return data, nil
}

func decodeBoards(data []byte) ([]*kanban.Board, error) {
	var boards []*kanban.Board
	if err := json.Unmarshal(data, &boards); err != nil {
		return nil, fmt.Errorf("error decoding boards json: %w", err)
	}
	if len(boards) == 0 {
		return defaultBoards(), nil
	}
	if err := checkBoards(boards); err != nil {
		return nil, fmt.Errorf("error decoding boards json: %w", err)
	}
	return boards, nil
}

// checkBoards rejects null entries, which the model dereferences on lookup.
func checkBoards(boards []*kanban.Board) error {
	for i, b := range boards {
		if b == nil {
			return fmt.Errorf("board %d is null", i)
		}
		for j, col := range b.Columns {
			if col == nil {
				return fmt.Errorf("board %s: column %d is null", b.ID, j)
			}
			for k, card := range col.Cards {
				if card == nil {
					return fmt.Errorf("board %s: column %s: card %d is null", b.ID, col.ID, k)
				}
			}
		}
	}
	return nil
}

// snapshotBoards deep-copies boards through their JSON form so the copy can
// be handed to another goroutine while the originals keep changing.
func snapshotBoards(boards []*kanban.Board) ([]*kanban.Board, error) {
	data, err := encodeBoards(boards)
	if err != nil {
		return nil, err
	}
	return decodeBoards(data)
}

// closeStore releases drivers that hold a connection.
func closeStore(store BoardStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func newBoardStore(ctx context.Context, cfg *Config) (BoardStore, error) {
	switch cfg.Storage.Driver {
	case driverS3:
		client, err := NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to init S3: %w", err)
		}
		if err := EnsureBucketExists(ctx, client, cfg.S3); err != nil {
			return nil, err
		}
		return &s3Store{client: client, bucket: cfg.S3.Bucket, key: cfg.S3.Key}, nil
	case driverRedis:
		store, err := newRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return memoryStore{}, nil
	}
}
