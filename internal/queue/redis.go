package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fomeninja/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrQueueFull is returned when a bounded queue rejects a task.
var ErrQueueFull = errors.New("sync queue is full")

const defaultQueueKey = "fomeninja:sync_queue"

// RedisQueue is a durable FIFO of sync tasks backed by a redis list, so
// pending persistence work survives a restart.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = defaultQueueKey
	}
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Push(ctx context.Context, task models.SyncTask) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal sync task: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("rpush sync task: %w", err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context) (*models.SyncTask, error) {
	raw, err := q.client.LPop(ctx, q.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lpop sync task: %w", err)
	}

	var task models.SyncTask
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, fmt.Errorf("unmarshal sync task: %w", err)
	}
	return &task, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("llen sync queue: %w", err)
	}
	return int(n), nil
}
