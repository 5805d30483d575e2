package queue

import (
	"context"
	"sync"

	"fomeninja/internal/models"
)

// MemoryQueue is a process-local FIFO of sync tasks.
type MemoryQueue struct {
	mu    sync.Mutex
	tasks []models.SyncTask
	cap   int
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = models.WorkerQueueSize
	}
	return &MemoryQueue{cap: capacity}
}

func (q *MemoryQueue) Push(ctx context.Context, task models.SyncTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) >= q.cap {
		return ErrQueueFull
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *MemoryQueue) Pop(ctx context.Context) (*models.SyncTask, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, nil
	}
	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	return &task, nil
}

func (q *MemoryQueue) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks), nil
}
