package queue

import (
	"context"
	"sync/atomic"
	"time"

	"fomeninja/internal/domain"
	"fomeninja/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverQueue prefers the primary queue and falls back to the secondary
// when the primary errors, retrying the primary after recoveryInterval.
type FailoverQueue struct {
	primary   domain.TaskQueue
	fallback  domain.TaskQueue
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos
}

func NewFailoverQueue(primary, fallback domain.TaskQueue, logger *zerolog.Logger) *FailoverQueue {
	return &FailoverQueue{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (q *FailoverQueue) Push(ctx context.Context, task models.SyncTask) error {
	if q.primaryUp() {
		if err := q.primary.Push(ctx, task); err == nil {
			return nil
		} else {
			q.markDown(err)
		}
	}
	return q.fallback.Push(ctx, task)
}

func (q *FailoverQueue) Pop(ctx context.Context) (*models.SyncTask, error) {
	if q.primaryUp() {
		task, err := q.primary.Pop(ctx)
		if err == nil {
			if task != nil {
				return task, nil
			}
			// Primary empty: drain any tasks stranded on the fallback.
			return q.fallback.Pop(ctx)
		}
		q.markDown(err)
	}
	return q.fallback.Pop(ctx)
}

func (q *FailoverQueue) Len(ctx context.Context) (int, error) {
	fallbackLen, err := q.fallback.Len(ctx)
	if err != nil {
		return 0, err
	}
	if !q.primaryUp() {
		return fallbackLen, nil
	}
	primaryLen, err := q.primary.Len(ctx)
	if err != nil {
		q.markDown(err)
		return fallbackLen, nil
	}
	return primaryLen + fallbackLen, nil
}

func (q *FailoverQueue) primaryUp() bool {
	if !q.isDown.Load() {
		return true
	}
	if time.Since(time.Unix(0, q.lastCheck.Load())) > recoveryInterval {
		q.isDown.Store(false)
		return true
	}
	return false
}

func (q *FailoverQueue) markDown(err error) {
	q.logger.Error().Err(err).Msg("primary sync queue failed, falling back to memory")
	q.isDown.Store(true)
	q.lastCheck.Store(time.Now().UnixNano())
}
