package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"fomeninja/internal/domain"
	"fomeninja/internal/models"

	"github.com/rs/zerolog"
)

const (
	TaskUpsert       = "upsert"
	TaskUpdateStatus = "update_status"
)

// SyncWorker drains the task queue and applies mutations to the persistence
// collaborator. A persistence failure re-queues the task with backoff and
// never touches the in-memory store.
type SyncWorker struct {
	queue        domain.TaskQueue
	persister    domain.Persister
	retryPolicy  RetryPolicy
	pollInterval time.Duration
	logger       *zerolog.Logger
	nextTaskID   atomic.Int64
}

// NewSyncWorker builds a worker with sane defaults.
func NewSyncWorker(queue domain.TaskQueue, persister domain.Persister, retry RetryPolicy, logger *zerolog.Logger) *SyncWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &SyncWorker{
		queue:        queue,
		persister:    persister,
		retryPolicy:  retry,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}
}

// EnqueueUpsert schedules a full reservation write.
func (w *SyncWorker) EnqueueUpsert(ctx context.Context, r models.Reservation) error {
	if r.ID == 0 {
		return errors.New("reservation id is required")
	}
	return w.queue.Push(ctx, models.SyncTask{
		ID:          w.nextTaskID.Add(1),
		Type:        TaskUpsert,
		Reservation: &r,
	})
}

// EnqueueStatus schedules a status-only update.
func (w *SyncWorker) EnqueueStatus(ctx context.Context, id int64, status string) error {
	if id == 0 {
		return errors.New("reservation id is required")
	}
	return w.queue.Push(ctx, models.SyncTask{
		ID:          w.nextTaskID.Add(1),
		Type:        TaskUpdateStatus,
		Reservation: &models.Reservation{ID: id},
		Status:      status,
	})
}

// Run polls the queue until the context is cancelled.
func (w *SyncWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *SyncWorker) drain(ctx context.Context) {
	for {
		task, err := w.queue.Pop(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("sync queue pop error")
			return
		}
		if task == nil {
			return
		}
		w.process(ctx, task)
	}
}

// ProcessOnce drains the queue a single time. Exposed for startup flush and
// deterministic exercising of the loop.
func (w *SyncWorker) ProcessOnce(ctx context.Context) {
	w.drain(ctx)
}

func (w *SyncWorker) process(ctx context.Context, task *models.SyncTask) {
	var err error
	switch task.Type {
	case TaskUpsert:
		err = w.persister.UpsertReservation(ctx, task.Reservation)
	case TaskUpdateStatus:
		err = w.persister.UpdateReservationStatus(ctx, task.Reservation.ID, task.Status)
	default:
		w.logger.Warn().Str("task_type", task.Type).Msg("unknown sync task type, dropped")
		return
	}

	if err == nil {
		return
	}

	task.Retries++
	if task.Retries > w.retryPolicy.MaxRetries {
		w.logger.Error().Err(err).
			Int64("task_id", task.ID).
			Int64("reservation_id", task.Reservation.ID).
			Int("retries", task.Retries).
			Msg("sync task dropped after max retries")
		return
	}

	delay := w.retryPolicy.NextDelay(task.Retries)
	w.logger.Warn().Err(err).
		Int64("task_id", task.ID).
		Int("attempt", task.Retries).
		Dur("retry_in", delay).
		Msg("sync task failed, requeued")

	time.AfterFunc(delay, func() {
		if pushErr := w.queue.Push(context.Background(), *task); pushErr != nil {
			w.logger.Error().Err(pushErr).Int64("task_id", task.ID).Msg("sync task requeue error")
		}
	})
}
