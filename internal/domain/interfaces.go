package domain

import (
	"context"

	"fomeninja/internal/models"
)

// ReservationStore is the single owner of the canonical reservation list.
// Add and UpdateStatus are the only mutation entry points.
type ReservationStore interface {
	Add(draft models.Reservation) (models.Reservation, error)
	UpdateStatus(id int64, status string) (models.Reservation, error)
	Get(id int64) (models.Reservation, error)
	Query(pred func(models.Reservation) bool) []models.Reservation
	ByDate(date string) []models.Reservation
	All() []models.Reservation
	Len() int
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier builds advisory notification requests for the external messaging
// collaborator. Declining or failing one never rolls back the reservation it
// refers to.
type Notifier interface {
	EnqueueConfirmation(ctx context.Context, r models.Reservation) (models.NotificationRequest, error)
}

// SyncWorker hands store mutations to the persistence collaborator.
type SyncWorker interface {
	EnqueueUpsert(ctx context.Context, r models.Reservation) error
	EnqueueStatus(ctx context.Context, id int64, status string) error
}

// Persister applies sync tasks to durable storage.
type Persister interface {
	UpsertReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservationStatus(ctx context.Context, id int64, status string) error
}

// TaskQueue buffers sync tasks between the service and the worker loop.
type TaskQueue interface {
	Push(ctx context.Context, task models.SyncTask) error
	Pop(ctx context.Context) (*models.SyncTask, error)
	Len(ctx context.Context) (int, error)
}
