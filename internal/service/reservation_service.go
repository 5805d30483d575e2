package service

import (
	"context"
	"errors"
	"fmt"

	"fomeninja/internal/domain"
	"fomeninja/internal/events"
	"fomeninja/internal/models"
	"fomeninja/internal/schedule"
	"fomeninja/internal/store"

	"github.com/rs/zerolog"
)

// ErrIllegalTransition is returned when a status change is not allowed by
// the reservation state machine.
var ErrIllegalTransition = errors.New("illegal status transition")

// transitions is the reservation state machine. completed is terminal;
// cancelled can be reactivated back to confirmed.
var transitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCancelled, models.StatusCompleted},
	models.StatusCancelled: {models.StatusConfirmed},
	models.StatusCompleted: {},
}

// CreateRequest is a reservation draft from the presentation layer.
type CreateRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	PartySize   int    `json:"party_size"`
	TableID     string `json:"table_id"`
	Notes       string `json:"notes"`
	AutoConfirm bool   `json:"auto_confirm"`
}

// ReservationService owns reservation creation and the status state machine.
type ReservationService struct {
	repo     domain.ReservationStore
	grid     *schedule.Grid
	eventBus domain.EventPublisher
	notifier domain.Notifier
	sync     domain.SyncWorker
	logger   *zerolog.Logger
}

func NewReservationService(
	repo domain.ReservationStore,
	grid *schedule.Grid,
	eventBus domain.EventPublisher,
	notifier domain.Notifier,
	syncWorker domain.SyncWorker,
	logger *zerolog.Logger,
) *ReservationService {
	return &ReservationService{
		repo:     repo,
		grid:     grid,
		eventBus: eventBus,
		notifier: notifier,
		sync:     syncWorker,
		logger:   logger,
	}
}

// CreateReservation validates the draft, stores it and, for auto-confirmed
// reservations, emits an advisory confirmation request. A declined or failed
// notification never rolls back the creation.
func (s *ReservationService) CreateReservation(ctx context.Context, req CreateRequest) (models.Reservation, error) {
	if req.Time != "" && !s.grid.HasSlot(req.Time) {
		return models.Reservation{}, &store.ValidationError{Field: "time"}
	}

	status := models.StatusPending
	if req.AutoConfirm {
		status = models.StatusConfirmed
	}

	reservation, err := s.repo.Add(models.Reservation{
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Date:      req.Date,
		Time:      req.Time,
		PartySize: req.PartySize,
		TableID:   req.TableID,
		Notes:     req.Notes,
		Status:    status,
	})
	if err != nil {
		return models.Reservation{}, err
	}

	s.publishEvent(events.EventReservationCreated, reservation, "")
	s.enqueueUpsert(ctx, reservation)

	if reservation.Status == models.StatusConfirmed && s.notifier != nil {
		if _, err := s.notifier.EnqueueConfirmation(ctx, reservation); err != nil {
			s.logger.Warn().Err(err).Int64("reservation_id", reservation.ID).Msg("confirmation request failed")
		}
	}

	s.logger.Info().
		Int64("reservation_id", reservation.ID).
		Str("date", reservation.Date).
		Str("time", reservation.Time).
		Int("party_size", reservation.PartySize).
		Str("status", reservation.Status).
		Msg("reservation created")

	return reservation, nil
}

// Transition moves a reservation to the new status. Illegal transitions are
// rejected with ErrIllegalTransition before any state changes.
func (s *ReservationService) Transition(ctx context.Context, id int64, newStatus string, changedBy string) (models.Reservation, error) {
	current, err := s.repo.Get(id)
	if err != nil {
		return models.Reservation{}, err
	}

	if !allowed(current.Status, newStatus) {
		return models.Reservation{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current.Status, newStatus)
	}

	updated, err := s.repo.UpdateStatus(id, newStatus)
	if err != nil {
		return models.Reservation{}, err
	}

	s.publishEvent(eventForStatus(newStatus), updated, changedBy)
	s.enqueueStatus(ctx, updated.ID, updated.Status)

	s.logger.Info().
		Int64("reservation_id", id).
		Str("from", current.Status).
		Str("to", newStatus).
		Msg("reservation status changed")

	return updated, nil
}

// AllowedTransitions returns the legal target statuses for a current status.
func AllowedTransitions(status string) []string {
	return append([]string(nil), transitions[status]...)
}

func allowed(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func eventForStatus(status string) string {
	switch status {
	case models.StatusConfirmed:
		return events.EventReservationConfirmed
	case models.StatusCancelled:
		return events.EventReservationCancelled
	case models.StatusCompleted:
		return events.EventReservationCompleted
	default:
		return events.EventReservationCreated
	}
}

func (s *ReservationService) publishEvent(eventType string, r models.Reservation, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		Name:          r.Name,
		Phone:         r.Phone,
		Date:          r.Date,
		Time:          r.Time,
		PartySize:     r.PartySize,
		Status:        r.Status,
		ChangedBy:     changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", r.ID).Msg("publish event error")
	}
}

func (s *ReservationService) enqueueUpsert(ctx context.Context, r models.Reservation) {
	if s.sync == nil {
		return
	}
	if err := s.sync.EnqueueUpsert(ctx, r); err != nil {
		s.logger.Error().Err(err).Int64("reservation_id", r.ID).Msg("sync enqueue error")
	}
}

func (s *ReservationService) enqueueStatus(ctx context.Context, id int64, status string) {
	if s.sync == nil {
		return
	}
	if err := s.sync.EnqueueStatus(ctx, id, status); err != nil {
		s.logger.Error().Err(err).Int64("reservation_id", id).Msg("sync enqueue error")
	}
}
