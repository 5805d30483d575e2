package store

import (
	"sort"
	"sync"
	"time"

	"fomeninja/internal/models"
	"fomeninja/internal/schedule"
)

// ReservationStore owns the canonical in-memory reservation list. Add and
// UpdateStatus are the only mutators; reads return copies so callers never
// hold a mutable reference into the collection. Cancellation is a status,
// records are never removed.
type ReservationStore struct {
	mu           sync.RWMutex
	reservations []models.Reservation
	byID         map[int64]int
}

// New builds a store seeded with the records from the persistence
// collaborator. Seed order is preserved; ids are taken as-is.
func New(seed []models.Reservation) *ReservationStore {
	s := &ReservationStore{
		reservations: make([]models.Reservation, 0, len(seed)),
		byID:         make(map[int64]int, len(seed)),
	}
	for _, r := range seed {
		s.byID[r.ID] = len(s.reservations)
		s.reservations = append(s.reservations, r)
	}
	return s
}

// Add validates the draft, assigns the next id and CreatedAt, appends the
// record and returns the stored copy. The id is one greater than the current
// maximum, or 1 for an empty store.
func (s *ReservationStore) Add(draft models.Reservation) (models.Reservation, error) {
	if err := validateDraft(draft); err != nil {
		return models.Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for id := range s.byID {
		if id > maxID {
			maxID = id
		}
	}

	draft.ID = maxID + 1
	draft.CreatedAt = time.Now()
	if draft.Status == "" {
		draft.Status = models.StatusPending
	}

	s.byID[draft.ID] = len(s.reservations)
	s.reservations = append(s.reservations, draft)
	return draft, nil
}

// UpdateStatus replaces the status of the matching record in place and
// returns the updated copy. Transition legality is the caller's concern.
func (s *ReservationStore) UpdateStatus(id int64, status string) (models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return models.Reservation{}, ErrNotFound
	}

	s.reservations[idx].Status = status
	return s.reservations[idx], nil
}

// Get returns a copy of the reservation with the given id.
func (s *ReservationStore) Get(id int64) (models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return models.Reservation{}, ErrNotFound
	}
	return s.reservations[idx], nil
}

// Query returns every reservation matching the predicate, in insertion order.
func (s *ReservationStore) Query(pred func(models.Reservation) bool) []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Reservation, 0)
	for _, r := range s.reservations {
		if pred == nil || pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// ByDate returns the reservations for a YYYY-MM-DD date, in insertion order.
func (s *ReservationStore) ByDate(date string) []models.Reservation {
	return s.Query(func(r models.Reservation) bool { return r.Date == date })
}

// All returns a snapshot of the full collection in insertion order.
func (s *ReservationStore) All() []models.Reservation {
	return s.Query(nil)
}

// Len returns the number of stored reservations.
func (s *ReservationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reservations)
}

// Upcoming returns up to n stored reservations dated on or after the given
// date, ordered by date then time ascending, id as tiebreak.
func (s *ReservationStore) Upcoming(fromDate string, n int) []models.Reservation {
	return Upcoming(s.All(), fromDate, n)
}

// Upcoming filters any reservation list to those dated on or after fromDate,
// sorted by date then time ascending with id as tiebreak, truncated to n.
// Shared by the store method and the week projection.
func Upcoming(reservations []models.Reservation, fromDate string, n int) []models.Reservation {
	out := make([]models.Reservation, 0)
	for _, r := range reservations {
		if r.Date >= fromDate {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if c := schedule.CompareSlots(out[i].Time, out[j].Time); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func validateDraft(draft models.Reservation) error {
	switch {
	case draft.Name == "":
		return &ValidationError{Field: "name"}
	case draft.Phone == "":
		return &ValidationError{Field: "phone"}
	case draft.Date == "":
		return &ValidationError{Field: "date"}
	case draft.Time == "":
		return &ValidationError{Field: "time"}
	case draft.PartySize < 1:
		return &ValidationError{Field: "party_size"}
	}
	return nil
}
