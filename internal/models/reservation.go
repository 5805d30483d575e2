package models

import "time"

// Reservation is a booking request for a future service window.
// Date carries no time component; Time is a slot label like "19:30".
type Reservation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"`
	PartySize int       `json:"party_size"`
	TableID   string    `json:"table_id,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"` // pending, confirmed, cancelled, completed
	CreatedAt time.Time `json:"created_at"`
}

// IsActive reports whether the reservation still counts against capacity.
func (r *Reservation) IsActive() bool {
	return r.Status != StatusCancelled
}
