package models

// Occupancy is the derived load figure for one date+slot. It is never stored.
type Occupancy struct {
	Date             string `json:"date"`
	Slot             string `json:"slot"`
	ReservationCount int    `json:"reservation_count"`
	TotalPeople      int    `json:"total_people"`
	MaxCapacity      int    `json:"max_capacity"`
	Percentage       int    `json:"percentage"`
	Band             string `json:"band"`
}

// SyncTask is a persistence unit of work queued by the sync worker.
type SyncTask struct {
	ID          int64        `json:"id"`
	Type        string       `json:"type"` // upsert, update_status
	Reservation *Reservation `json:"reservation,omitempty"`
	Status      string       `json:"status,omitempty"`
	Retries     int          `json:"retries"`
}

// NotificationRequest is the structured message handed to the external
// messaging collaborator. Delivery is not this system's concern.
type NotificationRequest struct {
	ID             string `json:"id"`
	ReservationID  int64  `json:"reservation_id"`
	RecipientPhone string `json:"recipient_phone"`
	MessageText    string `json:"message_text"`
	DeepLink       string `json:"deep_link,omitempty"`
}
