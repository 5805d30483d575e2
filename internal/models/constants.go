package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	// BandLow, BandMedium, BandHigh classify slot load by occupancy percentage.
	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"
)

const (
	// DefaultOpenHour and DefaultCloseHour bound the default service day grid.
	DefaultOpenHour  = 11
	DefaultCloseHour = 22

	// DefaultSlotCapacity covers per half-hour slot when not overridden.
	DefaultSlotCapacity = 20

	// MediumLoadPercent and HighLoadPercent are the band thresholds.
	MediumLoadPercent = 50
	HighLoadPercent   = 80

	// UpcomingListSize is the length of the week view's upcoming list.
	UpcomingListSize = 5

	// MonthCellCollapseLimit is the max reservations listed per month cell
	// before the cell collapses to a count summary.
	MonthCellCollapseLimit = 2

	// WorkerQueueSize is the in-memory sync queue buffer.
	WorkerQueueSize = 1000
)

// DateLayout is the canonical reservation date format.
const DateLayout = "2006-01-02"
