package occupancy

import (
	"math"

	"fomeninja/internal/models"
)

// Calculate aggregates the given reservations into the occupancy snapshot
// for one date+slot. Callers pass reservations already partitioned by date;
// only the slot filter runs here, so the cost per call stays proportional to
// the day's list, not the whole store. Every reservation at the slot counts;
// cancelled ones contribute no people and thus no load.
func Calculate(date, slot string, dayReservations []models.Reservation, maxCapacity int) models.Occupancy {
	if maxCapacity <= 0 {
		maxCapacity = models.DefaultSlotCapacity
	}

	count := 0
	people := 0
	for _, r := range dayReservations {
		if r.Time != slot {
			continue
		}
		count++
		if !r.IsActive() {
			continue
		}
		people += r.PartySize
	}

	percentage := int(math.Round(float64(people) / float64(maxCapacity) * 100))
	if percentage > 100 {
		percentage = 100
	}

	return models.Occupancy{
		Date:             date,
		Slot:             slot,
		ReservationCount: count,
		TotalPeople:      people,
		MaxCapacity:      maxCapacity,
		Percentage:       percentage,
		Band:             Band(percentage),
	}
}

// Band classifies a percentage into the fixed load bands.
func Band(percentage int) string {
	switch {
	case percentage >= models.HighLoadPercent:
		return models.BandHigh
	case percentage >= models.MediumLoadPercent:
		return models.BandMedium
	default:
		return models.BandLow
	}
}
