package calendar

import (
	"sort"
	"time"

	"fomeninja/internal/models"
	"fomeninja/internal/occupancy"
	"fomeninja/internal/schedule"
	"fomeninja/internal/store"
)

// Unit selects the navigation granularity.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
)

// Advance moves the anchor date by delta units. Delta 0 resets to today.
// The result is truncated to midnight in the anchor's location.
func Advance(anchor time.Time, unit Unit, delta int, now time.Time) time.Time {
	if delta == 0 {
		return dateOnly(now)
	}

	switch unit {
	case UnitWeek:
		return dateOnly(anchor.AddDate(0, 0, 7*delta))
	case UnitMonth:
		return dateOnly(anchor.AddDate(0, delta, 0))
	default:
		return dateOnly(anchor.AddDate(0, 0, delta))
	}
}

// SlotEntry pairs a slot with its occupancy and the reservations booked on it.
type SlotEntry struct {
	Slot         string               `json:"slot"`
	Occupancy    models.Occupancy     `json:"occupancy"`
	Reservations []models.Reservation `json:"reservations"`
}

// DayView is the day projection: the slot grid partitioned into fixed
// periods plus the day's flat reservation list sorted by time.
type DayView struct {
	Date         string               `json:"date"`
	Morning      []SlotEntry          `json:"morning"`
	Afternoon    []SlotEntry          `json:"afternoon"`
	Evening      []SlotEntry          `json:"evening"`
	Reservations []models.Reservation `json:"reservations"`
}

// WeekDay summarizes one date of the week projection.
type WeekDay struct {
	Date             string `json:"date"`
	Weekday          string `json:"weekday"`
	ReservationCount int    `json:"reservation_count"`
	TotalPeople      int    `json:"total_people"`
	IsToday          bool   `json:"is_today"`
}

// WeekView is the Sunday-starting 7-day projection plus the system-wide
// upcoming reservation list.
type WeekView struct {
	Start    string               `json:"start"`
	End      string               `json:"end"`
	Days     []WeekDay            `json:"days"`
	Upcoming []models.Reservation `json:"upcoming"`
}

// MonthCell is one cell of the month grid. When the date holds more than
// MonthCellCollapseLimit reservations the list is dropped and only the count
// kept, mirroring the collapsed summary cell.
type MonthCell struct {
	Date             string               `json:"date"`
	IsCurrentMonth   bool                 `json:"is_current_month"`
	IsToday          bool                 `json:"is_today"`
	ReservationCount int                  `json:"reservation_count"`
	Collapsed        bool                 `json:"collapsed"`
	Reservations     []models.Reservation `json:"reservations,omitempty"`
}

// MonthView is the month projection: Sunday-aligned cells covering the full
// anchor month, always a multiple of 7.
type MonthView struct {
	Year  int         `json:"year"`
	Month int         `json:"month"`
	Cells []MonthCell `json:"cells"`
}

// Projector derives day/week/month views from a store snapshot and the slot
// grid. Stateless: the same anchor and reservation set always produce the
// same output.
type Projector struct {
	grid *schedule.Grid
}

func NewProjector(grid *schedule.Grid) *Projector {
	return &Projector{grid: grid}
}

// Day projects the anchor date's schedule.
func (p *Projector) Day(anchor time.Time, reservations []models.Reservation) DayView {
	date := anchor.Format(models.DateLayout)
	dayReservations := filterByDate(reservations, date)

	periods := p.grid.Periods()
	view := DayView{
		Date:      date,
		Morning:   p.slotEntries(date, periods[schedule.PeriodMorning], dayReservations),
		Afternoon: p.slotEntries(date, periods[schedule.PeriodAfternoon], dayReservations),
		Evening:   p.slotEntries(date, periods[schedule.PeriodEvening], dayReservations),
	}

	flat := append([]models.Reservation(nil), dayReservations...)
	sort.SliceStable(flat, func(i, j int) bool {
		if c := schedule.CompareSlots(flat[i].Time, flat[j].Time); c != 0 {
			return c < 0
		}
		return flat[i].ID < flat[j].ID
	})
	view.Reservations = flat

	return view
}

// Week projects the Sunday-starting week containing the anchor date.
func (p *Projector) Week(anchor time.Time, reservations []models.Reservation, now time.Time) WeekView {
	sunday := dateOnly(anchor).AddDate(0, 0, -int(anchor.Weekday()))
	today := now.Format(models.DateLayout)

	view := WeekView{
		Start: sunday.Format(models.DateLayout),
		End:   sunday.AddDate(0, 0, 6).Format(models.DateLayout),
		Days:  make([]WeekDay, 0, 7),
	}

	for i := 0; i < 7; i++ {
		day := sunday.AddDate(0, 0, i)
		date := day.Format(models.DateLayout)

		count := 0
		people := 0
		for _, r := range reservations {
			if r.Date != date {
				continue
			}
			count++
			people += r.PartySize
		}

		view.Days = append(view.Days, WeekDay{
			Date:             date,
			Weekday:          day.Weekday().String(),
			ReservationCount: count,
			TotalPeople:      people,
			IsToday:          date == today,
		})
	}

	view.Upcoming = store.Upcoming(reservations, today, models.UpcomingListSize)
	return view
}

// Month projects the Sunday-aligned grid covering the anchor month.
func (p *Projector) Month(anchor time.Time, reservations []models.Reservation, now time.Time) MonthView {
	firstOfMonth := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	gridStart := firstOfMonth.AddDate(0, 0, -int(firstOfMonth.Weekday()))

	daysInMonth := firstOfMonth.AddDate(0, 1, -1).Day()
	leading := int(firstOfMonth.Weekday())
	totalCells := (daysInMonth + leading + 6) / 7 * 7

	today := now.Format(models.DateLayout)
	view := MonthView{
		Year:  anchor.Year(),
		Month: int(anchor.Month()),
		Cells: make([]MonthCell, 0, totalCells),
	}

	for i := 0; i < totalCells; i++ {
		day := gridStart.AddDate(0, 0, i)
		date := day.Format(models.DateLayout)
		dayReservations := filterByDate(reservations, date)

		cell := MonthCell{
			Date:             date,
			IsCurrentMonth:   day.Month() == anchor.Month() && day.Year() == anchor.Year(),
			IsToday:          date == today,
			ReservationCount: len(dayReservations),
		}
		if len(dayReservations) > models.MonthCellCollapseLimit {
			cell.Collapsed = true
		} else {
			cell.Reservations = dayReservations
		}
		view.Cells = append(view.Cells, cell)
	}

	return view
}

func (p *Projector) slotEntries(date string, slots []string, dayReservations []models.Reservation) []SlotEntry {
	entries := make([]SlotEntry, 0, len(slots))
	for _, slot := range slots {
		atSlot := make([]models.Reservation, 0)
		for _, r := range dayReservations {
			if r.Time == slot {
				atSlot = append(atSlot, r)
			}
		}
		entries = append(entries, SlotEntry{
			Slot:         slot,
			Occupancy:    occupancy.Calculate(date, slot, dayReservations, p.grid.Capacity(slot)),
			Reservations: atSlot,
		})
	}
	return entries
}

func filterByDate(reservations []models.Reservation, date string) []models.Reservation {
	out := make([]models.Reservation, 0)
	for _, r := range reservations {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
