package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"fomeninja/internal/models"
)

// Period names for the day view partition.
const (
	PeriodMorning   = "morning"   // [06:00, 12:00)
	PeriodAfternoon = "afternoon" // [12:00, 18:00)
	PeriodEvening   = "evening"   // [18:00, 24:00)
)

// GenerateSlots returns half-hour slot labels from openHour:00 through
// closeHour:30 inclusive. Hours outside [0, 23] are clamped to the defaults.
func GenerateSlots(openHour, closeHour int) []string {
	if openHour < 0 || openHour > 23 {
		openHour = models.DefaultOpenHour
	}
	if closeHour < openHour || closeHour > 23 {
		closeHour = models.DefaultCloseHour
	}

	slots := make([]string, 0, (closeHour-openHour+1)*2)
	for hour := openHour; hour <= closeHour; hour++ {
		slots = append(slots, fmt.Sprintf("%d:00", hour))
		slots = append(slots, fmt.Sprintf("%d:30", hour))
	}
	return slots
}

// Grid is the service day's slot grid with per-label capacity overrides.
// The grid is identical for every date. Pure configuration, no mutation
// after construction.
type Grid struct {
	slots           []string
	capacity        map[string]int
	defaultCapacity int
}

// NewGrid builds a grid for the opening hours with an optional capacity
// override map keyed by slot label.
func NewGrid(openHour, closeHour, defaultCapacity int, overrides map[string]int) *Grid {
	if defaultCapacity <= 0 {
		defaultCapacity = models.DefaultSlotCapacity
	}

	capacity := make(map[string]int, len(overrides))
	for label, c := range overrides {
		if c > 0 {
			capacity[label] = c
		}
	}

	return &Grid{
		slots:           GenerateSlots(openHour, closeHour),
		capacity:        capacity,
		defaultCapacity: defaultCapacity,
	}
}

// Slots returns the ordered slot labels. Callers must not mutate the result.
func (g *Grid) Slots() []string {
	return g.slots
}

// Capacity returns the max covers for a label, falling back to the default
// for labels without an explicit override.
func (g *Grid) Capacity(label string) int {
	if c, ok := g.capacity[label]; ok {
		return c
	}
	return g.defaultCapacity
}

// HasSlot reports whether the label belongs to the grid.
func (g *Grid) HasSlot(label string) bool {
	for _, s := range g.slots {
		if s == label {
			return true
		}
	}
	return false
}

// Periods partitions the grid into morning, afternoon and evening slot lists.
func (g *Grid) Periods() map[string][]string {
	periods := map[string][]string{
		PeriodMorning:   {},
		PeriodAfternoon: {},
		PeriodEvening:   {},
	}

	for _, label := range g.slots {
		hour, _, err := ParseSlot(label)
		if err != nil {
			continue
		}
		switch {
		case hour >= 6 && hour < 12:
			periods[PeriodMorning] = append(periods[PeriodMorning], label)
		case hour >= 12 && hour < 18:
			periods[PeriodAfternoon] = append(periods[PeriodAfternoon], label)
		case hour >= 18 && hour < 24:
			periods[PeriodEvening] = append(periods[PeriodEvening], label)
		}
	}
	return periods
}

// ParseSlot splits a "H:MM" label into hour and minute.
func ParseSlot(label string) (hour, minute int, err error) {
	parts := strings.SplitN(label, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid slot label: %q", label)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid slot hour: %q", label)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid slot minute: %q", label)
	}
	return hour, minute, nil
}

// CompareSlots orders two slot labels chronologically. Unparseable labels
// sort after valid ones.
func CompareSlots(a, b string) int {
	ah, am, errA := ParseSlot(a)
	bh, bm, errB := ParseSlot(b)
	if errA != nil || errB != nil {
		if errA == nil {
			return -1
		}
		if errB == nil {
			return 1
		}
		return strings.Compare(a, b)
	}
	if ah != bh {
		return ah - bh
	}
	return am - bm
}
