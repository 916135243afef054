package scheduler

import (
	"fmt"
	"sort"

	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/utils"
)

// mealWindows are the fixed windows a free slot is reclassified as meal time
// when it overlaps one. Minutes from midnight.
var mealWindows = [][2]int{
	{7 * 60, 8 * 60},   // breakfast
	{12 * 60, 13 * 60}, // lunch
	{18 * 60, 19 * 60}, // dinner
}

// FindAvailableSlots walks the wake window and emits the free gaps between
// commitments, splitting out meal windows and tagging each slot's energy
// band. Slots shorter than minSlotDuration are dropped, not merged.
//
// Commitments extending past the wake window are not clipped; callers must
// pre-filter to the target date.
func (s *Scheduler) FindAvailableSlots(wakeTime, sleepTime string, commitments []models.Commitment, minSlotDuration int) ([]models.TimeSlot, error) {
	wake, err := utils.ParseTimeToMinutes(wakeTime)
	if err != nil {
		return nil, fmt.Errorf("invalid wake time: %w", err)
	}
	sleep, err := utils.ParseTimeToMinutes(sleepTime)
	if err != nil {
		return nil, fmt.Errorf("invalid sleep time: %w", err)
	}
	if wake >= sleep {
		return nil, fmt.Errorf("wake time %s must be before sleep time %s", wakeTime, sleepTime)
	}
	if minSlotDuration <= 0 {
		minSlotDuration = 1
	}

	type span struct{ start, end int }
	var fixed []span
	for _, c := range commitments {
		start, err := utils.ParseTimeToMinutes(c.Start)
		if err != nil {
			return nil, fmt.Errorf("commitment %q has invalid start time: %w", c.Title, err)
		}
		end, err := utils.ParseTimeToMinutes(c.End)
		if err != nil {
			return nil, fmt.Errorf("commitment %q has invalid end time: %w", c.Title, err)
		}
		if start >= end {
			return nil, fmt.Errorf("commitment %q has end time before start time", c.Title)
		}
		fixed = append(fixed, span{start, end})
	}

	sort.Slice(fixed, func(i, j int) bool {
		return fixed[i].start < fixed[j].start
	})

	var slots []models.TimeSlot
	cursor := wake
	for _, f := range fixed {
		if f.start > cursor {
			slots = append(slots, splitByMeals(cursor, f.start, minSlotDuration)...)
		}
		if f.end > cursor {
			cursor = f.end
		}
	}
	if cursor < sleep {
		slots = append(slots, splitByMeals(cursor, sleep, minSlotDuration)...)
	}

	return slots, nil
}

// splitByMeals carves the gap [start, end) at meal-window boundaries so each
// emitted slot is uniformly meal or available, then drops sub-minimum pieces.
func splitByMeals(start, end, minDuration int) []models.TimeSlot {
	cuts := []int{start, end}
	for _, mw := range mealWindows {
		for _, b := range mw {
			if b > start && b < end {
				cuts = append(cuts, b)
			}
		}
	}
	sort.Ints(cuts)

	var slots []models.TimeSlot
	for i := 0; i+1 < len(cuts); i++ {
		s, e := cuts[i], cuts[i+1]
		if s == e {
			continue
		}
		if e-s < minDuration {
			continue
		}
		kind := models.SlotAvailable
		if overlapsMealWindow(s, e) {
			kind = models.SlotMeal
		}
		slots = append(slots, models.TimeSlot{
			Start:           utils.FormatMinutes(s),
			End:             utils.FormatMinutes(e),
			DurationMinutes: e - s,
			Kind:            kind,
			EnergyLevel:     energyAt(s),
		})
	}
	return slots
}

func overlapsMealWindow(start, end int) bool {
	for _, mw := range mealWindows {
		if utils.RangesOverlap(start, end, mw[0], mw[1]) {
			return true
		}
	}
	return false
}

// energyAt maps a slot's start (minutes from midnight) to an energy band
// using a fixed time-of-day table.
func energyAt(start int) models.EnergyBand {
	switch {
	case (start >= 9*60 && start < 12*60) || (start >= 14*60 && start < 17*60):
		return models.EnergyHigh
	case (start >= 7*60 && start < 9*60) || (start >= 17*60 && start < 20*60):
		return models.EnergyMedium
	default:
		return models.EnergyLow
	}
}
