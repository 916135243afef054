package scheduler

import (
	"github.com/lbradley/daybook/internal/constants"
	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/utils"
)

// ScoreWorkload classifies how packed a day is from its committed minutes,
// free minutes, and count of near-term deadlines.
//
// The score blends the commitment ratio (how much of the usable day is
// already spoken for) with deadline pressure, which saturates so a pile of
// deadlines cannot dominate the classification on an otherwise empty day.
func (s *Scheduler) ScoreWorkload(commitmentMinutes, availableMinutes, deadlineCount int) models.Intensity {
	total := commitmentMinutes + availableMinutes

	var ratio float64
	if total > 0 {
		ratio = float64(commitmentMinutes) / float64(total)
	}

	pressure := deadlineCount * constants.DeadlinePressureUnit
	if pressure > constants.DeadlinePressureCap {
		pressure = constants.DeadlinePressureCap
	}

	score := ratio*constants.CommitmentRatioWeight + float64(pressure)

	switch {
	case score < 30:
		return models.IntensityLight
	case score < 50:
		return models.IntensityModerate
	case score < 70:
		return models.IntensityHeavy
	default:
		return models.IntensityOverloaded
	}
}

// CountUpcomingDeadlines counts deadlines due within the pressure window of
// the target date, inclusive. Past-due deadlines do not count.
func (s *Scheduler) CountUpcomingDeadlines(date string, deadlines []models.Deadline) int {
	count := 0
	for _, d := range deadlines {
		days, err := utils.DaysUntil(date, d.DueDate)
		if err != nil {
			continue
		}
		if days >= 0 && days <= constants.DeadlineWindowDays {
			count++
		}
	}
	return count
}
