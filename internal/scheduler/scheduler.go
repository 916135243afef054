package scheduler

import (
	"fmt"

	"github.com/lbradley/daybook/internal/constants"
	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/utils"
)

type Scheduler struct{}

func New() *Scheduler {
	return &Scheduler{}
}

// AnalyzeDay runs the full pre-planning pipeline for one date: free slots,
// workload classification, and session recommendation. The caller supplies
// commitments already filtered to the target date.
func (s *Scheduler) AnalyzeDay(date string, prefs models.Preferences, commitments []models.Commitment, deadlines []models.Deadline) (models.DayAnalysis, error) {
	wake, sleep := prefs.WakeTime, prefs.SleepTime
	if wake == "" {
		wake = constants.DefaultWakeTime
	}
	if sleep == "" {
		sleep = constants.DefaultSleepTime
	}

	slots, err := s.FindAvailableSlots(wake, sleep, commitments, constants.MinSlotDurationMin)
	if err != nil {
		return models.DayAnalysis{}, fmt.Errorf("finding available slots: %w", err)
	}

	commitmentMinutes := 0
	for _, c := range commitments {
		start, err := utils.ParseTimeToMinutes(c.Start)
		if err != nil {
			continue
		}
		end, err := utils.ParseTimeToMinutes(c.End)
		if err != nil {
			continue
		}
		commitmentMinutes += end - start
	}

	availableMinutes := 0
	for _, slot := range slots {
		if slot.Kind == models.SlotAvailable {
			availableMinutes += slot.DurationMinutes
		}
	}

	deadlineCount := s.CountUpcomingDeadlines(date, deadlines)
	intensity := s.ScoreWorkload(commitmentMinutes, availableMinutes, deadlineCount)

	return models.DayAnalysis{
		Date:               date,
		Slots:              slots,
		CommitmentMinutes:  commitmentMinutes,
		AvailableMinutes:   availableMinutes,
		UpcomingDeadlines:  deadlineCount,
		Intensity:          intensity,
		RecommendedSession: s.RecommendSessions(availableMinutes, intensity, deadlineCount),
	}, nil
}
