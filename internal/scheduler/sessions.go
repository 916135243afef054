package scheduler

import (
	"github.com/lbradley/daybook/internal/constants"
	"github.com/lbradley/daybook/internal/models"
)

// sessionBase maps intensity to the starting session count and duration.
// Heavier days get fewer, shorter sessions; the point is sustainable focus,
// not packing.
var sessionBase = map[models.Intensity]models.SessionPlan{
	models.IntensityLight:      {Count: 4, DurationMinutes: 60},
	models.IntensityModerate:   {Count: 3, DurationMinutes: 45},
	models.IntensityHeavy:      {Count: 2, DurationMinutes: 30},
	models.IntensityOverloaded: {Count: 1, DurationMinutes: 20},
}

// RecommendSessions maps intensity and deadline pressure to a session plan
/// bounded by the available minutes. It is a heuristic, not an optimizer: it
// never assigns sessions to specific slots.
func (s *Scheduler) RecommendSessions(availableMinutes int, intensity models.Intensity, deadlineCount int) models.SessionPlan {
	plan, ok := sessionBase[intensity]
	if !ok {
		plan = sessionBase[models.IntensityModerate]
	}

	if deadlineCount >= constants.UrgentDeadlineCount {
		plan.Count++
		if plan.Count > constants.MaxSessionCount {
			plan.Count = constants.MaxSessionCount
		}
	}

	// Never recommend more time than exists.
	if fit := availableMinutes / plan.DurationMinutes; plan.Count > fit {
		plan.Count = fit
	}
	if plan.Count < 1 {
		plan.Count = 1
	}

	return plan
}
