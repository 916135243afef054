package drift

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lbradley/daybook/internal/constants"
	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/storage"
	"github.com/lbradley/daybook/internal/utils"
)

// CheckResult is the outcome of one drift check.
type CheckResult struct {
	Drift              bool               `json:"drift"`
	DriftMinutes       int                `json:"drift_minutes"`
	CumulativeDrift    int                `json:"cumulative_drift"`
	Material           bool               `json:"material"`
	RequiresReschedule bool               `json:"requires_reschedule"`
	Event              *models.DriftEvent `json:"event,omitempty"`
}

// Detector compares planned against reported durations and accumulates the
// day's drift. Planned duration is passed by value at feedback time, so a
// concurrent schedule edit cannot skew an in-flight check.
type Detector struct {
	store storage.Provider
	now   func() time.Time
}

func NewDetector(store storage.Provider) *Detector {
	return &Detector{store: store, now: time.Now}
}

// NewDetectorWithClock is used by tests to pin event timestamps.
func NewDetectorWithClock(store storage.Provider, now func() time.Time) *Detector {
	return &Detector{store: store, now: now}
}

// Check records a drift event for a completed block and decides whether the
// remainder of the day needs replanning. Resubmitting feedback for the same
// block updates its open event in place instead of duplicating it.
func (d *Detector) Check(scheduleDate, blockStartTime, blockTitle string, plannedDuration, actualDuration int) (CheckResult, error) {
	if !utils.ValidateDateFormat(scheduleDate) {
		return CheckResult{}, fmt.Errorf("invalid schedule date: %s", scheduleDate)
	}
	if !utils.ValidateTimeFormat(blockStartTime) {
		return CheckResult{}, fmt.Errorf("invalid block start time: %s", blockStartTime)
	}
	if plannedDuration <= 0 {
		return CheckResult{}, fmt.Errorf("planned duration must be positive, got %d", plannedDuration)
	}
	if actualDuration < 0 {
		return CheckResult{}, fmt.Errorf("actual duration cannot be negative, got %d", actualDuration)
	}

	driftMinutes := actualDuration - plannedDuration
	nowStr := d.now().UTC().Format(time.RFC3339)

	event, err := d.openEventForBlock(scheduleDate, blockStartTime)
	if err != nil {
		return CheckResult{}, err
	}
	fresh := event == nil
	if fresh {
		event = &models.DriftEvent{
			ID:           uuid.NewString(),
			ScheduleDate: scheduleDate,
			CreatedAt:    nowStr,
		}
	}
	event.BlockStartTime = blockStartTime
	event.BlockTitle = blockTitle
	event.PlannedDuration = plannedDuration
	event.ActualDuration = actualDuration
	event.DriftMinutes = driftMinutes
	event.AffectedBlocksCount = d.affectedBlocks(scheduleDate, blockStartTime)

	cumulative, err := d.cumulativeFor(scheduleDate, event)
	if err != nil {
		return CheckResult{}, err
	}
	event.CumulativeDrift = cumulative

	if fresh {
		err = d.store.AddDriftEvent(*event)
	} else {
		err = d.store.UpdateDriftEvent(*event)
	}
	if err != nil {
		return CheckResult{}, fmt.Errorf("recording drift event: %w", err)
	}

	return CheckResult{
		Drift:              driftMinutes != 0,
		DriftMinutes:       driftMinutes,
		CumulativeDrift:    cumulative,
		Material:           cumulative > constants.DriftBadgeThresholdMin,
		RequiresReschedule: cumulative > constants.DriftRescheduleThresholdMin,
		Event:              event,
	}, nil
}

// Cumulative returns the day's current cumulative drift without recording
// anything.
func (d *Detector) Cumulative(scheduleDate string) (int, error) {
	return d.cumulativeFor(scheduleDate, nil)
}

// Resolve closes a drift event. Both resolution paths are terminal; only the
// reschedule path resets the day's cumulative counter, because acknowledging
// drift does not undo its effect on downstream blocks.
func (d *Detector) Resolve(id string, choice models.DriftChoice) (models.DriftEvent, error) {
	event, err := d.store.GetDriftEvent(id)
	if err != nil {
		return models.DriftEvent{}, err
	}
	if event.Resolved {
		return models.DriftEvent{}, fmt.Errorf("drift event %s is already resolved", id)
	}
	switch choice {
	case models.DriftChoiceRescheduled, models.DriftChoiceKeptOriginal:
	default:
		return models.DriftEvent{}, fmt.Errorf("invalid resolution choice: %s", choice)
	}

	resolvedAt := d.now().UTC().Format(time.RFC3339)
	event.Resolved = true
	event.UserChoice = choice
	event.ResolvedAt = &resolvedAt

	if err := d.store.UpdateDriftEvent(event); err != nil {
		return models.DriftEvent{}, fmt.Errorf("resolving drift event: %w", err)
	}
	return event, nil
}

// openEventForBlock finds the unresolved event for one block, if any.
func (d *Detector) openEventForBlock(date, blockStartTime string) (*models.DriftEvent, error) {
	events, err := d.store.GetUnresolvedDriftEvents(date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("loading drift events: %w", err)
	}
	for i := range events {
		if events[i].BlockStartTime == blockStartTime {
			return &events[i], nil
		}
	}
	return nil, nil
}

// cumulativeFor sums the day's drift since the last reschedule resolution.
// Events resolved by keep-original still count; pending is an event being
// written and replaces any stored copy of itself.
func (d *Detector) cumulativeFor(date string, pending *models.DriftEvent) (int, error) {
	events, err := d.store.GetDriftEventsForDate(date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("loading drift events: %w", err)
	}

	var lastReset string
	for _, e := range events {
		if e.Resolved && e.UserChoice == models.DriftChoiceRescheduled && e.ResolvedAt != nil && *e.ResolvedAt > lastReset {
			lastReset = *e.ResolvedAt
		}
	}

	sum := 0
	for _, e := range events {
		if pending != nil && e.ID == pending.ID {
			continue
		}
		if e.Resolved && e.UserChoice == models.DriftChoiceRescheduled {
			continue
		}
		if lastReset != "" && e.CreatedAt <= lastReset {
			continue
		}
		sum += e.DriftMinutes
	}
	if pending != nil {
		sum += pending.DriftMinutes
	}
	return sum, nil
}

// affectedBlocks counts blocks scheduled after the drifting one. Best-effort:
// a missing schedule just means zero.
func (d *Detector) affectedBlocks(date, blockStartTime string) int {
	sched, err := d.store.GetSchedule(date)
	if err != nil {
		return 0
	}
	count := 0
	for _, b := range sched.Blocks {
		if b.Start > blockStartTime {
			count++
		}
	}
	return count
}
