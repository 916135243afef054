package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/lbradley/daybook/internal/constants"
	"github.com/lbradley/daybook/internal/drift"
	"github.com/lbradley/daybook/internal/generator"
	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/schedule"
	"github.com/lbradley/daybook/internal/storage"
	"github.com/lbradley/daybook/internal/utils"
)

// ErrSuggestionUnavailable is returned when the content generator fails or
// produces nothing usable. Callers degrade to the unmodified schedule.
var ErrSuggestionUnavailable = errors.New("reschedule suggestion unavailable")

// Coordinator owns interval legality for replanned remainders. Content may
// come from the external generator, but nothing the generator says can put
// an illegal interval into storage.
type Coordinator struct {
	store    storage.Provider
	gen      generator.Generator
	detector *drift.Detector
}

func New(store storage.Provider, gen generator.Generator, detector *drift.Detector) *Coordinator {
	return &Coordinator{store: store, gen: gen, detector: detector}
}

// Suggest asks the generator to replan the remainder of the day and returns
// a sanitized block list fitting the [currentTime, sleepTime] envelope.
// Nothing is persisted. remainingBlocks may be nil, in which case the stored
// schedule supplies them.
func (c *Coordinator) Suggest(ctx context.Context, driftEventID, scheduleDate, currentTime string, remainingBlocks []models.TimeBlock) ([]models.TimeBlock, error) {
	if !utils.ValidateTimeFormat(currentTime) {
		return nil, fmt.Errorf("invalid current time: %s", currentTime)
	}

	event, err := c.store.GetDriftEvent(driftEventID)
	if err != nil {
		return nil, fmt.Errorf("loading drift event: %w", err)
	}
	if event.ScheduleDate != scheduleDate {
		return nil, fmt.Errorf("drift event %s belongs to %s, not %s", driftEventID, event.ScheduleDate, scheduleDate)
	}

	sleepTime := c.sleepTime()

	if remainingBlocks == nil {
		sched, err := c.store.GetSchedule(scheduleDate)
		if err != nil {
			return nil, fmt.Errorf("loading schedule: %w", err)
		}
		remainingBlocks = schedule.RemainingAfter(sched, currentTime)
	}

	proposed, err := c.gen.ReplanRemainder(ctx, generator.ReplanRequest{
		ScheduleDate:    scheduleDate,
		CurrentTime:     currentTime,
		SleepTime:       sleepTime,
		DriftMinutes:    event.CumulativeDrift,
		RemainingBlocks: remainingBlocks,
	})
	if err != nil {
		return remainingBlocks, fmt.Errorf("%w: %v", ErrSuggestionUnavailable, err)
	}

	sanitized := Sanitize(proposed, currentTime, sleepTime)
	if len(sanitized) == 0 && len(proposed) > 0 {
		return remainingBlocks, fmt.Errorf("%w: generator output had no legal intervals", ErrSuggestionUnavailable)
	}
	return sanitized, nil
}

// Accept persists the suggested remainder and closes the drift event via the
// reschedule path. Past blocks are kept; the remainder from currentTime on
// is replaced. The merged schedule is re-validated before it is written.
func (c *Coordinator) Accept(driftEventID, scheduleDate, currentTime string, newRemainder []models.TimeBlock) (models.DailySchedule, error) {
	sched, err := c.store.GetSchedule(scheduleDate)
	if err != nil {
		return models.DailySchedule{}, fmt.Errorf("loading schedule: %w", err)
	}

	now, err := utils.ParseTimeToMinutes(currentTime)
	if err != nil {
		return models.DailySchedule{}, fmt.Errorf("invalid current time: %s", currentTime)
	}

	var merged []models.TimeBlock
	for _, b := range sched.Blocks {
		start, err := utils.ParseTimeToMinutes(b.Start)
		if err != nil {
			continue
		}
		if start < now {
			merged = append(merged, b)
		}
	}
	merged = append(merged, Sanitize(newRemainder, currentTime, c.sleepTime())...)

	updated := sched
	updated.Blocks = merged
	sort.Slice(updated.Blocks, func(i, j int) bool {
		return updated.Blocks[i].Start < updated.Blocks[j].Start
	})

	// A sanitized remainder cannot overlap itself, but it could still
	// collide with an in-progress past block. Reject rather than persist.
	for i := 1; i < len(updated.Blocks); i++ {
		prev, cur := updated.Blocks[i-1], updated.Blocks[i]
		if utils.TimesOverlap(prev.Start, prev.End, cur.Start, cur.End) {
			return models.DailySchedule{}, fmt.Errorf("replanned remainder overlaps %q (%s-%s)", prev.Title, prev.Start, prev.End)
		}
	}

	if err := c.store.SaveSchedule(updated); err != nil {
		return models.DailySchedule{}, fmt.Errorf("saving replanned schedule: %w", err)
	}
	if _, err := c.detector.Resolve(driftEventID, models.DriftChoiceRescheduled); err != nil {
		return models.DailySchedule{}, err
	}
	return updated, nil
}

// KeepOriginal closes the drift event without touching the schedule.
func (c *Coordinator) KeepOriginal(driftEventID string) error {
	_, err := c.detector.Resolve(driftEventID, models.DriftChoiceKeptOriginal)
	return err
}

// Sanitize forces generator output into the legal envelope: blocks are
// sorted, clipped to [currentTime, sleepTime], de-overlapped by clipping
// each start to the previous end, and dropped when nothing is left.
func Sanitize(blocks []models.TimeBlock, currentTime, sleepTime string) []models.TimeBlock {
	now, err := utils.ParseTimeToMinutes(currentTime)
	if err != nil {
		return nil
	}
	sleep, err := utils.ParseTimeToMinutes(sleepTime)
	if err != nil {
		return nil
	}

	type timed struct {
		start, end int
		block      models.TimeBlock
	}
	var candidates []timed
	for _, b := range blocks {
		start, err1 := utils.ParseTimeToMinutes(b.Start)
		end, err2 := utils.ParseTimeToMinutes(b.End)
		if err1 != nil || err2 != nil || start >= end {
			continue
		}
		candidates = append(candidates, timed{start, end, b})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].start < candidates[j].start
	})

	cursor := now
	var out []models.TimeBlock
	for _, c := range candidates {
		start, end := c.start, c.end
		if start < cursor {
			start = cursor
		}
		if end > sleep {
			end = sleep
		}
		if start >= end {
			continue
		}
		b := c.block
		b.Start = utils.FormatMinutes(start)
		b.End = utils.FormatMinutes(end)
		out = append(out, b)
		cursor = end
	}
	return out
}

func (c *Coordinator) sleepTime() string {
	prefs, err := c.store.GetPreferences()
	if err != nil || prefs.SleepTime == "" {
		return constants.DefaultSleepTime
	}
	return prefs.SleepTime
}
