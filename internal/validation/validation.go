package validation

import (
	"fmt"
	"sort"

	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidInterval     ConflictType = "invalid_interval"
	ConflictOverlappingBlocks   ConflictType = "overlapping_blocks"
	ConflictOutsideWakingWindow ConflictType = "outside_waking_window"
	ConflictInvalidDateTime     ConflictType = "invalid_datetime"
	ConflictUnsortedBlocks      ConflictType = "unsorted_blocks"
)

// Conflict represents a detected conflict in a schedule
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Block titles involved
	TimeRange   string   // Human-readable time range (if applicable)
}

// Result contains all detected conflicts
type Result struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (r *Result) FormatReport() string {
	if !r.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range r.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator validates schedules and blocks for interval conflicts
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateBlock checks a single block's interval in isolation.
func (v *Validator) ValidateBlock(block models.TimeBlock) Result {
	result := Result{Conflicts: []Conflict{}}

	startOK := utils.ValidateTimeFormat(block.Start)
	endOK := utils.ValidateTimeFormat(block.End)
	if !startOK {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("Block %q has invalid start time: %s", block.Title, block.Start),
			Items:       []string{block.Title},
		})
	}
	if !endOK {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("Block %q has invalid end time: %s", block.Title, block.End),
			Items:       []string{block.Title},
		})
	}
	if !startOK || !endOK {
		return result
	}

	start, _ := utils.ParseTimeToMinutes(block.Start)
	end, _ := utils.ParseTimeToMinutes(block.End)
	if start >= end {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidInterval,
			Description: fmt.Sprintf("Block %q has end time (%s) at or before start time (%s)", block.Title, block.End, block.Start),
			Items:       []string{block.Title},
			TimeRange:   fmt.Sprintf("%s-%s", block.Start, block.End),
		})
	}

	return result
}

// ValidateSchedule checks every block interval plus the schedule-wide sort
// and non-overlap invariants. Conflicts are reported, never auto-corrected.
func (v *Validator) ValidateSchedule(schedule models.DailySchedule) Result {
	result := Result{Conflicts: []Conflict{}}

	if !utils.ValidateDateFormat(schedule.Date) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("Invalid schedule date: %s", schedule.Date),
			Date:        schedule.Date,
		})
	}

	for _, block := range schedule.Blocks {
		blockResult := v.ValidateBlock(block)
		result.Conflicts = append(result.Conflicts, blockResult.Conflicts...)
	}

	for i := 1; i < len(schedule.Blocks); i++ {
		if schedule.Blocks[i].Start < schedule.Blocks[i-1].Start {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnsortedBlocks,
				Description: fmt.Sprintf("Blocks out of order: %q (%s) follows %q (%s)", schedule.Blocks[i].Title, schedule.Blocks[i].Start, schedule.Blocks[i-1].Title, schedule.Blocks[i-1].Start),
				Date:        schedule.Date,
				Items:       []string{schedule.Blocks[i-1].Title, schedule.Blocks[i].Title},
			})
			break
		}
	}

	// O(n²) overlap check; daily plans are small.
	blocks := make([]models.TimeBlock, len(schedule.Blocks))
	copy(blocks, schedule.Blocks)
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Start < blocks[j].Start
	})
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			if utils.TimesOverlap(blocks[i].Start, blocks[i].End, blocks[j].Start, blocks[j].End) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type: ConflictOverlappingBlocks,
					Description: fmt.Sprintf("%s: %s-%s %q overlaps %q",
						schedule.Date, blocks[i].Start, blocks[i].End, blocks[i].Title, blocks[j].Title),
					Date:      schedule.Date,
					Items:     []string{blocks[i].Title, blocks[j].Title},
					TimeRange: fmt.Sprintf("%s-%s", blocks[i].Start, blocks[i].End),
				})
			}
		}
	}

	return result
}

// ValidateEnvelope checks that every block lies within [windowStart, windowEnd].
func (v *Validator) ValidateEnvelope(schedule models.DailySchedule, windowStart, windowEnd string) Result {
	result := Result{Conflicts: []Conflict{}}

	ws, err := utils.ParseTimeToMinutes(windowStart)
	if err != nil {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("Invalid window start time: %s", windowStart),
		})
		return result
	}
	we, err := utils.ParseTimeToMinutes(windowEnd)
	if err != nil {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("Invalid window end time: %s", windowEnd),
		})
		return result
	}

	for _, block := range schedule.Blocks {
		start, err1 := utils.ParseTimeToMinutes(block.Start)
		end, err2 := utils.ParseTimeToMinutes(block.End)
		if err1 != nil || err2 != nil {
			continue // reported by ValidateSchedule
		}
		if !utils.Contains(ws, we, start, end) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictOutsideWakingWindow,
				Description: fmt.Sprintf("%s: block %q (%s-%s) falls outside %s-%s",
					schedule.Date, block.Title, block.Start, block.End, windowStart, windowEnd),
				Date:      schedule.Date,
				Items:     []string{block.Title},
				TimeRange: fmt.Sprintf("%s-%s", block.Start, block.End),
			})
		}
	}

	return result
}
