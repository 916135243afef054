package schedule

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lbradley/daybook/internal/constants"
	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/utils"
	"github.com/lbradley/daybook/internal/validation"
)

var (
	// ErrInvalidInterval is returned when a block's end does not follow its start.
	ErrInvalidInterval = errors.New("invalid block interval")
	// ErrOverlap is returned when a mutation would make two blocks overlap.
	ErrOverlap = errors.New("block overlaps an existing block")
	// ErrBlockNotFound is returned when no block starts at the given time.
	ErrBlockNotFound = errors.New("block not found")
	// ErrNoRoom is returned when a gap is too small to hold a new block.
	ErrNoRoom = errors.New("no room for a new block")
)

// BlockContent is the user-editable portion of a block. Interval boundaries
// are structural and move only through Insert/Delete, never through content
// edits or reorders.
type BlockContent struct {
	Title       string             `json:"title"`
	Type        models.BlockType   `json:"type"`
	Description string             `json:"description,omitempty"`
	CourseCode  string             `json:"course_code,omitempty"`
	Priority    int                `json:"priority,omitempty"`
	Source      models.BlockSource `json:"source"`
}

var validator = validation.New()

// Insert adds a block to the schedule, keeping the sort and non-overlap
// invariants. Violations are rejected, never auto-corrected.
func Insert(s models.DailySchedule, block models.TimeBlock) (models.DailySchedule, error) {
	if r := validator.ValidateBlock(block); r.HasConflicts() {
		return s, fmt.Errorf("%w: %s", ErrInvalidInterval, r.Conflicts[0].Description)
	}
	for _, existing := range s.Blocks {
		if utils.TimesOverlap(block.Start, block.End, existing.Start, existing.End) {
			return s, fmt.Errorf("%w: %s-%s conflicts with %q (%s-%s)",
				ErrOverlap, block.Start, block.End, existing.Title, existing.Start, existing.End)
		}
	}

	s.Blocks = append(s.Blocks, block)
	sortBlocks(s.Blocks)
	return s, nil
}

// Delete removes the block starting at startTime.
func Delete(s models.DailySchedule, startTime string) (models.DailySchedule, error) {
	idx := indexOf(s.Blocks, startTime)
	if idx < 0 {
		return s, fmt.Errorf("%w: no block starts at %s", ErrBlockNotFound, startTime)
	}
	s.Blocks = append(s.Blocks[:idx:idx], s.Blocks[idx+1:]...)
	return s, nil
}

// UpdateContent replaces the content of the block starting at startTime.
// The block's interval is untouched.
func UpdateContent(s models.DailySchedule, startTime string, content BlockContent) (models.DailySchedule, error) {
	idx := indexOf(s.Blocks, startTime)
	if idx < 0 {
		return s, fmt.Errorf("%w: no block starts at %s", ErrBlockNotFound, startTime)
	}

	blocks := make([]models.TimeBlock, len(s.Blocks))
	copy(blocks, s.Blocks)
	applyContent(&blocks[idx], content)
	s.Blocks = blocks
	return s, nil
}

// Reorder implements drag-reorder: the block's content moves from position
// from to position to, and every block is then reassigned to the original
// time slots in order. Dragging swaps activity content between fixed time
// slots; it never shifts a time boundary.
func Reorder(s models.DailySchedule, from, to int) (models.DailySchedule, error) {
	n := len(s.Blocks)
	if from < 0 || from >= n {
		return s, fmt.Errorf("%w: position %d out of range", ErrBlockNotFound, from)
	}
	if to < 0 || to >= n {
		return s, fmt.Errorf("%w: position %d out of range", ErrBlockNotFound, to)
	}
	if from == to {
		return s, nil
	}

	contents := make([]BlockContent, 0, n)
	for _, b := range s.Blocks {
		contents = append(contents, contentOf(b))
	}

	moved := contents[from]
	contents = append(contents[:from], contents[from+1:]...)
	rest := make([]BlockContent, 0, n)
	rest = append(rest, contents[:to]...)
	rest = append(rest, moved)
	rest = append(rest, contents[to:]...)

	blocks := make([]models.TimeBlock, n)
	copy(blocks, s.Blocks)
	for i := range blocks {
		applyContent(&blocks[i], rest[i])
	}
	s.Blocks = blocks
	return s, nil
}

// CreateInGroup creates a default block at the start of the time-of-day
// group [groupStart, groupEnd), sized one hour or down to whatever room the
// group's first block leaves, and inserts it ahead of that block.
func CreateInGroup(s models.DailySchedule, groupStart, groupEnd string, content BlockContent) (models.DailySchedule, error) {
	gs, err := utils.ParseTimeToMinutes(groupStart)
	if err != nil {
		return s, fmt.Errorf("%w: invalid group start %s", ErrInvalidInterval, groupStart)
	}
	ge, err := utils.ParseTimeToMinutes(groupEnd)
	if err != nil {
		return s, fmt.Errorf("%w: invalid group end %s", ErrInvalidInterval, groupEnd)
	}
	if gs >= ge {
		return s, fmt.Errorf("%w: group start %s must precede group end %s", ErrInvalidInterval, groupStart, groupEnd)
	}

	// Bound the new block by the group's first existing block.
	limit := ge
	for _, b := range s.Blocks {
		bs, err := utils.ParseTimeToMinutes(b.Start)
		if err != nil {
			continue
		}
		if bs >= gs && bs < limit {
			limit = bs
		}
	}

	end := gs + constants.DefaultBlockMin
	if end > limit {
		end = limit
	}
	if end <= gs {
		return s, fmt.Errorf("%w: group starting at %s is already occupied", ErrNoRoom, groupStart)
	}

	block := models.TimeBlock{
		Start:       utils.FormatMinutes(gs),
		End:         utils.FormatMinutes(end),
		Title:       content.Title,
		Type:        content.Type,
		Description: content.Description,
		CourseCode:  content.CourseCode,
		Priority:    content.Priority,
		Source:      content.Source,
	}
	return Insert(s, block)
}

// RemainingAfter returns the blocks that start at or after currentTime,
// preserving order.
func RemainingAfter(s models.DailySchedule, currentTime string) []models.TimeBlock {
	now, err := utils.ParseTimeToMinutes(currentTime)
	if err != nil {
		return nil
	}
	var remaining []models.TimeBlock
	for _, b := range s.Blocks {
		bs, err := utils.ParseTimeToMinutes(b.Start)
		if err != nil {
			continue
		}
		if bs >= now {
			remaining = append(remaining, b)
		}
	}
	return remaining
}

// FindBlock returns the block starting at startTime.
func FindBlock(s models.DailySchedule, startTime string) (models.TimeBlock, error) {
	idx := indexOf(s.Blocks, startTime)
	if idx < 0 {
		return models.TimeBlock{}, fmt.Errorf("%w: no block starts at %s", ErrBlockNotFound, startTime)
	}
	return s.Blocks[idx], nil
}

func sortBlocks(blocks []models.TimeBlock) {
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Start < blocks[j].Start
	})
}

func indexOf(blocks []models.TimeBlock, startTime string) int {
	for i, b := range blocks {
		if b.Start == startTime {
			return i
		}
	}
	return -1
}

func contentOf(b models.TimeBlock) BlockContent {
	return BlockContent{
		Title:       b.Title,
		Type:        b.Type,
		Description: b.Description,
		CourseCode:  b.CourseCode,
		Priority:    b.Priority,
		Source:      b.Source,
	}
}

func applyContent(b *models.TimeBlock, c BlockContent) {
	b.Title = c.Title
	b.Type = c.Type
	b.Description = c.Description
	b.CourseCode = c.CourseCode
	b.Priority = c.Priority
	b.Source = c.Source
}
