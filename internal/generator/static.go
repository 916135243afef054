package generator

import (
	"context"

	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/utils"
)

// Static is an offline generator that fills available slots with plain
// focus sessions. It backs tests and the --offline serve mode; production
// content comes from the HTTP client.
type Static struct{}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) GenerateSchedule(_ context.Context, req GenerateRequest) (GenerateResponse, error) {
	plan := req.Analysis.RecommendedSession
	var blocks []models.TimeBlock

	placed := 0
	for _, slot := range req.Analysis.Slots {
		if placed >= plan.Count {
			break
		}
		if slot.Kind != models.SlotAvailable || slot.DurationMinutes < plan.DurationMinutes {
			continue
		}
		start, err := utils.ParseTimeToMinutes(slot.Start)
		if err != nil {
			continue
		}
		blocks = append(blocks, models.TimeBlock{
			Start:  slot.Start,
			End:    utils.FormatMinutes(start + plan.DurationMinutes),
			Title:  "Focus session",
			Type:   models.BlockStudy,
			Source: models.SourceAIGenerated,
		})
		placed++
	}

	return GenerateResponse{
		Blocks:    blocks,
		Reasoning: "Focus sessions placed into the first available slots.",
	}, nil
}

func (s *Static) ReplanRemainder(_ context.Context, req ReplanRequest) ([]models.TimeBlock, error) {
	// Shift the remaining blocks forward by the drift, clipping at sleep
	// time and dropping whatever no longer fits.
	now, err := utils.ParseTimeToMinutes(req.CurrentTime)
	if err != nil {
		return nil, err
	}
	sleep, err := utils.ParseTimeToMinutes(req.SleepTime)
	if err != nil {
		return nil, err
	}

	cursor := now
	var blocks []models.TimeBlock
	for _, b := range req.RemainingBlocks {
		start, err1 := utils.ParseTimeToMinutes(b.Start)
		end, err2 := utils.ParseTimeToMinutes(b.End)
		if err1 != nil || err2 != nil {
			continue
		}
		duration := end - start
		if start < cursor {
			start = cursor
		}
		if start+duration > sleep {
			duration = sleep - start
		}
		if duration <= 0 {
			continue
		}
		shifted := b
		shifted.Start = utils.FormatMinutes(start)
		shifted.End = utils.FormatMinutes(start + duration)
		blocks = append(blocks, shifted)
		cursor = start + duration
	}
	return blocks, nil
}
