package generator

import (
	"context"

	"github.com/lbradley/daybook/internal/models"
)

// GenerateRequest carries everything the external content generator needs to
// fill a day's free slots.
type GenerateRequest struct {
	Date        string             `json:"date"` // YYYY-MM-DD format
	Preferences models.Preferences `json:"preferences"`
	Commitments []models.Commitment `json:"commitments"`
	Analysis    models.DayAnalysis  `json:"analysis"`
}

// GenerateResponse is the generator's proposed schedule content.
type GenerateResponse struct {
	Blocks    []models.TimeBlock `json:"time_blocks"`
	Reasoning string             `json:"reasoning,omitempty"`
}

// ReplanRequest asks the generator to rework the remainder of a drifted day.
type ReplanRequest struct {
	ScheduleDate    string             `json:"schedule_date"` // YYYY-MM-DD format
	CurrentTime     string             `json:"current_time"`  // HH:MM format
	SleepTime       string             `json:"sleep_time"`    // HH:MM format
	DriftMinutes    int                `json:"drift_minutes"`
	RemainingBlocks []models.TimeBlock `json:"remaining_blocks"`
}

// Generator produces schedule content. The engine treats its output as
// untrusted: interval legality is validated downstream before anything is
// persisted.
type Generator interface {
	GenerateSchedule(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	ReplanRemainder(ctx context.Context, req ReplanRequest) ([]models.TimeBlock, error)
}
