package models

type DriftChoice string

const (
	// DriftChoiceRescheduled means the generator's replanned remainder was
	// accepted. Resets the day's cumulative drift counter.
	DriftChoiceRescheduled DriftChoice = "rescheduled"
	// DriftChoiceKeptOriginal means the user acknowledged the drift but kept
	// the plan. The event closes; its minutes keep counting for the day.
	DriftChoiceKeptOriginal DriftChoice = "kept_original"
)

// DriftEvent records one planned-vs-actual divergence. Events are append-only
// for audit purposes; resolution is the only mutation.
type DriftEvent struct {
	ID                  string      `json:"id"`
	ScheduleDate        string      `json:"schedule_date"`    // YYYY-MM-DD format
	BlockStartTime      string      `json:"block_start_time"` // HH:MM format
	BlockTitle          string      `json:"block_title"`
	PlannedDuration     int         `json:"planned_duration"` // minutes
	ActualDuration      int         `json:"actual_duration"`  // minutes
	DriftMinutes        int         `json:"drift_minutes"`
	CumulativeDrift     int         `json:"cumulative_drift"`
	AffectedBlocksCount int         `json:"affected_blocks_count"`
	Resolved            bool        `json:"resolved"`
	UserChoice          DriftChoice `json:"user_choice,omitempty"`
	CreatedAt           string      `json:"created_at"`            // RFC3339 timestamp
	ResolvedAt          *string     `json:"resolved_at,omitempty"` // RFC3339 timestamp
}
