package models

type SkipReason string

const (
	SkipNoTime      SkipReason = "no_time"
	SkipTooTired    SkipReason = "too_tired"
	SkipNotRelevant SkipReason = "not_relevant"
	SkipOther       SkipReason = "other"
)

// BlockFeedback is the user's after-the-fact report for one block. Keyed by
// (schedule date, block start); resubmission overwrites the earlier report.
type BlockFeedback struct {
	ScheduleDate     string     `json:"schedule_date"`    // YYYY-MM-DD format
	BlockStartTime   string     `json:"block_start_time"` // HH:MM format
	Completed        bool       `json:"completed"`
	Skipped          bool       `json:"skipped"`
	ActualTimeSpent  *int       `json:"actual_time_spent,omitempty"` // minutes
	SkipReason       SkipReason `json:"skip_reason,omitempty"`
	EnergyRating     int        `json:"energy_rating,omitempty"`     // 1-5
	DifficultyRating int        `json:"difficulty_rating,omitempty"` // 1-5
	SubmittedAt      string     `json:"submitted_at"` // RFC3339 timestamp
}
