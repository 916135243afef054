package models

type BlockType string

const (
	BlockStudy    BlockType = "study"
	BlockClass    BlockType = "class"
	BlockBreak    BlockType = "break"
	BlockMeal     BlockType = "meal"
	BlockPersonal BlockType = "personal"
)

type BlockSource string

const (
	SourceAIGenerated BlockSource = "ai_generated"
	SourceManual      BlockSource = "manual"
)

// TimeBlock is a scheduled, titled interval in a day plan. Optional fields
// are explicit struct fields so interval invariants stay checkable by the
// type system rather than by convention.
type TimeBlock struct {
	Start       string      `json:"start"` // HH:MM format
	End         string      `json:"end"`   // HH:MM format
	Title       string      `json:"title"`
	Type        BlockType   `json:"type"`
	Description string      `json:"description,omitempty"`
	CourseCode  string      `json:"course_code,omitempty"`
	Priority    int         `json:"priority,omitempty"`
	Source      BlockSource `json:"source"`
}

// DailySchedule is an ordered, non-overlapping sequence of blocks for one
// date. The sort and non-overlap invariants must hold after every mutation;
// use the schedule package's operations rather than editing Blocks directly.
type DailySchedule struct {
	Date        string      `json:"date"` // YYYY-MM-DD format
	Blocks      []TimeBlock `json:"time_blocks"`
	AIReasoning string      `json:"ai_reasoning,omitempty"`
	Source      BlockSource `json:"source"`
	DeletedAt   *string     `json:"deleted_at,omitempty"` // RFC3339 timestamp
}
