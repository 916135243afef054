package models

type CommitmentType string

const (
	CommitmentClass      CommitmentType = "class"
	CommitmentExam       CommitmentType = "exam"
	CommitmentAssignment CommitmentType = "assignment"
	CommitmentPersonal   CommitmentType = "personal"
)

// Commitment is a fixed, externally imposed interval (class, exam, meeting)
// that the engine schedules around but never moves.
type Commitment struct {
	ID       string         `json:"id"`
	Date     string         `json:"date"`  // YYYY-MM-DD format
	Start    string         `json:"start"` // HH:MM format
	End      string         `json:"end"`   // HH:MM format
	Title    string         `json:"title"`
	Type     CommitmentType `json:"type"`
	CourseID string         `json:"course_id,omitempty"`
}

type DeadlineType string

const (
	DeadlineAssignment DeadlineType = "assignment"
	DeadlineExam       DeadlineType = "exam"
	DeadlineProject    DeadlineType = "project"
)

// Deadline is a point in time, not an interval. It only feeds workload
// pressure scoring.
type Deadline struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Type     DeadlineType `json:"type"`
	DueDate  string       `json:"due_date"` // YYYY-MM-DD format
	CourseID string       `json:"course_id,omitempty"`
}
