package models

type SlotKind string

const (
	SlotAvailable SlotKind = "available"
	SlotBuffer    SlotKind = "buffer"
	SlotMeal      SlotKind = "meal"
)

type EnergyBand string

const (
	EnergyHigh   EnergyBand = "high"
	EnergyMedium EnergyBand = "medium"
	EnergyLow    EnergyBand = "low"
)

// TimeSlot is a derived free interval between commitments. Slots are
// recomputed on demand and never persisted or user-edited.
type TimeSlot struct {
	Start           string     `json:"start"` // HH:MM format
	End             string     `json:"end"`   // HH:MM format
	DurationMinutes int        `json:"duration_minutes"`
	Kind            SlotKind   `json:"kind"`
	EnergyLevel     EnergyBand `json:"energy_level"`
}

type Intensity string

const (
	IntensityLight      Intensity = "light"
	IntensityModerate   Intensity = "moderate"
	IntensityHeavy      Intensity = "heavy"
	IntensityOverloaded Intensity = "overloaded"
)

// SessionPlan is the recommended number and length of focused work sessions.
type SessionPlan struct {
	Count           int `json:"count"`
	DurationMinutes int `json:"duration_minutes"`
}

// DayAnalysis bundles everything the slot finder, workload scorer, and
// session recommender derive for one date.
type DayAnalysis struct {
	Date               string      `json:"date"` // YYYY-MM-DD format
	Slots              []TimeSlot  `json:"slots"`
	CommitmentMinutes  int         `json:"commitment_minutes"`
	AvailableMinutes   int         `json:"available_minutes"`
	UpcomingDeadlines  int         `json:"upcoming_deadlines"`
	Intensity          Intensity   `json:"intensity"`
	RecommendedSession SessionPlan `json:"recommended_sessions"`
}
