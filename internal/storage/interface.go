package storage

import "github.com/lbradley/daybook/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Preferences
	GetPreferences() (models.Preferences, error)
	SavePreferences(models.Preferences) error

	// Commitments
	AddCommitment(models.Commitment) error
	GetCommitment(id string) (models.Commitment, error)
	GetCommitmentsForDate(date string) ([]models.Commitment, error)
	UpdateCommitment(models.Commitment) error
	DeleteCommitment(id string) error

	// Deadlines
	AddDeadline(models.Deadline) error
	GetDeadlines() ([]models.Deadline, error)
	DeleteDeadline(id string) error

	// Schedules
	SaveSchedule(models.DailySchedule) error
	GetSchedule(date string) (models.DailySchedule, error)
	DeleteSchedule(date string) error

	// Feedback. SaveFeedback has upsert semantics keyed by
	// (schedule date, block start); the last write wins.
	SaveFeedback(models.BlockFeedback) error
	GetFeedback(date, blockStartTime string) (models.BlockFeedback, error)
	GetFeedbackForDate(date string) ([]models.BlockFeedback, error)

	// Drift events. Events are never deleted; resolution is the only
	// mutation after creation.
	AddDriftEvent(models.DriftEvent) error
	UpdateDriftEvent(models.DriftEvent) error
	GetDriftEvent(id string) (models.DriftEvent, error)
	GetDriftEventsForDate(date string) ([]models.DriftEvent, error)
	GetUnresolvedDriftEvents(date string) ([]models.DriftEvent, error)

	// Utils
	GetConfigPath() string
}
