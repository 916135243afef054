package constants

const (
	AppName            = "daybook"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/daybook/daybook.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Default preference values used when the user has never saved preferences.
	DefaultWakeTime  = "06:00"
	DefaultSleepTime = "22:00"

	// MinSlotDurationMin is the shortest gap worth surfacing as a free slot.
	// Gaps below this are dropped, not merged into neighbors.
	MinSlotDurationMin = 30

	// DefaultBlockMin is the duration of a block created in an empty region.
	DefaultBlockMin = 60

	// DeadlineWindowDays bounds which deadlines count toward workload pressure.
	DeadlineWindowDays = 7

	// DriftBadgeThresholdMin is the cumulative drift (minutes) past which
	// downstream blocks are considered materially affected.
	DriftBadgeThresholdMin = 10

	// DriftRescheduleThresholdMin is the cumulative drift (minutes) past which
	// the remainder of the day should be replanned.
	DriftRescheduleThresholdMin = 30

	// Session recommendation bounds.
	MaxSessionCount       = 5
	UrgentDeadlineCount   = 2
	DeadlinePressureUnit  = 10
	DeadlinePressureCap   = 30
	CommitmentRatioWeight = 70
)
