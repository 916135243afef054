package models

// Preferences are owned by the user and read-only to the engine.
type Preferences struct {
	WakeTime              string `json:"wake_time"`  // HH:MM format
	SleepTime             string `json:"sleep_time"` // HH:MM format
	TargetWorkHours       int    `json:"target_work_hours"`
	TargetFreeHours       int    `json:"target_free_hours"`
	TargetOtherHours      int    `json:"target_other_hours"`
	ConsecutiveStudyLimit int    `json:"consecutive_study_limit"` // minutes
	Timezone              string `json:"timezone"`                // IANA name or "Local"
}
