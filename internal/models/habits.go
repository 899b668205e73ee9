package models

// HabitsRecord is one day's habit log for a user. The backend intends one
// record per user per Singapore calendar day. Archiving is a soft delete:
// archived records disappear from lists but are not physically removed.
// Timestamps are kept as raw server strings; sgtime owns their interpretation.
type HabitsRecord struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	SleepHours  float64 `json:"sleepHours"`
	WaterLitres float64 `json:"waterLitres"`
	WorkHours   float64 `json:"workHours"`
	CreatedAt   string  `json:"createdAt"`
	LastSavedAt string  `json:"lastSavedAt"`
}

// HabitsInput is the payload for submitting or editing a habits record.
type HabitsInput struct {
	UserID      string  `json:"userId"`
	SleepHours  float64 `json:"sleepHours"`
	WaterLitres float64 `json:"waterLitres"`
	WorkHours   float64 `json:"workHours"`
}
