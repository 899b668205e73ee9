package models

// DashboardWindow bounds a derived, read-only view over journal and habits
// aggregates. It is never persisted; the backend recomputes it per request.
type DashboardWindow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MoodPoint is one sparse per-day mood average as reported by the backend.
// UserID is empty on single-subject dashboards.
type MoodPoint struct {
	UserID  string  `json:"userId,omitempty"`
	Date    string  `json:"date"`
	AvgMood float64 `json:"avgMood"`
}

// EmotionCount is one sparse per-emotion tally as reported by the backend.
type EmotionCount struct {
	UserID  string `json:"userId,omitempty"`
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// ClientRef identifies one linked client on a counsellor dashboard.
type ClientRef struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Dashboard is the raw window payload the backend returns; the dashboard
// package merges it into dense chartable series.
type Dashboard struct {
	Window   DashboardWindow `json:"window"`
	Mood     []MoodPoint     `json:"mood"`
	Emotions []EmotionCount  `json:"emotions"`
	Clients  []ClientRef     `json:"clients,omitempty"`
}
