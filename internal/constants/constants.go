package constants

const (
	AppName = "moodlit"
	Version = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DefaultDashboardDays is the window size dashboards open with.
	DefaultDashboardDays = 7
)
