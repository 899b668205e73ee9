package models

// Mood is the closed ordinal mood scale attached to a journal entry.
type Mood int

const (
	MoodVeryBad  Mood = 1
	MoodBad      Mood = 2
	MoodNeutral  Mood = 3
	MoodGood     Mood = 4
	MoodVeryGood Mood = 5
)

// Label returns the human-readable name for a mood value, or "Unknown"
// for anything outside the 1..5 scale.
func (m Mood) Label() string {
	switch m {
	case MoodVeryBad:
		return "Very Bad"
	case MoodBad:
		return "Bad"
	case MoodNeutral:
		return "Neutral"
	case MoodGood:
		return "Good"
	case MoodVeryGood:
		return "Very Good"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is on the 1..5 scale.
func (m Mood) Valid() bool {
	return m >= MoodVeryBad && m <= MoodVeryGood
}

// JournalEntry is a single journal entry. Emotions are produced by the
// external classifier at submit time and stored immutably with the entry;
// entries are never edited after creation, only archived.
type JournalEntry struct {
	EntryID    string   `json:"entryId"`
	UserID     string   `json:"userId"`
	Mood       Mood     `json:"mood"`
	EntryTitle string   `json:"entryTitle"`
	EntryText  string   `json:"entryText"`
	Emotions   []string `json:"emotions"`
	CreatedAt  string   `json:"createdAt"`
}

// JournalInput is the payload for submitting a new journal entry.
type JournalInput struct {
	UserID     string   `json:"userId"`
	Mood       Mood     `json:"mood"`
	EntryTitle string   `json:"entryTitle"`
	EntryText  string   `json:"entryText"`
	Emotions   []string `json:"emotions"`
}
