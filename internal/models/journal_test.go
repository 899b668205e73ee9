package models

import "testing"

func TestMoodLabel(t *testing.T) {
	tests := []struct {
		mood Mood
		want string
	}{
		{MoodVeryBad, "Very Bad"},
		{MoodBad, "Bad"},
		{MoodNeutral, "Neutral"},
		{MoodGood, "Good"},
		{MoodVeryGood, "Very Good"},
		{Mood(0), "Unknown"},
		{Mood(6), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.mood.Label(); got != tt.want {
			t.Errorf("Mood(%d).Label() = %q, want %q", tt.mood, got, tt.want)
		}
	}
}
