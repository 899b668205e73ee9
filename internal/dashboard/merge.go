// Package dashboard turns the backend's sparse per-day and per-emotion
// aggregates into dense, gap-filled series suitable for charting. Missing
// days are nil, never zero or carried forward; the emotion tally always has
// exactly one row per vocabulary category.
package dashboard

import (
	"math"
	"strings"
	"time"

	"github.com/wxlim/moodlit/internal/models"
)

// Vocabulary is the fixed, ordered emotion vocabulary the radar chart is
// built over. Matching against it is case-insensitive.
var Vocabulary = []string{
	"angry", "sad", "anxious", "happy", "curious", "confused", "surprised", "neutral",
}

// DayFormat is the calendar-day key used in series rows.
const DayFormat = "2006-01-02"

// MoodRow is one calendar day in a single-subject mood series. AvgMood is
// nil when no record exists for that day.
type MoodRow struct {
	Date    string
	AvgMood *float64
}

// MultiMoodRow carries one numeric-or-nil column per subject.
type MultiMoodRow struct {
	Date      string
	BySubject map[string]*float64
}

// EmotionRow is one vocabulary category's tally.
type EmotionRow struct {
	Emotion string
	Count   int
}

// MultiEmotionRow carries one tally column per subject.
type MultiEmotionRow struct {
	Emotion   string
	BySubject map[string]int
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// days returns every calendar day from from to to inclusive. An inverted
// window yields just the from day.
func days(from, to time.Time) []string {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	out := []string{f.Format(DayFormat)}
	for d := f.AddDate(0, 0, 1); !d.After(t); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DayFormat))
	}
	return out
}

// MergeMoodSeries produces one row per calendar day in [from, to], in
// ascending order, with AvgMood rounded to 2 decimal places or nil where no
// record exists. Row count is always days(from,to)+1.
func MergeMoodSeries(from, to time.Time, points []models.MoodPoint) []MoodRow {
	byDay := make(map[string]float64, len(points))
	for _, p := range points {
		byDay[p.Date] = p.AvgMood
	}

	var rows []MoodRow
	for _, day := range days(from, to) {
		row := MoodRow{Date: day}
		if v, ok := byDay[day]; ok {
			r := round2(v)
			row.AvgMood = &r
		}
		rows = append(rows, row)
	}
	return rows
}

// MergeMoodSeriesMulti is the per-client variant: each row carries one
// independently nil-filled column per subject.
func MergeMoodSeriesMulti(from, to time.Time, subjects []string, points []models.MoodPoint) []MultiMoodRow {
	type cell struct{ subject, day string }
	byCell := make(map[cell]float64, len(points))
	for _, p := range points {
		byCell[cell{p.UserID, p.Date}] = p.AvgMood
	}

	var rows []MultiMoodRow
	for _, day := range days(from, to) {
		row := MultiMoodRow{Date: day, BySubject: make(map[string]*float64, len(subjects))}
		for _, s := range subjects {
			if v, ok := byCell[cell{s, day}]; ok {
				r := round2(v)
				row.BySubject[s] = &r
			} else {
				row.BySubject[s] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// MergeEmotionTally produces exactly one row per vocabulary category, in
// vocabulary order, defaulting absent categories to 0.
func MergeEmotionTally(counts []models.EmotionCount) []EmotionRow {
	byEmotion := make(map[string]int, len(counts))
	for _, c := range counts {
		byEmotion[strings.ToLower(c.Emotion)] += c.Count
	}

	rows := make([]EmotionRow, 0, len(Vocabulary))
	for _, e := range Vocabulary {
		rows = append(rows, EmotionRow{Emotion: e, Count: byEmotion[e]})
	}
	return rows
}

// MergeEmotionTallyMulti is the per-client variant of MergeEmotionTally.
func MergeEmotionTallyMulti(subjects []string, counts []models.EmotionCount) []MultiEmotionRow {
	type cell struct{ subject, emotion string }
	byCell := make(map[cell]int, len(counts))
	for _, c := range counts {
		byCell[cell{c.UserID, strings.ToLower(c.Emotion)}] += c.Count
	}

	rows := make([]MultiEmotionRow, 0, len(Vocabulary))
	for _, e := range Vocabulary {
		row := MultiEmotionRow{Emotion: e, BySubject: make(map[string]int, len(subjects))}
		for _, s := range subjects {
			row.BySubject[s] = byCell[cell{s, e}]
		}
		rows = append(rows, row)
	}
	return rows
}

// RadarMax returns the chart's upper bound: the largest count across all
// rows and subjects, floored at 1 so the axis never degenerates.
func RadarMax(rows []EmotionRow) int {
	max := 1
	for _, r := range rows {
		if r.Count > max {
			max = r.Count
		}
	}
	return max
}

// RadarMaxMulti is RadarMax over the per-subject variant.
func RadarMaxMulti(rows []MultiEmotionRow) int {
	max := 1
	for _, r := range rows {
		for _, c := range r.BySubject {
			if c > max {
				max = c
			}
		}
	}
	return max
}
