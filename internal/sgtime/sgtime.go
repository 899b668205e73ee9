// Package sgtime normalizes backend timestamps into Singapore time (UTC+8)
// for display and same-day comparisons.
//
// The backend sometimes serializes UTC wall-clock times without a zone
// marker. Those naive strings are parsed as UTC and shifted forward exactly
// eight hours before formatting. This is a compensation for that
// serialization defect, not a timezone conversion; if the backend starts
// emitting proper zone markers the shift must be removed, so it lives in a
// single place here.
package sgtime

import (
	"fmt"
	"strings"
	"time"
)

// Placeholder is rendered wherever a timestamp could not be parsed.
const Placeholder = "—"

// SG is the fixed display zone used throughout the app.
var SG = time.FixedZone("SGT", 8*60*60)

const naiveShift = 8 * time.Hour

// naive layouts the backend has been observed to emit (no zone marker).
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a server timestamp into an instant in SG time.
// Accepted inputs: time.Time values (used as-is), zoned ISO strings (no
// shift) and naive ISO-like strings (parsed as UTC, shifted +8h). The
// second return value is false when the input cannot be interpreted;
// Normalize never panics.
func Normalize(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.In(SG), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return t.In(SG), true
	case string:
		return normalizeString(t)
	default:
		return time.Time{}, false
	}
}

func normalizeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.In(SG), true
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.In(SG), true
	}

	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.Add(naiveShift).In(SG), true
		}
	}
	return time.Time{}, false
}

// FormatDateTime renders a timestamp like "12 Aug 2025, 3:04 PM".
func FormatDateTime(v any) string {
	ts, ok := Normalize(v)
	if !ok {
		return Placeholder
	}
	return ts.Format("2 Jan 2006, 3:04 PM")
}

// FormatDate renders a timestamp like "12 Aug 2025".
func FormatDate(v any) string {
	ts, ok := Normalize(v)
	if !ok {
		return Placeholder
	}
	return ts.Format("2 Jan 2006")
}

// FormatOrdinal renders a timestamp like "12th August 2025".
func FormatOrdinal(v any) string {
	ts, ok := Normalize(v)
	if !ok {
		return Placeholder
	}
	return fmt.Sprintf("%d%s %s %d", ts.Day(), ordinalSuffix(ts.Day()), ts.Month(), ts.Year())
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// DayKey returns the canonical "YYYY-M-D" key for same-day comparisons in
// SG time, or "" when the input cannot be interpreted.
func DayKey(v any) string {
	ts, ok := Normalize(v)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d-%d-%d", ts.Year(), int(ts.Month()), ts.Day())
}

// SameDay reports whether a and b fall on the same SG calendar day.
// It is DayKey equality with the empty key matching nothing, so it is
// symmetric and two unparseable inputs never compare equal.
func SameDay(a, b any) bool {
	k := DayKey(a)
	return k != "" && k == DayKey(b)
}

// TodayKey returns the DayKey for the current instant. now is injectable
// for tests; pass nil to use time.Now.
func TodayKey(now func() time.Time) string {
	if now == nil {
		now = time.Now
	}
	return DayKey(now())
}
