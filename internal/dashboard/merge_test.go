package dashboard

import (
	"testing"
	"time"

	"github.com/wxlim/moodlit/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMergeMoodSeries_GapFilling(t *testing.T) {
	rows := MergeMoodSeries(day("2024-01-01"), day("2024-01-03"), []models.MoodPoint{
		{Date: "2024-01-02", AvgMood: 3.456},
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Date != "2024-01-01" || rows[0].AvgMood != nil {
		t.Errorf("row 0: expected nil mood on 2024-01-01, got %+v", rows[0])
	}
	if rows[1].Date != "2024-01-02" || rows[1].AvgMood == nil || *rows[1].AvgMood != 3.46 {
		t.Errorf("row 1: expected mood 3.46 on 2024-01-02, got %+v", rows[1])
	}
	if rows[2].Date != "2024-01-03" || rows[2].AvgMood != nil {
		t.Errorf("row 2: expected nil mood on 2024-01-03, got %+v", rows[2])
	}
}

func TestMergeMoodSeries_RowCountMatchesWindow(t *testing.T) {
	windows := []struct {
		from, to string
		want     int
	}{
		{"2024-01-01", "2024-01-01", 1},
		{"2024-01-01", "2024-01-31", 31},
		{"2024-02-27", "2024-03-02", 5}, // leap year crossing
	}
	for _, w := range windows {
		rows := MergeMoodSeries(day(w.from), day(w.to), nil)
		if len(rows) != w.want {
			t.Errorf("window %s..%s: expected %d rows, got %d", w.from, w.to, w.want, len(rows))
		}
	}
}

func TestMergeMoodSeriesMulti_IndependentNilFilling(t *testing.T) {
	subjects := []string{"u1", "u2"}
	rows := MergeMoodSeriesMulti(day("2024-01-01"), day("2024-01-02"), subjects, []models.MoodPoint{
		{UserID: "u1", Date: "2024-01-01", AvgMood: 4},
		{UserID: "u2", Date: "2024-01-02", AvgMood: 2.125},
	})

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if v := rows[0].BySubject["u1"]; v == nil || *v != 4 {
		t.Errorf("expected u1=4 on day 1, got %v", v)
	}
	if v := rows[0].BySubject["u2"]; v != nil {
		t.Errorf("expected u2 nil on day 1, got %v", *v)
	}
	if v := rows[1].BySubject["u2"]; v == nil || *v != 2.13 {
		t.Errorf("expected u2=2.13 on day 2, got %v", v)
	}
}

func TestMergeEmotionTally_EmptyInput(t *testing.T) {
	rows := MergeEmotionTally(nil)

	if len(rows) != len(Vocabulary) {
		t.Fatalf("expected %d rows, got %d", len(Vocabulary), len(rows))
	}
	for i, row := range rows {
		if row.Emotion != Vocabulary[i] {
			t.Errorf("row %d: expected %q, got %q", i, Vocabulary[i], row.Emotion)
		}
		if row.Count != 0 {
			t.Errorf("row %d: expected count 0, got %d", i, row.Count)
		}
	}
	if RadarMax(rows) != 1 {
		t.Errorf("expected radar max to floor at 1, got %d", RadarMax(rows))
	}
}

func TestMergeEmotionTally_CaseInsensitiveInVocabularyOrder(t *testing.T) {
	rows := MergeEmotionTally([]models.EmotionCount{
		{Emotion: "Happy", Count: 3},
		{Emotion: "HAPPY", Count: 2},
		{Emotion: "angry", Count: 1},
		{Emotion: "boredom", Count: 9}, // not in the vocabulary, dropped
	})

	if len(rows) != len(Vocabulary) {
		t.Fatalf("expected %d rows, got %d", len(Vocabulary), len(rows))
	}
	got := make(map[string]int)
	for _, r := range rows {
		got[r.Emotion] = r.Count
	}
	if got["happy"] != 5 {
		t.Errorf("expected happy=5, got %d", got["happy"])
	}
	if got["angry"] != 1 {
		t.Errorf("expected angry=1, got %d", got["angry"])
	}
	if RadarMax(rows) != 5 {
		t.Errorf("expected radar max 5, got %d", RadarMax(rows))
	}
}

func TestMergeEmotionTallyMulti(t *testing.T) {
	subjects := []string{"u1", "u2"}
	rows := MergeEmotionTallyMulti(subjects, []models.EmotionCount{
		{UserID: "u1", Emotion: "sad", Count: 2},
		{UserID: "u2", Emotion: "Sad", Count: 7},
	})

	if len(rows) != len(Vocabulary) {
		t.Fatalf("expected %d rows, got %d", len(Vocabulary), len(rows))
	}
	for _, row := range rows {
		if len(row.BySubject) != 2 {
			t.Fatalf("expected a column per subject, got %d", len(row.BySubject))
		}
		if row.Emotion == "sad" {
			if row.BySubject["u1"] != 2 || row.BySubject["u2"] != 7 {
				t.Errorf("sad row: got %+v", row.BySubject)
			}
		}
	}
	if RadarMaxMulti(rows) != 7 {
		t.Errorf("expected radar max 7, got %d", RadarMaxMulti(rows))
	}
}
