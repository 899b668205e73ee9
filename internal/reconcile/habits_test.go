package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/sgtime"
)

type fakeMarkers struct {
	ts  string
	err error
}

func (f *fakeMarkers) HabitsMarker() (string, error) { return f.ts, f.err }

var testNow = func() time.Time {
	return time.Date(2024, 6, 7, 15, 0, 0, 0, sgtime.SG)
}

func todayRecord() models.HabitsRecord {
	return models.HabitsRecord{ID: "h1", UserID: "u1", CreatedAt: "2024-06-07T09:00:00+08:00"}
}

func yesterdayRecord() models.HabitsRecord {
	return models.HabitsRecord{ID: "h0", UserID: "u1", CreatedAt: "2024-06-06T09:00:00+08:00"}
}

func TestHabitsToday_APIRecordWins(t *testing.T) {
	fetch := func(ctx context.Context, userID string) ([]models.HabitsRecord, error) {
		return []models.HabitsRecord{yesterdayRecord(), todayRecord()}, nil
	}
	h := NewHabitsToday(fetch, &fakeMarkers{}, testNow)

	status, err := h.Refresh(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, status.Logged)
	assert.False(t, status.Degraded)
}

func TestHabitsToday_MarkerBridgesFetchGap(t *testing.T) {
	// Server list has nothing for today but the local marker does: the
	// user just saved and the list has not caught up yet.
	fetch := func(ctx context.Context, userID string) ([]models.HabitsRecord, error) {
		return []models.HabitsRecord{yesterdayRecord()}, nil
	}
	markers := &fakeMarkers{ts: "2024-06-07T14:59:00+08:00"}
	h := NewHabitsToday(fetch, markers, testNow)

	status, err := h.Refresh(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, status.Logged)
	assert.False(t, status.Degraded)
}

func TestHabitsToday_StaleMarkerDoesNotCount(t *testing.T) {
	fetch := func(ctx context.Context, userID string) ([]models.HabitsRecord, error) {
		return nil, nil
	}
	markers := &fakeMarkers{ts: "2024-06-06T23:00:00+08:00"}
	h := NewHabitsToday(fetch, markers, testNow)

	status, err := h.Refresh(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, status.Logged)
}

func TestHabitsToday_FetchFailureFallsBackToMarker(t *testing.T) {
	boom := errors.New("network down")
	fetch := func(ctx context.Context, userID string) ([]models.HabitsRecord, error) {
		return nil, boom
	}

	h := NewHabitsToday(fetch, &fakeMarkers{ts: "2024-06-07T10:00:00+08:00"}, testNow)
	status, err := h.Refresh(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
	assert.True(t, status.Logged)
	assert.True(t, status.Degraded)

	// Failure with no marker: false, still no panic, still renderable.
	h = NewHabitsToday(fetch, &fakeMarkers{}, testNow)
	status, err = h.Refresh(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, status.Logged)
	assert.True(t, status.Degraded)
}

func TestHabitsToday_StaleCompletionDoesNotOverwriteNewer(t *testing.T) {
	// First refresh (empty list) is held up until after a second refresh
	// (today's record present) completes. The slow first result must not
	// clobber the newer one.
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	fetch := func(ctx context.Context, userID string) ([]models.HabitsRecord, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			<-release
			return nil, nil
		}
		return []models.HabitsRecord{todayRecord()}, nil
	}

	h := NewHabitsToday(fetch, &fakeMarkers{}, testNow)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.Refresh(context.Background(), "u1")
	}()

	// Make sure the slow call is issued first.
	time.Sleep(10 * time.Millisecond)

	_, err := h.Refresh(context.Background(), "u1")
	require.NoError(t, err)

	close(release)
	wg.Wait()

	status, loaded := h.Status()
	assert.True(t, loaded)
	assert.True(t, status.Logged, "stale empty result overwrote the newer positive one")
}

func TestHabitsToday_StatusBeforeAnyRefresh(t *testing.T) {
	h := NewHabitsToday(nil, &fakeMarkers{}, testNow)
	_, loaded := h.Status()
	assert.False(t, loaded)
}
