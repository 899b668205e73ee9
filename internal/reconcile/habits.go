// Package reconcile merges remote authoritative state with local
// optimistic state into single displayed values: the "habits logged today"
// flag and link-request decisions.
package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/sgtime"
)

// MarkerStore reads the locally stored "habits last saved" timestamp.
type MarkerStore interface {
	HabitsMarker() (string, error)
}

// HabitsFetcher loads the authoritative habits list for a user.
type HabitsFetcher func(ctx context.Context, userID string) ([]models.HabitsRecord, error)

// HabitsStatus is the reconciled answer.
type HabitsStatus struct {
	// Logged is true when today's habits entry exists, per the server list
	// or, failing that, the local marker.
	Logged bool
	// Degraded is true when the fetch failed and only the local marker was
	// consulted.
	Degraded bool
}

// HabitsToday answers "has today's habits entry been logged" with low
// latency and resilience to transient fetch failure. The local marker only
// bridges the gap between a successful save and the next fetch confirming
// it server-side; a fresh successful fetch always takes precedence.
//
// Refresh may be triggered from several places at once (view mount, focus,
// resume, the habits-updated signal); a generation counter ensures a stale
// completion never overwrites a newer one.
type HabitsToday struct {
	fetch   HabitsFetcher
	markers MarkerStore
	now     func() time.Time

	mu         sync.Mutex
	issued     uint64
	applied    uint64
	current    HabitsStatus
	everLoaded bool
}

// NewHabitsToday builds a reconciler. now is injectable for tests; nil
// means time.Now.
func NewHabitsToday(fetch HabitsFetcher, markers MarkerStore, now func() time.Time) *HabitsToday {
	if now == nil {
		now = time.Now
	}
	return &HabitsToday{fetch: fetch, markers: markers, now: now}
}

// Status returns the last reconciled answer and whether any refresh has
// completed yet. It never blocks rendering.
func (h *HabitsToday) Status() (HabitsStatus, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current, h.everLoaded
}

// Refresh re-reconciles. The returned status is the result of this call;
// whether it becomes the current status depends on whether a newer refresh
// has completed in the meantime. The error reports a failed fetch for
// logging; the status is still usable (degraded) in that case.
func (h *HabitsToday) Refresh(ctx context.Context, userID string) (HabitsStatus, error) {
	h.mu.Lock()
	h.issued++
	gen := h.issued
	h.mu.Unlock()

	today := sgtime.TodayKey(h.now)
	markerHas := false
	if ts, err := h.markers.HabitsMarker(); err == nil && ts != "" {
		markerHas = sgtime.DayKey(ts) == today
	}

	records, err := h.fetch(ctx, userID)
	if err != nil {
		status := HabitsStatus{Logged: markerHas, Degraded: true}
		h.apply(gen, status)
		return status, err
	}

	apiHas := false
	for _, r := range records {
		ts := r.CreatedAt
		if ts == "" {
			ts = r.LastSavedAt
		}
		if sgtime.DayKey(ts) == today {
			apiHas = true
			break
		}
	}

	status := HabitsStatus{Logged: apiHas || markerHas}
	h.apply(gen, status)
	return status, nil
}

func (h *HabitsToday) apply(gen uint64, status HabitsStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen <= h.applied {
		return
	}
	h.applied = gen
	h.current = status
	h.everLoaded = true
}
