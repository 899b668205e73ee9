package reconcile

import (
	"context"
	"errors"
	"sync"

	"github.com/wxlim/moodlit/internal/api"
	"github.com/wxlim/moodlit/internal/models"
)

// ErrDecisionInFlight is returned when a decision for the same invite is
// already being processed.
var ErrDecisionInFlight = errors.New("a decision for this invite is already in progress")

// InviteAPI is the slice of the backend client the decider needs.
type InviteAPI interface {
	UserLinkRequests(ctx context.Context, userID string) ([]models.LinkRequest, error)
	DecideLinkRequest(ctx context.Context, id, userID string, approve bool) error
}

// Reason explains why a decision did not go through.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonStale: the freshly fetched status was no longer pending, so
	// nothing was submitted.
	ReasonStale
	// ReasonCancelled: the user declined the confirmation prompt.
	ReasonCancelled
	// ReasonConflict: the backend reported the request as already decided
	// during submission.
	ReasonConflict
)

// Outcome is the result of a decision attempt. Requests always holds the
// freshest list fetched during the attempt so the caller can re-render
// without another round trip.
type Outcome struct {
	Submitted     bool
	Reason        Reason
	CurrentStatus models.Status
	Requests      []models.LinkRequest
}

// Decider drives the pending -> approved/rejected transition with the
// fetch-verify-confirm-submit-refetch sequence, so a decision is never made
// on data staler than the server's and never trusted until re-read. Only
// one decision may be in flight per invite; other invites stay actionable.
type Decider struct {
	api    InviteAPI
	userID string

	mu   sync.Mutex
	busy map[string]bool
}

func NewDecider(client InviteAPI, userID string) *Decider {
	return &Decider{api: client, userID: userID, busy: make(map[string]bool)}
}

// Busy reports whether a decision for the given invite is in flight, so
// the UI can disable just that row's action buttons.
func (d *Decider) Busy(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy[id]
}

func (d *Decider) acquire(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy[id] {
		return false
	}
	d.busy[id] = true
	return true
}

func (d *Decider) release(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.busy, id)
}

// Verify is the fetch-verify half of a decision: an authoritative refetch
// and a pending check, without submitting. Interactive callers run it
// before their confirmation prompt so the user confirms against the
// server's current status, not the rendered row.
func (d *Decider) Verify(ctx context.Context, req models.LinkRequest) (models.LinkRequest, Outcome, error) {
	fresh, err := d.api.UserLinkRequests(ctx, d.userID)
	if err != nil {
		return models.LinkRequest{}, Outcome{}, err
	}

	current, found := findRequest(fresh, req.ID)
	if !found {
		// The request vanished from the list (decided elsewhere and
		// filtered out, or withdrawn). Report the last known status.
		return models.LinkRequest{}, Outcome{Reason: ReasonStale, CurrentStatus: req.Status, Requests: fresh}, nil
	}
	if current.Status != models.StatusPending {
		return current, Outcome{Reason: ReasonStale, CurrentStatus: current.Status, Requests: fresh}, nil
	}
	return current, Outcome{CurrentStatus: models.StatusPending, Requests: fresh}, nil
}

// Decide runs one decision attempt for req. confirm is the interactive
// confirmation hook; it is only invoked once the request is verified to
// still be pending against a fresh fetch.
func (d *Decider) Decide(ctx context.Context, req models.LinkRequest, approve bool, confirm func(models.LinkRequest, bool) bool) (Outcome, error) {
	if !d.acquire(req.ID) {
		return Outcome{}, ErrDecisionInFlight
	}
	defer d.release(req.ID)

	// Never decide on data staler than what the server holds now.
	current, checked, err := d.Verify(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	if checked.Reason == ReasonStale {
		return checked, nil
	}
	fresh := checked.Requests

	if confirm != nil && !confirm(current, approve) {
		return Outcome{Reason: ReasonCancelled, CurrentStatus: models.StatusPending, Requests: fresh}, nil
	}

	if err := d.api.DecideLinkRequest(ctx, req.ID, d.userID, approve); err != nil {
		if errors.Is(err, api.ErrConflict) {
			// Somebody decided first. Same handling as pre-flight
			// staleness: refetch and inform, never retry.
			after, ferr := d.api.UserLinkRequests(ctx, d.userID)
			if ferr != nil {
				after = fresh
			}
			status := models.StatusPending
			if c, ok := findRequest(after, req.ID); ok {
				status = c.Status
			}
			return Outcome{Reason: ReasonConflict, CurrentStatus: status, Requests: after}, nil
		}
		return Outcome{}, err
	}

	// Re-fetch so the displayed state matches the server's post-decision
	// truth; the optimistic local transition is not trusted as final.
	after, err := d.api.UserLinkRequests(ctx, d.userID)
	if err != nil {
		return Outcome{Submitted: true, Requests: fresh}, err
	}
	status := models.StatusApproved
	if !approve {
		status = models.StatusRejected
	}
	return Outcome{Submitted: true, CurrentStatus: status, Requests: after}, nil
}

func findRequest(list []models.LinkRequest, id string) (models.LinkRequest, bool) {
	for _, r := range list {
		if r.ID == id {
			return r, true
		}
	}
	return models.LinkRequest{}, false
}
