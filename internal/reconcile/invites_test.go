package reconcile

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxlim/moodlit/internal/api"
	"github.com/wxlim/moodlit/internal/models"
)

type fakeInviteAPI struct {
	mu        sync.Mutex
	requests  []models.LinkRequest
	listErr   error
	decideErr error
	decided   []string
	listCalls int
}

func (f *fakeInviteAPI) UserLinkRequests(ctx context.Context, userID string) ([]models.LinkRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.LinkRequest, len(f.requests))
	copy(out, f.requests)
	return out, nil
}

func (f *fakeInviteAPI) DecideLinkRequest(ctx context.Context, id, userID string, approve bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decideErr != nil {
		return f.decideErr
	}
	f.decided = append(f.decided, id)
	for i := range f.requests {
		if f.requests[i].ID == id {
			if approve {
				f.requests[i].Status = models.StatusApproved
			} else {
				f.requests[i].Status = models.StatusRejected
			}
		}
	}
	return nil
}

func pendingRequest(id string) models.LinkRequest {
	return models.LinkRequest{ID: id, CounsellorUser: "c1", JournalUser: "u1", Status: models.StatusPending}
}

func alwaysConfirm(models.LinkRequest, bool) bool { return true }

func TestVerify_PendingReturnsFreshRequest(t *testing.T) {
	server := pendingRequest("r1")
	server.CounsellorUser = "renamed"
	client := &fakeInviteAPI{requests: []models.LinkRequest{server}}
	d := NewDecider(client, "u1")

	current, out, err := d.Verify(context.Background(), pendingRequest("r1"))
	require.NoError(t, err)
	assert.Equal(t, ReasonNone, out.Reason)
	assert.Equal(t, models.StatusPending, out.CurrentStatus)
	// The caller gets the server's copy, not the one it passed in.
	assert.Equal(t, "renamed", current.CounsellorUser)
	assert.Empty(t, client.decided, "verify must never submit")
}

func TestVerify_StaleStatusReported(t *testing.T) {
	client := &fakeInviteAPI{requests: []models.LinkRequest{
		{ID: "r1", CounsellorUser: "c1", JournalUser: "u1", Status: models.StatusRejected},
	}}
	d := NewDecider(client, "u1")

	_, out, err := d.Verify(context.Background(), pendingRequest("r1"))
	require.NoError(t, err)
	assert.Equal(t, ReasonStale, out.Reason)
	assert.Equal(t, models.StatusRejected, out.CurrentStatus)
	require.Len(t, out.Requests, 1)
}

func TestDecide_HappyPath(t *testing.T) {
	client := &fakeInviteAPI{requests: []models.LinkRequest{pendingRequest("r1")}}
	d := NewDecider(client, "u1")

	out, err := d.Decide(context.Background(), pendingRequest("r1"), true, alwaysConfirm)
	require.NoError(t, err)
	assert.True(t, out.Submitted)
	assert.Equal(t, models.StatusApproved, out.CurrentStatus)
	assert.Equal(t, []string{"r1"}, client.decided)
	// pre-flight fetch + post-decision fetch
	assert.Equal(t, 2, client.listCalls)
	require.Len(t, out.Requests, 1)
	assert.Equal(t, models.StatusApproved, out.Requests[0].Status)
}

func TestDecide_StaleStatusAbortsWithoutSubmitting(t *testing.T) {
	// The displayed request still says pending, but the fresh fetch shows
	// it was already approved elsewhere.
	client := &fakeInviteAPI{requests: []models.LinkRequest{
		{ID: "r1", CounsellorUser: "c1", JournalUser: "u1", Status: models.StatusApproved},
	}}
	d := NewDecider(client, "u1")

	out, err := d.Decide(context.Background(), pendingRequest("r1"), false, alwaysConfirm)
	require.NoError(t, err)
	assert.False(t, out.Submitted)
	assert.Equal(t, ReasonStale, out.Reason)
	assert.Equal(t, models.StatusApproved, out.CurrentStatus)
	assert.Empty(t, client.decided, "decision endpoint must not be called on stale data")
}

func TestDecide_MissingRequestAborts(t *testing.T) {
	client := &fakeInviteAPI{}
	d := NewDecider(client, "u1")

	out, err := d.Decide(context.Background(), pendingRequest("gone"), true, alwaysConfirm)
	require.NoError(t, err)
	assert.Equal(t, ReasonStale, out.Reason)
	assert.Empty(t, client.decided)
}

func TestDecide_ConfirmationDeclined(t *testing.T) {
	client := &fakeInviteAPI{requests: []models.LinkRequest{pendingRequest("r1")}}
	d := NewDecider(client, "u1")

	out, err := d.Decide(context.Background(), pendingRequest("r1"), true,
		func(models.LinkRequest, bool) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, ReasonCancelled, out.Reason)
	assert.Empty(t, client.decided)
}

func TestDecide_ConflictDuringSubmitRefetchesAndInforms(t *testing.T) {
	client := &fakeInviteAPI{
		requests:  []models.LinkRequest{pendingRequest("r1")},
		decideErr: api.ErrConflict,
	}
	d := NewDecider(client, "u1")

	out, err := d.Decide(context.Background(), pendingRequest("r1"), true, alwaysConfirm)
	require.NoError(t, err)
	assert.False(t, out.Submitted)
	assert.Equal(t, ReasonConflict, out.Reason)
	// pre-flight fetch + conflict refetch; no automatic retry of the
	// decision itself
	assert.Equal(t, 2, client.listCalls)
}

func TestDecide_BusyPerInvite(t *testing.T) {
	client := &fakeInviteAPI{requests: []models.LinkRequest{pendingRequest("r1"), pendingRequest("r2")}}
	d := NewDecider(client, "u1")

	started := make(chan struct{})
	proceed := make(chan struct{})
	confirmSlow := func(models.LinkRequest, bool) bool {
		close(started)
		<-proceed
		return true
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := d.Decide(context.Background(), pendingRequest("r1"), true, confirmSlow)
		assert.NoError(t, err)
	}()

	<-started
	assert.True(t, d.Busy("r1"))
	assert.False(t, d.Busy("r2"))

	// Same invite: rejected while in flight.
	_, err := d.Decide(context.Background(), pendingRequest("r1"), true, alwaysConfirm)
	assert.ErrorIs(t, err, ErrDecisionInFlight)

	// Other invites remain actionable.
	out, err := d.Decide(context.Background(), pendingRequest("r2"), false, alwaysConfirm)
	require.NoError(t, err)
	assert.True(t, out.Submitted)

	close(proceed)
	wg.Wait()
	assert.False(t, d.Busy("r1"))
}
