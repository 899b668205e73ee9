package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxlim/moodlit/internal/models"
)

type memCookies struct {
	cookie string
}

func (m *memCookies) Get() (string, error) { return m.cookie, nil }

func (m *memCookies) Set(cookie string) error {
	m.cookie = cookie
	return nil
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *memCookies) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cookies := &memCookies{}
	return New(srv.URL, cookies, 2*time.Second), cookies
}

func TestUserLogin_CapturesSessionCookie(t *testing.T) {
	client, cookies := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/user/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.c", body["email"])

		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok123", Path: "/"})
		json.NewEncoder(w).Encode(map[string]any{"userId": "u1", "showEmotion": true})
	}))

	sess, err := client.UserLogin(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.Session{IsLoggedIn: true, UserID: "u1", ShowEmotion: true}, sess)
	assert.Equal(t, "session=tok123", cookies.cookie)
}

func TestClient_SendsStoredCookie(t *testing.T) {
	var gotCookie string
	client, cookies := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		json.NewEncoder(w).Encode([]models.HabitsRecord{})
	}))
	cookies.cookie = "session=tok123"

	_, err := client.HabitsAll(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "session=tok123", gotCookie)
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"401 unauthorized", http.StatusUnauthorized, "", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnauthorized)
		}},
		{"403 forbidden", http.StatusForbidden, "", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnauthorized)
		}},
		{"409 conflict", http.StatusConflict, "", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrConflict)
		}},
		{"400 with server message", http.StatusBadRequest, `{"message":"sleep hours out of range"}`, func(t *testing.T, err error) {
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "sleep hours out of range", apiErr.Message)
			assert.Equal(t, "sleep hours out of range", UserMessage(err))
		}},
		{"500 without message", http.StatusInternalServerError, "", func(t *testing.T, err error) {
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Empty(t, apiErr.Message)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			}))
			_, err := client.JournalAll(context.Background(), "u1")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestLinkRequests_NormalizesHeterogeneousStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/linkrequest/journal/all-link-requests/u1", r.URL.Path)
		w.Write([]byte(`[
			{"id": 7, "counsellorUser": "c1", "journalUser": "u1", "status": "Accepted"},
			{"id": "8", "counsellorUser": "c1", "journalUser": "u1", "approved": false},
			{"id": 9, "counsellorUser": "c2", "journalUser": "u1"},
			{"id": 10, "counsellorUser": "c3", "journalUser": "u1", "status": "pending", "approved": true}
		]`))
	}))

	reqs, err := client.UserLinkRequests(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, reqs, 4)

	assert.Equal(t, "7", reqs[0].ID)
	assert.Equal(t, models.StatusApproved, reqs[0].Status)
	assert.Equal(t, "8", reqs[1].ID)
	assert.Equal(t, models.StatusRejected, reqs[1].Status)
	assert.Equal(t, models.StatusPending, reqs[2].Status)
	// An explicit status field wins over the approved flag.
	assert.Equal(t, models.StatusPending, reqs[3].Status)
}

func TestDecideLinkRequest_SendsCapitalisedBooleans(t *testing.T) {
	var got map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/linkrequest/9/decision/u1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.DecideLinkRequest(context.Background(), "9", "u1", true))
	assert.Equal(t, map[string]string{"approved": "True"}, got)

	require.NoError(t, client.DecideLinkRequest(context.Background(), "9", "u1", false))
	assert.Equal(t, map[string]string{"approved": "False"}, got)
}

func TestMutationTimeout_BoundsSubmit(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(func() { close(block); srv.Close() })

	client := New(srv.URL, &memCookies{}, 50*time.Millisecond)
	_, err := client.SubmitHabits(context.Background(), models.HabitsInput{UserID: "u1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReadCancellation(t *testing.T) {
	started := make(chan struct{})
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-block
	}))
	t.Cleanup(func() { close(block); srv.Close() })

	client := New(srv.URL, &memCookies{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := client.JournalAll(ctx, "u1")
		errc <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled read did not return")
	}
}
