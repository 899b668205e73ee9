package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "felt great today", body["text"])

		w.Write([]byte(`{"top_emotions": [["Happy", "curious"], ["happy", "Surprised"]]}`))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, time.Second)
	emotions, err := client.Predict(context.Background(), "felt great today")
	require.NoError(t, err)
	assert.Equal(t, []string{"happy", "curious", "surprised"}, emotions)
}

func TestPredict_FailureModes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{broken`))
		}},
		{"empty emotions", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"top_emotions": [[]]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			t.Cleanup(srv.Close)

			client := New(srv.URL, time.Second)
			_, err := client.Predict(context.Background(), "text")
			assert.ErrorIs(t, err, ErrPredictionFailed)
		})
	}
}

func TestPredict_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(func() { close(block); srv.Close() })

	client := New(srv.URL, 50*time.Millisecond)
	_, err := client.Predict(context.Background(), "text")
	assert.ErrorIs(t, err, ErrPredictionFailed)
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		in   [][]string
		want []string
	}{
		{"nil", nil, nil},
		{"dedupe across groups", [][]string{{"sad", "angry"}, {"sad"}}, []string{"sad", "angry"}},
		{"case folds", [][]string{{"Sad", "SAD", "sad"}}, []string{"sad"}},
		{"blank entries skipped", [][]string{{"", "  ", "neutral"}}, []string{"neutral"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Flatten(tt.in))
		})
	}
}
