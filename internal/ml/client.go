// Package ml is the client for the external emotion-prediction service.
// Journal submission hard-stops when prediction fails: no entry is created
// without emotion data.
package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrPredictionFailed is returned for any prediction failure so the UI can
// surface a distinct "emotion analysis failed" message.
var ErrPredictionFailed = errors.New("emotion analysis failed")

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
	}
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	// The model returns its top emotions as nested arrays of strings.
	TopEmotions [][]string `json:"top_emotions"`
}

// Predict classifies the given journal text, returning a flattened,
// deduplicated, lowercased emotion list in first-seen order.
func (c *Client) Predict(ctx context.Context, text string) ([]string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: service returned status %d", ErrPredictionFailed, resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}

	emotions := Flatten(out.TopEmotions)
	if len(emotions) == 0 {
		return nil, fmt.Errorf("%w: no emotions in response", ErrPredictionFailed)
	}
	return emotions, nil
}

// Flatten collapses the nested emotion arrays into one deduplicated,
// lowercased list preserving first-seen order.
func Flatten(nested [][]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, group := range nested {
		for _, e := range group {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" || seen[e] {
				continue
			}
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
