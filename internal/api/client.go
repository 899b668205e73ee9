// Package api is the moodlit client for the backend REST service. It owns
// endpoint paths, the session cookie, JSON codec details and the mapping
// from HTTP status codes to the client error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wxlim/moodlit/internal/logger"
	"github.com/wxlim/moodlit/internal/models"
)

// CookieStore persists the backend session cookie between runs.
type CookieStore interface {
	Get() (string, error)
	Set(cookie string) error
}

// Client talks to the backend. Read calls are bounded only by their
// context; state-changing calls additionally get mutationTimeout.
type Client struct {
	baseURL         string
	http            *http.Client
	cookies         CookieStore
	mutationTimeout time.Duration
}

func New(baseURL string, cookies CookieStore, mutationTimeout time.Duration) *Client {
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            &http.Client{},
		cookies:         cookies,
		mutationTimeout: mutationTimeout,
	}
}

// do performs one request. A nil body means no payload; a non-nil out is
// filled from the response JSON.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookies != nil {
		if cookie, err := c.cookies.Get(); err == nil && cookie != "" {
			req.Header.Set("Cookie", cookie)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.captureCookies(resp)

	if resp.StatusCode >= 400 {
		return c.statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response from %s: %w", path, err)
		}
	}
	return nil
}

// mutate is do with the configured timeout applied on top of the caller's
// context, bounding perceived hang time for state-changing calls.
func (c *Client) mutate(ctx context.Context, method, path string, body, out any) error {
	if c.mutationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.mutationTimeout)
		defer cancel()
	}
	return c.do(ctx, method, path, body, out)
}

func (c *Client) captureCookies(resp *http.Response) {
	if c.cookies == nil {
		return
	}
	raw := resp.Header.Values("Set-Cookie")
	if len(raw) == 0 {
		return
	}
	pairs := make([]string, 0, len(raw))
	for _, line := range raw {
		if i := strings.Index(line, ";"); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			pairs = append(pairs, line)
		}
	}
	if len(pairs) == 0 {
		return
	}
	if err := c.cookies.Set(strings.Join(pairs, "; ")); err != nil {
		logger.Warn("failed to persist session cookie", "err", err)
	}
}

func (c *Client) statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrConflict
	}

	msg := ""
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		if body.Message != "" {
			msg = body.Message
		} else {
			msg = body.Error
		}
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// --- auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID       string `json:"userId"`
	CounsellorID string `json:"counsellorId"`
	ShowEmotion  bool   `json:"showEmotion"`
}

// UserLogin authenticates a journal user and returns the session flags to
// persist. The session cookie is captured as a side effect.
func (c *Client) UserLogin(ctx context.Context, email, password string) (models.Session, error) {
	var resp loginResponse
	err := c.mutate(ctx, http.MethodPost, "/api/user/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{IsLoggedIn: true, UserID: resp.UserID, ShowEmotion: resp.ShowEmotion}, nil
}

// CounsellorLogin authenticates a counsellor.
func (c *Client) CounsellorLogin(ctx context.Context, email, password string) (models.Session, error) {
	var resp loginResponse
	err := c.mutate(ctx, http.MethodPost, "/api/counsellor/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{CounsellorID: resp.CounsellorID, ShowEmotion: resp.ShowEmotion}, nil
}

// Logout tells the backend to drop the session. Best effort: callers clear
// local state and redirect regardless of the result.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/user/logout", nil, nil)
}

// --- habits ---

func (c *Client) HabitsAll(ctx context.Context, userID string) ([]models.HabitsRecord, error) {
	var out []models.HabitsRecord
	err := c.do(ctx, http.MethodGet, "/api/habits/all/"+userID, nil, &out)
	return out, err
}

func (c *Client) Habit(ctx context.Context, id, userID string) (models.HabitsRecord, error) {
	var out models.HabitsRecord
	err := c.do(ctx, http.MethodGet, "/api/habits/"+id+"/"+userID, nil, &out)
	return out, err
}

func (c *Client) SubmitHabits(ctx context.Context, in models.HabitsInput) (models.HabitsRecord, error) {
	var out models.HabitsRecord
	err := c.mutate(ctx, http.MethodPost, "/api/habits/submit", in, &out)
	return out, err
}

func (c *Client) EditHabits(ctx context.Context, id string, in models.HabitsInput) (models.HabitsRecord, error) {
	var out models.HabitsRecord
	err := c.mutate(ctx, http.MethodPut, "/api/habits/"+id+"/"+in.UserID+"/edit", in, &out)
	return out, err
}

func (c *Client) ArchiveHabits(ctx context.Context, id, userID string) error {
	return c.mutate(ctx, http.MethodPut, "/api/habits/"+id+"/"+userID+"/archive", nil, nil)
}

// --- journal ---

func (c *Client) JournalAll(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	var out []models.JournalEntry
	err := c.do(ctx, http.MethodGet, "/api/journal/all/"+userID, nil, &out)
	return out, err
}

func (c *Client) JournalEntry(ctx context.Context, entryID, userID string) (models.JournalEntry, error) {
	var out models.JournalEntry
	err := c.do(ctx, http.MethodGet, "/api/journal/"+entryID+"/"+userID, nil, &out)
	return out, err
}

func (c *Client) SubmitJournal(ctx context.Context, in models.JournalInput) (models.JournalEntry, error) {
	var out models.JournalEntry
	err := c.mutate(ctx, http.MethodPost, "/api/journal/submit", in, &out)
	return out, err
}

func (c *Client) ArchiveJournal(ctx context.Context, entryID, userID string) error {
	return c.mutate(ctx, http.MethodPut, "/api/journal/"+entryID+"/"+userID+"/archive", nil, nil)
}

// --- link requests ---

// linkRequestWire tolerates the shapes the backend has emitted for invite
// state: a string status, a bare approved boolean, or both. models.ParseStatus
// is applied exactly once, here at the boundary.
type linkRequestWire struct {
	ID             any    `json:"id"`
	CounsellorUser string `json:"counsellorUser"`
	JournalUser    string `json:"journalUser"`
	RequestedAt    string `json:"requestedAt"`
	Status         any    `json:"status"`
	Approved       any    `json:"approved"`
}

func (w linkRequestWire) toModel() models.LinkRequest {
	raw := w.Status
	if raw == nil {
		raw = w.Approved
	}
	return models.LinkRequest{
		ID:             anyID(w.ID),
		CounsellorUser: w.CounsellorUser,
		JournalUser:    w.JournalUser,
		RequestedAt:    w.RequestedAt,
		Status:         models.ParseStatus(raw),
	}
}

func anyID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
}

type createLinkRequest struct {
	JournalUserID string `json:"journalUserId"`
}

func (c *Client) CreateLinkRequest(ctx context.Context, counsellorID, journalUserID string) error {
	return c.mutate(ctx, http.MethodPost, "/api/linkrequest/"+counsellorID, createLinkRequest{JournalUserID: journalUserID}, nil)
}

func (c *Client) UserLinkRequests(ctx context.Context, userID string) ([]models.LinkRequest, error) {
	return c.linkRequests(ctx, "/api/linkrequest/journal/all-link-requests/"+userID)
}

func (c *Client) CounsellorLinkRequests(ctx context.Context, counsellorID string) ([]models.LinkRequest, error) {
	return c.linkRequests(ctx, "/api/linkrequest/counsellor/all-link-requests/"+counsellorID)
}

func (c *Client) linkRequests(ctx context.Context, path string) ([]models.LinkRequest, error) {
	var wire []linkRequestWire
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]models.LinkRequest, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toModel())
	}
	return out, nil
}

// DecideLinkRequest submits an approve/reject decision. The backend expects
// the python-flavoured capitalised booleans.
func (c *Client) DecideLinkRequest(ctx context.Context, id, userID string, approve bool) error {
	decision := "False"
	if approve {
		decision = "True"
	}
	body := map[string]string{"approved": decision}
	return c.mutate(ctx, http.MethodPost, "/api/linkrequest/"+id+"/decision/"+userID, body, nil)
}

// --- dashboards ---

func (c *Client) DashboardWindow(ctx context.Context, days int) (models.Dashboard, error) {
	var out models.Dashboard
	err := c.do(ctx, http.MethodGet, "/api/dashboard/window?days="+strconv.Itoa(days), nil, &out)
	return out, err
}

func (c *Client) CounsellorDashboardWindow(ctx context.Context, days int, counsellorID string) (models.Dashboard, error) {
	var out models.Dashboard
	path := "/api/counsellor/dashboard/window?days=" + strconv.Itoa(days) + "&counsellorId=" + counsellorID
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Ping checks backend reachability for diagnostics. Unauthorized still
// means reachable.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/api/dashboard/window?days=1", nil, nil)
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil
		}
		return err
	}
	return nil
}
