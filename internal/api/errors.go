package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized covers 401/403. Callers treat it as session
	// invalidation: clear the local flags and route to the login view.
	ErrUnauthorized = errors.New("session invalid or expired")

	// ErrConflict covers 409, e.g. deciding a link request somebody else
	// already decided. Callers refetch and inform, never auto-retry.
	ErrConflict = errors.New("conflicting change on the server")
)

// APIError carries a server-reported failure. Message holds the
// server-provided text verbatim when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// UserMessage renders an error for display. Transport-level failures all
// collapse into one retry-suggesting line so network hiccups never leak
// Go error chains into the UI.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrConflict):
		return "This was already updated elsewhere. The list has been refreshed."
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Something went wrong. Please check your connection and try again."
}
