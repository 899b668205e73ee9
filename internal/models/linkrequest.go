package models

import "strings"

// Status is the canonical state of a link request. The backend reports it in
// several shapes (booleans, strings, synonyms); ParseStatus is the single
// mapping from those shapes into this type, applied once at the API boundary
// and never re-derived downstream.
type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	default:
		return "pending"
	}
}

// ParseStatus maps a raw server-side status value to a Status. Decoded JSON
// hands us bools for boolean fields and strings otherwise; anything
// unrecognised (including nil) is treated as pending, matching how the
// backend represents a not-yet-decided request.
func ParseStatus(v any) Status {
	switch t := v.(type) {
	case bool:
		if t {
			return StatusApproved
		}
		return StatusRejected
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "approved", "accepted", "approve":
			return StatusApproved
		case "false", "rejected", "declined", "reject":
			return StatusRejected
		default:
			return StatusPending
		}
	default:
		return StatusPending
	}
}

// LinkRequest is an invite linking a counsellor to a journal user. It
// transitions pending -> approved or pending -> rejected exactly once.
type LinkRequest struct {
	ID             string
	CounsellorUser string
	JournalUser    string
	RequestedAt    string
	Status         Status
}
