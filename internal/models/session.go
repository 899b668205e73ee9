package models

// Session is the client-side view of who is logged in. It is trusted local
// state, not re-validated until a backend call comes back 401/403.
// At most one of UserID/CounsellorID is set.
type Session struct {
	IsLoggedIn   bool
	UserID       string
	CounsellorID string
	ShowEmotion  bool
}

// Anonymous reports whether no identity is active.
func (s Session) Anonymous() bool {
	return s.UserID == "" && s.CounsellorID == ""
}

// IsUser reports whether a journal-user session is active.
func (s Session) IsUser() bool {
	return s.IsLoggedIn && s.UserID != ""
}

// IsCounsellor reports whether a counsellor session is active.
func (s Session) IsCounsellor() bool {
	return s.CounsellorID != ""
}
