// Package guard decides, per navigation, whether a view is reachable given
// the current session flags. Guards are pure functions and purely advisory:
// the real authorization boundary is the backend's 401/403, which callers
// must treat as session invalidation.
package guard

import "github.com/wxlim/moodlit/internal/models"

// Route names a navigable view.
type Route string

const (
	RouteUserLogin       Route = "user-login"
	RouteCounsellorLogin Route = "counsellor-login"
	RouteUserHome        Route = "user-home"
	RouteCounsellorHome  Route = "counsellor-home"
	RouteJournal         Route = "journal"
	RouteJournalCompose  Route = "journal-compose"
	RouteHabits          Route = "habits"
	RouteDashboard       Route = "dashboard"
	RouteInvites         Route = "invites"
	RouteClients         Route = "clients"
)

// Decision is the outcome of a guard check. When Allow is false RedirectTo
// names the view to land on instead, and Return preserves the originally
// requested route so a successful login can resume it.
type Decision struct {
	Allow      bool
	RedirectTo Route
	Return     Route
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(to, back Route) Decision {
	return Decision{RedirectTo: to, Return: back}
}

// User admits only an active journal-user session; everything else is sent
// to the user login, remembering where it was headed.
func User(sess models.Session, requested Route) Decision {
	if sess.IsUser() {
		return allow()
	}
	return redirect(RouteUserLogin, requested)
}

// Counsellor admits only sessions with a counsellor identity.
func Counsellor(sess models.Session, requested Route) Decision {
	if sess.IsCounsellor() {
		return allow()
	}
	return redirect(RouteCounsellorLogin, requested)
}

// AntiLogin protects login and registration views from already
// authenticated sessions: users go home, counsellors go to theirs.
func AntiLogin(sess models.Session, requested Route) Decision {
	if sess.IsUser() {
		return redirect(RouteUserHome, requested)
	}
	if sess.IsCounsellor() {
		return redirect(RouteCounsellorHome, requested)
	}
	return allow()
}

// For returns the guard decision for any route. Login routes get the
// anti-login guard, counsellor views the counsellor guard, and all user
// views the user guard.
func For(sess models.Session, requested Route) Decision {
	switch requested {
	case RouteUserLogin, RouteCounsellorLogin:
		return AntiLogin(sess, requested)
	case RouteCounsellorHome, RouteClients:
		return Counsellor(sess, requested)
	default:
		return User(sess, requested)
	}
}
