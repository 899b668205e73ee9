package guard

import (
	"testing"

	"github.com/wxlim/moodlit/internal/models"
)

func TestUserGuard(t *testing.T) {
	sess := models.Session{IsLoggedIn: true, UserID: "u1"}
	if d := User(sess, RouteJournal); !d.Allow {
		t.Errorf("expected active user session to pass, got %+v", d)
	}

	d := User(models.Session{}, RouteJournal)
	if d.Allow {
		t.Fatal("expected anonymous session to be redirected")
	}
	if d.RedirectTo != RouteUserLogin {
		t.Errorf("expected redirect to user login, got %q", d.RedirectTo)
	}
	if d.Return != RouteJournal {
		t.Errorf("expected original route to be preserved, got %q", d.Return)
	}

	// Logged-in flag without a user id is not a user session.
	if d := User(models.Session{IsLoggedIn: true}, RouteHabits); d.Allow {
		t.Error("expected session without user id to be redirected")
	}
}

func TestUserGuard_CounsellorSessionGoesToUserLogin(t *testing.T) {
	// A counsellor requesting a user-only page is sent to the *user*
	// login, not the counsellor one.
	sess := models.Session{CounsellorID: "c1"}
	d := User(sess, RouteDashboard)
	if d.Allow {
		t.Fatal("expected counsellor session to be rejected from user page")
	}
	if d.RedirectTo != RouteUserLogin {
		t.Errorf("expected user login redirect, got %q", d.RedirectTo)
	}
}

func TestCounsellorGuard(t *testing.T) {
	if d := Counsellor(models.Session{CounsellorID: "c1"}, RouteClients); !d.Allow {
		t.Errorf("expected counsellor session to pass, got %+v", d)
	}

	d := Counsellor(models.Session{IsLoggedIn: true, UserID: "u1"}, RouteClients)
	if d.Allow {
		t.Fatal("expected user session to be rejected from counsellor page")
	}
	if d.RedirectTo != RouteCounsellorLogin {
		t.Errorf("expected counsellor login redirect, got %q", d.RedirectTo)
	}
}

func TestAntiLoginGuard(t *testing.T) {
	tests := []struct {
		name string
		sess models.Session
		want Decision
	}{
		{"anonymous allowed", models.Session{}, Decision{Allow: true}},
		{
			"user redirected home",
			models.Session{IsLoggedIn: true, UserID: "u1"},
			Decision{RedirectTo: RouteUserHome, Return: RouteUserLogin},
		},
		{
			"counsellor redirected home",
			models.Session{CounsellorID: "c1"},
			Decision{RedirectTo: RouteCounsellorHome, Return: RouteUserLogin},
		},
	}
	for _, tt := range tests {
		if got := AntiLogin(tt.sess, RouteUserLogin); got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestFor_RoutesToMatchingGuard(t *testing.T) {
	user := models.Session{IsLoggedIn: true, UserID: "u1"}
	counsellor := models.Session{CounsellorID: "c1"}

	if d := For(user, RouteUserLogin); d.Allow || d.RedirectTo != RouteUserHome {
		t.Errorf("login route should apply anti-login guard, got %+v", d)
	}
	if d := For(counsellor, RouteClients); !d.Allow {
		t.Errorf("clients route should apply counsellor guard, got %+v", d)
	}
	if d := For(counsellor, RouteJournal); d.Allow || d.RedirectTo != RouteUserLogin {
		t.Errorf("journal route should apply user guard, got %+v", d)
	}
}
