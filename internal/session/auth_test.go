package session

import (
	"testing"

	"github.com/hpungsan/blueprint/internal/errors"
)

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	a, err := NewAuth(DefaultCredentials)
	if err != nil {
		t.Fatalf("NewAuth() error = %v", err)
	}
	return a
}

func TestLogin(t *testing.T) {
	a := newTestAuth(t)

	u, err := a.Login(" Demo@Blueprint.local ", "demo")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if u.Email != "demo@blueprint.local" || u.ID != UserID("demo@blueprint.local") {
		t.Errorf("user = %+v", u)
	}
	if cur := a.CurrentUser(); cur == nil || cur.ID != u.ID {
		t.Errorf("CurrentUser() = %+v", cur)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	a := newTestAuth(t)
	if _, err := a.Login("demo@blueprint.local", "demo"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	for _, tc := range []struct{ email, password string }{
		{"demo@blueprint.local", "wrong"},
		{"nobody@blueprint.local", "demo"},
	} {
		_, err := a.Login(tc.email, tc.password)
		if !errors.Is(err, errors.ErrInvalidCredentials) {
			t.Errorf("Login(%s) error = %v, want INVALID_CREDENTIALS", tc.email, err)
		}
	}

	// Failed attempts leave the existing session alone
	if cur := a.CurrentUser(); cur == nil || cur.Email != "demo@blueprint.local" {
		t.Errorf("CurrentUser() = %+v, want demo user kept", cur)
	}
}

func TestLogout_ClearsProject(t *testing.T) {
	a := newTestAuth(t)
	if _, err := a.Login("demo@blueprint.local", "demo"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	a.SelectProject("01PROJECT")
	if a.CurrentProject() != "01PROJECT" {
		t.Fatalf("CurrentProject() = %q", a.CurrentProject())
	}

	a.Logout()
	if a.CurrentUser() != nil || a.CurrentProject() != "" {
		t.Error("Logout() should clear user and project")
	}
}

func TestUserID_Stable(t *testing.T) {
	if UserID("A@b.c") != UserID("a@b.c ") {
		t.Error("UserID should normalize email")
	}
	if UserID("a@b.c") == UserID("d@e.f") {
		t.Error("distinct emails should give distinct ids")
	}
}
