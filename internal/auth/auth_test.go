package auth

import (
	"errors"
	"testing"
)

func TestValidatePresenceRules(t *testing.T) {
	cases := []struct {
		name      string
		mode      Mode
		creds     Credentials
		wantField string // "" means valid
	}{
		{name: "login ok", mode: ModeLogin, creds: Credentials{Username: "a", Password: "b"}},
		{name: "login missing password", mode: ModeLogin, creds: Credentials{Username: "a"}, wantField: "password"},
		{name: "login missing username", mode: ModeLogin, creds: Credentials{Password: "b"}, wantField: "username"},
		{name: "login whitespace password", mode: ModeLogin, creds: Credentials{Username: "a", Password: "  "}, wantField: "password"},
		{name: "login ignores contact", mode: ModeLogin, creds: Credentials{Username: "a", Password: "b", Contact: ""}},
		{name: "register needs contact", mode: ModeRegister, creds: Credentials{Username: "a", Password: "b"}, wantField: "contact"},
		{name: "register ok", mode: ModeRegister, creds: Credentials{Username: "a", Password: "b", Contact: "a@b.c"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.mode, tc.creds)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			var mf *MissingFieldError
			if !errors.As(err, &mf) {
				t.Fatalf("want MissingFieldError, got %v", err)
			}
			if mf.Field != tc.wantField {
				t.Fatalf("missing field = %q, want %q", mf.Field, tc.wantField)
			}
		})
	}
}

func TestSubmitTransitionsToAuthenticated(t *testing.T) {
	g := NewGate()

	if _, err := g.Current(); !errors.Is(err, ErrAnonymous) {
		t.Fatalf("fresh gate should be anonymous, got %v", err)
	}

	s, err := g.Submit(ModeLogin, Credentials{Username: "a", Password: "b"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.Name != "a" || s.Token == "" {
		t.Fatalf("unexpected session: %+v", s)
	}

	cur, err := g.Current()
	if err != nil || cur != s {
		t.Fatalf("Current = %+v, %v; want %+v", cur, err, s)
	}
}

func TestSubmitRejectsIncompleteForm(t *testing.T) {
	g := NewGate()
	if _, err := g.Submit(ModeLogin, Credentials{Username: "a", Password: ""}); err == nil {
		t.Fatalf("expected presence error")
	}
	if _, err := g.Current(); !errors.Is(err, ErrAnonymous) {
		t.Fatalf("gate should stay anonymous after a rejected submit")
	}
}

func TestLogoutReturnsToAnonymous(t *testing.T) {
	g := NewGate()
	s, err := g.Submit(ModeRegister, Credentials{Username: "a", Password: "b", Contact: "a@b.c"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	g.Logout()
	if _, err := g.Current(); !errors.Is(err, ErrAnonymous) {
		t.Fatalf("expected anonymous after logout")
	}
	// the old token is dead too
	if _, err := g.Authenticate(s.Token); !errors.Is(err, ErrAnonymous) {
		t.Fatalf("stale token should not authenticate")
	}
	// logout twice is fine
	g.Logout()
}

func TestAuthenticateMatchesLiveTokenOnly(t *testing.T) {
	g := NewGate()
	s, err := g.Submit(ModeLogin, Credentials{Username: "a", Password: "b"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if got, err := g.Authenticate(s.Token); err != nil || got.Name != "a" {
		t.Fatalf("Authenticate(live) = %+v, %v", got, err)
	}
	if _, err := g.Authenticate("bogus"); !errors.Is(err, ErrAnonymous) {
		t.Fatalf("bogus token should be anonymous")
	}
	if _, err := g.Authenticate(""); !errors.Is(err, ErrAnonymous) {
		t.Fatalf("empty token should be anonymous")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeLogin {
		t.Fatalf("empty mode should default to login, got %q, %v", m, err)
	}
	if m, err := ParseMode("Register"); err != nil || m != ModeRegister {
		t.Fatalf("ParseMode(Register) = %q, %v", m, err)
	}
	if _, err := ParseMode("oauth"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("want ErrUnknownMode, got %v", err)
	}
}
