package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrAnonymous = errors.New("not authenticated")
var ErrUnknownMode = errors.New("unknown auth mode")

// MissingFieldError reports the first required field the form left blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Mode flips which fields the auth form requires. It does not by itself
// change the Anonymous/Authenticated state.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLogin, "":
		return ModeLogin, nil
	case ModeRegister:
		return ModeRegister, nil
	default:
		return "", ErrUnknownMode
	}
}

type Credentials struct {
	Username string
	Password string
	Contact  string // email or phone, required only when registering
}

// RequiredFields lists, in order, the fields that must be present for a mode.
func RequiredFields(mode Mode) []string {
	if mode == ModeRegister {
		return []string{"username", "password", "contact"}
	}
	return []string{"username", "password"}
}

// Validate checks presence only. There is no credential store and no
// verification beyond non-emptiness.
func Validate(mode Mode, creds Credentials) error {
	values := map[string]string{
		"username": creds.Username,
		"password": creds.Password,
		"contact":  creds.Contact,
	}
	for _, field := range RequiredFields(mode) {
		if strings.TrimSpace(values[field]) == "" {
			return &MissingFieldError{Field: field}
		}
	}
	return nil
}

// Session is the mock authenticated identity: a display name plus a token the
// HTTP layer can hand back to the client. There is at most one session.
type Session struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// Gate is the two-state auth machine: Anonymous until a form submission
// passes the presence checks, Authenticated until an explicit logout.
type Gate struct {
	mu      sync.Mutex
	current *Session
}

func NewGate() *Gate { return &Gate{} }

// Submit runs the auth form. Past the presence checks it always succeeds;
// registering and logging in land in the same Authenticated state.
func (g *Gate) Submit(mode Mode, creds Credentials) (Session, error) {
	if err := Validate(mode, creds); err != nil {
		return Session{}, err
	}
	s := Session{
		Name:  strings.TrimSpace(creds.Username),
		Token: uuid.NewString(),
	}
	g.mu.Lock()
	g.current = &s
	g.mu.Unlock()
	return s, nil
}

// Logout drops the session. No confirmation step, idempotent.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.current = nil
	g.mu.Unlock()
}

// Current returns the active session, or ErrAnonymous.
func (g *Gate) Current() (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return Session{}, ErrAnonymous
	}
	return *g.current, nil
}

// Authenticate resolves a presented token. Anything but the live session's
// token counts as Anonymous, including tokens from before a logout.
func (g *Gate) Authenticate(token string) (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil || token == "" || token != g.current.Token {
		return Session{}, ErrAnonymous
	}
	return *g.current, nil
}
