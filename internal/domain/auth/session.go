package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrBrowserIDRequired = errors.New("auth: browser session id is required")
	ErrTokenRequired     = errors.New("auth: token is required")
	ErrSessionNotFound   = errors.New("auth: session not found")
)

// BrowserID identifies one browser to the portal. It is the value of the
// session cookie and carries no authority by itself.
type BrowserID string

// Token is the opaque credential returned by the login API.
type Token string

// Session is what the portal remembers after a successful login: the API
// token and the name to greet the user with.
type Session struct {
	BrowserID BrowserID
	Token     Token
	Username  string
	CreatedAt time.Time
}

type CreateSessionParams struct {
	BrowserID BrowserID
	Token     Token
	Username  string
	Now       time.Time
}

func NewSession(params CreateSessionParams) (*Session, error) {
	id := strings.TrimSpace(string(params.BrowserID))
	if id == "" {
		return nil, ErrBrowserIDRequired
	}
	token := strings.TrimSpace(string(params.Token))
	if token == "" {
		return nil, ErrTokenRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &Session{
		BrowserID: BrowserID(id),
		Token:     Token(token),
		Username:  strings.TrimSpace(params.Username),
		CreatedAt: now.UTC(),
	}, nil
}

// Authenticated reports whether the session holds a token. Possession is the
// only test: the token is never validated or expired by the portal.
func (s *Session) Authenticated() bool {
	return s != nil && strings.TrimSpace(string(s.Token)) != ""
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id BrowserID) (*Session, error)
	Delete(ctx context.Context, id BrowserID) error
}
