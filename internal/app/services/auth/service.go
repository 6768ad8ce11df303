package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"churnportal/internal/app/forms"
	"churnportal/internal/app/policies"
	"churnportal/internal/app/workspace"
	domainauth "churnportal/internal/domain/auth"
)

// ErrInvalidCredentials is the only failure a login attempt reports to the user.
var ErrInvalidCredentials = errors.New("auth: invalid username or password")

// InvalidCredentialsMessage is shown on the login page for ErrInvalidCredentials.
const InvalidCredentialsMessage = "Invalid username or password"

const (
	FieldUsername = "username"
	FieldPassword = "password"
)

type Service struct {
	API        policies.CredentialsPort
	Sessions   domainauth.SessionStore
	Workspaces workspace.Store
	Logger     *slog.Logger
	Now        func() time.Time
}

type LoginParams struct {
	BrowserID domainauth.BrowserID
	// PreviousID is the browser id used before login. Its session is dropped
	// and its workspace moves to BrowserID.
	PreviousID domainauth.BrowserID
	Username   string
	Password   string
}

// Login checks the credentials with the API and remembers the returned token
// for the browser. Nothing is stored when the API refuses.
func (s *Service) Login(ctx context.Context, params LoginParams) (*domainauth.Session, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(params.Username)
	problems := map[string]string{}
	if username == "" {
		problems[FieldUsername] = "is required"
	}
	if params.Password == "" {
		problems[FieldPassword] = "is required"
	}
	if len(problems) > 0 {
		return nil, &forms.ValidationError{Fields: problems}
	}

	token, err := s.API.Login(ctx, username, params.Password)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Info("login rejected", "username", username, "error", err)
		}
		return nil, ErrInvalidCredentials
	}
	if strings.TrimSpace(token) == "" {
		if s.Logger != nil {
			s.Logger.Warn("login api returned empty token", "username", username)
		}
		return nil, ErrInvalidCredentials
	}

	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		BrowserID: params.BrowserID,
		Token:     domainauth.Token(token),
		Username:  username,
		Now:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	if err := s.retire(ctx, params.PreviousID, session.BrowserID); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user logged in", "username", username)
	}
	return session, nil
}

func (s *Service) retire(ctx context.Context, previous, current domainauth.BrowserID) error {
	if previous == "" || previous == current {
		return nil
	}
	if err := s.Sessions.Delete(ctx, previous); err != nil && !errors.Is(err, domainauth.ErrSessionNotFound) {
		return err
	}
	if s.Workspaces == nil {
		return nil
	}
	return s.Workspaces.Move(ctx, previous, current)
}

// Logout forgets the session and the page state of the browser.
func (s *Service) Logout(ctx context.Context, id domainauth.BrowserID) error {
	if s.Sessions == nil {
		return errors.New("auth: session store required")
	}
	if strings.TrimSpace(string(id)) == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, id); err != nil && !errors.Is(err, domainauth.ErrSessionNotFound) {
		return err
	}
	if s.Workspaces != nil {
		if err := s.Workspaces.Delete(ctx, id); err != nil {
			return err
		}
	}
	if s.Logger != nil {
		s.Logger.Info("session terminated")
	}
	return nil
}

// Current returns the stored session of the browser, if any.
func (s *Service) Current(ctx context.Context, id domainauth.BrowserID) (*domainauth.Session, error) {
	if s.Sessions == nil {
		return nil, errors.New("auth: session store required")
	}
	if strings.TrimSpace(string(id)) == "" {
		return nil, domainauth.ErrSessionNotFound
	}
	return s.Sessions.Get(ctx, id)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.API == nil:
		return errors.New("auth: login api required")
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	default:
		return nil
	}
}
