package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnportal/internal/app/forms"
	"churnportal/internal/app/workspace"
	domainauth "churnportal/internal/domain/auth"
	"churnportal/internal/domain/employee"
)

type fakeCredentials struct {
	calls int
	users map[string]string
	err   error
}

func (f *fakeCredentials) Login(_ context.Context, username, password string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.users[username] == password {
		if username == "hr_admin" {
			return "abc123", nil
		}
		return "", nil
	}
	return "", errors.New("status 401")
}

type fakeSessions struct {
	mu   sync.Mutex
	data map[domainauth.BrowserID]*domainauth.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{data: map[domainauth.BrowserID]*domainauth.Session{}}
}

func (f *fakeSessions) Save(_ context.Context, s *domainauth.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[s.BrowserID] = s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id domainauth.BrowserID) (*domainauth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.data[id]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id domainauth.BrowserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[id]; !ok {
		return domainauth.ErrSessionNotFound
	}
	delete(f.data, id)
	return nil
}

type fakeWorkspaces struct {
	deleted []domainauth.BrowserID
	moved   [][2]domainauth.BrowserID
}

func (f *fakeWorkspaces) Load(context.Context, domainauth.BrowserID) (*workspace.Workspace, error) {
	return workspace.New(employee.ScaleTen), nil
}

func (f *fakeWorkspaces) Delete(_ context.Context, id domainauth.BrowserID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeWorkspaces) Move(_ context.Context, from, to domainauth.BrowserID) error {
	f.moved = append(f.moved, [2]domainauth.BrowserID{from, to})
	return nil
}

func newService() (*Service, *fakeCredentials, *fakeSessions, *fakeWorkspaces) {
	api := &fakeCredentials{users: map[string]string{"hr_admin": "secret", "ghost": "boo"}}
	sessions := newFakeSessions()
	workspaces := &fakeWorkspaces{}
	return &Service{API: api, Sessions: sessions, Workspaces: workspaces}, api, sessions, workspaces
}

func TestLoginStoresTokenAndUsername(t *testing.T) {
	svc, _, sessions, _ := newService()

	session, err := svc.Login(context.Background(), LoginParams{BrowserID: "sid-1", Username: "hr_admin", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.Token("abc123"), session.Token)

	stored, err := sessions.Get(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.Token("abc123"), stored.Token)
	assert.Equal(t, "hr_admin", stored.Username)
	assert.True(t, stored.Authenticated())
}

func TestLoginFailureStoresNothing(t *testing.T) {
	svc, _, sessions, _ := newService()

	_, err := svc.Login(context.Background(), LoginParams{BrowserID: "sid-1", Username: "hr_admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = sessions.Get(context.Background(), "sid-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestLoginTransportFailureIsInvalidCredentials(t *testing.T) {
	svc, api, _, _ := newService()
	api.err = errors.New("dial tcp: connection refused")

	_, err := svc.Login(context.Background(), LoginParams{BrowserID: "sid-1", Username: "hr_admin", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginEmptyTokenIsInvalidCredentials(t *testing.T) {
	svc, _, sessions, _ := newService()

	_, err := svc.Login(context.Background(), LoginParams{BrowserID: "sid-1", Username: "ghost", Password: "boo"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, sessions.data)
}

func TestLoginRequiresBothFields(t *testing.T) {
	svc, api, _, _ := newService()

	_, err := svc.Login(context.Background(), LoginParams{BrowserID: "sid-1", Username: "  "})
	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields[FieldUsername])
	assert.Equal(t, "is required", verr.Fields[FieldPassword])
	assert.Zero(t, api.calls)
}

func TestLogoutClearsSessionAndWorkspace(t *testing.T) {
	svc, _, sessions, workspaces := newService()
	_, err := svc.Login(context.Background(), LoginParams{BrowserID: "sid-1", Username: "hr_admin", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "sid-1"))

	_, err = svc.Current(context.Background(), "sid-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	assert.Empty(t, sessions.data)
	assert.Equal(t, []domainauth.BrowserID{"sid-1"}, workspaces.deleted)

	require.NoError(t, svc.Logout(context.Background(), "sid-1"))
}

func TestCurrentWithoutBrowserID(t *testing.T) {
	svc, _, _, _ := newService()
	_, err := svc.Current(context.Background(), "")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestLoginRetiresPreviousBrowserID(t *testing.T) {
	svc, _, sessions, workspaces := newService()
	ctx := context.Background()
	require.NoError(t, sessions.Save(ctx, &domainauth.Session{BrowserID: "planted", Token: "stale", Username: "other"}))

	_, err := svc.Login(ctx, LoginParams{BrowserID: "fresh", PreviousID: "planted", Username: "hr_admin", Password: "secret"})
	require.NoError(t, err)

	_, err = sessions.Get(ctx, "planted")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	stored, err := sessions.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "hr_admin", stored.Username)
	assert.Equal(t, [][2]domainauth.BrowserID{{"planted", "fresh"}}, workspaces.moved)
}

func TestFailedLoginKeepsPreviousBrowserID(t *testing.T) {
	svc, _, _, workspaces := newService()

	_, err := svc.Login(context.Background(), LoginParams{BrowserID: "fresh", PreviousID: "planted", Username: "hr_admin", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, workspaces.moved)
}
