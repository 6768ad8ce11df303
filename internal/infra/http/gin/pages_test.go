package ginserver

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnportal/internal/app/forms"
	domainauth "churnportal/internal/domain/auth"
)

func TestPublicPagesRender(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	assert.Equal(t, "Employee Turnover Prediction", doc.Find("h1").First().Text())
	assert.Equal(t, 1, doc.Find(`nav a[href="/login"]`).Length())
	assert.Zero(t, doc.Find(`nav a[href="/dashboard"]`).Length())

	rec = h.get("/about")
	require.Equal(t, http.StatusOK, rec.Code)
	doc = document(t, rec)
	assert.Equal(t, "About Employee Churn Portal", doc.Find(".about h2").First().Text())
	assert.Equal(t, 4, doc.Find(".about ul li").Length())
}

func TestSessionCookieIsIssuedOnce(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/")
	cookie := rec.Result().Cookies()
	require.Len(t, cookie, 1)
	assert.Equal(t, SessionCookieName, cookie[0].Name)
	assert.True(t, cookie[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie[0].SameSite)
	assert.Equal(t, sessionCookieAge, cookie[0].MaxAge)

	rec = h.get("/about")
	assert.Empty(t, rec.Result().Cookies())
}

func TestGuardRedirectsWithoutToken(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/dashboard", "/department", "/department/report.xlsx"} {
		rec := h.get(path)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
	rec := h.postForm("/dashboard", validRow(""))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Empty(t, h.api.singleCalls())

	rec = h.get("/api/v1/forms/single")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardAcceptsAnyStoredToken(t *testing.T) {
	h := newHarness(t)
	h.get("/")

	require.NoError(t, h.sessions.Save(context.Background(), &domainauth.Session{
		BrowserID: h.browserID(),
		Token:     "expired-or-forged",
		Username:  "someone",
	}))

	rec := h.get("/dashboard")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, document(t, rec).Find("#logout").Text(), "Logout (someone)")
}

func TestLoginStoresSessionAndRedirects(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm("/login", url.Values{"username": {"hr_admin"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	stored, err := h.sessions.Get(context.Background(), h.browserID())
	require.NoError(t, err)
	assert.Equal(t, domainauth.Token("abc123"), stored.Token)
	assert.Equal(t, "hr_admin", stored.Username)

	rec = h.get("/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	assert.Equal(t, "Logout (hr_admin)", strings.TrimSpace(doc.Find("#logout").Text()))
	assert.Equal(t, 1, doc.Find(`nav a[href="/department"]`).Length())
}

func TestLoginFailureShowsMessage(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm("/login", url.Values{"username": {"hr_admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid username or password", document(t, rec).Find("#login-error").Text())

	_, err := h.sessions.Get(context.Background(), h.browserID())
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	assert.Equal(t, http.StatusFound, h.get("/dashboard").Code)
}

func TestLoginRequiresFields(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm("/login", url.Values{"username": {""}, "password": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 2, document(t, rec).Find(".field .error").Length())
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	h.login()
	require.Equal(t, http.StatusOK, h.get("/dashboard").Code)

	rec := h.postForm("/logout", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusFound, h.get("/dashboard").Code)
	assert.Zero(t, h.workspaces.Len())
}

func TestLoginIssuesFreshBrowserID(t *testing.T) {
	h := newHarness(t)
	h.get("/")
	before := h.browserID()

	ws, err := h.workspaces.Load(context.Background(), before)
	require.NoError(t, err)
	require.NoError(t, ws.UpdateSingle(forms.FieldSalary, "medium"))

	h.login()
	after := h.browserID()
	assert.NotEqual(t, before, after)

	_, err = h.sessions.Get(context.Background(), before)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	rec := h.get("/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	selected := document(t, rec).Find(`select[name="` + forms.FieldSalary + `"] option[selected]`)
	assert.Equal(t, "medium", selected.AttrOr("value", ""))
	assert.Equal(t, 1, h.workspaces.Len())
}

func TestFixedBrowserIDDoesNotSurviveLogin(t *testing.T) {
	h := newHarness(t)
	planted := &http.Cookie{Name: SessionCookieName, Value: "attacker-chosen-id-0001"}
	h.cookies[SessionCookieName] = planted

	h.login()
	assert.NotEqual(t, planted.Value, h.cookies[SessionCookieName].Value)

	_, err := h.sessions.Get(context.Background(), domainauth.BrowserID(planted.Value))
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
