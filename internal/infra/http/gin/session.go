package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	authsvc "churnportal/internal/app/services/auth"
	domainauth "churnportal/internal/domain/auth"
)

const (
	SessionCookieName = "churn_portal_sid"
	sessionCookieAge  = 365 * 24 * 60 * 60

	browserIDContextKey = "churnportal.browser_id"
	sessionContextKey   = "churnportal.session"
)

var browserIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{16,128}$`)

type TokenGenerator interface {
	NewToken() (string, error)
}

// BrowserSession gives every browser an opaque id cookie and loads the
// login session stored for it, if any.
type BrowserSession struct {
	Auth         *authsvc.Service
	Tokens       TokenGenerator
	SecureCookie bool
	Logger       *slog.Logger
}

func (m BrowserSession) Handle(c *gin.Context) {
	id, err := m.browserID(c)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("browser id generation failed", "error", err)
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Set(browserIDContextKey, id)

	if m.Auth != nil {
		session, err := m.Auth.Current(c.Request.Context(), id)
		switch {
		case err == nil && session.Authenticated():
			setSession(c, session)
		case err != nil && !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil:
			m.Logger.Warn("session lookup failed", "error", err)
		}
	}
	c.Next()
}

func (m BrowserSession) browserID(c *gin.Context) (domainauth.BrowserID, error) {
	if raw, err := c.Cookie(SessionCookieName); err == nil && browserIDPattern.MatchString(raw) {
		return domainauth.BrowserID(raw), nil
	}
	token, err := m.Tokens.NewToken()
	if err != nil {
		return "", err
	}
	id := domainauth.BrowserID(token)
	setBrowserCookie(c, id, m.SecureCookie)
	return id, nil
}

func setBrowserCookie(c *gin.Context, id domainauth.BrowserID, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    string(id),
		Path:     "/",
		MaxAge:   sessionCookieAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(browserIDContextKey, id)
}

func setSession(c *gin.Context, session *domainauth.Session) {
	c.Set(sessionContextKey, session)
	c.Request = c.Request.WithContext(domainauth.ContextWithSession(c.Request.Context(), session))
}

func clearSession(c *gin.Context) {
	c.Set(sessionContextKey, (*domainauth.Session)(nil))
	c.Request = c.Request.WithContext(domainauth.ContextWithSession(c.Request.Context(), nil))
}

func currentSession(c *gin.Context) (*domainauth.Session, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*domainauth.Session)
	return session, ok && session.Authenticated()
}

func browserIDFrom(c *gin.Context) domainauth.BrowserID {
	if value, ok := c.Get(browserIDContextKey); ok {
		if id, ok := value.(domainauth.BrowserID); ok {
			return id
		}
	}
	return ""
}
