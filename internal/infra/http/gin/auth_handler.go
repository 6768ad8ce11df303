package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"churnportal/internal/app/forms"
	authsvc "churnportal/internal/app/services/auth"
	domainauth "churnportal/internal/domain/auth"
)

const dashboardPath = "/dashboard"

type AuthHTTP interface {
	LoginPage(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type AuthHandler struct {
	Service *authsvc.Service
	// Tokens issues the fresh browser id handed out on login. Without it the
	// pre-login id is kept.
	Tokens       TokenGenerator
	SecureCookie bool
	Logger       *slog.Logger
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", newPageData(c, "Login"))
}

func (h AuthHandler) Login(c *gin.Context) {
	if h.Service == nil {
		h.renderLogin(c, http.StatusServiceUnavailable, "", "auth service unavailable", nil)
		return
	}
	var req loginForm
	if err := c.ShouldBind(&req); err != nil {
		h.renderLogin(c, http.StatusBadRequest, "", "invalid request", nil)
		return
	}
	previous := browserIDFrom(c)
	next := previous
	if h.Tokens != nil {
		token, err := h.Tokens.NewToken()
		if err != nil {
			h.respondAuthError(c, req.Username, err)
			return
		}
		next = domainauth.BrowserID(token)
	}
	session, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams{
		BrowserID:  next,
		PreviousID: previous,
		Username:   req.Username,
		Password:   req.Password,
	})
	if err != nil {
		h.respondAuthError(c, req.Username, err)
		return
	}
	if next != previous {
		setBrowserCookie(c, next, h.SecureCookie)
	}
	setSession(c, session)
	c.Redirect(http.StatusSeeOther, dashboardPath)
}

func (h AuthHandler) Logout(c *gin.Context) {
	if h.Service == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if err := h.Service.Logout(c.Request.Context(), browserIDFrom(c)); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("logout failed", "error", err)
		}
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "logout failed")
		return
	}
	clearSession(c)
	c.Redirect(http.StatusSeeOther, loginPath)
}

func (h AuthHandler) respondAuthError(c *gin.Context, username string, err error) {
	var verr *forms.ValidationError
	switch {
	case errors.As(err, &verr):
		h.renderLogin(c, http.StatusUnprocessableEntity, username, "", verr.Fields)
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		h.renderLogin(c, http.StatusUnauthorized, username, authsvc.InvalidCredentialsMessage, nil)
	default:
		if h.Logger != nil {
			h.Logger.Error("login failed", "error", err)
		}
		_ = c.Error(err)
		h.renderLogin(c, http.StatusInternalServerError, username, "login failed, please try again", nil)
	}
}

func (h AuthHandler) renderLogin(c *gin.Context, status int, username, message string, problems map[string]string) {
	data := newPageData(c, "Login")
	data.Error = message
	data.Login = loginView{Username: username, Errors: problems}
	c.HTML(status, "login.html", data)
}

var _ AuthHTTP = AuthHandler{}
