package ginserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const loginPath = "/login"

// RequirePage sends visitors without a stored token to the login page. The
// token itself is never checked.
func RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentSession(c); !ok {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAPI is RequirePage for JSON endpoints.
func RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentSession(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
			return
		}
		c.Next()
	}
}
