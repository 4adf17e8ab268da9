package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vacina-dashboard/internal/session"
	"github.com/jwalitptl/vacina-dashboard/pkg/httputil"
)

const ContextSession = "session"

// SessionConfig controls how callers without a usable token are treated.
type SessionConfig struct {
	LoginURL string
	Now      func() time.Time
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{LoginURL: "/login", Now: time.Now}
}

// Authenticate decodes the caller's token and stores the session in the
// context. API callers without one get 401.
func Authenticate(config SessionConfig) gin.HandlerFunc {
	now := nowFunc(config)
	return func(c *gin.Context) {
		s, err := session.FromRequest(c.Request, now())
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		c.Set(ContextSession, s)
		c.Next()
	}
}

// AuthenticatePage is Authenticate for HTML pages: the token cookie is
// cleared and the browser is sent to the login page.
func AuthenticatePage(config SessionConfig) gin.HandlerFunc {
	now := nowFunc(config)
	return func(c *gin.Context) {
		s, err := session.FromRequest(c.Request, now())
		if err != nil {
			_ = c.Error(err)
			ClearToken(c)
			c.Redirect(http.StatusFound, config.LoginURL)
			c.Abort()
			return
		}
		c.Set(ContextSession, s)
		c.Next()
	}
}

// ClearToken expires the token cookie.
func ClearToken(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", false, true)
}

// GetSession returns the session stored by Authenticate, or nil.
func GetSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(ContextSession); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

func nowFunc(config SessionConfig) func() time.Time {
	if config.Now == nil {
		return time.Now
	}
	return config.Now
}
