package middleware

import (
	"net/http"

	"trendspotter/internal"
	"trendspotter/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "trendspotter_session"

const sessionContextKey = "trendspotter.session"

// EnsureSession attaches the caller's session to the request, creating one
// (and setting the cookie) when the cookie is absent or unknown
func EnsureSession(store *session.Store, logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(SessionCookie)
		s, created := store.GetOrCreate(raw)
		if created {
			logger.Debug("[EnsureSession] new session %s for %s", s.ID, c.ClientIP())
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, s.ID.String(), 0, "/", "", false, true)
		}
		c.Set(sessionContextKey, s)
		c.Next()
	}
}

// Session returns the session attached by EnsureSession
func Session(c *gin.Context) *session.Session {
	return c.MustGet(sessionContextKey).(*session.Session)
}
