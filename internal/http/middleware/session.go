package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resensebox/Mindful-Libraries-sub000/common/logger"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/session"
)

const (
	SessionCookieName = "ml_session"
	sessionContextKey = "mindful_session"
	issuedContextKey  = "mindful_session_issued"
)

// Session attaches the browser's session. The cookie is re-issued on every
// request so its Max-Age slides with activity, matching the registry's idle
// expiry.
func Session(registry *session.Registry, secure bool, maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented, _ := c.Cookie(SessionCookieName)
		s := registry.Get(presented)

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, s.ID, maxAge, "/", "", secure, true)

		c.Set(sessionContextKey, s)
		c.Set(issuedContextKey, s.ID != presented)
		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{SessionID: &s.ID})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CurrentSession returns the session set by Session, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

// RateLimit rejects submissions beyond the session's budget. Requests that
// did not present a live session cookie are limited by client IP instead.
// Must run after Session.
func RateLimit(registry *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c, registry) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many submissions, please wait a moment and try again",
			})
			return
		}
		c.Next()
	}
}

func allow(c *gin.Context, registry *session.Registry) bool {
	s := CurrentSession(c)
	switch {
	case s == nil:
		return registry.AllowClient(c.ClientIP())
	case c.GetBool(issuedContextKey):
		return registry.AllowClient(c.ClientIP()) && s.Allow()
	default:
		return s.Allow()
	}
}
