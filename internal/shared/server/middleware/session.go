package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"parttimepal-backend/internal/shared/server/respond"
)

const (
	sessionIDKey    = "sessionId"
	sessionIDHeader = "X-Session-Id"
)

// SessionLookup reports whether a session id is live, refreshing its idle timer.
type SessionLookup func(id string) bool

// Session resolves the X-Session-Id header against live sessions.
// Routes whose full path is listed in exempt skip the check.
func Session(lookup SessionLookup, exempt ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}

		id := strings.TrimSpace(c.GetHeader(sessionIDHeader))
		if id == "" {
			respond.Error(c, http.StatusBadRequest, respond.CodeSessionRequired, respond.MsgSessionRequired, nil)
			return
		}
		if lookup == nil || !lookup(id) {
			respond.Error(c, http.StatusNotFound, respond.CodeSessionNotFound, respond.MsgSessionNotFound, nil)
			return
		}

		c.Set(sessionIDKey, id)
		c.Writer.Header().Set(sessionIDHeader, id)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID set by the Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(sessionIDKey)
}
