package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ctxRequestID = "request_id"
	ctxSession   = "session"
	ctxLogger    = "logger"

	headerRequestID = "X-Request-ID"
)

// RequestID propagates X-Request-ID, generating one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Header(headerRequestID, rid)
		c.Next()
	}
}

// Logger logs one line per request and exposes a request-scoped entry to
// handlers.
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := log.WithField("request_id", c.GetString(ctxRequestID))
		c.Set(ctxLogger, entry)

		c.Next()

		fields := logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if sess, ok := c.Get(ctxSession); ok {
			fields["session"] = sess.(*Session).ID
		}
		entry = entry.WithFields(fields)

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	}
}

// Sessions attaches the caller's session, creating one when needed. The
// cookie is re-issued on every request so it expires with the session's
// idle timeout rather than a fixed time after creation.
func (s *Server) Sessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(s.cfg.Session.CookieName)
		sess, _ := s.sessions.Lookup(id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(s.cfg.Session.CookieName, sess.ID, int(s.cfg.Session.TTL.Seconds()),
			"/", "", s.cfg.Session.Secure, true)
		c.Set(ctxSession, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *Session {
	return c.MustGet(ctxSession).(*Session)
}

func loggerFrom(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(ctxLogger); ok {
		return v.(logrus.FieldLogger)
	}
	return logrus.StandardLogger()
}
