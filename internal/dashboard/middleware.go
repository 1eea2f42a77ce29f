package dashboard

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guildhub/internal/apperr"
	"guildhub/internal/metrics"
	"guildhub/internal/permissions"
)

const sessionKey = "session"

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic in handler", zap.String("route", c.FullPath()), zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "Internal"})
	})
}

func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) requireSession(c *gin.Context) {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		s.fail(c, apperr.Unauthenticated("not logged in"))
		return
	}
	sess, ok := s.sessions.Get(cookie)
	if !ok {
		s.fail(c, apperr.Unauthenticated("session expired"))
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	if !s.cfg.IsAdmin(currentSession(c).UserID) {
		s.fail(c, apperr.Forbidden("administrator only"))
		return
	}
	c.Next()
}

func currentSession(c *gin.Context) Session {
	value, _ := c.Get(sessionKey)
	sess, _ := value.(Session)
	return sess
}

func caller(c *gin.Context) permissions.Caller {
	sess := currentSession(c)
	return permissions.Caller{UserID: sess.UserID, AccessToken: sess.AccessToken}
}
