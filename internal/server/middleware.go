package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abhisek/fedrill/internal/logger"
)

// UserHeader carries the learner id for clients that do not keep cookies.
const UserHeader = "X-User-Id"

const userKey = "fedrill.user_id"

const maxUserIDLen = 128

// EnsureUser resolves the anonymous learner id from the X-User-Id header
// or the named cookie, minting a new id and cookie when neither is set.
func EnsureUser(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(UserHeader))
		if id == "" {
			if v, err := c.Cookie(cookieName); err == nil {
				id = strings.TrimSpace(v)
			}
		}
		if len(id) > maxUserIDLen {
			respondError(c, http.StatusBadRequest, "invalid_user", "user id too long")
			c.Abort()
			return
		}
		if id == "" {
			id = uuid.New().String()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   365 * 24 * 3600,
				HttpOnly: true,
				Secure:   c.Request.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Header(UserHeader, id)
		c.Set(userKey, id)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}

// RequestLogger logs one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id := userID(c); id != "" {
			fields = append(fields, "user_id", id)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// requireAdmin admits requests carrying the configured admin token as a
// bearer credential. The learner id is self-asserted and never grants
// admin access.
func (s *Server) requireAdmin(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || !s.cfg.AdminAuthorized(strings.TrimSpace(token)) {
		respondError(c, http.StatusForbidden, "forbidden", "admin access required")
		c.Abort()
		return
	}
	c.Next()
}
