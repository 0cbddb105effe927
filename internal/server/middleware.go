package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// HeaderActingUser carries the employee acting on the request. The
	// upstream gateway authenticates and injects it.
	HeaderActingUser = "X-Acting-User"

	defaultActingUser = "system"
)

func actingUser(c *gin.Context) string {
	user := strings.TrimSpace(c.GetHeader(HeaderActingUser))
	if user == "" {
		return defaultActingUser
	}
	return user
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("http request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}

// DispenseRateLimit throttles dispensing per acting user. The limiter
// fails open so a redis outage never blocks the pharmacy counter.
func (s *Server) DispenseRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:dispense:%s", actingUser(c))

		res, err := s.limiter.Allow(c.Request.Context(), key, s.cfg.CheckoutRateLimit, s.cfg.CheckoutBurst)
		if err != nil {
			s.log.Warn("dispense rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			if res.RetryAfter > 0 {
				c.Header("Retry-After", fmt.Sprintf("%d", int(res.RetryAfter.Seconds())+1))
			}
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
