package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// requestLogger logs each request once its handler returns. Streamed replies
// are logged when the stream is set up, not when it completes.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Debug("request handled",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
		"remote", c.IP(),
		"user_agent", c.Get(fiber.HeaderUserAgent),
	)
	return err
}
