package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Logger logs each HTTP request as one structured entry with request_id,
// method, path, status, and latency in milliseconds. Long-lived streaming
// requests (the events endpoint) log on disconnect, when the handler
// returns.
func Logger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		log.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000.0,
		}).Info("request")

		return err
	}
}
