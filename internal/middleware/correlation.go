package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const correlationIDKey = "correlation_id"

// CorrelationID tags every request with an id, reusing the caller's
// X-Correlation-ID or X-Request-ID when present. Error bodies echo it as trace_id.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := strings.TrimSpace(c.Get("X-Correlation-ID"))
		if incoming == "" {
			incoming = strings.TrimSpace(c.Get("X-Request-ID"))
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals(correlationIDKey, incoming)
		c.Set("X-Correlation-ID", incoming)

		return c.Next()
	}
}

func GetCorrelationID(c *fiber.Ctx) string {
	if id, ok := c.Locals(correlationIDKey).(string); ok {
		return id
	}
	return uuid.New().String()[:8]
}
