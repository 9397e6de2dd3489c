package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/melih/dockgen/internal/log"
)

const requestIDKey = "requestid"

// requestLogger attaches a request-scoped logger to the user context and logs
// every completed request.
func requestLogger(base *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		entry := base.WithField("request_id", c.Locals(requestIDKey))
		c.SetUserContext(log.WithLogger(c.UserContext(), entry))

		err := c.Next()
		if err != nil {
			// let the error handler set the status before it is logged
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		entry.WithFields(logrus.Fields{
			"method":   c.Method(),
			"path":     c.Path(),
			"status":   c.Response().StatusCode(),
			"duration": time.Since(start).String(),
		}).Info("request completed")
		return nil
	}
}

// errorHandler renders every error as {"error": message}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
