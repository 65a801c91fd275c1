package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Audit emits one structured log line per request. Wallet routes also log
// the variant they addressed.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if err != nil && errors.As(err, &fe) {
			status = fe.Code
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if requestID := RequestIDFrom(c); requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}
		if variant := c.Params("variant"); variant != "" {
			attrs = append(attrs, slog.String("variant", variant))
		}

		ctx := c.UserContext()
		switch {
		case err != nil && status >= fiber.StatusInternalServerError:
			logger.ErrorContext(ctx, "request completed", append(attrs, slog.Any("error", err))...)
		case err != nil:
			logger.WarnContext(ctx, "request completed", append(attrs, slog.Any("error", err))...)
		default:
			logger.InfoContext(ctx, "request completed", attrs...)
		}
		return err
	}
}
