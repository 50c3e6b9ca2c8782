package logger

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"okrku_backend/internals/configs"
)

// LoggerMiddleware mencatat semua request lewat zap (structured).
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// biar status di log sama dengan yang dikirim ke client
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		}
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}

		l := configs.L().Desugar()
		switch {
		case status >= 500:
			l.Error("[HTTP]", fields...)
		case status >= 400:
			l.Warn("[HTTP]", fields...)
		default:
			l.Info("[HTTP]", fields...)
		}
		return nil
	}
}
