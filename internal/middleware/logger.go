package middleware

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"kanban-board/internal/apperror"
	"kanban-board/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// requestIDKey adalah key locals yang dipakai middleware requestid milik fiber.
const requestIDKey = "requestid"

// ErrorHandler menangkap panic dan mencatat setiap request beserta hasilnya.
func ErrorHandler(log *logger.Loggers) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error.Error(fmt.Sprintf("Recovered from panic: %v", r),
					zap.String("stack", string(debug.Stack())),
					zap.Any("request_id", c.Locals(requestIDKey)),
				)
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": apperror.InternalMessage,
				})
			}
			status := c.Response().StatusCode()
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			log.Request.Info("Request handled",
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.Any("request_id", c.Locals(requestIDKey)),
			)
		}()
		return c.Next()
	}
}

// RequestTimeout memberi deadline pada context setiap request, diteruskan ke
// store lewat c.UserContext().
func RequestTimeout(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// FiberErrorHandler menampilkan error yang lolos dari handler (route tidak
// dikenal, batas body, dll.) sebagai {"error": ...}.
func FiberErrorHandler(log *logger.Loggers) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Error.Error("Unhandled error",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Any("request_id", c.Locals(requestIDKey)),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": apperror.InternalMessage})
	}
}
