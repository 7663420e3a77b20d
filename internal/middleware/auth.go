package middleware

import (
	"strings"

	"kanban-board/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userIDKey = "userID"

const (
	msgNoToken      = "No token provided"
	msgInvalidToken = "Invalid token"
)

// TokenVerifier dipenuhi oleh *auth.TokenManager.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// bearerToken mengambil token dari "Authorization: Bearer <token>".
// Format lain dianggap tidak ada token.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UseToken menolak request tanpa bearer token yang valid dan menyimpan id
// user di locals request.
func UseToken(verifier TokenVerifier, log *logger.Loggers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgNoToken})
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			log.Security.Warn("Invalid token",
				zap.String("ip", c.IP()),
				zap.String("url", c.OriginalURL()),
				zap.Any("request_id", c.Locals(requestIDKey)),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgInvalidToken})
		}
		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// CurrentUserID mengembalikan identitas yang diset oleh UseToken.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals(userIDKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
