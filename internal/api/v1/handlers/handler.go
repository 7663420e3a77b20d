package handlers

import (
	"errors"
	"fmt"
	"strings"

	"kanban-board/internal/apperror"
	"kanban-board/internal/config"
	"kanban-board/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler melayani semua endpoint HTTP.
type Handler struct {
	deps *config.Dependencies
}

func New(deps *config.Dependencies) *Handler {
	return &Handler{deps: deps}
}

// respondError menulis err sebagai {"error": ...}. Error internal dicatat ke
// log lalu diganti dengan pesan umum.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	status := apperror.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		h.deps.Log.Error.Error("Internal error",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Any("request_id", c.Locals("requestid")),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(fiber.Map{"error": apperror.PublicMessage(err)})
}

// bind mem-parse body JSON ke req lalu memvalidasinya.
func (h *Handler) bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperror.Validation("Bad request")
	}
	if err := h.deps.Validate.Struct(req); err != nil {
		return apperror.Validation(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "oneof":
		return fmt.Sprintf("Invalid %s: must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return "Invalid " + fe.Field()
	}
}

// caller mengembalikan id user yang diset oleh middleware.UseToken.
func (h *Handler) caller(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return uuid.Nil, apperror.Authentication("No token provided")
	}
	return userID, nil
}

func paramID(c *fiber.Ctx, name, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid " + entity + " ID")
	}
	return id, nil
}
