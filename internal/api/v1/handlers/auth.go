package handlers

import (
	"kanban-board/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SignupRequest struct {
	UserName  string `json:"userName" validate:"required,max=255"`
	UserEmail string `json:"userEmail" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,max=72"`
}

// LoginRequest menerima userName juga, tetapi login dicocokkan lewat email.
type LoginRequest struct {
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

type SignupResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, err)
	}

	user, err := h.deps.Accounts.Signup(c.UserContext(), service.SignupInput{
		UserName: req.UserName,
		Email:    req.UserEmail,
		Password: req.Password,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	h.deps.Log.Audit.Info("User registered successfully", zap.String("user_id", user.ID.String()))
	return c.Status(fiber.StatusCreated).JSON(SignupResponse{
		Message: "User created successfully",
		User: UserResponse{
			ID:       user.ID.String(),
			UserName: user.UserName,
			Email:    user.Email,
		},
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, err)
	}

	token, user, err := h.deps.Accounts.Login(c.UserContext(), service.LoginInput{
		Email:    req.UserEmail,
		Password: req.Password,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	h.deps.Log.Audit.Info("Login success", zap.String("user_id", user.ID.String()))
	return c.JSON(LoginResponse{Message: "Login success", Token: token})
}
