package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// BoardRequest adalah body POST /boards dan PUT /boards/:id. Nama kosong
// dicek oleh board service.
type BoardRequest struct {
	Name string `json:"name" validate:"max=255"`
}

func (h *Handler) ListBoards(c *fiber.Ctx) error {
	userID, err := h.caller(c)
	if err != nil {
		return h.respondError(c, err)
	}
	boards, err := h.deps.Boards.List(c.UserContext(), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(boards)
}

func (h *Handler) CreateBoard(c *fiber.Ctx) error {
	userID, err := h.caller(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var req BoardRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, err)
	}

	board, err := h.deps.Boards.Create(c.UserContext(), userID, req.Name)
	if err != nil {
		return h.respondError(c, err)
	}

	h.deps.Log.Audit.Info("Board created", zap.String("board_id", board.ID.String()), zap.String("user_id", userID.String()))
	return c.Status(fiber.StatusCreated).JSON(board)
}

func (h *Handler) UpdateBoard(c *fiber.Ctx) error {
	userID, err := h.caller(c)
	if err != nil {
		return h.respondError(c, err)
	}
	boardID, err := paramID(c, "id", "board")
	if err != nil {
		return h.respondError(c, err)
	}
	var req BoardRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, err)
	}

	board, err := h.deps.Boards.Rename(c.UserContext(), userID, boardID, req.Name)
	if err != nil {
		return h.respondError(c, err)
	}

	h.deps.Log.Audit.Info("Board updated", zap.String("board_id", board.ID.String()))
	return c.JSON(board)
}

func (h *Handler) DeleteBoard(c *fiber.Ctx) error {
	userID, err := h.caller(c)
	if err != nil {
		return h.respondError(c, err)
	}
	boardID, err := paramID(c, "id", "board")
	if err != nil {
		return h.respondError(c, err)
	}

	board, err := h.deps.Boards.Delete(c.UserContext(), userID, boardID)
	if err != nil {
		return h.respondError(c, err)
	}

	h.deps.Log.Audit.Info("Board deleted", zap.String("board_id", board.ID.String()), zap.String("user_id", userID.String()))
	return c.JSON(board)
}
