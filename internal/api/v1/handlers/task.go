package handlers

import (
	"kanban-board/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CreateTaskRequest struct {
	Title  string  `json:"title" validate:"max=255"`
	Status *string `json:"status" validate:"omitempty,oneof=todo progress done"`
}

// UpdateTaskRequest: pointer (*) menandakan field boleh tidak dikirim.
type UpdateTaskRequest struct {
	Title  *string `json:"title" validate:"omitempty,max=255"`
	Status *string `json:"status" validate:"omitempty,oneof=todo progress done"`
}

func (h *Handler) ListTasks(c *fiber.Ctx) error {
	userID, err := h.caller(c)
	if err != nil {
		return h.respondError(c, err)
	}
	boardID, err := paramID(c, "boardId", "board")
	if err != nil {
		return h.respondError(c, err)
	}

	tasks, err := h.deps.Tasks.List(c.UserContext(), userID, boardID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(tasks)
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	userID, err := h.caller(c)
	if err != nil {
		return h.respondError(c, err)
	}
	boardID, err := paramID(c, "boardId", "board")
	if err != nil {
		return h.respondError(c, err)
	}
	var req CreateTaskRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, err)
	}

	task, err := h.deps.Tasks.Create(c.UserContext(), userID, boardID, service.CreateTaskInput{
		Title:  req.Title,
		Status: req.Status,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	h.deps.Log.Audit.Info("Task created successfully", zap.String("task_id", task.ID.String()), zap.String("board_id", boardID.String()))
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	userID, err := h.caller(c)
	if err != nil {
		return h.respondError(c, err)
	}
	boardID, err := paramID(c, "boardId", "board")
	if err != nil {
		return h.respondError(c, err)
	}
	taskID, err := paramID(c, "taskId", "task")
	if err != nil {
		return h.respondError(c, err)
	}
	var req UpdateTaskRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, err)
	}

	task, err := h.deps.Tasks.Update(c.UserContext(), userID, boardID, taskID, service.UpdateTaskInput{
		Title:  req.Title,
		Status: req.Status,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	h.deps.Log.Audit.Info("Task updated", zap.String("task_id", task.ID.String()))
	return c.JSON(task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	userID, err := h.caller(c)
	if err != nil {
		return h.respondError(c, err)
	}
	boardID, err := paramID(c, "boardId", "board")
	if err != nil {
		return h.respondError(c, err)
	}
	taskID, err := paramID(c, "taskId", "task")
	if err != nil {
		return h.respondError(c, err)
	}

	task, err := h.deps.Tasks.Delete(c.UserContext(), userID, boardID, taskID)
	if err != nil {
		return h.respondError(c, err)
	}

	h.deps.Log.Audit.Info("Task deleted", zap.String("task_id", task.ID.String()))
	return c.JSON(task)
}
