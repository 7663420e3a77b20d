package service

import (
	"context"
	"errors"
	"strings"

	"kanban-board/internal/apperror"
	"kanban-board/internal/models"
	"kanban-board/internal/repository"
	"kanban-board/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTaskNotFound      = apperror.NotFound("Task not found")
	ErrTaskTitleRequired = apperror.Validation("Task title is required")
	ErrInvalidStatus     = apperror.Validation("Invalid status: must be one of todo, progress, done")
)

type CreateTaskInput struct {
	Title  string
	Status *string
}

// UpdateTaskInput carries a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title  *string
	Status *string
}

// TaskService manages tasks. Every operation requires the caller to own the
// board the task belongs to.
type TaskService struct {
	boards BoardStore
	tasks  TaskStore
	cache  TaskListCache
	log    *zap.Logger
}

func NewTaskService(boards BoardStore, tasks TaskStore, cache TaskListCache, log *zap.Logger) *TaskService {
	if log == nil {
		log = zap.NewNop()
	}
	if cache == nil {
		cache = noCache{}
	}
	return &TaskService{boards: boards, tasks: tasks, cache: cache, log: log}
}

func parseStatus(raw *string) (*models.TaskStatus, error) {
	if raw == nil {
		return nil, nil
	}
	status := models.TaskStatus(strings.TrimSpace(*raw))
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return &status, nil
}

func (s *TaskService) List(ctx context.Context, callerID, boardID uuid.UUID) (tasks []models.Task, err error) {
	ctx, span := telemetry.StartSpan(ctx, "TaskService.List")
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := authorizeBoard(ctx, s.boards, s.log, callerID, boardID); err != nil {
		return nil, err
	}
	cached, version, ok := s.cache.Get(ctx, boardID)
	if ok {
		return cached, nil
	}
	tasks, err = s.tasks.ListTasksByBoard(ctx, boardID)
	if err != nil {
		return nil, apperror.Internal("list tasks", err)
	}
	// The fill is skipped when a mutation bumped the version meanwhile.
	s.cache.Set(ctx, boardID, version, tasks)
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, callerID, boardID uuid.UUID, in CreateTaskInput) (task models.Task, err error) {
	ctx, span := telemetry.StartSpan(ctx, "TaskService.Create")
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := authorizeBoard(ctx, s.boards, s.log, callerID, boardID); err != nil {
		return models.Task{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, ErrTaskTitleRequired
	}
	status := models.DefaultTaskStatus
	if in.Status != nil {
		parsed, err := parseStatus(in.Status)
		if err != nil {
			return models.Task{}, err
		}
		status = *parsed
	}

	task = models.Task{ID: uuid.New(), Title: title, Status: status, BoardID: boardID}
	if err := s.tasks.CreateTask(ctx, &task); err != nil {
		// The board may have been deleted between the check and the insert.
		if errors.Is(err, repository.ErrNotFound) {
			return models.Task{}, ErrBoardNotFound
		}
		return models.Task{}, apperror.Internal("create task", err)
	}
	s.cache.Invalidate(ctx, boardID)
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, callerID, boardID, taskID uuid.UUID, in UpdateTaskInput) (task models.Task, err error) {
	ctx, span := telemetry.StartSpan(ctx, "TaskService.Update")
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := authorizeBoard(ctx, s.boards, s.log, callerID, boardID); err != nil {
		return models.Task{}, err
	}

	var title *string
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		if trimmed == "" {
			return models.Task{}, ErrTaskTitleRequired
		}
		title = &trimmed
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return models.Task{}, err
	}

	task, err = s.tasks.UpdateTask(ctx, boardID, taskID, title, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, apperror.Internal("update task", err)
	}
	s.cache.Invalidate(ctx, boardID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, callerID, boardID, taskID uuid.UUID) (task models.Task, err error) {
	ctx, span := telemetry.StartSpan(ctx, "TaskService.Delete")
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := authorizeBoard(ctx, s.boards, s.log, callerID, boardID); err != nil {
		return models.Task{}, err
	}
	task, err = s.tasks.DeleteTask(ctx, boardID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, apperror.Internal("delete task", err)
	}
	s.cache.Invalidate(ctx, boardID)
	return task, nil
}
