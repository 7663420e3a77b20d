// Package service holds the account, board and task business rules:
// input validation, ownership checks and error classification.
package service

import (
	"context"

	"kanban-board/internal/models"

	"github.com/google/uuid"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
}

type BoardStore interface {
	ListBoardsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Board, error)
	CreateBoard(ctx context.Context, board *models.Board) error
	GetBoard(ctx context.Context, id uuid.UUID) (models.Board, error)
	UpdateBoardName(ctx context.Context, id uuid.UUID, name string) (models.Board, error)
	DeleteBoard(ctx context.Context, id uuid.UUID) (models.Board, error)
}

type TaskStore interface {
	ListTasksByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, boardID, taskID uuid.UUID, title *string, status *models.TaskStatus) (models.Task, error)
	DeleteTask(ctx context.Context, boardID, taskID uuid.UUID) (models.Task, error)
}

// PasswordHasher is satisfied by *crypto.PasswordHasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// TaskListCache is satisfied by *cache.TaskCache. Get reports the board's
// cache version; Set stores the list only if that version is still current,
// and Invalidate advances it.
type TaskListCache interface {
	Get(ctx context.Context, boardID uuid.UUID) (tasks []models.Task, version int64, ok bool)
	Set(ctx context.Context, boardID uuid.UUID, version int64, tasks []models.Task)
	Invalidate(ctx context.Context, boardID uuid.UUID)
}

type noCache struct{}

func (noCache) Get(context.Context, uuid.UUID) ([]models.Task, int64, bool) { return nil, 0, false }
func (noCache) Set(context.Context, uuid.UUID, int64, []models.Task)        {}
func (noCache) Invalidate(context.Context, uuid.UUID)                       {}
