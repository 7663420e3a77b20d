package service

import (
	"context"
	"errors"
	"strings"

	"kanban-board/internal/apperror"
	"kanban-board/internal/auth"
	"kanban-board/internal/models"
	"kanban-board/internal/repository"
	"kanban-board/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBoardNotFound     = apperror.NotFound("Board not found")
	ErrBoardNameRequired = apperror.Validation("Board name is required")
	ErrForbidden         = apperror.Forbidden("Forbidden")
)

// BoardService manages boards owned by the calling user.
type BoardService struct {
	boards BoardStore
	cache  TaskListCache
	log    *zap.Logger
}

func NewBoardService(boards BoardStore, cache TaskListCache, log *zap.Logger) *BoardService {
	if log == nil {
		log = zap.NewNop()
	}
	if cache == nil {
		cache = noCache{}
	}
	return &BoardService{boards: boards, cache: cache, log: log}
}

// authorizeBoard loads the board and checks the caller owns it:
// lookup, then not-found, then ownership.
func authorizeBoard(ctx context.Context, boards BoardStore, log *zap.Logger, callerID, boardID uuid.UUID) (models.Board, error) {
	board, err := boards.GetBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Board{}, ErrBoardNotFound
		}
		return models.Board{}, apperror.Internal("get board", err)
	}
	if auth.Authorize(board.OwnerID, callerID) != auth.Allowed {
		log.Warn("Forbidden board access",
			zap.String("user_id", callerID.String()),
			zap.String("board_id", boardID.String()),
			zap.String("owner_id", board.OwnerID.String()),
		)
		return models.Board{}, ErrForbidden
	}
	return board, nil
}

func (s *BoardService) List(ctx context.Context, callerID uuid.UUID) (boards []models.Board, err error) {
	ctx, span := telemetry.StartSpan(ctx, "BoardService.List")
	defer func() { telemetry.EndSpan(span, err) }()

	boards, err = s.boards.ListBoardsByOwner(ctx, callerID)
	if err != nil {
		return nil, apperror.Internal("list boards", err)
	}
	return boards, nil
}

func (s *BoardService) Create(ctx context.Context, callerID uuid.UUID, name string) (board models.Board, err error) {
	ctx, span := telemetry.StartSpan(ctx, "BoardService.Create")
	defer func() { telemetry.EndSpan(span, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Board{}, ErrBoardNameRequired
	}
	board = models.Board{ID: uuid.New(), Name: name, OwnerID: callerID}
	if err := s.boards.CreateBoard(ctx, &board); err != nil {
		return models.Board{}, apperror.Internal("create board", err)
	}
	return board, nil
}

func (s *BoardService) Get(ctx context.Context, callerID, boardID uuid.UUID) (board models.Board, err error) {
	ctx, span := telemetry.StartSpan(ctx, "BoardService.Get")
	defer func() { telemetry.EndSpan(span, err) }()

	return authorizeBoard(ctx, s.boards, s.log, callerID, boardID)
}

func (s *BoardService) Rename(ctx context.Context, callerID, boardID uuid.UUID, name string) (board models.Board, err error) {
	ctx, span := telemetry.StartSpan(ctx, "BoardService.Rename")
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := authorizeBoard(ctx, s.boards, s.log, callerID, boardID); err != nil {
		return models.Board{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Board{}, ErrBoardNameRequired
	}
	board, err = s.boards.UpdateBoardName(ctx, boardID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Board{}, ErrBoardNotFound
		}
		return models.Board{}, apperror.Internal("rename board", err)
	}
	return board, nil
}

// Delete removes a board owned by the caller and returns it. A board owned by
// someone else is left untouched.
func (s *BoardService) Delete(ctx context.Context, callerID, boardID uuid.UUID) (board models.Board, err error) {
	ctx, span := telemetry.StartSpan(ctx, "BoardService.Delete")
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := authorizeBoard(ctx, s.boards, s.log, callerID, boardID); err != nil {
		return models.Board{}, err
	}
	board, err = s.boards.DeleteBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Board{}, ErrBoardNotFound
		}
		return models.Board{}, apperror.Internal("delete board", err)
	}
	s.cache.Invalidate(ctx, boardID)
	return board, nil
}
