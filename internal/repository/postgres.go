package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kanban-board/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore mengimplementasikan store user, board, dan task di atas
// database/sql dengan driver lib/pq.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ---- users ----

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO users (id, username, email, password) VALUES ($1, $2, $3, $4) RETURNING created_at",
		user.ID, user.UserName, user.Email, user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		// Jika error adalah unique violation, berarti email sudah terdaftar
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password, created_at FROM users WHERE email = $1",
		email,
	).Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// ---- boards ----

func (s *PostgresStore) ListBoardsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Board, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, owner_id, created_at FROM boards WHERE owner_id = $1 ORDER BY created_at DESC, id",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select boards: %w", err)
	}
	defer rows.Close()

	boards := []models.Board{}
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boards: %w", err)
	}
	return boards, nil
}

func (s *PostgresStore) CreateBoard(ctx context.Context, board *models.Board) error {
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO boards (id, name, owner_id) VALUES ($1, $2, $3) RETURNING created_at",
		board.ID, board.Name, board.OwnerID,
	).Scan(&board.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert board: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBoard(ctx context.Context, id uuid.UUID) (models.Board, error) {
	var b models.Board
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, owner_id, created_at FROM boards WHERE id = $1",
		id,
	).Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Board{}, ErrNotFound
	}
	if err != nil {
		return models.Board{}, fmt.Errorf("select board: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) UpdateBoardName(ctx context.Context, id uuid.UUID, name string) (models.Board, error) {
	var b models.Board
	err := s.db.QueryRowContext(ctx,
		"UPDATE boards SET name = $1 WHERE id = $2 RETURNING id, name, owner_id, created_at",
		name, id,
	).Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Board{}, ErrNotFound
	}
	if err != nil {
		return models.Board{}, fmt.Errorf("update board: %w", err)
	}
	return b, nil
}

// DeleteBoard menghapus board (task-nya ikut terhapus lewat cascade) dan
// mengembalikannya.
func (s *PostgresStore) DeleteBoard(ctx context.Context, id uuid.UUID) (models.Board, error) {
	var b models.Board
	err := s.db.QueryRowContext(ctx,
		"DELETE FROM boards WHERE id = $1 RETURNING id, name, owner_id, created_at",
		id,
	).Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Board{}, ErrNotFound
	}
	if err != nil {
		return models.Board{}, fmt.Errorf("delete board: %w", err)
	}
	return b, nil
}

// ---- tasks ----

func (s *PostgresStore) ListTasksByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, status, board_id, created_at FROM tasks WHERE board_id = $1 ORDER BY created_at, id",
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.BoardID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, task *models.Task) error {
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO tasks (id, board_id, title, status) VALUES ($1, $2, $3, $4) RETURNING created_at",
		task.ID, task.BoardID, task.Title, task.Status,
	).Scan(&task.CreatedAt)
	if err != nil {
		// Foreign key gagal berarti board sudah tidak ada
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// UpdateTask menerapkan field yang tidak nil ke task milik boardID lalu
// mengembalikan baris terbaru.
func (s *PostgresStore) UpdateTask(ctx context.Context, boardID, taskID uuid.UUID, title *string, status *models.TaskStatus) (models.Task, error) {
	var t models.Task
	err := s.db.QueryRowContext(ctx, `
		UPDATE tasks
		SET title = COALESCE($1, title),
			status = COALESCE($2, status)
		WHERE id = $3 AND board_id = $4
		RETURNING id, title, status, board_id, created_at`,
		nullableString(title), nullableStatus(status), taskID, boardID,
	).Scan(&t.ID, &t.Title, &t.Status, &t.BoardID, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, boardID, taskID uuid.UUID) (models.Task, error) {
	var t models.Task
	err := s.db.QueryRowContext(ctx,
		"DELETE FROM tasks WHERE id = $1 AND board_id = $2 RETURNING id, title, status, board_id, created_at",
		taskID, boardID,
	).Scan(&t.ID, &t.Title, &t.Status, &t.BoardID, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("delete task: %w", err)
	}
	return t, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableStatus(s *models.TaskStatus) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}
