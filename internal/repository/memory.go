package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"kanban-board/internal/models"

	"github.com/google/uuid"
)

// MemoryStore adalah store di dalam proses dengan kontrak yang sama seperti
// PostgresStore. Dipakai untuk STORE=memory serta test service dan handler.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]models.User
	emails map[string]uuid.UUID
	boards map[uuid.UUID]models.Board
	tasks  map[uuid.UUID]models.Task
	now    func() time.Time
	last   time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[uuid.UUID]models.User),
		emails: make(map[string]uuid.UUID),
		boards: make(map[uuid.UUID]models.Board),
		tasks:  make(map[uuid.UUID]models.Task),
		now:    time.Now,
	}
}

// stamp mengembalikan waktu pembuatan yang selalu naik agar urutan tetap
// stabil walau dalam satu tick jam. Pemanggil memegang mu.
func (s *MemoryStore) stamp() time.Time {
	now := s.now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[user.Email]; ok {
		return ErrDuplicateEmail
	}
	user.CreatedAt = s.stamp()
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStore) ListBoardsByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	boards := []models.Board{}
	for _, b := range s.boards {
		if b.OwnerID == ownerID {
			boards = append(boards, b)
		}
	}
	sort.Slice(boards, func(i, j int) bool {
		return boards[i].CreatedAt.After(boards[j].CreatedAt)
	})
	return boards, nil
}

func (s *MemoryStore) CreateBoard(_ context.Context, board *models.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	board.CreatedAt = s.stamp()
	s.boards[board.ID] = *board
	return nil
}

func (s *MemoryStore) GetBoard(_ context.Context, id uuid.UUID) (models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[id]
	if !ok {
		return models.Board{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) UpdateBoardName(_ context.Context, id uuid.UUID, name string) (models.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[id]
	if !ok {
		return models.Board{}, ErrNotFound
	}
	b.Name = name
	s.boards[id] = b
	return b, nil
}

func (s *MemoryStore) DeleteBoard(_ context.Context, id uuid.UUID) (models.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[id]
	if !ok {
		return models.Board{}, ErrNotFound
	}
	delete(s.boards, id)
	for taskID, t := range s.tasks {
		if t.BoardID == id {
			delete(s.tasks, taskID)
		}
	}
	return b, nil
}

func (s *MemoryStore) ListTasksByBoard(_ context.Context, boardID uuid.UUID) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []models.Task{}
	for _, t := range s.tasks {
		if t.BoardID == boardID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *MemoryStore) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Sama seperti foreign key di Postgres
	if _, ok := s.boards[task.BoardID]; !ok {
		return ErrNotFound
	}
	task.CreatedAt = s.stamp()
	s.tasks[task.ID] = *task
	return nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, boardID, taskID uuid.UUID, title *string, status *models.TaskStatus) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok || t.BoardID != boardID {
		return models.Task{}, ErrNotFound
	}
	if title != nil {
		t.Title = *title
	}
	if status != nil {
		t.Status = *status
	}
	s.tasks[taskID] = t
	return t, nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, boardID, taskID uuid.UUID) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok || t.BoardID != boardID {
		return models.Task{}, ErrNotFound
	}
	delete(s.tasks, taskID)
	return t, nil
}
