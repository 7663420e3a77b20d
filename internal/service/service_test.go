package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"kanban-board/internal/apperror"
	"kanban-board/internal/auth"
	"kanban-board/internal/cache"
	"kanban-board/internal/models"
	"kanban-board/internal/repository"
	"kanban-board/pkg/crypto"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store    *repository.MemoryStore
	tokens   *auth.TokenManager
	accounts *AccountService
	boards   *BoardService
	tasks    *TaskService
}

func newFixture(t *testing.T, taskCache TaskListCache) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	tokens, err := auth.NewTokenManager([]byte("test-secret"), 0)
	require.NoError(t, err)
	accounts, err := NewAccountService(store, crypto.NewPasswordHasher(bcrypt.MinCost), tokens, nil)
	require.NoError(t, err)
	return &fixture{
		store:    store,
		tokens:   tokens,
		accounts: accounts,
		boards:   NewBoardService(store, taskCache, nil),
		tasks:    NewTaskService(store, store, taskCache, nil),
	}
}

func (f *fixture) signup(t *testing.T, email string) models.User {
	t.Helper()
	u, err := f.accounts.Signup(context.Background(), SignupInput{UserName: "user", Email: email, Password: "secret123"})
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }

func TestSignupOnlyOncePerEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	u, err := f.accounts.Signup(ctx, SignupInput{UserName: " alice ", Email: " Alice@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "alice", u.UserName)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	_, err = f.accounts.Signup(ctx, SignupInput{UserName: "other", Email: "alice@example.com", Password: "another1"})
	assert.ErrorIs(t, err, ErrEmailRegistered)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestSignupRequiresFields(t *testing.T) {
	f := newFixture(t, nil)
	for _, in := range []SignupInput{
		{Email: "a@example.com", Password: "secret123"},
		{UserName: "a", Password: "secret123"},
		{UserName: "a", Email: "a@example.com"},
	} {
		_, err := f.accounts.Signup(context.Background(), in)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	f := newFixture(t, nil)
	u := f.signup(t, "bob@example.com")

	token, got, err := f.accounts.Login(context.Background(), LoginInput{Email: "BOB@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	subject, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, subject)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t, nil)
	f.signup(t, "carol@example.com")
	ctx := context.Background()

	_, _, wrongPassword := f.accounts.Login(ctx, LoginInput{Email: "carol@example.com", Password: "wrong"})
	_, _, unknownEmail := f.accounts.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, apperror.HTTPStatus(wrongPassword), apperror.HTTPStatus(unknownEmail))
}

func TestBoardLifecycleAndOwnership(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.signup(t, "alice@example.com")
	bob := f.signup(t, "bob@example.com")

	_, err := f.boards.Create(ctx, alice.ID, "   ")
	assert.ErrorIs(t, err, ErrBoardNameRequired)

	board, err := f.boards.Create(ctx, alice.ID, "Roadmap")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, board.OwnerID)

	aliceBoards, err := f.boards.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceBoards, 1)
	bobBoards, err := f.boards.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobBoards)

	_, err = f.boards.Rename(ctx, bob.ID, board.ID, "Mine now")
	assert.ErrorIs(t, err, ErrForbidden)

	renamed, err := f.boards.Rename(ctx, alice.ID, board.ID, "Roadmap 2030")
	require.NoError(t, err)
	assert.Equal(t, "Roadmap 2030", renamed.Name)

	// B cannot delete A's board.
	_, err = f.boards.Delete(ctx, bob.ID, board.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	still, err := f.boards.Get(ctx, alice.ID, board.ID)
	require.NoError(t, err)
	assert.Equal(t, board.ID, still.ID)

	deleted, err := f.boards.Delete(ctx, alice.ID, board.ID)
	require.NoError(t, err)
	assert.Equal(t, board.ID, deleted.ID)

	_, err = f.boards.Delete(ctx, alice.ID, board.ID)
	assert.ErrorIs(t, err, ErrBoardNotFound)
}

func TestNotFoundIsCheckedBeforeOwnership(t *testing.T) {
	f := newFixture(t, nil)
	stranger := f.signup(t, "stranger@example.com")

	_, err := f.boards.Delete(context.Background(), stranger.ID, uuid.New())
	assert.ErrorIs(t, err, ErrBoardNotFound)
	_, err = f.tasks.List(context.Background(), stranger.ID, uuid.New())
	assert.ErrorIs(t, err, ErrBoardNotFound)
}

func TestTaskRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signup(t, "owner@example.com")

	board, err := f.boards.Create(ctx, owner.ID, "Board")
	require.NoError(t, err)

	created, err := f.tasks.Create(ctx, owner.ID, board.ID, CreateTaskInput{Title: "Write docs"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, created.Status)
	assert.Equal(t, board.ID, created.BoardID)

	listed, err := f.tasks.List(ctx, owner.ID, board.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created, listed[0])

	deleted, err := f.tasks.Delete(ctx, owner.ID, board.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, deleted)

	_, err = f.tasks.Delete(ctx, owner.ID, board.ID, created.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskStatusValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signup(t, "owner@example.com")
	board, err := f.boards.Create(ctx, owner.ID, "Board")
	require.NoError(t, err)

	_, err = f.tasks.Create(ctx, owner.ID, board.ID, CreateTaskInput{Title: "x", Status: strPtr("archived")})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.tasks.Create(ctx, owner.ID, board.ID, CreateTaskInput{Title: "  "})
	assert.ErrorIs(t, err, ErrTaskTitleRequired)

	task, err := f.tasks.Create(ctx, owner.ID, board.ID, CreateTaskInput{Title: "x", Status: strPtr("progress")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusProgress, task.Status)

	_, err = f.tasks.Update(ctx, owner.ID, board.ID, task.ID, UpdateTaskInput{Status: strPtr("finished")})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = f.tasks.Update(ctx, owner.ID, board.ID, task.ID, UpdateTaskInput{Title: strPtr("")})
	assert.ErrorIs(t, err, ErrTaskTitleRequired)

	updated, err := f.tasks.Update(ctx, owner.ID, board.ID, task.ID, UpdateTaskInput{Status: strPtr("done")})
	require.NoError(t, err)
	assert.Equal(t, "x", updated.Title)
	assert.Equal(t, models.StatusDone, updated.Status)

	_, err = f.tasks.Update(ctx, owner.ID, board.ID, uuid.New(), UpdateTaskInput{Title: strPtr("y")})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTasksInheritBoardOwnership(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.signup(t, "alice@example.com")
	mallory := f.signup(t, "mallory@example.com")

	board, err := f.boards.Create(ctx, alice.ID, "Private")
	require.NoError(t, err)
	task, err := f.tasks.Create(ctx, alice.ID, board.ID, CreateTaskInput{Title: "secret"})
	require.NoError(t, err)

	_, err = f.tasks.List(ctx, mallory.ID, board.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.tasks.Create(ctx, mallory.ID, board.ID, CreateTaskInput{Title: "spam"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.tasks.Update(ctx, mallory.ID, board.ID, task.ID, UpdateTaskInput{Title: strPtr("pwned")})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.tasks.Delete(ctx, mallory.ID, board.ID, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	tasks, err := f.tasks.List(ctx, alice.ID, board.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "secret", tasks[0].Title)
}

func TestTaskFromAnotherBoardIsNotFound(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signup(t, "owner@example.com")
	first, err := f.boards.Create(ctx, owner.ID, "First")
	require.NoError(t, err)
	second, err := f.boards.Create(ctx, owner.ID, "Second")
	require.NoError(t, err)

	task, err := f.tasks.Create(ctx, owner.ID, first.ID, CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	_, err = f.tasks.Delete(ctx, owner.ID, second.ID, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskListIsCachedAndInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t, cache.NewTaskCache(client, time.Hour, nil))
	ctx := context.Background()
	owner := f.signup(t, "owner@example.com")
	board, err := f.boards.Create(ctx, owner.ID, "Cached")
	require.NoError(t, err)
	key := "board:" + board.ID.String() + ":tasks"

	_, err = f.tasks.List(ctx, owner.ID, board.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))

	_, err = f.tasks.Create(ctx, owner.ID, board.ID, CreateTaskInput{Title: "new"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	tasks, err := f.tasks.List(ctx, owner.ID, board.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, mr.Exists(key))

	_, err = f.boards.Delete(ctx, owner.ID, board.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))
}

// pausingStore blocks the first ListTasksByBoard after it has read the rows,
// until release is closed.
type pausingStore struct {
	*repository.MemoryStore
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (s *pausingStore) ListTasksByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error) {
	tasks, err := s.MemoryStore.ListTasksByBoard(ctx, boardID)
	if s.armed.CompareAndSwap(true, false) {
		close(s.read)
		<-s.release
	}
	return tasks, err
}

func TestConcurrentWriteIsNotHiddenByCacheFill(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	taskCache := cache.NewTaskCache(client, time.Hour, nil)

	store := &pausingStore{
		MemoryStore: repository.NewMemoryStore(),
		read:        make(chan struct{}),
		release:     make(chan struct{}),
	}
	boards := NewBoardService(store, taskCache, nil)
	tasks := NewTaskService(store, store, taskCache, nil)
	ctx := context.Background()

	owner := uuid.New()
	board, err := boards.Create(ctx, owner, "Race")
	require.NoError(t, err)

	store.armed.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := tasks.List(ctx, owner, board.ID)
		done <- err
	}()

	// List has read the empty board; a task is created before it caches.
	<-store.read
	_, err = tasks.Create(ctx, owner, board.ID, CreateTaskInput{Title: "written meanwhile"})
	require.NoError(t, err)

	close(store.release)
	require.NoError(t, <-done)

	listed, err := tasks.List(ctx, owner, board.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "written meanwhile", listed[0].Title)
}

// vanishingBoardStore deletes the board right before inserting a task, as a
// concurrent board delete would.
type vanishingBoardStore struct {
	*repository.MemoryStore
}

func (s vanishingBoardStore) CreateTask(ctx context.Context, task *models.Task) error {
	if _, err := s.MemoryStore.DeleteBoard(ctx, task.BoardID); err != nil {
		return err
	}
	return s.MemoryStore.CreateTask(ctx, task)
}

func TestCreateTaskOnDeletedBoardIsNotFound(t *testing.T) {
	store := vanishingBoardStore{repository.NewMemoryStore()}
	boards := NewBoardService(store, nil, nil)
	tasks := NewTaskService(store, store, nil, nil)
	ctx := context.Background()

	owner := uuid.New()
	board, err := boards.Create(ctx, owner, "Short-lived")
	require.NoError(t, err)

	_, err = tasks.Create(ctx, owner, board.ID, CreateTaskInput{Title: "too late"})
	assert.ErrorIs(t, err, ErrBoardNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

type failingStore struct {
	*repository.MemoryStore
	err error
}

func (s failingStore) ListBoardsByOwner(context.Context, uuid.UUID) ([]models.Board, error) {
	return nil, s.err
}

func (s failingStore) ListTasksByBoard(context.Context, uuid.UUID) ([]models.Task, error) {
	return nil, s.err
}

func TestStoreFailuresAreInternal(t *testing.T) {
	mem := repository.NewMemoryStore()
	store := failingStore{MemoryStore: mem, err: errors.New("connection reset by peer")}
	boards := NewBoardService(store, nil, nil)
	tasks := NewTaskService(store, store, nil, nil)
	ctx := context.Background()

	owner := uuid.New()
	board, err := boards.Create(ctx, owner, "b")
	require.NoError(t, err)

	_, err = boards.List(ctx, owner)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, apperror.InternalMessage, apperror.PublicMessage(err))

	_, err = tasks.List(ctx, owner, board.ID)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}
