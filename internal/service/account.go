package service

import (
	"context"
	"errors"
	"strings"

	"kanban-board/internal/apperror"
	"kanban-board/internal/models"
	"kanban-board/internal/repository"
	"kanban-board/internal/telemetry"
	"kanban-board/pkg/crypto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmailRegistered    = apperror.Validation("Email already registered")
	ErrInvalidCredentials = apperror.Authentication("Invalid credentials")
)

type SignupInput struct {
	UserName string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AccountService handles signup and login.
type AccountService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	log    *zap.Logger

	// dummyHash is compared against on unknown emails so a login for a
	// missing account costs the same as a wrong password.
	dummyHash string
}

func NewAccountService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, log *zap.Logger) (*AccountService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	return &AccountService{users: users, hasher: hasher, tokens: tokens, log: log, dummyHash: dummy}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput) (user models.User, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AccountService.Signup")
	defer func() { telemetry.EndSpan(span, err) }()

	userName := strings.TrimSpace(in.UserName)
	email := normalizeEmail(in.Email)
	if userName == "" || email == "" || in.Password == "" {
		return models.User{}, apperror.Validation("userName, userEmail and password are required")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return models.User{}, apperror.Validation("Password must be at most 72 bytes")
		}
		return models.User{}, apperror.Internal("hash password", err)
	}

	user = models.User{
		ID:           uuid.New(),
		UserName:     userName,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.log.Warn("Duplicate email on signup", zap.String("email", email))
			return models.User{}, ErrEmailRegistered
		}
		return models.User{}, apperror.Internal("create user", err)
	}
	return user, nil
}

// Login returns a signed token for valid credentials. An unknown email and a
// wrong password give the same ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (token string, user models.User, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AccountService.Login")
	defer func() { telemetry.EndSpan(span, err) }()

	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return "", models.User{}, apperror.Validation("userEmail and password are required")
	}

	user, err = s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(in.Password, s.dummyHash)
			s.log.Warn("Login for unknown email", zap.String("email", email))
			return "", models.User{}, ErrInvalidCredentials
		}
		return "", models.User{}, apperror.Internal("find user", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return "", models.User{}, ErrInvalidCredentials
	}

	token, err = s.tokens.Issue(user.ID)
	if err != nil {
		return "", models.User{}, apperror.Internal("issue token", err)
	}
	return token, user, nil
}
