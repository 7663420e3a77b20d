// Package config menyiapkan semua dependency aplikasi sekali saat startup.
package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"kanban-board/configs"
	"kanban-board/internal/auth"
	"kanban-board/internal/cache"
	"kanban-board/internal/repository"
	"kanban-board/internal/service"
	"kanban-board/internal/telemetry"
	"kanban-board/pkg/crypto"
	"kanban-board/pkg/database"
	"kanban-board/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
)

// Store adalah semua yang dibutuhkan service dari penyimpanan.
type Store interface {
	service.UserStore
	service.BoardStore
	service.TaskStore
}

// Dependencies menggantikan variabel global: dibuat sekali saat startup
// lalu diteruskan ke handler dan middleware.
type Dependencies struct {
	Config   configs.Config
	Log      *logger.Loggers
	DB       *sql.DB
	Redis    *redis.Client
	Validate *validator.Validate
	Tokens   *auth.TokenManager
	Accounts *service.AccountService
	Boards   *service.BoardService
	Tasks    *service.TaskService

	shutdownTracing func(context.Context) error
}

// NewValidator mengembalikan validator yang melaporkan nama field json.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Build merakit service di atas store yang sudah terbuka. redisClient boleh
// nil untuk mematikan cache.
func Build(cfg configs.Config, log *logger.Loggers, store Store, redisClient *redis.Client) (*Dependencies, error) {
	tokens, err := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	hasher := crypto.NewPasswordHasher(cfg.BcryptCost)
	accounts, err := service.NewAccountService(store, hasher, tokens, log.Security)
	if err != nil {
		return nil, fmt.Errorf("init account service: %w", err)
	}
	taskCache := cache.NewTaskCache(redisClient, cfg.CacheTTL, log.Error)

	return &Dependencies{
		Config:          cfg,
		Log:             log,
		Redis:           redisClient,
		Validate:        NewValidator(),
		Tokens:          tokens,
		Accounts:        accounts,
		Boards:          service.NewBoardService(store, taskCache, log.Security),
		Tasks:           service.NewTaskService(store, store, taskCache, log.Security),
		shutdownTracing: func(context.Context) error { return nil },
	}, nil
}

// Open membuka store, Redis, dan exporter trace sesuai konfigurasi, membuat
// skema, lalu merakit dependency.
func Open(ctx context.Context, cfg configs.Config, log *logger.Loggers) (*Dependencies, error) {
	shutdownTracing, err := telemetry.Setup(ctx, "kanban-board", cfg.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	var (
		store Store
		db    *sql.DB
	)
	switch cfg.Store {
	case configs.StoreMemory:
		store = repository.NewMemoryStore()
	default:
		db, err = database.ConnectDB(ctx, cfg)
		if err != nil {
			_ = shutdownTracing(ctx)
			return nil, err
		}
		if err := repository.CreateTableIfNotExists(ctx, db); err != nil {
			_ = db.Close()
			_ = shutdownTracing(ctx)
			return nil, err
		}
		store = repository.NewPostgresStore(db)
	}

	redisClient, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		_ = shutdownTracing(ctx)
		return nil, err
	}

	deps, err := Build(cfg, log, store, redisClient)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = shutdownTracing(ctx)
		return nil, err
	}
	deps.DB = db
	deps.shutdownTracing = shutdownTracing
	return deps, nil
}

// Ping mengecek layanan pendukung untuk endpoint health.
func (d *Dependencies) Ping(ctx context.Context) error {
	if d.DB != nil {
		if err := d.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close menutup koneksi dengan urutan terbalik dari pembuatan.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	if d.shutdownTracing != nil {
		errs = append(errs, d.shutdownTracing(ctx))
	}
	return errors.Join(errs...)
}
