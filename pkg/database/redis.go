package database

import (
	"context"
	"fmt"

	"kanban-board/configs"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis mengembalikan client yang sudah di-ping, atau nil jika
// REDIS_ADDR kosong sehingga cache mati.
func ConnectRedis(ctx context.Context, cfg configs.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}
