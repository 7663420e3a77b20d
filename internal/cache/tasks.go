package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"kanban-board/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// versionTTL jauh lebih panjang dari umur satu request, jadi versi yang
// dibaca sebelum query tidak mungkin kembali ke nilai yang sama.
const versionTTL = 24 * time.Hour

var errStaleVersion = errors.New("task list changed while loading")

// TaskCache menyimpan daftar task per board di Redis.
// Client nil membuat semua operasi menjadi no-op. Error Redis tidak pernah
// menggagalkan request: pembacaan kembali ke store.
//
// Setiap board punya kunci versi yang dinaikkan oleh Invalidate. Set hanya
// menulis jika versi masih sama dengan yang dikembalikan Get, sehingga daftar
// lama tidak bisa menimpa perubahan yang terjadi selama query berjalan.
type TaskCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewTaskCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *TaskCache {
	if ttl < 0 {
		ttl = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskCache{client: client, ttl: ttl, log: log}
}

func (c *TaskCache) enabled() bool {
	return c != nil && c.client != nil
}

// Get mengembalikan daftar task yang tersimpan beserta versi board saat ini.
// Pada cache miss, versi tersebut diteruskan ke Set setelah membaca store.
func (c *TaskCache) Get(ctx context.Context, boardID uuid.UUID) ([]models.Task, int64, bool) {
	if !c.enabled() {
		return nil, 0, false
	}
	key, vkey := boardTasksKey(boardID), boardVersionKey(boardID)
	values, err := c.client.MGet(ctx, key, vkey).Result()
	if err != nil {
		c.log.Error("Error reading task cache", zap.String("key", key), zap.Error(err))
		return nil, 0, false
	}

	version, err := parseVersion(values[1])
	if err != nil {
		c.log.Error("Corrupt task cache version", zap.String("key", vkey), zap.Error(err))
		return nil, 0, false
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, version, false
	}
	var tasks []models.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		c.log.Error("Corrupt task cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return nil, version, false
	}
	return tasks, version, true
}

// Set menyimpan tasks hanya jika versi board masih sama dengan version.
func (c *TaskCache) Set(ctx context.Context, boardID uuid.UUID, version int64, tasks []models.Task) {
	if !c.enabled() || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	key, vkey := boardTasksKey(boardID), boardVersionKey(boardID)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, vkey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		// Ada perubahan di tengah jalan, biarkan request berikutnya mengisi.
		c.log.Debug("Skipped stale task list", zap.String("key", key))
	default:
		c.log.Error("Error caching tasks", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate menghapus daftar task board dan menaikkan versinya.
func (c *TaskCache) Invalidate(ctx context.Context, boardID uuid.UUID) {
	if !c.enabled() {
		return
	}
	key, vkey := boardTasksKey(boardID), boardVersionKey(boardID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, vkey)
		pipe.Expire(ctx, vkey, versionTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		c.log.Error("Error evicting task cache", zap.String("key", key), zap.Error(err))
	}
}

func parseVersion(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func boardTasksKey(boardID uuid.UUID) string {
	return "board:" + boardID.String() + ":tasks"
}

func boardVersionKey(boardID uuid.UUID) string {
	return "board:" + boardID.String() + ":version"
}
