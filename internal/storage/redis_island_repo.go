package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/annel0/cauldron-witchery/internal/logging"
	"github.com/go-redis/redis/v8"
)

// RedisIslandRepo хранит острова в Redis: один hash, поле - ID острова, значение - JSON снимка
type RedisIslandRepo struct {
	client *redis.Client
	key    string
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string // Адрес Redis сервера
	Password  string // Пароль (пустой если не требуется)
	DB        int    // Номер базы данных
	KeyPrefix string // Префикс для ключей
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "cauldron:island:",
	}
}

// NewRedisIslandRepo подключается к Redis и проверяет соединение
func NewRedisIslandRepo(cfg *RedisConfig) (*RedisIslandRepo, error) {
	if cfg == nil {
		cfg = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetComponentLogger("storage").Info("🔴 Connected to Redis at %s", cfg.Addr)
	return &RedisIslandRepo{client: client, key: cfg.KeyPrefix + "all"}, nil
}

// Save записывает снимок острова в hash
func (r *RedisIslandRepo) Save(ctx context.Context, v island.View) error {
	if v.ID == "" {
		return ErrEmptyID
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal island: %w", err)
	}
	if err := r.client.HSet(ctx, r.key, v.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to save island %s: %w", v.ID, err)
	}
	return nil
}

// LoadAll читает весь hash
func (r *RedisIslandRepo) LoadAll(ctx context.Context) ([]island.View, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load islands: %w", err)
	}

	out := make([]island.View, 0, len(raw))
	for id, data := range raw {
		var v island.View
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal island %s: %w", id, err)
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete удаляет поле острова
func (r *RedisIslandRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	return r.client.HDel(ctx, r.key, id).Err()
}

func (r *RedisIslandRepo) Close() error {
	return r.client.Close()
}
