package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/cauldron-witchery/internal/config"
	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/annel0/cauldron-witchery/internal/logging"
)

// ErrEmptyID возвращается при попытке сохранить или удалить остров без ID
var ErrEmptyID = errors.New("island id is empty")

// IslandRepo определяет интерфейс для сохранения и загрузки островов.
// Острова хранятся снимками island.View, ключ - ID острова.
type IslandRepo interface {
	// Save сохраняет (или перезаписывает) снимок острова.
	Save(ctx context.Context, v island.View) error

	// LoadAll загружает все сохранённые острова.
	LoadAll(ctx context.Context) ([]island.View, error)

	// Delete удаляет остров. Отсутствующий остров ошибкой не считается.
	Delete(ctx context.Context, id string) error

	// Close освобождает соединения и файлы хранилища.
	Close() error
}

// Open создаёт хранилище по конфигурации
func Open(cfg config.StorageConfig) (IslandRepo, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryIslandRepo(), nil
	case "badger":
		return NewBadgerIslandRepo(cfg.Path)
	case "redis":
		return NewRedisIslandRepo(&RedisConfig{
			Addr:      cfg.RedisAddr,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
	case "mariadb":
		return NewMariaIslandRepo(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Restore загружает острова из хранилища в реестр.
// Повреждённые и пересекающиеся записи пропускаются с предупреждением.
func Restore(ctx context.Context, repo IslandRepo, islands *island.Manager) (int, error) {
	views, err := repo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load islands: %w", err)
	}

	logger := logging.GetComponentLogger("storage")
	restored := 0
	for _, v := range views {
		is, err := island.FromView(v)
		if err != nil {
			logger.Warn("⚠️ Пропущен остров %s: %v", v.ID, err)
			continue
		}
		if err := islands.Add(is); err != nil {
			logger.Warn("⚠️ Пропущен остров %s: %v", v.ID, err)
			continue
		}
		restored++
	}
	return restored, nil
}
