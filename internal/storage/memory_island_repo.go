package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/island"
)

// MemoryIslandRepo реализует IslandRepo в памяти.
// Используется по умолчанию и в тестах.
// ВНИМАНИЕ: Данные теряются при перезапуске сервера!
type MemoryIslandRepo struct {
	mu   sync.RWMutex
	data map[string]island.View
}

// NewMemoryIslandRepo создает пустой репозиторий островов в памяти
func NewMemoryIslandRepo() *MemoryIslandRepo {
	return &MemoryIslandRepo{
		data: make(map[string]island.View),
	}
}

// Save сохраняет снимок острова в памяти
func (r *MemoryIslandRepo) Save(ctx context.Context, v island.View) error {
	if v.ID == "" {
		return ErrEmptyID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[v.ID] = v
	return nil
}

// LoadAll возвращает все острова, отсортированные по ID
func (r *MemoryIslandRepo) LoadAll(ctx context.Context) ([]island.View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]island.View, 0, len(r.data))
	for _, v := range r.data {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete удаляет остров из памяти
func (r *MemoryIslandRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

// Count возвращает количество сохраненных островов (для отладки).
func (r *MemoryIslandRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

func (r *MemoryIslandRepo) Close() error { return nil }
