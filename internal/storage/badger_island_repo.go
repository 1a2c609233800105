package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/dgraph-io/badger/v3"
)

var islandKeyPrefix = []byte("island:")

// BadgerIslandRepo хранит острова во встроенной BadgerDB
type BadgerIslandRepo struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerIslandRepo открывает BadgerDB в каталоге dataPath/islands.
// Пустой dataPath - база в памяти.
func NewBadgerIslandRepo(dataPath string) (*BadgerIslandRepo, error) {
	var opts badger.Options
	if dataPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dataPath, "islands"))
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}
	return &BadgerIslandRepo{db: db, isReady: true}, nil
}

func islandKey(id string) []byte {
	return append(append([]byte(nil), islandKeyPrefix...), id...)
}

// Save записывает снимок острова
func (r *BadgerIslandRepo) Save(ctx context.Context, v island.View) error {
	if v.ID == "" {
		return ErrEmptyID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ошибка сериализации острова: %w", err)
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if !r.isReady {
		return fmt.Errorf("хранилище закрыто")
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(islandKey(v.ID), data)
	})
}

// LoadAll читает все острова по префиксу ключа
func (r *BadgerIslandRepo) LoadAll(ctx context.Context) ([]island.View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if !r.isReady {
		return nil, fmt.Errorf("хранилище закрыто")
	}

	var out []island.View
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(islandKeyPrefix); it.ValidForPrefix(islandKeyPrefix); it.Next() {
			var v island.View
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return fmt.Errorf("ошибка чтения %s: %w", it.Item().Key(), err)
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete удаляет остров
func (r *BadgerIslandRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if !r.isReady {
		return fmt.Errorf("хранилище закрыто")
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(islandKey(id))
	})
}

// Close закрывает хранилище данных
func (r *BadgerIslandRepo) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.isReady {
		return nil
	}
	r.isReady = false
	return r.db.Close()
}
