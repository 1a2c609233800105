package world

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/config"
)

var (
	ErrWorldExists   = errors.New("world already exists")
	ErrWorldNotFound = errors.New("world not found")
)

// Manager хранит миры хоста и отмечает миры игровых режимов,
// в которых работает аддон (аналог IslandWorldManager).
type Manager struct {
	mu      sync.RWMutex
	worlds  map[string]*World
	managed map[string]bool
}

// NewManager создаёт пустой менеджер миров
func NewManager() *Manager {
	return &Manager{
		worlds:  make(map[string]*World),
		managed: make(map[string]bool),
	}
}

// NewManagerFromConfig создаёт миры из конфигурации
func NewManagerFromConfig(worlds []config.WorldConfig) (*Manager, error) {
	m := NewManager()
	for _, wc := range worlds {
		if _, err := m.CreateWorld(wc.Name, Environment(wc.Environment)); err != nil {
			return nil, err
		}
		m.SetManaged(wc.Name, wc.Managed)
	}
	return m, nil
}

// CreateWorld создаёт новый мир
func (m *Manager) CreateWorld(name string, env Environment) (*World, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.worlds[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrWorldExists, name)
	}
	w := NewWorld(name, env)
	m.worlds[name] = w
	return w, nil
}

// World возвращает мир по имени
func (m *Manager) World(name string) (*World, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.worlds[name]
	return w, ok
}

// MustWorld возвращает мир по имени или ошибку
func (m *Manager) MustWorld(name string) (*World, error) {
	w, ok := m.World(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, name)
	}
	return w, nil
}

// SetManaged отмечает мир как мир игрового режима
func (m *Manager) SetManaged(name string, managed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if managed {
		m.managed[name] = true
	} else {
		delete(m.managed, name)
	}
}

// InWorld проверяет, управляет ли аддон указанным миром
func (m *Manager) InWorld(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.managed[name]
}

// Worlds возвращает имена всех миров
func (m *Manager) Worlds() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.worlds))
	for name := range m.worlds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ManagedWorlds возвращает имена миров игровых режимов
func (m *Manager) ManagedWorlds() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.managed))
	for name := range m.managed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
