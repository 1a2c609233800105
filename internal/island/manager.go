package island

import (
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world"
	"github.com/google/uuid"
)

var (
	ErrOverlap  = errors.New("island overlaps an existing island")
	ErrNotFound = errors.New("island not found")
	ErrInvalid  = errors.New("invalid island")
)

// Manager - реестр островов с поиском по координатам. Потокобезопасен.
type Manager struct {
	mu      sync.RWMutex
	byWorld map[string][]*Island
	byID    map[uuid.UUID]*Island
}

// NewManager создаёт пустой реестр островов
func NewManager() *Manager {
	return &Manager{
		byWorld: make(map[string][]*Island),
		byID:    make(map[uuid.UUID]*Island),
	}
}

// Create создаёт остров и регистрирует его
func (m *Manager) Create(worldName string, center vec.Vec3, islandRange int, owner uuid.UUID) (*Island, error) {
	is := New(worldName, center, islandRange, owner)
	if err := m.Add(is); err != nil {
		return nil, err
	}
	return is, nil
}

// Add регистрирует готовый остров. Пространства островов не должны пересекаться.
func (m *Manager) Add(is *Island) error {
	if is == nil || is.World == "" || is.Range <= 0 {
		return ErrInvalid
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, other := range m.byWorld[is.World] {
		if overlaps(is, other) {
			return fmt.Errorf("%w: %s at %v", ErrOverlap, other.ID, other.Center)
		}
	}

	m.byWorld[is.World] = append(m.byWorld[is.World], is)
	sortByCenter(m.byWorld[is.World])
	m.byID[is.ID] = is
	return nil
}

func overlaps(a, b *Island) bool {
	return a.Center.X-a.Range < b.Center.X+b.Range && a.Center.X+a.Range > b.Center.X-b.Range &&
		a.Center.Z-a.Range < b.Center.Z+b.Range && a.Center.Z+a.Range > b.Center.Z-b.Range
}

// Remove удаляет остров
func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	is, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.byID, id)

	list := m.byWorld[is.World]
	for i, other := range list {
		if other.ID == id {
			m.byWorld[is.World] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

// Get возвращает остров по ID
func (m *Manager) Get(id uuid.UUID) (*Island, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	is, ok := m.byID[id]
	return is, ok
}

// IslandAt возвращает остров, в пространстве которого находится локация
func (m *Manager) IslandAt(loc world.Location) (*Island, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, is := range m.byWorld[loc.World] {
		if is.InIslandSpace(loc) {
			return is, true
		}
	}
	return nil, false
}

// ProtectedIslandAt возвращает остров, в защищённой зоне которого находится локация
func (m *Manager) ProtectedIslandAt(loc world.Location) (*Island, bool) {
	is, ok := m.IslandAt(loc)
	if !ok || !is.OnIsland(loc) {
		return nil, false
	}
	return is, true
}

// All возвращает все острова
func (m *Manager) All() []*Island {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Island, 0, len(m.byID))
	for _, list := range m.byWorld {
		out = append(out, list...)
	}
	sortByCenter(out)
	return out
}

// Count возвращает количество островов
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
