package stick

import (
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/config"
	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/user"
)

// Manager хранит описания волшебных палочек
type Manager struct {
	mu     sync.RWMutex
	sticks map[string]*MagicStick
	order  []string
}

// NewManager создаёт пустой менеджер
func NewManager() *Manager {
	return &Manager{sticks: make(map[string]*MagicStick)}
}

// NewManagerFromConfig загружает палочки из конфигурации
func NewManagerFromConfig(cfgs []config.MagicStickConfig) (*Manager, error) {
	m := NewManager()
	for _, c := range cfgs {
		s, err := FromConfig(c)
		if err != nil {
			return nil, err
		}
		if err := m.Add(s); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add регистрирует палочку
func (m *Manager) Add(s *MagicStick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sticks[s.ID]; exists {
		return fmt.Errorf("magic stick %s already registered", s.ID)
	}
	m.sticks[s.ID] = s
	m.order = append(m.order, s.ID)
	return nil
}

// Get возвращает палочку по ID
func (m *Manager) Get(id string) (*MagicStick, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sticks[id]
	return s, ok
}

// All возвращает палочки, отсортированные по ID
func (m *Manager) All() []*MagicStick {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*MagicStick, 0, len(m.sticks))
	for _, s := range m.sticks {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MagicStick возвращает первую подходящую палочку, право на которую есть у пользователя
func (m *Manager) MagicStick(it *item.Stack, u *user.User) *MagicStick {
	if it.IsAir() {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		s := m.sticks[id]
		if !s.Matches(it) {
			continue
		}
		if s.Permission != "" && (u == nil || !u.HasPermission(s.Permission)) {
			continue
		}
		return s
	}
	return nil
}

// IsMagicStick проверяет, является ли предмет волшебной палочкой для пользователя
func (m *Manager) IsMagicStick(it *item.Stack, u *user.User) bool {
	return m.MagicStick(it, u) != nil
}
