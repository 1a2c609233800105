package flags

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/island"
)

// Flag - защитный флаг острова
type Flag struct {
	ID string
	// DefaultRank - минимальный ранг, если остров не переопределил флаг
	DefaultRank island.Rank
	// WorldDefault - разрешено ли действие вне защищённых островов
	WorldDefault bool
}

// NewProtectionFlag создаёт защитный флаг с рангом по умолчанию
func NewProtectionFlag(id string, defaultRank island.Rank) *Flag {
	return &Flag{ID: strings.ToUpper(id), DefaultRank: defaultRank, WorldDefault: true}
}

// NameKey - ключ перевода имени флага
func (f *Flag) NameKey() string {
	return "protection.flags." + f.ID + ".name"
}

// DescriptionKey - ключ перевода описания флага
func (f *Flag) DescriptionKey() string {
	return "protection.flags." + f.ID + ".description"
}

// Registry - реестр флагов
type Registry struct {
	mu    sync.RWMutex
	flags map[string]*Flag
}

// NewRegistry создаёт пустой реестр
func NewRegistry() *Registry {
	return &Registry{flags: make(map[string]*Flag)}
}

// Register добавляет флаг. Повторная регистрация того же ID - ошибка.
func (r *Registry) Register(f *Flag) error {
	if f == nil || f.ID == "" {
		return fmt.Errorf("flag without id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.flags[f.ID]; exists {
		return fmt.Errorf("flag %s already registered", f.ID)
	}
	r.flags[f.ID] = f
	return nil
}

// Get возвращает флаг по ID
func (r *Registry) Get(id string) (*Flag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.flags[strings.ToUpper(id)]
	return f, ok
}

// IDs возвращает отсортированный список флагов
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.flags))
	for id := range r.flags {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
