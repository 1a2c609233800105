package entity

import (
	"strings"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/google/uuid"
)

// Inventory содержит предметы в руках игрока
type Inventory struct {
	mu       sync.RWMutex
	mainHand *item.Stack
	offHand  *item.Stack
}

// ItemInMainHand возвращает предмет в основной руке (может быть nil)
func (inv *Inventory) ItemInMainHand() *item.Stack {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.mainHand
}

// ItemInOffHand возвращает предмет во второй руке (может быть nil)
func (inv *Inventory) ItemInOffHand() *item.Stack {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.offHand
}

// SetItemInMainHand кладет предмет в основную руку
func (inv *Inventory) SetItemInMainHand(s *item.Stack) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.mainHand = s
}

// SetItemInOffHand кладет предмет во вторую руку
func (inv *Inventory) SetItemInOffHand(s *item.Stack) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.offHand = s
}

// Player представляет игрока в игре
type Player struct {
	Entity
	UUID      uuid.UUID
	Name      string
	World     string // Имя мира, в котором находится игрок
	Locale    string // Локаль клиента (en-US, ru-RU...)
	Op        bool
	Inventory Inventory

	mu          sync.RWMutex
	sneaking    bool
	permissions map[string]bool
}

// NewPlayer создает игрока в указанном мире
func NewPlayer(name, world string, position vec.Vec3Float) *Player {
	p := &Player{
		Entity:      *NewEntity(0, EntityTypePlayer, position),
		UUID:        uuid.New(),
		Name:        name,
		World:       world,
		Locale:      "en-US",
		permissions: make(map[string]bool),
	}
	return p
}

// IsSneaking возвращает true, если игрок крадется
func (p *Player) IsSneaking() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sneaking
}

// SetSneaking изменяет состояние приседания
func (p *Player) SetSneaking(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sneaking = v
}

// SetPermission выдает или отзывает право
func (p *Player) SetPermission(perm string, value bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permissions[strings.ToLower(perm)] = value
}

// HasPermission проверяет право. Операторы имеют все права.
func (p *Player) HasPermission(perm string) bool {
	if p.Op {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.permissions[strings.ToLower(perm)]
}
