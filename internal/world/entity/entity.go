package entity

import (
	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/vec"
)

// EntityType представляет тип сущности
type EntityType uint16

const (
	EntityTypePlayer EntityType = iota
	EntityTypeNPC
	EntityTypeMonster
	EntityTypeItem // Выброшенный предмет
	EntityTypeProjectile
	EntityTypeAnimal
	EntityTypeVehicle
)

// String возвращает имя типа сущности
func (t EntityType) String() string {
	switch t {
	case EntityTypePlayer:
		return "PLAYER"
	case EntityTypeNPC:
		return "NPC"
	case EntityTypeMonster:
		return "MONSTER"
	case EntityTypeItem:
		return "ITEM"
	case EntityTypeProjectile:
		return "PROJECTILE"
	case EntityTypeAnimal:
		return "ANIMAL"
	case EntityTypeVehicle:
		return "VEHICLE"
	default:
		return "UNKNOWN"
	}
}

// Стандартные размеры хитбоксов
var (
	ItemSize    = vec.Vec3Float{X: 0.25, Y: 0.25, Z: 0.25}
	DefaultSize = vec.Vec3Float{X: 0.6, Y: 1.8, Z: 0.6}
)

// Entity представляет базовую сущность в мире
type Entity struct {
	ID       uint64                 // Уникальный идентификатор сущности
	Type     EntityType             // Тип сущности
	Position vec.Vec3Float          // Позиция нижней центральной точки хитбокса
	Velocity vec.Vec3Float          // Текущая скорость
	Size     vec.Vec3Float          // Размер хитбокса (X/Z ширина, Y высота)
	Item     *item.Stack            // Стопка предметов для EntityTypeItem
	Payload  map[string]interface{} // Дополнительные данные сущности
	Active   bool                   // Активна ли сущность
}

// NewEntity создаёт новую сущность
func NewEntity(id uint64, entityType EntityType, position vec.Vec3Float) *Entity {
	size := DefaultSize
	if entityType == EntityTypeItem {
		size = ItemSize
	}
	return &Entity{
		ID:       id,
		Type:     entityType,
		Position: position,
		Size:     size,
		Payload:  make(map[string]interface{}),
		Active:   true,
	}
}

// BoundingBox возвращает хитбокс сущности
func (e *Entity) BoundingBox() vec.AABB {
	return vec.CenteredBox(e.Position, e.Size.X, e.Size.Y)
}

// Filter отбирает сущности в пространственных запросах
type Filter func(e *Entity) bool

// IsDroppedItem пропускает только активные выброшенные предметы
func IsDroppedItem(e *Entity) bool {
	return e != nil && e.Active && e.Type == EntityTypeItem && !e.Item.IsAir()
}

// OfType возвращает фильтр по типу сущности
func OfType(t EntityType) Filter {
	return func(e *Entity) bool {
		return e != nil && e.Type == t
	}
}
