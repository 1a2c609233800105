package world

import (
	"sync"

	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world/block"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
)

// Environment тип измерения мира
type Environment string

const (
	EnvironmentNormal Environment = "normal"
	EnvironmentNether Environment = "nether"
	EnvironmentEnd    Environment = "the_end"
)

// World представляет один мир хоста: блоки, сущности и пространственный индекс.
// Все методы потокобезопасны.
type World struct {
	name     string
	env      Environment
	mu       sync.RWMutex
	blocks   map[vec.Vec3]*blockState
	entities *entity.EntityManager
	index    *SpatialIndex
}

// NewWorld создаёт пустой мир
func NewWorld(name string, env Environment) *World {
	if env == "" {
		env = EnvironmentNormal
	}
	return &World{
		name:     name,
		env:      env,
		blocks:   make(map[vec.Vec3]*blockState),
		entities: entity.NewEntityManager(),
		index:    NewSpatialIndex(16),
	}
}

// Name возвращает имя мира
func (w *World) Name() string { return w.name }

// Environment возвращает тип измерения
func (w *World) Environment() Environment { return w.env }

// SetBlock устанавливает блок и инициализирует его метаданные через поведение
func (w *World) SetBlock(pos vec.Vec3, id block.BlockID) *Block {
	state := &blockState{ID: id, Payload: make(map[string]interface{})}
	behavior, hasBehavior := block.Get(id)
	if hasBehavior {
		state.Payload = behavior.CreateMetadata()
	}

	w.mu.Lock()
	if id == block.AirBlockID {
		delete(w.blocks, pos)
	} else {
		w.blocks[pos] = state
	}
	w.mu.Unlock()

	// OnPlace вызывается без блокировки: поведение может менять метаданные
	if hasBehavior && id != block.AirBlockID {
		behavior.OnPlace(w, pos)
	}
	return &Block{World: w, Pos: pos, Type: id}
}

// BlockAt возвращает снимок блока в позиции (воздух, если блока нет)
func (w *World) BlockAt(pos vec.Vec3) *Block {
	return &Block{World: w, Pos: pos, Type: w.GetBlockID(pos)}
}

// GetBlockID возвращает идентификатор блока в указанной позиции
func (w *World) GetBlockID(pos vec.Vec3) block.BlockID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if state, ok := w.blocks[pos]; ok {
		return state.ID
	}
	return block.AirBlockID
}

// GetBlockMetadata возвращает значение метаданных блока по ключу
func (w *World) GetBlockMetadata(pos vec.Vec3, key string) interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if state, ok := w.blocks[pos]; ok {
		return state.Payload[key]
	}
	return nil
}

// SetBlockMetadata устанавливает значение метаданных блока по ключу
func (w *World) SetBlockMetadata(pos vec.Vec3, key string, value interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if state, ok := w.blocks[pos]; ok {
		state.Payload[key] = value
	}
}

// BlockCount возвращает количество не-воздушных блоков
func (w *World) BlockCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.blocks)
}

// DropItem создаёт сущность выброшенного предмета и индексирует ее
func (w *World) DropItem(stack *item.Stack, pos vec.Vec3Float) *entity.Entity {
	e := w.entities.SpawnItem(stack, pos)
	w.index.Insert(e)
	return e
}

// SpawnEntity создаёт сущность указанного типа
func (w *World) SpawnEntity(t entity.EntityType, pos vec.Vec3Float) *entity.Entity {
	e := w.entities.SpawnEntity(t, pos)
	w.index.Insert(e)
	return e
}

// AddEntity добавляет существующую сущность (например, игрока) в мир
func (w *World) AddEntity(e *entity.Entity) {
	w.entities.AddEntity(e)
	w.index.Insert(e)
}

// MoveEntity перемещает сущность и обновляет индекс
func (w *World) MoveEntity(entityID uint64, pos vec.Vec3Float) bool {
	e, ok := w.entities.GetEntity(entityID)
	if !ok {
		return false
	}
	e.Position = pos
	w.index.Update(e)
	return true
}

// RemoveEntity удаляет сущность из мира
func (w *World) RemoveEntity(entityID uint64) bool {
	if _, ok := w.entities.DespawnEntity(entityID); !ok {
		return false
	}
	w.index.Remove(entityID)
	return true
}

// Entity возвращает сущность по ID
func (w *World) Entity(entityID uint64) (*entity.Entity, bool) {
	return w.entities.GetEntity(entityID)
}

// NearbyEntities возвращает сущности, чьи хитбоксы пересекают box и проходят фильтр
func (w *World) NearbyEntities(box vec.AABB, filter entity.Filter) []*entity.Entity {
	return w.index.QueryBox(box, filter)
}

// Stats возвращает статистику мира
func (w *World) Stats() map[string]interface{} {
	stats := w.entities.GetStats()
	stats["name"] = w.name
	stats["environment"] = string(w.env)
	stats["blocks"] = w.BlockCount()
	stats["index"] = w.index.GetStats()
	return stats
}
