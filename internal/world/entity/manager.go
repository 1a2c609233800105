package entity

import (
	"sort"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/vec"
)

// EntityManager управляет всеми сущностями одного мира
type EntityManager struct {
	entities     map[uint64]*Entity // Хранилище всех сущностей
	nextEntityID uint64             // Счетчик для генерации ID
	mu           sync.RWMutex       // Мьютекс для безопасного доступа
}

// NewEntityManager создаёт новый менеджер сущностей
func NewEntityManager() *EntityManager {
	return &EntityManager{
		entities:     make(map[uint64]*Entity),
		nextEntityID: 1,
	}
}

// SpawnEntity создаёт новую сущность в мире
func (em *EntityManager) SpawnEntity(entityType EntityType, position vec.Vec3Float) *Entity {
	em.mu.Lock()
	defer em.mu.Unlock()

	entity := NewEntity(em.nextEntityID, entityType, position)
	em.nextEntityID++
	em.entities[entity.ID] = entity
	return entity
}

// SpawnItem создаёт сущность выброшенного предмета
func (em *EntityManager) SpawnItem(stack *item.Stack, position vec.Vec3Float) *Entity {
	entity := em.SpawnEntity(EntityTypeItem, position)
	entity.Item = stack
	return entity
}

// AddEntity добавляет уже созданную сущность (например, игрока).
// Если ID равен 0, он назначается менеджером.
func (em *EntityManager) AddEntity(entity *Entity) {
	em.mu.Lock()
	defer em.mu.Unlock()
	if entity.ID == 0 {
		entity.ID = em.nextEntityID
	}
	em.entities[entity.ID] = entity
	if entity.ID >= em.nextEntityID {
		em.nextEntityID = entity.ID + 1
	}
}

// DespawnEntity удаляет сущность из мира
func (em *EntityManager) DespawnEntity(entityID uint64) (*Entity, bool) {
	em.mu.Lock()
	defer em.mu.Unlock()

	entity, exists := em.entities[entityID]
	if !exists {
		return nil, false
	}
	entity.Active = false
	delete(em.entities, entityID)
	return entity, true
}

// GetEntity возвращает сущность по ID
func (em *EntityManager) GetEntity(entityID uint64) (*Entity, bool) {
	em.mu.RLock()
	defer em.mu.RUnlock()
	entity, exists := em.entities[entityID]
	return entity, exists
}

// Select возвращает сущности, прошедшие фильтр, упорядоченные по ID
func (em *EntityManager) Select(filter Filter) []*Entity {
	em.mu.RLock()
	result := make([]*Entity, 0, len(em.entities))
	for _, e := range em.entities {
		if filter == nil || filter(e) {
			result = append(result, e)
		}
	}
	em.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetStats возвращает статистику по сущностям
func (em *EntityManager) GetStats() map[string]interface{} {
	em.mu.RLock()
	defer em.mu.RUnlock()

	stats := make(map[string]interface{})
	stats["total_entities"] = len(em.entities)

	activeCount := 0
	typeStats := make(map[string]int)
	for _, entity := range em.entities {
		if entity.Active {
			activeCount++
			typeStats[entity.Type.String()]++
		}
	}
	stats["active_entities"] = activeCount
	stats["entity_types"] = typeStats

	return stats
}
