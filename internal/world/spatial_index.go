package world

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
)

// SpatialIndex представляет пространственный индекс для быстрого поиска сущностей.
// Сетка строится по горизонтальной плоскости X/Z, высота проверяется при запросе.
type SpatialIndex struct {
	cellSize float64
	mu       sync.RWMutex
	cells    map[cellKey]map[uint64]*indexedEntity
	entities map[uint64]*indexedEntity
}

// cellKey представляет ключ ячейки в пространственной сетке
type cellKey struct {
	x, z int
}

// indexedEntity представляет индексированную сущность
type indexedEntity struct {
	entity *entity.Entity
	cells  []cellKey
	bounds vec.AABB
}

// NewSpatialIndex создаёт новый пространственный индекс
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = 16.0 // Размер чанка по умолчанию
	}

	return &SpatialIndex{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[uint64]*indexedEntity),
		entities: make(map[uint64]*indexedEntity),
	}
}

// Insert добавляет сущность в индекс или обновляет ее положение
func (si *SpatialIndex) Insert(e *entity.Entity) {
	si.mu.Lock()
	defer si.mu.Unlock()

	if old, exists := si.entities[e.ID]; exists {
		si.unlink(old, e.ID)
	}

	bounds := e.BoundingBox()
	indexed := &indexedEntity{
		entity: e,
		cells:  si.getCellsForBounds(bounds),
		bounds: bounds,
	}

	for _, key := range indexed.cells {
		cell, ok := si.cells[key]
		if !ok {
			cell = make(map[uint64]*indexedEntity)
			si.cells[key] = cell
		}
		cell[e.ID] = indexed
	}
	si.entities[e.ID] = indexed
}

// Update обновляет позицию сущности в индексе
func (si *SpatialIndex) Update(e *entity.Entity) {
	si.Insert(e)
}

// Remove удаляет сущность из индекса
func (si *SpatialIndex) Remove(entityID uint64) {
	si.mu.Lock()
	defer si.mu.Unlock()

	indexed, exists := si.entities[entityID]
	if !exists {
		return
	}
	si.unlink(indexed, entityID)
	delete(si.entities, entityID)
}

// unlink удаляет сущность из ячеек. Вызывается под si.mu.
func (si *SpatialIndex) unlink(indexed *indexedEntity, entityID uint64) {
	for _, key := range indexed.cells {
		if cell, exists := si.cells[key]; exists {
			delete(cell, entityID)
			if len(cell) == 0 {
				delete(si.cells, key)
			}
		}
	}
}

// QueryBox возвращает сущности, чьи хитбоксы пересекают box и проходят фильтр.
// Результат упорядочен по ID сущности.
func (si *SpatialIndex) QueryBox(box vec.AABB, filter entity.Filter) []*entity.Entity {
	cells := si.getCellsForBounds(box)

	seen := make(map[uint64]struct{})
	result := make([]*entity.Entity, 0)

	si.mu.RLock()
	for _, key := range cells {
		cell, exists := si.cells[key]
		if !exists {
			continue
		}
		for entityID, indexed := range cell {
			if _, wasSeen := seen[entityID]; wasSeen {
				continue
			}
			seen[entityID] = struct{}{}
			if !indexed.bounds.Intersects(box) {
				continue
			}
			if filter != nil && !filter(indexed.entity) {
				continue
			}
			result = append(result, indexed.entity)
		}
	}
	si.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// QueryRange возвращает все сущности в заданном радиусе от точки
func (si *SpatialIndex) QueryRange(center vec.Vec3Float, radius float64, filter entity.Filter) []*entity.Entity {
	box := vec.AABB{Min: center, Max: center}.Expand(radius)
	inBox := si.QueryBox(box, filter)

	result := inBox[:0]
	for _, e := range inBox {
		if e.Position.DistanceTo(center) <= radius {
			result = append(result, e)
		}
	}
	return result
}

// GetCellCount возвращает количество активных ячеек
func (si *SpatialIndex) GetCellCount() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.cells)
}

// GetEntityCount возвращает количество индексированных сущностей
func (si *SpatialIndex) GetEntityCount() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.entities)
}

// GetStats возвращает статистику индекса
func (si *SpatialIndex) GetStats() string {
	si.mu.RLock()
	defer si.mu.RUnlock()

	total := 0
	maxPerCell := 0
	for _, cell := range si.cells {
		total += len(cell)
		if len(cell) > maxPerCell {
			maxPerCell = len(cell)
		}
	}

	avg := 0.0
	if len(si.cells) > 0 {
		avg = float64(total) / float64(len(si.cells))
	}

	return fmt.Sprintf("SpatialIndex Stats: %d entities, %d cells, avg %.2f entities/cell, max %d entities/cell",
		len(si.entities), len(si.cells), avg, maxPerCell)
}

// getCellsForBounds возвращает ключи ячеек, которые пересекаются с границами
func (si *SpatialIndex) getCellsForBounds(bounds vec.AABB) []cellKey {
	minCellX := int(math.Floor(bounds.Min.X / si.cellSize))
	minCellZ := int(math.Floor(bounds.Min.Z / si.cellSize))
	maxCellX := int(math.Floor(bounds.Max.X / si.cellSize))
	maxCellZ := int(math.Floor(bounds.Max.Z / si.cellSize))

	cells := make([]cellKey, 0, (maxCellX-minCellX+1)*(maxCellZ-minCellZ+1))
	for x := minCellX; x <= maxCellX; x++ {
		for z := minCellZ; z <= maxCellZ; z++ {
			cells = append(cells, cellKey{x: x, z: z})
		}
	}
	return cells
}
