package block

import (
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[BlockID]BlockBehavior)
	byName     = make(map[string]BlockID)
)

// Register добавляет поведение блока в регистр
func Register(id BlockID, behavior BlockBehavior) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = behavior
	byName[strings.ToUpper(behavior.Name())] = id
}

// Get возвращает поведение для указанного ID
func Get(id BlockID) (BlockBehavior, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	behavior, exists := registry[id]
	return behavior, exists
}

// Lookup ищет ID блока по имени материала (без учета регистра)
func Lookup(name string) (BlockID, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	id, ok := byName[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := Get(id)
	return exists
}

// BlockID представляет идентификатор блока
type BlockID uint16

// Name возвращает имя типа блока из регистра или UNKNOWN
func (id BlockID) Name() string {
	if behavior, ok := Get(id); ok {
		return behavior.Name()
	}
	return "UNKNOWN"
}

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID   BlockID = iota // 0
	StoneBlockID                // 1
	GrassBlockID                // 2
	WaterBlockID                // 3
	SandBlockID                 // 4
	DirtBlockID                 // 5

	// Интерактивные блоки (начиная с 200)
	ChestBlockID         BlockID = 200 // Сундук
	CraftingTableBlockID BlockID = 201 // Верстак

	// Котлы (начиная с 300). Все варианты содержат CAULDRON в имени.
	CauldronBlockID           BlockID = 300 // Пустой котел
	WaterCauldronBlockID      BlockID = 301 // Котел с водой
	LavaCauldronBlockID       BlockID = 302 // Котел с лавой
	PowderSnowCauldronBlockID BlockID = 303 // Котел с рыхлым снегом
)
