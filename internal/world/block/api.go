package block

import (
	"github.com/annel0/cauldron-witchery/internal/vec"
)

// BlockAPI определяет интерфейс для взаимодействия блоков с игровым миром.
// Через него поведение блока читает и изменяет состояние мира при установке.
type BlockAPI interface {
	// GetBlockID возвращает идентификатор блока в указанной позиции.
	GetBlockID(pos vec.Vec3) BlockID

	// GetBlockMetadata возвращает значение метаданных блока по ключу.
	GetBlockMetadata(pos vec.Vec3, key string) interface{}

	// SetBlockMetadata устанавливает значение метаданных блока по ключу.
	SetBlockMetadata(pos vec.Vec3, key string, value interface{})
}
