package block

import (
	"github.com/annel0/cauldron-witchery/internal/vec"
)

type Metadata map[string]interface{}

// BlockBehavior определяет поведение блока
type BlockBehavior interface {
	ID() BlockID
	// Name возвращает имя типа блока в формате материала (CAULDRON, WATER_CAULDRON...)
	Name() string
	// Solid - занимает ли блок полный куб (используется при установке предметов)
	Solid() bool
	OnPlace(api BlockAPI, pos vec.Vec3)
	CreateMetadata() Metadata
}
