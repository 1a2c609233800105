package implementations

import (
	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world/block"
)

// SimpleBehavior - блок без собственной логики (камень, земля, сундук...)
type SimpleBehavior struct {
	id    block.BlockID
	name  string
	solid bool
}

// NewSimpleBehavior создает поведение статичного блока
func NewSimpleBehavior(id block.BlockID, name string, solid bool) *SimpleBehavior {
	return &SimpleBehavior{id: id, name: name, solid: solid}
}

func (b *SimpleBehavior) ID() block.BlockID { return b.id }
func (b *SimpleBehavior) Name() string      { return b.name }
func (b *SimpleBehavior) Solid() bool       { return b.solid }

// OnPlace ничего не делает для статичных блоков
func (b *SimpleBehavior) OnPlace(api block.BlockAPI, pos vec.Vec3) {}

// CreateMetadata возвращает пустые метаданные
func (b *SimpleBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{}
}
