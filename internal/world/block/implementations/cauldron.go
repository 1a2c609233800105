package implementations

import (
	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world/block"
)

// MaxCauldronLevel максимальный уровень жидкости в котле
const MaxCauldronLevel = 3

// CauldronBehavior реализует поведение котла и его вариантов
type CauldronBehavior struct {
	id       block.BlockID
	name     string
	contents string // "", "water", "lava", "powder_snow"
}

// NewCauldronBehavior создает поведение варианта котла
func NewCauldronBehavior(id block.BlockID, name, contents string) *CauldronBehavior {
	return &CauldronBehavior{id: id, name: name, contents: contents}
}

func (b *CauldronBehavior) ID() block.BlockID { return b.id }
func (b *CauldronBehavior) Name() string      { return b.name }

// Solid возвращает false: внутри котла могут лежать предметы
func (b *CauldronBehavior) Solid() bool { return false }

// Contents возвращает содержимое котла
func (b *CauldronBehavior) Contents() string { return b.contents }

// OnPlace выставляет начальный уровень жидкости
func (b *CauldronBehavior) OnPlace(api block.BlockAPI, pos vec.Vec3) {
	for k, v := range b.CreateMetadata() {
		api.SetBlockMetadata(pos, k, v)
	}
}

// CreateMetadata создает начальные метаданные котла
func (b *CauldronBehavior) CreateMetadata() block.Metadata {
	level := 0
	if b.contents != "" {
		level = MaxCauldronLevel
	}
	return block.Metadata{
		"level":    level,
		"contents": b.contents,
	}
}
