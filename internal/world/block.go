package world

import (
	"fmt"

	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world/block"
)

// Location - позиция блока в конкретном мире
type Location struct {
	World string
	Pos   vec.Vec3
}

// String возвращает строковое представление локации
func (l Location) String() string {
	return fmt.Sprintf("%s(%d,%d,%d)", l.World, l.Pos.X, l.Pos.Y, l.Pos.Z)
}

// blockState хранит тип и метаданные установленного блока
type blockState struct {
	ID      block.BlockID
	Payload map[string]interface{}
}

// Block представляет собой блок в конкретной позиции мира.
// Это снимок: тип фиксируется в момент получения через World.BlockAt.
type Block struct {
	World *World
	Pos   vec.Vec3
	Type  block.BlockID
}

// Location возвращает локацию блока
func (b *Block) Location() Location {
	name := ""
	if b.World != nil {
		name = b.World.Name()
	}
	return Location{World: name, Pos: b.Pos}
}

// BoundingBox возвращает ограничивающий бокс блока (единичный куб)
func (b *Block) BoundingBox() vec.AABB {
	return vec.BlockBox(b.Pos)
}

// GetBehavior возвращает поведение для блока
func (b *Block) GetBehavior() (block.BlockBehavior, bool) {
	return block.Get(b.Type)
}

// Metadata возвращает текущее значение метаданных блока в мире
func (b *Block) Metadata(key string) interface{} {
	if b.World == nil {
		return nil
	}
	return b.World.GetBlockMetadata(b.Pos, key)
}

// String возвращает строковое представление блока
func (b *Block) String() string {
	return fmt.Sprintf("%s@%s", b.Type.Name(), b.Location())
}
