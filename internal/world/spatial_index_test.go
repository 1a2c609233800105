package world

import (
	"testing"

	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpatialIndexNegativeCoordinates(t *testing.T) {
	si := NewSpatialIndex(16)
	e := entity.NewEntity(1, entity.EntityTypeItem, vec.Vec3Float{X: -0.5, Y: 10, Z: -15.9})
	si.Insert(e)

	got := si.QueryBox(vec.BlockBox(vec.Vec3{X: -1, Y: 10, Z: -16}), nil)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].ID)
}

func TestSpatialIndexCrossCellEntity(t *testing.T) {
	si := NewSpatialIndex(16)
	// Хитбокс пересекает границу ячеек X=16
	e := entity.NewEntity(7, entity.EntityTypeAnimal, vec.Vec3Float{X: 16, Y: 0, Z: 1})
	si.Insert(e)
	assert.Equal(t, 2, si.GetCellCount())

	si.Remove(7)
	assert.Equal(t, 0, si.GetCellCount())
	assert.Equal(t, 0, si.GetEntityCount())
}

func TestSpatialIndexQueryRange(t *testing.T) {
	si := NewSpatialIndex(4)
	si.Insert(entity.NewEntity(1, entity.EntityTypeItem, vec.Vec3Float{X: 1, Y: 0, Z: 0}))
	si.Insert(entity.NewEntity(2, entity.EntityTypeItem, vec.Vec3Float{X: 2.9, Y: 0, Z: 2.9}))
	si.Insert(entity.NewEntity(3, entity.EntityTypeAnimal, vec.Vec3Float{X: 0, Y: 0, Z: 1}))

	got := si.QueryRange(vec.Vec3Float{}, 2, entity.OfType(entity.EntityTypeItem))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Contains(t, si.GetStats(), "3 entities")
}
