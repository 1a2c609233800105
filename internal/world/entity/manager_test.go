package entity

import (
	"testing"

	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnItemAndFilter(t *testing.T) {
	em := NewEntityManager()

	drop := em.SpawnItem(item.New("REDSTONE", 3), vec.Vec3Float{X: 0.5, Y: 64.1, Z: 0.5})
	em.SpawnEntity(EntityTypeAnimal, vec.Vec3Float{X: 1, Y: 64, Z: 1})
	empty := em.SpawnItem(item.New(item.MaterialAir, 1), vec.Vec3Float{X: 0.5, Y: 64.1, Z: 0.5})

	items := em.Select(IsDroppedItem)
	require.Len(t, items, 1)
	assert.Equal(t, drop.ID, items[0].ID)
	assert.Equal(t, ItemSize, drop.Size)

	assert.Len(t, em.Select(OfType(EntityTypeItem)), 2)
	assert.Len(t, em.Select(nil), 3)

	removed, ok := em.DespawnEntity(empty.ID)
	require.True(t, ok)
	assert.False(t, removed.Active)
	_, ok = em.GetEntity(empty.ID)
	assert.False(t, ok)
}

func TestAddEntityAssignsID(t *testing.T) {
	em := NewEntityManager()
	em.SpawnEntity(EntityTypeAnimal, vec.Vec3Float{})

	p := NewPlayer("Steve", "bskyblock_world", vec.Vec3Float{X: 2, Y: 64, Z: 2})
	em.AddEntity(&p.Entity)

	assert.Equal(t, uint64(2), p.ID)
	stats := em.GetStats()
	assert.Equal(t, 2, stats["active_entities"])
}

func TestPlayerPermissions(t *testing.T) {
	p := NewPlayer("Alex", "bskyblock_world", vec.Vec3Float{})
	assert.False(t, p.HasPermission("cauldronwitchery.stick.elder"))

	p.SetPermission("CauldronWitchery.Stick.Elder", true)
	assert.True(t, p.HasPermission("cauldronwitchery.stick.elder"))

	p.Op = true
	assert.True(t, p.HasPermission("anything.at.all"))
}

func TestInventoryHands(t *testing.T) {
	p := NewPlayer("Alex", "bskyblock_world", vec.Vec3Float{})
	assert.Nil(t, p.Inventory.ItemInMainHand())

	stick := item.New(item.MaterialStick, 1)
	p.Inventory.SetItemInMainHand(stick)
	p.Inventory.SetItemInOffHand(item.New("TORCH", 4))

	assert.Same(t, stick, p.Inventory.ItemInMainHand())
	assert.Equal(t, "TORCH", p.Inventory.ItemInOffHand().Material)
}
