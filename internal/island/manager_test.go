package island

import (
	"testing"

	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(x, y, z int) world.Location {
	return world.Location{World: "bskyblock_world", Pos: vec.Vec3{X: x, Y: y, Z: z}}
}

func TestIslandAtUsesIslandSpace(t *testing.T) {
	m := NewManager()
	owner := uuid.New()
	is, err := m.Create("bskyblock_world", vec.Vec3{X: 0, Y: 64, Z: 0}, 50, owner)
	require.NoError(t, err)
	is.ProtectionRange = 10

	found, ok := m.IslandAt(loc(-50, 0, 49))
	require.True(t, ok)
	assert.Equal(t, is.ID, found.ID)

	// Граница [c-r, c+r)
	_, ok = m.IslandAt(loc(50, 64, 0))
	assert.False(t, ok)

	// Другой мир
	_, ok = m.IslandAt(world.Location{World: "world", Pos: vec.Vec3{}})
	assert.False(t, ok)

	// Пространство острова есть, защиты нет
	_, ok = m.ProtectedIslandAt(loc(20, 64, 0))
	assert.False(t, ok)
	_, ok = m.ProtectedIslandAt(loc(9, 64, -10))
	assert.True(t, ok)
}

func TestCreateRejectsOverlap(t *testing.T) {
	m := NewManager()
	_, err := m.Create("bskyblock_world", vec.Vec3{X: 0, Z: 0}, 50, uuid.New())
	require.NoError(t, err)

	_, err = m.Create("bskyblock_world", vec.Vec3{X: 99, Z: 0}, 50, uuid.New())
	assert.ErrorIs(t, err, ErrOverlap)

	_, err = m.Create("bskyblock_world", vec.Vec3{X: 100, Z: 0}, 50, uuid.New())
	assert.NoError(t, err)

	_, err = m.Create("bskyblock_world", vec.Vec3{}, 0, uuid.New())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, 2, m.Count())
}

func TestRemove(t *testing.T) {
	m := NewManager()
	is, err := m.Create("bskyblock_world", vec.Vec3{}, 10, uuid.New())
	require.NoError(t, err)

	require.NoError(t, m.Remove(is.ID))
	_, ok := m.IslandAt(loc(0, 0, 0))
	assert.False(t, ok)
	assert.ErrorIs(t, m.Remove(is.ID), ErrNotFound)
}

func TestRanksAndFlags(t *testing.T) {
	owner, member, visitor := uuid.New(), uuid.New(), uuid.New()
	is := New("bskyblock_world", vec.Vec3{}, 10, owner)
	is.SetRank(member, RankMember)

	const flag = "CAULDRON_WITCHERY_ISLAND_PROTECTION"
	assert.True(t, is.IsAllowed(owner, flag, RankMember))
	assert.True(t, is.IsAllowed(member, flag, RankMember))
	assert.False(t, is.IsAllowed(visitor, flag, RankMember))

	is.SetFlag(flag, RankVisitor)
	assert.True(t, is.IsAllowed(visitor, flag, RankMember))

	is.SetRank(member, RankVisitor)
	assert.Equal(t, RankVisitor, is.Rank(member))
	assert.Len(t, is.Members(), 1)

	v := is.View()
	assert.Equal(t, RankOwner, v.Members[owner.String()])
	assert.Equal(t, RankVisitor, v.Flags[flag])
	assert.Equal(t, "owner", RankOwner.String())
}

func TestFromViewRestoresIsland(t *testing.T) {
	owner, coop := uuid.New(), uuid.New()
	is := New("bskyblock_world", vec.Vec3{X: 100, Y: 64, Z: -100}, 40, owner)
	is.ProtectionRange = 20
	is.SetRank(coop, RankCoop)
	is.SetFlag("CAULDRON_WITCHERY_ISLAND_PROTECTION", RankTrusted)

	restored, err := FromView(is.View())
	require.NoError(t, err)
	assert.Equal(t, is.ID, restored.ID)
	assert.Equal(t, owner, restored.Owner)
	assert.Equal(t, 20, restored.ProtectionRange)
	assert.Equal(t, RankCoop, restored.Rank(coop))
	assert.Equal(t, RankTrusted, restored.FlagRank("CAULDRON_WITCHERY_ISLAND_PROTECTION", RankMember))
	assert.Equal(t, is.View(), restored.View())

	_, err = FromView(View{ID: "not-a-uuid"})
	assert.ErrorIs(t, err, ErrInvalid)
}
