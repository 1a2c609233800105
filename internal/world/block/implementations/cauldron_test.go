package implementations

import (
	"strings"
	"testing"

	"github.com/annel0/cauldron-witchery/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllCauldronVariantsContainCauldron(t *testing.T) {
	ids := []block.BlockID{
		block.CauldronBlockID,
		block.WaterCauldronBlockID,
		block.LavaCauldronBlockID,
		block.PowderSnowCauldronBlockID,
	}
	for _, id := range ids {
		assert.True(t, strings.Contains(id.Name(), "CAULDRON"), "блок %d: %s", id, id.Name())
	}
	assert.False(t, strings.Contains(block.StoneBlockID.Name(), "CAULDRON"))
}

func TestCauldronMetadata(t *testing.T) {
	behavior, ok := block.Get(block.LavaCauldronBlockID)
	require.True(t, ok)

	md := behavior.CreateMetadata()
	assert.Equal(t, MaxCauldronLevel, md["level"])
	assert.Equal(t, "lava", md["contents"])

	empty, ok := block.Get(block.CauldronBlockID)
	require.True(t, ok)
	assert.Equal(t, 0, empty.CreateMetadata()["level"])
	assert.False(t, empty.Solid())
}

func TestLookupByName(t *testing.T) {
	id, ok := block.Lookup("water_cauldron")
	require.True(t, ok)
	assert.Equal(t, block.WaterCauldronBlockID, id)

	_, ok = block.Lookup("DIAMOND_BLOCK")
	assert.False(t, ok)
	assert.Equal(t, "UNKNOWN", block.BlockID(9999).Name())
}
