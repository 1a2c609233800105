package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAir(t *testing.T) {
	var nilStack *Stack
	assert.True(t, nilStack.IsAir())
	assert.True(t, New(MaterialAir, 1).IsAir())
	assert.True(t, New(MaterialStick, 0).IsAir())
	assert.False(t, New("stick", 1).IsAir())
}

func TestSimilarIgnoresAmount(t *testing.T) {
	a := New(MaterialStick, 1).WithTag("cauldron_stick", "basic")
	b := New(MaterialStick, 5).WithTag("cauldron_stick", "basic")
	assert.True(t, a.Similar(b))

	b.DisplayName = "Magic Stick"
	assert.False(t, a.Similar(b))
}

func TestCloneIsDeep(t *testing.T) {
	a := New(MaterialBlazeRod, 1).WithTag("power", "3")
	a.Lore = []string{"горячий"}

	c := a.Clone()
	c.Tags["power"] = "5"
	c.Lore[0] = "холодный"

	assert.Equal(t, "3", a.Tags["power"])
	assert.Equal(t, "горячий", a.Lore[0])
}
