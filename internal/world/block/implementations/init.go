package implementations

import "github.com/annel0/cauldron-witchery/internal/world/block"

// Регистрируем все типы блоков при импорте пакета
func init() {
	// Базовые блоки
	block.Register(block.AirBlockID, NewSimpleBehavior(block.AirBlockID, "AIR", false))
	block.Register(block.StoneBlockID, NewSimpleBehavior(block.StoneBlockID, "STONE", true))
	block.Register(block.GrassBlockID, NewSimpleBehavior(block.GrassBlockID, "GRASS_BLOCK", true))
	block.Register(block.WaterBlockID, NewSimpleBehavior(block.WaterBlockID, "WATER", false))
	block.Register(block.SandBlockID, NewSimpleBehavior(block.SandBlockID, "SAND", true))
	block.Register(block.DirtBlockID, NewSimpleBehavior(block.DirtBlockID, "DIRT", true))

	// Интерактивные блоки
	block.Register(block.ChestBlockID, NewSimpleBehavior(block.ChestBlockID, "CHEST", true))
	block.Register(block.CraftingTableBlockID, NewSimpleBehavior(block.CraftingTableBlockID, "CRAFTING_TABLE", true))

	// Котлы
	block.Register(block.CauldronBlockID, NewCauldronBehavior(block.CauldronBlockID, "CAULDRON", ""))
	block.Register(block.WaterCauldronBlockID, NewCauldronBehavior(block.WaterCauldronBlockID, "WATER_CAULDRON", "water"))
	block.Register(block.LavaCauldronBlockID, NewCauldronBehavior(block.LavaCauldronBlockID, "LAVA_CAULDRON", "lava"))
	block.Register(block.PowderSnowCauldronBlockID, NewCauldronBehavior(block.PowderSnowCauldronBlockID, "POWDER_SNOW_CAULDRON", "powder_snow"))
}
