package world

// Block type ids, matching the Classic Block Game client's block palette.
// Only a subset is placed by the generator (§4.9); the rest are listed so
// SetBlock can accept any client-supplied type without the world needing to
// know what it means.
const (
	Air uint8 = iota
	Stone
	Grass
	Dirt
	Cobblestone
	Wood
	Sapling
	Bedrock
	Water
	StillWater
	Lava
	StillLava
	Sand
	Gravel
	GoldOre
	IronOre
	CoalOre
	Log
	Leaves
	Sponge
	Glass
	Red
	Orange
	Yellow
	Lime
	Green
	Teal
	Aqua
	Cyan
	Blue
	Indigo
	Violet
	Magenta
	Pink
	Black
	Gray
	White
	Dandelion
	Rose
)
