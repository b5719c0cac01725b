package world

import "testing"

const testGenHeight = 20.0

// Two worlds generated with identical dimensions, height and seed must be
// byte-identical (§8 property 7).
func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(32, 32, 32, testGenHeight, 42)
	b := Generate(32, 32, 32, testGenHeight, 42)

	ax, ay, az, _, agrid := a.snapshot()
	bx, by, bz, _, bgrid := b.snapshot()
	if ax != bx || ay != by || az != bz {
		t.Fatalf("dimensions differ: (%d,%d,%d) vs (%d,%d,%d)", ax, ay, az, bx, by, bz)
	}
	if len(agrid) != len(bgrid) {
		t.Fatalf("grid lengths differ: %d vs %d", len(agrid), len(bgrid))
	}
	for i := range agrid {
		if agrid[i] != bgrid[i] {
			t.Fatalf("grid differs at index %d: %d vs %d", i, agrid[i], bgrid[i])
		}
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	a := Generate(32, 32, 32, testGenHeight, 1)
	b := Generate(32, 32, 32, testGenHeight, 2)
	_, _, _, _, agrid := a.snapshot()
	_, _, _, _, bgrid := b.snapshot()

	differs := false
	for i := range agrid {
		if agrid[i] != bgrid[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("grids from different seeds are identical")
	}
}

func TestGenerateProducesBedrockFreeGroundedWorld(t *testing.T) {
	w := Generate(16, 16, 16, testGenHeight, 7)
	x, y, z := w.Dimensions()
	hasSolid := false
	for bx := int16(0); bx < x; bx++ {
		for bz := int16(0); bz < z; bz++ {
			for by := int16(0); by < y; by++ {
				b := w.GetBlock(bx, by, bz)
				if b == Bedrock {
					t.Errorf("block (%d,%d,%d) is Bedrock", bx, by, bz)
				}
				if b != Air {
					hasSolid = true
				}
			}
		}
	}
	if !hasSolid {
		t.Error("generated world is entirely air")
	}
}

// The spawn point follows the height field unclamped, so the world is made
// tall enough (40) to hold a surface at testGenHeight plus or minus 15.
func TestGenerateSpawnPointWithinBounds(t *testing.T) {
	w := Generate(16, 40, 16, testGenHeight, 3)
	x, y, z := w.Dimensions()
	maxX, maxY, maxZ := ToFixed(float64(x)), ToFixed(float64(y))+PlayerHeightFixed, ToFixed(float64(z))
	if w.Spawn.X < 0 || w.Spawn.X > maxX {
		t.Errorf("spawn X = %d out of bounds", w.Spawn.X)
	}
	if w.Spawn.Y < 0 || w.Spawn.Y > maxY {
		t.Errorf("spawn Y = %d out of bounds", w.Spawn.Y)
	}
	if w.Spawn.Z < 0 || w.Spawn.Z > maxZ {
		t.Errorf("spawn Z = %d out of bounds", w.Spawn.Z)
	}
}

func TestGenerateSmallWorldDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Generate panicked on a tiny world: %v", r)
		}
	}()
	Generate(2, 2, 2, testGenHeight, 1)
	Generate(1, 1, 1, testGenHeight, 1)
}
