package world

import "math"

// PlayerHeightFixed is added to a spawn column's fixed-point ground height to
// lift the spawn point to eye level, matching the GLOSSARY's player height.
const PlayerHeightFixed int16 = 102

// rawSampleOffset nudges "raw" (unscaled) noise samples off exact integer
// lattice coordinates. Gradient noise is defined to be exactly zero at every
// integer lattice point (all corner weights collapse to the sampled corner's
// own zero-length gradient vector), so sampling ore/tree/rose fields at bare
// integer block coordinates would always read zero. The terrain loop only
// ever samples integer coordinates, so every raw field carries this offset.
const rawSampleOffset = 0.4132

// terrainNoise bundles the independently seeded coherent-noise fields the
// generator draws from: a smooth height field, an FBM cave field, and raw
// fields governing ore, tree, rose and canopy placement.
type terrainNoise struct {
	height     *perlin
	caves      *perlin
	ores       *perlin
	trees      *perlin
	treeHeight *worley
	roses      *perlin
	leaves     *perlin
}

func newTerrainNoise(seed int64) *terrainNoise {
	return &terrainNoise{
		height:     newPerlin(seed),
		caves:      newPerlin(seed + 1),
		ores:       newPerlin(seed + 2),
		trees:      newPerlin(seed + 3),
		treeHeight: newWorley(seed + 4),
		roses:      newPerlin(seed + 5),
		leaves:     newPerlin(seed + 6),
	}
}

func (t *terrainNoise) heightRawAt(x, z int, offset float64) float64 {
	return t.height.noise2D(float64(x)*0.02, float64(z)*0.02)*15 + offset
}

func (t *terrainNoise) heightAt(x, z int, offset float64) int {
	return int(math.Floor(t.heightRawAt(x, z, offset)))
}

func (t *terrainNoise) isCave(x, y, z int) bool {
	v := t.caves.fbm3D(float64(x)*0.125, float64(y)*0.125, float64(z)*0.125, 1, 1.0, 0.5)
	return v > 0.3
}

func (t *terrainNoise) oreAt(x, y, z int) float64 {
	return t.ores.noise3D(float64(x)+rawSampleOffset, float64(y)+rawSampleOffset, float64(z)+rawSampleOffset)
}

func (t *terrainNoise) treeAt(x, z int, groundHeight float64) float64 {
	return t.trees.noise3D(float64(x)*10+rawSampleOffset, float64(z)*10+rawSampleOffset, groundHeight*10+rawSampleOffset)
}

func (t *terrainNoise) treeHeightAt(x, z int) int16 {
	v := t.treeHeight.noise2D(float64(x), float64(z)) * 7
	return int16(math.Floor(math.Abs(v)))
}

func (t *terrainNoise) roseAt(x, z int) float64 {
	return t.roses.noise2D(float64(x)+rawSampleOffset, float64(z)+rawSampleOffset)
}

func (t *terrainNoise) leafSparsityAt(x, y, z int16) float64 {
	return t.leaves.noise3D(float64(x)+rawSampleOffset, float64(y)+rawSampleOffset, float64(z)+rawSampleOffset)
}

type decoration struct {
	isTree     bool
	x, y, z    int16
	treeHeight int16
}

// Generate builds a new World of the given dimensions from a deterministic
// procedural terrain: a smooth rolling height field, sparse caves carved by
// one FBM octave, a three-tier ore band beneath the surface, a dirt layer,
// a grass cap, and a second decoration pass scattering roses and trees
// (§4.9). height is the base ground level H the height field is offset by.
// Two worlds generated with the same dimensions, height and seed are
// byte-identical (§8 property 7).
func Generate(xSize, ySize, zSize int16, height float64, seed int64) *World {
	tn := newTerrainNoise(seed)
	grid := make([]byte, int(xSize)*int(ySize)*int(zSize))
	idx := func(x, y, z int16) int {
		i, ok := index(x, y, z, xSize, zSize, len(grid))
		if !ok {
			return -1
		}
		return i
	}

	var decorations []decoration

	for x := int16(0); x < xSize; x++ {
		for z := int16(0); z < zSize; z++ {
			hFloor := tn.heightAt(int(x), int(z), height)

			for y := int16(0); y < ySize; y++ {
				if int(y) > hFloor {
					continue
				}
				if tn.isCave(int(x), int(y), int(z)) {
					continue
				}

				var block uint8
				depth := hFloor - int(y)
				switch {
				case depth > 5:
					ore := tn.oreAt(int(x), int(y), int(z))
					switch {
					case ore > 0.9:
						block = GoldOre
					case ore > 0.8:
						block = IronOre
					case ore > 0.7:
						block = CoalOre
					default:
						block = Stone
					}
				case depth > 0:
					block = Dirt
				default:
					block = Grass
				}

				if i := idx(x, y, z); i >= 0 {
					grid[i] = block
				}
			}

			if hFloor < 0 || hFloor >= int(ySize)-1 {
				continue
			}
			top := int16(hFloor)

			if tn.treeAt(int(x), int(z), float64(hFloor)) > 0.8 {
				th := tn.treeHeightAt(int(x), int(z))
				decorations = append(decorations, decoration{isTree: true, x: x, y: top + 1, z: z, treeHeight: th})
			} else if tn.roseAt(int(x), int(z)) > 0.7 {
				decorations = append(decorations, decoration{isTree: false, x: x, y: top + 1, z: z})
			}
		}
	}

	for _, d := range decorations {
		if d.isTree {
			plantTree(grid, idx, tn, d)
		} else {
			plantRose(grid, idx, d)
		}
	}

	w := &World{X: xSize, Y: ySize, Z: zSize, grid: grid}
	w.Spawn = spawnPoint(tn, xSize, ySize, zSize, height)
	return w
}

func plantRose(grid []byte, idx func(x, y, z int16) int, d decoration) {
	below := idx(d.x, d.y-1, d.z)
	if below < 0 || grid[below] == Air {
		return
	}
	if i := idx(d.x, d.y, d.z); i >= 0 {
		grid[i] = Rose
	}
}

// plantTree places a trunk of d.treeHeight+1 logs (inclusive of both
// endpoints) and a tapered canopy: the two layers below the trunk top are a
// full 5x5 whose outer corners only get a leaf block when leafSparsityAt
// clears 0.3; the trunk-top layer is an inner 3x3 whose corners need the
// same sparsity roll; the layer above it is an inner 3x3 without corners.
func plantTree(grid []byte, idx func(x, y, z int16) int, tn *terrainNoise, d decoration) {
	for y := int16(0); y <= d.treeHeight; y++ {
		if j := idx(d.x, d.y+y, d.z); j >= 0 {
			grid[j] = Log
		}
	}

	top := d.y + d.treeHeight
	for dy := int16(-2); dy <= 1; dy++ {
		for dx := int16(-2); dx <= 2; dx++ {
			for dz := int16(-2); dz <= 2; dz++ {
				cx, cy, cz := d.x+dx, top+dy, d.z+dz
				j := idx(cx, cy, cz)
				if j < 0 || grid[j] != Air {
					continue
				}

				if dy < 0 {
					if (dx == -2 || dx == 2) && (dz == -2 || dz == 2) {
						if tn.leafSparsityAt(cx, cy, cz) > 0.3 {
							grid[j] = Leaves
						}
						continue
					}
					grid[j] = Leaves
					continue
				}

				if dx <= -2 || dx >= 2 || dz <= -2 || dz >= 2 {
					continue
				}
				if (dx == -1 || dx == 1) && (dz == -1 || dz == 1) {
					if dy == 0 && tn.leafSparsityAt(cx, cy, cz) > 0.3 {
						grid[j] = Leaves
					}
					continue
				}
				grid[j] = Leaves
			}
		}
	}
}

func spawnPoint(tn *terrainNoise, xSize, ySize, zSize int16, height float64) Point {
	sx, sz := int16(10), int16(10)
	if sx >= xSize {
		sx = xSize - 1
	}
	if sz >= zSize {
		sz = zSize - 1
	}
	if sx < 0 {
		sx = 0
	}
	if sz < 0 {
		sz = 0
	}

	h := tn.heightRawAt(int(sx), int(sz), height)
	return Point{
		X: ToFixed(float64(sx)),
		Y: ToFixed(h) + PlayerHeightFixed,
		Z: ToFixed(float64(sz)),
	}
}
