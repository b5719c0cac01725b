package world

import "math"

// perlin implements 3D/2D gradient (Perlin) noise with a seeded permutation
// table, the primitive the terrain generator's coherent-noise fields are
// built from.
type perlin struct {
	perm [512]int
}

// newPerlin builds a permutation table from seed using a small LCG shuffle,
// so the same seed always reproduces the same table (§8 property 7).
func newPerlin(seed int64) *perlin {
	p := &perlin{}

	var base [256]int
	for i := range base {
		base[i] = i
	}

	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int(uint64(s>>16) % uint64(i+1))
		base[i], base[j] = base[j], base[i]
	}

	for i := 0; i < 256; i++ {
		p.perm[i] = base[i]
		p.perm[i+256] = base[i]
	}
	return p
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad2D(hash int, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	default:
		return -x - y
	}
}

func grad3D(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if (h & 1) != 0 {
		u = -u
	}
	if (h & 2) != 0 {
		v = -v
	}
	return u + v
}

// noise2D returns a value roughly in [-1, 1].
func (p *perlin) noise2D(x, y float64) float64 {
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255

	xf := x - math.Floor(x)
	yf := y - math.Floor(y)

	u := fade(xf)
	v := fade(yf)

	aa := p.perm[p.perm[xi]+yi]
	ab := p.perm[p.perm[xi]+yi+1]
	ba := p.perm[p.perm[xi+1]+yi]
	bb := p.perm[p.perm[xi+1]+yi+1]

	x1 := lerp(u, grad2D(aa, xf, yf), grad2D(ba, xf-1, yf))
	x2 := lerp(u, grad2D(ab, xf, yf-1), grad2D(bb, xf-1, yf-1))
	return lerp(v, x1, x2)
}

// noise3D returns a value roughly in [-1, 1].
func (p *perlin) noise3D(x, y, z float64) float64 {
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255
	zi := int(math.Floor(z)) & 255

	xf := x - math.Floor(x)
	yf := y - math.Floor(y)
	zf := z - math.Floor(z)

	u := fade(xf)
	v := fade(yf)
	w := fade(zf)

	aaa := p.perm[p.perm[p.perm[xi]+yi]+zi]
	aba := p.perm[p.perm[p.perm[xi]+yi+1]+zi]
	aab := p.perm[p.perm[p.perm[xi]+yi]+zi+1]
	abb := p.perm[p.perm[p.perm[xi]+yi+1]+zi+1]
	baa := p.perm[p.perm[p.perm[xi+1]+yi]+zi]
	bba := p.perm[p.perm[p.perm[xi+1]+yi+1]+zi]
	bab := p.perm[p.perm[p.perm[xi+1]+yi]+zi+1]
	bbb := p.perm[p.perm[p.perm[xi+1]+yi+1]+zi+1]

	x1 := lerp(u, grad3D(aaa, xf, yf, zf), grad3D(baa, xf-1, yf, zf))
	x2 := lerp(u, grad3D(aba, xf, yf-1, zf), grad3D(bba, xf-1, yf-1, zf))
	y1 := lerp(v, x1, x2)

	x1 = lerp(u, grad3D(aab, xf, yf, zf-1), grad3D(bab, xf-1, yf, zf-1))
	x2 = lerp(u, grad3D(abb, xf, yf-1, zf-1), grad3D(bbb, xf-1, yf-1, zf-1))
	y2 := lerp(v, x1, x2)

	return lerp(w, y1, y2)
}

// fbm3D sums octaves of noise3D, normalized by total amplitude. With
// octaves=1 this is equivalent to a single noise3D sample.
func (p *perlin) fbm3D(x, y, z float64, octaves int, lacunarity, persistence float64) float64 {
	var total, amplitude, maxAmplitude, frequency float64 = 0, 1, 0, 1
	for i := 0; i < octaves; i++ {
		total += p.noise3D(x*frequency, y*frequency, z*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if maxAmplitude == 0 {
		return 0
	}
	return total / maxAmplitude
}

// worley computes cellular (Worley/Voronoi F1) noise: the distance from the
// sample point to the nearest of a deterministic, seed-derived set of
// feature points, one randomly placed per unit grid cell.
type worley struct {
	seed int64
}

func newWorley(seed int64) *worley {
	return &worley{seed: seed}
}

// hash3 derives a deterministic pseudo-random value in [0, 1) for a grid
// cell, used to place that cell's feature point.
func hash3(seed int64, x, y, z int64, salt int64) float64 {
	h := seed ^ (x * -0x61C8864680B583EB) ^ (y * -0x3D4D51C2D82B14B1) ^ (z * 0x165667B19E3779F9) ^ salt
	h = (h ^ (h >> 33)) * -0x61c8864680b583eb
	h = (h ^ (h >> 29)) * -0x3b4a94151827a4a5
	h ^= h >> 32
	return float64(uint64(h)%1_000_003) / 1_000_003.0
}

// noise2D returns the F1 Worley distance at (x, 0, z), roughly in [0, 1].
func (w *worley) noise2D(x, z float64) float64 {
	return w.noise3D(x, 0, z)
}

// noise3D returns the F1 Worley distance at (x, y, z), roughly in [0, 1].
func (w *worley) noise3D(x, y, z float64) float64 {
	cx, cy, cz := int64(math.Floor(x)), int64(math.Floor(y)), int64(math.Floor(z))
	best := math.MaxFloat64
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				cellX, cellY, cellZ := cx+dx, cy+dy, cz+dz
				fx := float64(cellX) + hash3(w.seed, cellX, cellY, cellZ, 1)
				fy := float64(cellY) + hash3(w.seed, cellX, cellY, cellZ, 2)
				fz := float64(cellZ) + hash3(w.seed, cellX, cellY, cellZ, 3)
				ddx, ddy, ddz := x-fx, y-fy, z-fz
				d := ddx*ddx + ddy*ddy + ddz*ddz
				if d < best {
					best = d
				}
			}
		}
	}
	return math.Sqrt(best)
}
