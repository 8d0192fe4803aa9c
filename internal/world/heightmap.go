package world

import (
	"context"
	"math"

	"voxstream/internal/config"
)

// HeightmapPager generates terrain from deterministic 2D value noise. It keeps
// no state per region, so Evict is a no-op.
type HeightmapPager struct {
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64
}

// NewHeightmapPager creates a pager from the world generation settings.
func NewHeightmapPager(s config.WorldGenSettings) *HeightmapPager {
	return &HeightmapPager{
		seed:        s.Seed,
		scale:       s.Scale,
		baseHeight:  s.BaseHeight,
		amp:         s.Amplitude,
		octaves:     max(s.Octaves, 1),
		persistence: s.Persistence,
		lacunarity:  s.Lacunarity,
	}
}

// HeightAt computes world surface height (voxel Y) at world X,Z. Each octave
// samples the lattice under its own seed; the weighted sum is normalised to
// [0,1] before scaling by the amplitude.
func (g *HeightmapPager) HeightAt(worldX, worldZ int32) int32 {
	x := float64(worldX) * g.scale
	z := float64(worldZ) * g.scale
	weight, freq := 1.0, 1.0
	var sum, total float64
	for octave := range g.octaves {
		sum += weight * sample(x*freq, z*freq, g.seed+int64(octave)*131)
		total += weight
		weight *= g.persistence
		freq *= g.lacunarity
	}
	height := float64(g.baseHeight)
	if total > 0 {
		height += sum / total * g.amp
	}
	return int32(math.Floor(max(height, 0)))
}

// Fetch fills a volume for r from the heightmap.
func (g *HeightmapPager) Fetch(ctx context.Context, r Region) (*Volume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vol := NewVolume(r)
	for x := r.Mins.X; x <= r.Maxs.X; x++ {
		for z := r.Mins.Z; z <= r.Maxs.Z; z++ {
			height := g.HeightAt(x, z)
			if height < r.Mins.Y {
				continue
			}
			top := min(height, r.Maxs.Y)
			for y := max(r.Mins.Y, 0); y <= top; y++ {
				vol.Set(x, y, z, g.voxelAt(y, height))
			}
		}
	}
	return vol, nil
}

func (g *HeightmapPager) voxelAt(y, height int32) Voxel {
	switch {
	case y == 0:
		return VoxelBedrock
	case y == height:
		return VoxelGrass
	case y > height-4:
		return VoxelDirt
	default:
		return VoxelStone
	}
}

// Evict implements Pager.
func (g *HeightmapPager) Evict(Region) {}

// sample interpolates the four lattice corners around (x, z) with a quintic
// ease, giving a value in [0,1].
func sample(x, z float64, seed int64) float64 {
	fx, fz := math.Floor(x), math.Floor(z)
	ix, iz := int64(fx), int64(fz)
	tx, tz := smoother(x-fx), smoother(z-fz)
	near := mix(corner(ix, iz, seed), corner(ix+1, iz, seed), tx)
	far := mix(corner(ix, iz+1, seed), corner(ix+1, iz+1, seed), tx)
	return mix(near, far, tz)
}

func smoother(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func mix(a, b, t float64) float64 { return a + (b-a)*t }

// corner maps a lattice point to [0,1) through a splitmix64 finaliser.
func corner(x, z, seed int64) float64 {
	h := uint64(x)*0x9E3779B97F4A7C15 ^ uint64(z)*0xC2B2AE3D27D4EB4F ^ uint64(seed)
	h = (h ^ h>>30) * 0xBF58476D1CE4E5B9
	h = (h ^ h>>27) * 0x94D049BB133111EB
	h ^= h >> 31
	return float64(h>>11) / (1 << 53)
}
