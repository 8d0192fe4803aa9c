package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/geom"
)

// Region is an inclusive integer box of voxel space. One chunk corresponds to
// one region; its Mins corner doubles as the chunk translation.
type Region struct {
	Mins geom.Vec3i
	Maxs geom.Vec3i
}

// RegionAt returns the chunk region of the given size starting at translation.
func RegionAt(translation, size geom.Vec3i) Region {
	return Region{
		Mins: translation,
		Maxs: geom.Vec3i{
			X: translation.X + size.X - 1,
			Y: translation.Y + size.Y - 1,
			Z: translation.Z + size.Z - 1,
		},
	}
}

func (r Region) Translation() geom.Vec3i { return r.Mins }

func (r Region) Width() int32  { return r.Maxs.X - r.Mins.X + 1 }
func (r Region) Height() int32 { return r.Maxs.Y - r.Mins.Y + 1 }
func (r Region) Depth() int32  { return r.Maxs.Z - r.Mins.Z + 1 }

// IsValid reports whether the region holds at least one voxel.
func (r Region) IsValid() bool {
	return r.Mins.X <= r.Maxs.X && r.Mins.Y <= r.Maxs.Y && r.Mins.Z <= r.Maxs.Z
}

// VoxelCount is the number of voxels in the region.
func (r Region) VoxelCount() int {
	if !r.IsValid() {
		return 0
	}
	return int(r.Width()) * int(r.Height()) * int(r.Depth())
}

// Contains reports whether the voxel position lies inside the region.
func (r Region) Contains(x, y, z int32) bool {
	return x >= r.Mins.X && x <= r.Maxs.X &&
		y >= r.Mins.Y && y <= r.Maxs.Y &&
		z >= r.Mins.Z && z <= r.Maxs.Z
}

// ContainsRegion reports whether o lies entirely inside r.
func (r Region) ContainsRegion(o Region) bool {
	return r.Contains(o.Mins.X, o.Mins.Y, o.Mins.Z) && r.Contains(o.Maxs.X, o.Maxs.Y, o.Maxs.Z)
}

// Grow expands the region by n voxels on every side.
func (r Region) Grow(n int32) Region {
	return Region{
		Mins: geom.Vec3i{X: r.Mins.X - n, Y: r.Mins.Y - n, Z: r.Mins.Z - n},
		Maxs: geom.Vec3i{X: r.Maxs.X + n, Y: r.Maxs.Y + n, Z: r.Maxs.Z + n},
	}
}

// AABB returns the world-space box covered by the region's voxels.
func (r Region) AABB() geom.AABB {
	return geom.AABB{
		Min: r.Mins.Vec3(),
		Max: r.Maxs.Vec3().Add(mgl32.Vec3{1, 1, 1}),
	}
}

func (r Region) String() string {
	return fmt.Sprintf("[%d,%d,%d..%d,%d,%d]", r.Mins.X, r.Mins.Y, r.Mins.Z, r.Maxs.X, r.Maxs.Y, r.Maxs.Z)
}
