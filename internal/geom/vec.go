package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vec3i is an integer voxel-space position.
type Vec3i struct {
	X, Y, Z int32
}

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3i) Sub(o Vec3i) Vec3i { return Vec3i{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Vec3 converts to a float vector.
func (v Vec3i) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// Floor returns the integer position containing p.
func Floor(p mgl32.Vec3) Vec3i {
	return Vec3i{
		int32(math32.Floor(p.X())),
		int32(math32.Floor(p.Y())),
		int32(math32.Floor(p.Z())),
	}
}

// FloorDiv divides rounding towards negative infinity.
func FloorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AlignDown snaps v to the grid of the given cell size.
func AlignDown(v, cell Vec3i) Vec3i {
	return Vec3i{
		FloorDiv(v.X, cell.X) * cell.X,
		FloorDiv(v.Y, cell.Y) * cell.Y,
		FloorDiv(v.Z, cell.Z) * cell.Z,
	}
}

// DistanceSquareXZ is the squared planar distance between two positions.
func DistanceSquareXZ(a, b mgl32.Vec3) float32 {
	dx := a.X() - b.X()
	dz := a.Z() - b.Z()
	return dx*dx + dz*dz
}

// DistanceSquare is the full squared distance between two positions.
func DistanceSquare(a, b mgl32.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}
