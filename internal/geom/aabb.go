package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis aligned box in world space. Min and Max are inclusive.
// A box with any Min component greater than the matching Max component is
// empty; Empty() returns such a box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Empty returns the identity box for Extend.
func Empty() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// NewAABB builds a box from two corners in any order.
func NewAABB(a, b mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{min(a.X(), b.X()), min(a.Y(), b.Y()), min(a.Z(), b.Z())},
		Max: mgl32.Vec3{max(a.X(), b.X()), max(a.Y(), b.Y()), max(a.Z(), b.Z())},
	}
}

// IsValid reports whether the box contains at least one point.
func (b AABB) IsValid() bool {
	return b.Min.X() <= b.Max.X() && b.Min.Y() <= b.Max.Y() && b.Min.Z() <= b.Max.Z()
}

// Extend grows the box to include p.
func (b AABB) Extend(p mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{min(b.Min.X(), p.X()), min(b.Min.Y(), p.Y()), min(b.Min.Z(), p.Z())},
		Max: mgl32.Vec3{max(b.Max.X(), p.X()), max(b.Max.Y(), p.Y()), max(b.Max.Z(), p.Z())},
	}
}

func (b AABB) Size() mgl32.Vec3   { return b.Max.Sub(b.Min) }
func (b AABB) Center() mgl32.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Shift translates the box by d.
func (b AABB) Shift(d mgl32.Vec3) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Intersects reports whether the boxes overlap. Touching faces count.
func (b AABB) Intersects(o AABB) bool {
	if !b.IsValid() || !o.IsValid() {
		return false
	}
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y() &&
		b.Min.Z() <= o.Max.Z() && b.Max.Z() >= o.Min.Z()
}

// Contains reports whether o lies entirely inside b.
func (b AABB) Contains(o AABB) bool {
	return o.IsValid() &&
		o.Min.X() >= b.Min.X() && o.Max.X() <= b.Max.X() &&
		o.Min.Y() >= b.Min.Y() && o.Max.Y() <= b.Max.Y() &&
		o.Min.Z() >= b.Min.Z() && o.Max.Z() <= b.Max.Z()
}

// ContainsPoint uses a half-open test on the max side so that grid cells
// sharing a face never both claim the same point.
func (b AABB) ContainsPoint(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() < b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() < b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() < b.Max.Z()
}
