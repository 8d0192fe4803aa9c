package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/geom"
)

// Plane is a*x + b*y + c*z + d = 0 with the normal pointing inside.
type Plane struct {
	A, B, C, D float32
}

// Frustum holds six planes in order: left, right, bottom, top, near, far.
type Frustum [6]Plane

// ExtractFrustum builds the planes from a combined projection*view matrix.
func ExtractFrustum(clip mgl32.Mat4) Frustum {
	// mgl32 matrices are column-major
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	return Frustum{
		normalizePlane(Plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03}),
		normalizePlane(Plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03}),
		normalizePlane(Plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13}),
		normalizePlane(Plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13}),
		normalizePlane(Plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23}),
		normalizePlane(Plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23}),
	}
}

func normalizePlane(p Plane) Plane {
	l := math32.Sqrt(p.A*p.A + p.B*p.B + p.C*p.C)
	if l == 0 {
		return p
	}
	return Plane{p.A / l, p.B / l, p.C / l, p.D / l}
}

// IntersectsAABB tests the box against every plane using its positive vertex.
// Invalid boxes never intersect.
func (f *Frustum) IntersectsAABB(box geom.AABB) bool {
	if !box.IsValid() {
		return false
	}
	for i := range f {
		p := f[i]
		px := box.Max.X()
		if p.A < 0 {
			px = box.Min.X()
		}
		py := box.Max.Y()
		if p.B < 0 {
			py = box.Min.Y()
		}
		pz := box.Max.Z()
		if p.C < 0 {
			pz = box.Min.Z()
		}
		if p.A*px+p.B*py+p.C*pz+p.D < 0 {
			return false
		}
	}
	return true
}

// FrustumAABB is the world-space box around the eight corners of the view
// volume described by viewProj.
func FrustumAABB(viewProj mgl32.Mat4) geom.AABB {
	inv := viewProj.Inv()
	box := geom.Empty()
	for i := range 8 {
		ndc := mgl32.Vec4{-1, -1, -1, 1}
		if i&1 != 0 {
			ndc[0] = 1
		}
		if i&2 != 0 {
			ndc[1] = 1
		}
		if i&4 != 0 {
			ndc[2] = 1
		}
		w := inv.Mul4x1(ndc)
		if w.W() == 0 {
			continue
		}
		box = box.Extend(w.Vec3().Mul(1 / w.W()))
	}
	return box
}

// Frustum returns the planes of the camera's view volume.
func (c *Camera) Frustum() Frustum {
	return ExtractFrustum(c.ViewProjection())
}

// Bounds returns the world-space box around the camera's view volume.
func (c *Camera) Bounds() geom.AABB {
	return FrustumAABB(c.ViewProjection())
}
