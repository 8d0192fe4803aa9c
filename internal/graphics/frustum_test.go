package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"voxstream/internal/geom"
)

func testCamera() *Camera {
	return &Camera{
		Yaw:         -90,
		AspectRatio: 1,
		FOV:         90,
		NearPlane:   1,
		FarPlane:    100,
	}
}

func unitBox(c mgl32.Vec3) geom.AABB {
	return geom.NewAABB(c.Sub(mgl32.Vec3{1, 1, 1}), c.Add(mgl32.Vec3{1, 1, 1}))
}

func TestForward(t *testing.T) {
	c := testCamera()
	f := c.Forward()
	assert.InDelta(t, 0, f.X(), 1e-5)
	assert.InDelta(t, 0, f.Y(), 1e-5)
	assert.InDelta(t, -1, f.Z(), 1e-5)

	c.Rotate(0, 200)
	assert.Equal(t, float32(89), c.Pitch)
}

func TestFrustumCulling(t *testing.T) {
	c := testCamera()
	f := c.Frustum()

	cases := []struct {
		name    string
		box     geom.AABB
		visible bool
	}{
		{"in front", unitBox(mgl32.Vec3{0, 0, -10}), true},
		{"behind", unitBox(mgl32.Vec3{0, 0, 10}), false},
		{"far right", unitBox(mgl32.Vec3{50, 0, -10}), false},
		{"above", unitBox(mgl32.Vec3{0, 50, -10}), false},
		{"past far plane", unitBox(mgl32.Vec3{0, 0, -200}), false},
		{"straddles left plane", unitBox(mgl32.Vec3{-10.5, 0, -10}), true},
		{"empty box", geom.Empty(), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.visible, f.IntersectsAABB(tc.box))
		})
	}
}

func TestFrustumAABB(t *testing.T) {
	c := testCamera()
	c.Position = mgl32.Vec3{10, 20, 30}
	box := c.Bounds()

	want := geom.NewAABB(mgl32.Vec3{-90, -80, -70}, mgl32.Vec3{110, 120, 29})
	for axis := range 3 {
		assert.InDelta(t, want.Min[axis], box.Min[axis], 0.05, "min axis %d", axis)
		assert.InDelta(t, want.Max[axis], box.Max[axis], 0.05, "max axis %d", axis)
	}
}
