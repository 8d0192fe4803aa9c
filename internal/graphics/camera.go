package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera driven by yaw and pitch in degrees.
// Yaw -90 looks down -Z.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		Yaw:         -90,
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}
}

// Rotate adds offsets to yaw and pitch. Pitch is clamped short of the poles.
func (c *Camera) Rotate(yawOffset, pitchOffset float32) {
	c.Yaw += yawOffset
	c.Pitch = mgl32.Clamp(c.Pitch+pitchOffset, -89, 89)
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	y := mgl32.DegToRad(c.Yaw)
	p := mgl32.DegToRad(c.Pitch)
	return mgl32.Vec3{
		math32.Cos(y) * math32.Cos(p),
		math32.Sin(p),
		math32.Sin(y) * math32.Cos(p),
	}.Normalize()
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

// ViewProjection is projection * view.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.GetProjectionMatrix().Mul4(c.GetViewMatrix())
}
