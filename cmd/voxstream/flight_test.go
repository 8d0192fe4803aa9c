package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"voxstream/internal/graphics"
)

func TestFlightPathKeepsAltitudeAndSpeed(t *testing.T) {
	cam := graphics.NewCamera(16, 9)
	f := newFlightPath(2, 120)

	prev := cam.Position
	for range 100 {
		f.step(cam)
		assert.Equal(t, float32(120), cam.Position.Y())
		d := mgl32.Vec2{cam.Position.X() - prev.X(), cam.Position.Z() - prev.Z()}
		assert.InDelta(t, 2, d.Len(), 1e-3)
		prev = cam.Position
	}
	assert.InDelta(t, -90+100*0.05, cam.Yaw, 1e-3)
}
