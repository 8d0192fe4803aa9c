package main

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/graphics"
)

// flightPath moves the camera along a slow spiral over the terrain, turning
// a little every frame so both extraction order and eviction get exercised.
type flightPath struct {
	speed    float32
	altitude float32
	turn     float32
	frame    int
}

func newFlightPath(speed, altitude float32) *flightPath {
	return &flightPath{speed: speed, altitude: altitude, turn: 0.05}
}

func (f *flightPath) step(cam *graphics.Camera) {
	f.frame++
	cam.Rotate(f.turn, 0)
	// look slightly down at the ground ahead
	cam.Pitch = -15 + 5*math32.Sin(float32(f.frame)/240)
	fwd := cam.Forward()
	move := mgl32.Vec3{fwd.X(), 0, fwd.Z()}
	if move.Len() > 0 {
		move = move.Normalize().Mul(f.speed)
	}
	cam.Position = cam.Position.Add(move)
	cam.Position[1] = f.altitude
}
