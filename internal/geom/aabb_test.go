package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestEmptyBoxExtend(t *testing.T) {
	b := Empty()
	assert.False(t, b.IsValid())

	b = b.Extend(mgl32.Vec3{1, 2, 3})
	assert.True(t, b.IsValid())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Max)

	b = b.Extend(mgl32.Vec3{-1, 5, 0})
	assert.Equal(t, mgl32.Vec3{-1, 2, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 5, 3}, b.Max)
}

func TestIntersects(t *testing.T) {
	a := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{10, 10, 10})

	tests := []struct {
		name string
		b    AABB
		want bool
	}{
		{"overlap", NewAABB(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{15, 15, 15}), true},
		{"touching face", NewAABB(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{20, 10, 10}), true},
		{"disjoint", NewAABB(mgl32.Vec3{11, 0, 0}, mgl32.Vec3{20, 10, 10}), false},
		{"enclosing", NewAABB(mgl32.Vec3{-5, -5, -5}, mgl32.Vec3{50, 50, 50}), true},
		{"empty", Empty(), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.Intersects(tc.b))
		})
	}
}

func TestContains(t *testing.T) {
	outer := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{32, 32, 32})
	assert.True(t, outer.Contains(NewAABB(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{31, 31, 31})))
	assert.True(t, outer.Contains(outer))
	assert.False(t, outer.Contains(NewAABB(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{33, 2, 2})))
	assert.False(t, outer.Contains(Empty()))

	assert.True(t, outer.ContainsPoint(mgl32.Vec3{0, 0, 0}))
	assert.False(t, outer.ContainsPoint(mgl32.Vec3{32, 0, 0}))
}

func TestFloorDivAndAlign(t *testing.T) {
	assert.Equal(t, int32(0), FloorDiv(5, 32))
	assert.Equal(t, int32(-1), FloorDiv(-1, 32))
	assert.Equal(t, int32(-1), FloorDiv(-32, 32))
	assert.Equal(t, int32(-2), FloorDiv(-33, 32))

	cell := Vec3i{32, 32, 32}
	assert.Equal(t, Vec3i{-32, 0, 64}, AlignDown(Vec3i{-1, 31, 70}, cell))
	assert.Equal(t, Vec3i{-1, 2, -3}, Floor(mgl32.Vec3{-0.5, 2.9, -2.1}))
}

func TestDistanceSquareXZ(t *testing.T) {
	d := DistanceSquareXZ(mgl32.Vec3{3, 100, 4}, mgl32.Vec3{0, -50, 0})
	assert.Equal(t, float32(25), d)
	assert.Equal(t, float32(25+150*150), DistanceSquare(mgl32.Vec3{3, 100, 4}, mgl32.Vec3{0, -50, 0}))
}
