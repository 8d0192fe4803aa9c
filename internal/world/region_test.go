package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxstream/internal/geom"
)

func TestRegionAt(t *testing.T) {
	r := RegionAt(geom.Vec3i{X: -32, Y: 0, Z: 64}, geom.Vec3i{X: 32, Y: 16, Z: 32})
	assert.Equal(t, geom.Vec3i{X: -1, Y: 15, Z: 95}, r.Maxs)
	assert.Equal(t, geom.Vec3i{X: -32, Y: 0, Z: 64}, r.Translation())
	assert.Equal(t, 32*16*32, r.VoxelCount())
	assert.True(t, r.Contains(-32, 0, 64))
	assert.False(t, r.Contains(0, 0, 64))

	box := r.AABB()
	assert.Equal(t, mgl32.Vec3{-32, 0, 64}, box.Min)
	assert.Equal(t, mgl32.Vec3{0, 16, 96}, box.Max)

	grown := r.Grow(1)
	assert.True(t, grown.ContainsRegion(r))
	assert.False(t, r.ContainsRegion(grown))
}

func TestVolumeAccess(t *testing.T) {
	r := RegionAt(geom.Vec3i{X: 10, Y: 20, Z: 30}, geom.Vec3i{X: 4, Y: 5, Z: 6})
	vol := NewVolume(r)
	require.Len(t, vol.Voxels, 4*5*6)
	assert.True(t, vol.IsEmpty())

	vol.Set(13, 24, 35, VoxelStone)
	vol.Set(100, 0, 0, VoxelStone) // outside, ignored
	assert.Equal(t, VoxelStone, vol.At(13, 24, 35))
	assert.Equal(t, Air, vol.At(12, 24, 35))
	assert.Equal(t, Air, vol.At(100, 0, 0))
	assert.False(t, vol.IsEmpty())

	back, err := VolumeFromBytes(r, vol.Bytes())
	require.NoError(t, err)
	assert.Equal(t, vol.Voxels, back.Voxels)

	_, err = VolumeFromBytes(r, []byte{1, 2, 3})
	assert.Error(t, err)
}
