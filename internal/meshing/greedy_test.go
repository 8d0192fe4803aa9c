package meshing

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxstream/internal/geom"
	"voxstream/internal/world"
)

var chunk = geom.Vec3i{X: 16, Y: 16, Z: 16}

func newVolume(translation geom.Vec3i) (world.Region, *world.Volume) {
	r := world.RegionAt(translation, chunk)
	return r, world.NewVolume(r.Grow(1))
}

func TestSingleVoxelMesh(t *testing.T) {
	r, vol := newVolume(geom.Vec3i{})
	vol.Set(0, 0, 0, world.VoxelGrass)

	m, err := CubicExtractor{}.Extract(r, vol)
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 6*4)
	assert.Len(t, m.Indices, 6*6)

	b := m.Bounds()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, b.Max)
}

func TestTwoVoxelsTouchingGreedy(t *testing.T) {
	r, vol := newVolume(geom.Vec3i{})
	vol.Set(0, 0, 0, world.VoxelGrass)
	vol.Set(1, 0, 0, world.VoxelGrass)

	m, err := CubicExtractor{}.Extract(r, vol)
	require.NoError(t, err)
	// Union is a 2x1x1 cuboid => 6 quads
	assert.Len(t, m.Vertices, 6*4)
}

func TestTwoColoursDoNotMerge(t *testing.T) {
	r, vol := newVolume(geom.Vec3i{})
	vol.Set(0, 0, 0, world.VoxelGrass)
	vol.Set(1, 0, 0, world.VoxelStone)

	m, err := CubicExtractor{}.Extract(r, vol)
	require.NoError(t, err)
	// 2 end caps + 4 sides split per colour
	assert.Len(t, m.Vertices, 10*4)
}

func TestBorderNeighbourHidesFace(t *testing.T) {
	r, vol := newVolume(geom.Vec3i{X: 32})
	vol.Set(47, 0, 0, world.VoxelGrass) // last voxel of the region
	vol.Set(48, 0, 0, world.VoxelGrass) // border voxel of the next chunk

	m, err := CubicExtractor{}.Extract(r, vol)
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 5*4)
	assert.Equal(t, geom.Vec3i{X: 32}, m.Translation)
	for _, v := range m.Vertices {
		assert.LessOrEqual(t, v.Position.X(), float32(48))
	}
}

func TestEmptyRegionYieldsEmptyMesh(t *testing.T) {
	r, vol := newVolume(geom.Vec3i{Y: 64})
	m, err := CubicExtractor{}.Extract(r, vol)
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
}

func TestExtractRejectsShortVolume(t *testing.T) {
	r := world.RegionAt(geom.Vec3i{}, chunk)
	_, err := CubicExtractor{}.Extract(r, world.NewVolume(world.RegionAt(geom.Vec3i{}, geom.Vec3i{X: 4, Y: 4, Z: 4})))
	assert.Error(t, err)
	_, err = CubicExtractor{}.Extract(r, nil)
	assert.Error(t, err)
}

func TestQuadWindingFacesOutward(t *testing.T) {
	r, vol := newVolume(geom.Vec3i{})
	vol.Set(3, 3, 3, world.VoxelDirt)
	m, err := CubicExtractor{}.Extract(r, vol)
	require.NoError(t, err)

	normals := map[uint8]mgl32.Vec3{
		FaceEast: {1, 0, 0}, FaceWest: {-1, 0, 0},
		FaceTop: {0, 1, 0}, FaceBottom: {0, -1, 0},
		FaceNorth: {0, 0, 1}, FaceSouth: {0, 0, -1},
	}
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]]
		b := m.Vertices[m.Indices[i+1]]
		c := m.Vertices[m.Indices[i+2]]
		n := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		assert.Greater(t, n.Dot(normals[a.Face]), float32(0), "face %d", a.Face)
	}
}

func BenchmarkCubicExtractorSurface(b *testing.B) {
	r, vol := newVolume(geom.Vec3i{})
	for x := int32(0); x < chunk.X; x++ {
		for z := int32(0); z < chunk.Z; z++ {
			vol.Set(x, 7, z, world.VoxelGrass)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = CubicExtractor{}.Extract(r, vol)
	}
}
