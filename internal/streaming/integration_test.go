package streaming

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxstream/internal/config"
	"voxstream/internal/extraction"
	"voxstream/internal/meshing"
	"voxstream/internal/world"
)

func TestStreamsHeightmapTerrain(t *testing.T) {
	s := config.Default()
	s.MeshSize = [3]int{16, 16, 16}
	s.WorldHeight = 128
	s.ExtractionDistance = 32
	s.PoolCapacity = 256
	s.MaxMeshesPerFrame = 16
	s.Workers = 2
	s.StrictInvariants = true

	cache, err := world.NewCachingPager(world.NewHeightmapPager(s.World), s.World.PageCacheEntries)
	require.NoError(t, err)
	defer cache.Close()

	sched := extraction.New(s, cache, meshing.CubicExtractor{}, config.NopLogger())
	sched.Start(context.Background())
	defer sched.Shutdown()

	c := New(s, sched, config.NopLogger())
	cam := lookingNorth(mgl32.Vec3{0, 100, 64})

	// 4 x 8 x 4 cells around the camera
	const cells = 4 * 8 * 4
	require.Eventually(t, func() bool {
		c.Tick(cam)
		return c.Stats().Resident == cells
	}, 10*time.Second, 5*time.Millisecond)

	require.NoError(t, c.Validate())
	assert.Equal(t, 0, c.ExtractMeshes(cam), "everything is tracked")

	batch := c.Cull(cam)
	assert.False(t, batch.IsEmpty())
	for _, i := range batch.Indices {
		require.Less(t, int(i), len(batch.Vertices))
	}

	// moving far away evicts everything and lets the area stream again later
	cam.Position = mgl32.Vec3{100000, 100, 0}
	assert.Equal(t, cells, c.Update(cam.Position))
	assert.Equal(t, 0, c.Stats().Resident)
}
