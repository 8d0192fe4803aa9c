// Package streaming decides, frame by frame, which chunk meshes are
// requested, kept resident, evicted and drawn.
package streaming

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"voxstream/internal/chunkbuf"
	"voxstream/internal/config"
	"voxstream/internal/extraction"
	"voxstream/internal/geom"
	"voxstream/internal/graphics"
	"voxstream/internal/meshing"
	"voxstream/internal/octree"
	"voxstream/internal/profiling"
)

// Scheduler is the part of extraction.Scheduler the controller drives.
type Scheduler interface {
	MeshSize() geom.Vec3i
	ScheduleExtraction(translation geom.Vec3i) bool
	Pop() (extraction.CompletedMesh, bool)
	AllowReExtraction(translation geom.Vec3i) bool
	UpdateExtractionOrder(focus mgl32.Vec3)
	Reset()
	Pending() int
}

// Stats is a snapshot of controller state.
type Stats struct {
	Frame    uint64
	Resident int
	Indexed  int
	Pending  int
	Culled   int
	Evicted  uint64
	Dropped  uint64
}

// Controller owns the buffer pool and the spatial index. All methods must be
// called from the same goroutine.
type Controller struct {
	log      *logrus.Entry
	settings config.Settings
	sched    Scheduler
	pool     *chunkbuf.Pool
	index    *octree.Tree[chunkbuf.SlotID]
	meshSize geom.Vec3i
	cutoff   float32

	frame uint64
	// backoff maps a dropped translation to the first frame it may be
	// scheduled again.
	backoff map[geom.Vec3i]uint64

	batch   meshing.Mesh
	visible []chunkbuf.SlotID
	meshes  []*meshing.Mesh
	stats   Stats

	now func() time.Time
}

// New creates a controller around sched.
func New(s config.Settings, sched Scheduler, log *logrus.Entry) *Controller {
	size := sched.MeshSize()
	c := &Controller{
		log:      log,
		settings: s,
		sched:    sched,
		pool:     chunkbuf.NewPool(s.PoolCapacity, log),
		index: octree.New[chunkbuf.SlotID](octree.Options{
			MinSize:   float32(max(size.X, size.Y, size.Z)),
			Looseness: s.Octree.Looseness,
			MaxDepth:  s.Octree.MaxDepth,
			MaxNodes:  s.Octree.MaxNodes,
		}),
		meshSize: size,
		backoff:  make(map[geom.Vec3i]uint64),
		now:      time.Now,
	}
	c.UpdateViewDistance(s.ViewDistance)
	return c
}

// Pool exposes the buffer pool for renderers that upload resident meshes.
func (c *Controller) Pool() *chunkbuf.Pool { return c.pool }

// UpdateViewDistance sets the eviction cutoff to the view distance plus the
// culling margin.
func (c *Controller) UpdateViewDistance(distance float32) {
	c.settings.ViewDistance = distance
	margin := float32(max(c.meshSize.X, c.meshSize.Z) * int32(c.settings.CullingMarginChunks))
	d := distance + margin
	c.cutoff = d * d
}

func (c *Controller) distance(translation geom.Vec3i, focus mgl32.Vec3) float32 {
	if c.settings.VerticalEviction {
		return geom.DistanceSquare(translation.Vec3(), focus)
	}
	return geom.DistanceSquareXZ(translation.Vec3(), focus)
}

func (c *Controller) violation(msg string, fields logrus.Fields) {
	if c.settings.StrictInvariants {
		panic(fmt.Sprintf("%s: %v", msg, fields))
	}
	c.log.WithFields(fields).Error(msg)
}

// Update advances the frame, re-prioritises pending extraction around focus
// and evicts resident meshes that are out of range. A mesh is only evicted
// once the scheduler agreed to forget it. It returns the number of evicted
// meshes.
func (c *Controller) Update(focus mgl32.Vec3) int {
	defer profiling.Track("streaming.Update")()
	c.frame++
	c.sched.UpdateExtractionOrder(focus)

	evicted := 0
	c.pool.Occupied(func(id chunkbuf.SlotID, b *chunkbuf.MeshBuffer) bool {
		if c.distance(b.Translation, focus) < c.cutoff {
			return true
		}
		if !c.sched.AllowReExtraction(b.Translation) {
			c.violation("resident mesh is not tracked by the scheduler", logrus.Fields{
				"slot":        id,
				"translation": b.Translation,
			})
			return true
		}
		c.index.Remove(id)
		c.pool.Release(id)
		evicted++
		return true
	})
	c.stats.Evicted += uint64(evicted)
	return evicted
}

// ExtractMeshes schedules every chunk around the camera that is neither
// indexed nor already tracked. The sweep covers the full world height and
// the extraction distance (or the far plane) on x and z. It returns the
// number of newly scheduled chunks.
func (c *Controller) ExtractMeshes(cam *graphics.Camera) int {
	defer profiling.Track("streaming.ExtractMeshes")()
	extent := c.settings.ExtractionDistance
	if extent <= 0 {
		extent = cam.FarPlane
	}
	mins := mgl32.Vec3{cam.Position.X() - extent, 0, cam.Position.Z() - extent}
	maxs := mgl32.Vec3{cam.Position.X() + extent, float32(c.settings.WorldHeight), cam.Position.Z() + extent}

	return c.index.Visit(mins, maxs, func(cell, _ geom.Vec3i) bool {
		if until, ok := c.backoff[cell]; ok {
			if c.frame < until {
				return false
			}
			delete(c.backoff, cell)
		}
		return c.sched.ScheduleExtraction(cell)
	}, c.meshSize)
}

// HandleMeshQueue moves up to MaxMeshesPerFrame completed meshes into buffer
// slots and indexes their bounds. It returns the number of meshes taken off
// the queue.
func (c *Controller) HandleMeshQueue() int {
	defer profiling.Track("streaming.HandleMeshQueue")()
	handled := 0
	for handled < c.settings.MaxMeshesPerFrame {
		done, ok := c.sched.Pop()
		if !ok {
			break
		}
		handled++
		c.place(done)
	}
	if handled > 0 && c.settings.StrictInvariants {
		if err := c.pool.Validate(); err != nil {
			c.violation("chunk buffer pool is inconsistent", logrus.Fields{"error": err})
		}
	}
	return handled
}

func (c *Controller) place(done extraction.CompletedMesh) {
	translation := done.Translation()
	id, ok := c.pool.AcquireSlotFor(translation)
	if !ok {
		c.log.WithFields(logrus.Fields{
			"translation": translation,
			"capacity":    c.pool.Cap(),
		}).Warn("chunk buffer pool exhausted, dropping mesh")
		c.sched.AllowReExtraction(translation)
		c.backoff[translation] = c.frame + uint64(c.settings.DropCooldownFrames)
		c.stats.Dropped++
		return
	}

	mesh := done.Mesh
	mesh.Translation = translation
	c.pool.Store(id, mesh, c.now())

	b := c.pool.Buffer(id)
	if !b.Bounds.IsValid() {
		c.index.Remove(id)
		return
	}
	// anchored at the chunk centre so the cell it fills does not depend on
	// where its faces happen to lie
	anchor := translation.Vec3().Add(c.meshSize.Vec3().Mul(0.5))
	if !c.index.InsertAt(id, b.Bounds, anchor) {
		c.log.WithFields(logrus.Fields{
			"slot":        id,
			"translation": translation,
		}).Warn("spatial index rejected mesh, it will not be drawn")
	}
}

// Cull returns the resident geometry inside the camera's view volume merged
// into one mesh, in slot order. The returned mesh is reused by the next call.
func (c *Controller) Cull(cam *graphics.Camera) *meshing.Mesh {
	defer profiling.Track("streaming.Cull")()
	box := cam.Bounds().Shift(cam.Forward().Mul(-c.settings.CullShift))
	c.visible = c.index.Query(box, c.visible[:0])

	var frustum graphics.Frustum
	if c.settings.PreciseCulling {
		frustum = cam.Frustum()
	}
	keep := c.visible[:0]
	for _, id := range c.visible {
		b := c.pool.Buffer(id)
		if !b.InUse {
			continue
		}
		if c.settings.PreciseCulling && !frustum.IntersectsAABB(b.Bounds) {
			continue
		}
		keep = append(keep, id)
	}
	slices.Sort(keep)
	c.visible = keep

	c.meshes = c.meshes[:0]
	for _, id := range keep {
		c.meshes = append(c.meshes, &c.pool.Buffer(id).Mesh)
	}
	meshing.Merge(&c.batch, c.meshes...)
	c.stats.Culled = len(keep)
	return &c.batch
}

// Visible returns the slots selected by the last Cull.
func (c *Controller) Visible() []chunkbuf.SlotID { return c.visible }

// Tick runs one frame of streaming: schedule, evict, then take completed
// meshes.
func (c *Controller) Tick(cam *graphics.Camera) {
	c.ExtractMeshes(cam)
	c.Update(cam.Position)
	c.HandleMeshQueue()
}

// Reset drops every resident mesh and all scheduler state.
func (c *Controller) Reset() {
	c.sched.Reset()
	c.pool.Reset()
	c.index.Clear()
	clear(c.backoff)
	c.batch.Reset()
	c.visible = c.visible[:0]
}

// Validate checks the pool and that every indexed slot is resident.
func (c *Controller) Validate() error {
	if err := c.pool.Validate(); err != nil {
		return err
	}
	var err error
	c.pool.Occupied(func(id chunkbuf.SlotID, b *chunkbuf.MeshBuffer) bool {
		if b.Bounds.IsValid() && !c.index.Contains(id) {
			err = errors.Errorf("resident slot %d at %v is not indexed", id, b.Translation)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if n := c.index.Len(); n > c.pool.ActiveCount() {
		return errors.Errorf("index holds %d slots, only %d are resident", n, c.pool.ActiveCount())
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (c *Controller) Stats() Stats {
	st := c.stats
	st.Frame = c.frame
	st.Resident = c.pool.ActiveCount()
	st.Indexed = c.index.Len()
	st.Pending = c.sched.Pending()
	return st
}
