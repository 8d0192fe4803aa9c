// Package chunkbuf holds the fixed set of resident mesh buffers.
package chunkbuf

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"voxstream/internal/geom"
	"voxstream/internal/meshing"
)

// SlotID addresses a buffer in a Pool.
type SlotID int

// MeshBuffer is one slot of the pool.
type MeshBuffer struct {
	Mesh        meshing.Mesh
	Bounds      geom.AABB
	Translation geom.Vec3i
	InUse       bool
	SyncedAt    time.Time
}

// Pool is a fixed-capacity array of mesh buffers. It is owned by a single
// goroutine.
type Pool struct {
	log     *logrus.Entry
	buffers []MeshBuffer
	active  int
}

// NewPool allocates capacity empty slots.
func NewPool(capacity int, log *logrus.Entry) *Pool {
	p := &Pool{
		log:     log,
		buffers: make([]MeshBuffer, max(capacity, 0)),
	}
	for i := range p.buffers {
		p.buffers[i].Bounds = geom.Empty()
	}
	return p
}

// Cap returns the number of slots.
func (p *Pool) Cap() int { return len(p.buffers) }

// ActiveCount returns the number of occupied slots.
func (p *Pool) ActiveCount() int { return p.active }

// Buffer returns the slot for id. The pointer stays valid for the lifetime of
// the pool.
func (p *Pool) Buffer(id SlotID) *MeshBuffer {
	return &p.buffers[id]
}

// AcquireSlotFor returns the occupied slot already holding translation, or
// the first free slot. It returns false when every slot is occupied by other
// translations.
func (p *Pool) AcquireSlotFor(translation geom.Vec3i) (SlotID, bool) {
	free := SlotID(-1)
	for i := range p.buffers {
		b := &p.buffers[i]
		if b.InUse {
			if b.Translation == translation {
				return SlotID(i), true
			}
			continue
		}
		if free < 0 {
			free = SlotID(i)
		}
	}
	return free, free >= 0
}

// Store replaces the geometry of slot id and marks it occupied. It reports
// whether the slot went from free to occupied.
func (p *Pool) Store(id SlotID, mesh meshing.Mesh, now time.Time) bool {
	b := &p.buffers[id]
	b.Mesh = mesh
	b.Bounds = mesh.Bounds()
	b.Translation = mesh.Translation
	b.SyncedAt = now
	if b.InUse {
		return false
	}
	b.InUse = true
	p.active++
	return true
}

// Release frees slot id. The geometry is kept until the slot is reused.
// Releasing a free slot returns false.
func (p *Pool) Release(id SlotID) bool {
	b := &p.buffers[id]
	if !b.InUse {
		p.log.WithField("slot", id).Error("release of a free buffer slot")
		return false
	}
	b.InUse = false
	b.Translation = geom.Vec3i{}
	p.active--
	return true
}

// Occupied calls fn for every occupied slot in slot order until fn returns
// false.
func (p *Pool) Occupied(fn func(SlotID, *MeshBuffer) bool) {
	for i := range p.buffers {
		if p.buffers[i].InUse && !fn(SlotID(i), &p.buffers[i]) {
			return
		}
	}
}

// Reset frees every slot.
func (p *Pool) Reset() {
	for i := range p.buffers {
		p.buffers[i] = MeshBuffer{Bounds: geom.Empty()}
	}
	p.active = 0
}

// Validate checks that occupied translations are unique and that the active
// counter matches the slots.
func (p *Pool) Validate() error {
	seen := make(map[geom.Vec3i]SlotID, p.active)
	occupied := 0
	for i := range p.buffers {
		b := &p.buffers[i]
		if !b.InUse {
			continue
		}
		occupied++
		if other, ok := seen[b.Translation]; ok {
			return errors.Errorf("slots %d and %d both hold translation %v", other, i, b.Translation)
		}
		seen[b.Translation] = SlotID(i)
	}
	if occupied != p.active {
		return errors.Errorf("active count %d, but %d slots are occupied", p.active, occupied)
	}
	return nil
}
