// Package extraction runs mesh extraction off the frame loop.
//
// The controller goroutine schedules translations and drains completed
// meshes; worker goroutines fetch voxels and extract geometry. Every
// scheduled translation gets a fresh ticket. A completion is only accepted
// when its ticket is still the tracked ticket for its translation, so results
// for requests that were reset or superseded are discarded.
package extraction

import (
	"context"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"voxstream/internal/config"
	"voxstream/internal/geom"
	"voxstream/internal/meshing"
	"voxstream/internal/world"
)

// CompletedMesh is a mesh ready to be placed into a buffer slot.
type CompletedMesh struct {
	Region world.Region
	Mesh   meshing.Mesh
}

// Translation is the region origin the mesh belongs to.
func (c CompletedMesh) Translation() geom.Vec3i { return c.Region.Mins }

// Stats is a snapshot of scheduler counters.
type Stats struct {
	Pending int
	Tracked int
	// Queued counts meshes extracted but not yet popped.
	Queued    int
	Scheduled uint64
	Completed uint64
	Stale     uint64
	Failed    uint64
}

// Scheduler is the mesh extraction scheduler.
type Scheduler struct {
	log      *logrus.Entry
	meshSize geom.Vec3i
	pager    world.Pager
	pool     *meshing.WorkerPool

	mu      sync.Mutex
	pending requestQueue
	// tracked holds every translation that is pending, in flight, completed
	// but not yet popped, or resident. The value is the current ticket.
	tracked map[geom.Vec3i]uuid.UUID
	focus   mgl32.Vec3
	stats   Stats

	wake chan struct{}
}

// New creates a scheduler. Workers are not running until Start.
func New(s config.Settings, pager world.Pager, extractor meshing.Extractor, log *logrus.Entry) *Scheduler {
	sc := &Scheduler{
		log: log,
		meshSize: geom.Vec3i{
			X: int32(s.MeshSize[0]),
			Y: int32(s.MeshSize[1]),
			Z: int32(s.MeshSize[2]),
		},
		pager:   pager,
		tracked: make(map[geom.Vec3i]uuid.UUID),
		wake:    make(chan struct{}, max(s.Workers, 1)),
	}
	sc.pool = meshing.NewWorkerPool(s.Workers, s.CompletedQueueSize, sc, pager, extractor)
	return sc
}

// Start launches the extraction workers.
func (s *Scheduler) Start(ctx context.Context) {
	s.pool.Start(ctx)
}

// Shutdown stops the workers and waits for them to exit.
func (s *Scheduler) Shutdown() {
	s.pool.Shutdown()
}

// MeshSize is the extent of one chunk region.
func (s *Scheduler) MeshSize() geom.Vec3i {
	return s.meshSize
}

// ScheduleExtraction requests a mesh for the chunk at translation. It returns
// false when the translation is already pending or resident.
func (s *Scheduler) ScheduleExtraction(translation geom.Vec3i) bool {
	region := world.RegionAt(translation, s.meshSize)

	s.mu.Lock()
	if _, ok := s.tracked[translation]; ok {
		s.mu.Unlock()
		return false
	}
	ticket := uuid.New()
	s.tracked[translation] = ticket
	s.pending.push(request{
		region:   region,
		ticket:   ticket,
		priority: priorityOf(region, s.focus),
	})
	s.stats.Scheduled++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Next implements meshing.JobSource. Requests whose ticket was superseded
// while they waited are skipped.
func (s *Scheduler) Next(ctx context.Context) (meshing.MeshJob, bool) {
	for {
		s.mu.Lock()
		for s.pending.Len() > 0 {
			req := s.pending.pop()
			if s.tracked[req.region.Mins] != req.ticket {
				s.stats.Stale++
				continue
			}
			s.mu.Unlock()
			return meshing.MeshJob{Region: req.region, Ticket: req.ticket}, true
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return meshing.MeshJob{}, false
		case <-s.wake:
		}
	}
}

// Pop returns the next completed mesh without blocking. Stale completions are
// dropped. A failed extraction untracks its translation so the next sweep
// schedules it again.
func (s *Scheduler) Pop() (CompletedMesh, bool) {
	for {
		var res meshing.MeshResult
		select {
		case res = <-s.pool.Results():
		default:
			return CompletedMesh{}, false
		}

		translation := res.Region.Mins
		s.mu.Lock()
		current := s.tracked[translation] == res.Ticket
		switch {
		case !current:
			s.stats.Stale++
		case res.Error != nil:
			delete(s.tracked, translation)
			s.stats.Failed++
		default:
			s.stats.Completed++
		}
		s.mu.Unlock()

		if !current {
			continue
		}
		if res.Error != nil {
			s.log.WithError(res.Error).Warn("mesh extraction failed, will retry")
			continue
		}
		return CompletedMesh{Region: res.Region, Mesh: res.Mesh}, true
	}
}

// AllowReExtraction untracks translation so it may be scheduled again and
// hints the pager that its voxels can go. It returns false when the
// translation was not tracked, which means the caller's bookkeeping leaked.
func (s *Scheduler) AllowReExtraction(translation geom.Vec3i) bool {
	s.mu.Lock()
	_, ok := s.tracked[translation]
	delete(s.tracked, translation)
	s.mu.Unlock()

	if ok {
		s.pager.Evict(world.RegionAt(translation, s.meshSize).Grow(1))
	}
	return ok
}

// UpdateExtractionOrder re-sorts pending requests by distance to focus.
func (s *Scheduler) UpdateExtractionOrder(focus mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focus == focus {
		return
	}
	s.focus = focus
	s.pending.reorder(focus)
}

// Reset forgets all pending and tracked work. Results still in flight will be
// recognised as stale.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.pending = s.pending[:0]
	clear(s.tracked)
	s.mu.Unlock()

	for {
		select {
		case <-s.pool.Results():
			s.mu.Lock()
			s.stats.Stale++
			s.mu.Unlock()
		default:
			return
		}
	}
}

// Pending returns the number of queued requests.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

// IsTracked reports whether translation is pending or resident.
func (s *Scheduler) IsTracked(translation geom.Vec3i) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tracked[translation]
	return ok
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Pending = s.pending.Len()
	st.Tracked = len(s.tracked)
	st.Queued = s.pool.GetQueueLength()
	return st
}
