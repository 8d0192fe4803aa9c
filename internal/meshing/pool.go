package meshing

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"voxstream/internal/profiling"
	"voxstream/internal/world"
)

// MeshJob represents a meshing job request
type MeshJob struct {
	Region world.Region
	// Ticket identifies the request that produced this job. Results whose
	// ticket is no longer current are stale.
	Ticket uuid.UUID
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	MeshJob
	Mesh  Mesh
	Error error
}

// JobSource hands out jobs to workers. Next blocks until a job is available
// and returns false once ctx is done.
type JobSource interface {
	Next(ctx context.Context) (MeshJob, bool)
}

// WorkerPool manages goroutines for mesh generation
type WorkerPool struct {
	source    JobSource
	pager     world.Pager
	extractor Extractor
	results   chan MeshResult
	workers   int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool creates a new mesh worker pool. Results are buffered up to
// queueSize; workers block on a full queue until the consumer drains it.
func NewWorkerPool(workers, queueSize int, source JobSource, pager world.Pager, extractor Extractor) *WorkerPool {
	return &WorkerPool{
		source:    source,
		pager:     pager,
		extractor: extractor,
		results:   make(chan MeshResult, queueSize),
		workers:   max(workers, 1),
	}
}

// Start launches the worker goroutines. Calling Start on a running pool is a
// no-op.
func (p *WorkerPool) Start(parent context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	for range p.workers {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Results is the completed-work queue.
func (p *WorkerPool) Results() <-chan MeshResult {
	return p.results
}

// worker is the worker goroutine that processes mesh jobs
func (p *WorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		job, ok := p.source.Next(ctx)
		if !ok {
			return
		}
		result := p.process(ctx, job)

		select {
		case p.results <- result:
		case <-ctx.Done():
			return
		}
	}
}

// process fetches the region plus a one voxel border, so faces on the chunk
// boundary can be culled against the neighbours, and extracts the mesh.
func (p *WorkerPool) process(ctx context.Context, job MeshJob) MeshResult {
	defer profiling.Track("meshing.process")()
	result := MeshResult{MeshJob: job}

	vol, err := p.pager.Fetch(ctx, job.Region.Grow(1))
	if err != nil {
		result.Error = errors.Wrapf(err, "fetch %s", job.Region)
		return result
	}
	mesh, err := p.extractor.Extract(job.Region, vol)
	if err != nil {
		result.Error = errors.Wrapf(err, "extract %s", job.Region)
		return result
	}
	result.Mesh = mesh
	return result
}

// Shutdown gracefully shuts down the worker pool
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
}

// GetQueueLength returns the number of results waiting to be consumed
func (p *WorkerPool) GetQueueLength() int {
	return len(p.results)
}
