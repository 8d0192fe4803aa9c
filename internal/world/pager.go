package world

import "context"

// Pager supplies raw voxel data on demand. Repeated fetches of the same region
// return consistent data until invalidated by the implementation.
//
// Fetch is called from extraction workers and may block; Evict is a hint from
// the controller goroutine and must return quickly.
type Pager interface {
	Fetch(ctx context.Context, r Region) (*Volume, error)
	Evict(r Region)
}
