package extraction

import (
	"container/heap"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"voxstream/internal/geom"
	"voxstream/internal/world"
)

type request struct {
	region   world.Region
	ticket   uuid.UUID
	priority float32
}

// requestQueue is a min-heap on priority (squared distance to the focus).
type requestQueue []request

func (q requestQueue) Len() int           { return len(q) }
func (q requestQueue) Less(i, j int) bool { return q[i].priority < q[j].priority }
func (q requestQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *requestQueue) Push(x any) { *q = append(*q, x.(request)) }

func (q *requestQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

func (q *requestQueue) push(r request) { heap.Push(q, r) }
func (q *requestQueue) pop() request   { return heap.Pop(q).(request) }

// reorder recomputes every priority against focus and restores the heap.
func (q *requestQueue) reorder(focus mgl32.Vec3) {
	for i := range *q {
		(*q)[i].priority = priorityOf((*q)[i].region, focus)
	}
	heap.Init(q)
}

func priorityOf(r world.Region, focus mgl32.Vec3) float32 {
	return geom.DistanceSquare(r.AABB().Center(), focus)
}
