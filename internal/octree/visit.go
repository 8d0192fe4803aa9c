package octree

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/geom"
)

// VisitFunc is called with the inclusive voxel bounds of a cell. It returns
// whether work was scheduled for the cell.
type VisitFunc func(mins, maxs geom.Vec3i) bool

// Visit walks the grid-aligned cells of cellSize that overlap [mins, maxs)
// and calls fn for every cell that does not yet hold an indexed anchor. The
// walk recursively splits the cell range into octants and visits them in
// octant order, so the sequence of calls is deterministic. It returns how
// many calls returned true.
func (t *Tree[K]) Visit(mins, maxs mgl32.Vec3, fn VisitFunc, cellSize geom.Vec3i) int {
	var lo, hi [3]int32
	cell := [3]int32{cellSize.X, cellSize.Y, cellSize.Z}
	for axis := range 3 {
		if cell[axis] <= 0 || maxs[axis] <= mins[axis] {
			return 0
		}
		lo[axis] = geom.FloorDiv(int32(math32.Floor(mins[axis])), cell[axis])
		hi[axis] = geom.FloorDiv(int32(math32.Ceil(maxs[axis]))-1, cell[axis])
	}
	v := visitor[K]{tree: t, fn: fn, cell: cell}
	v.walk(lo, hi)
	return v.scheduled
}

type visitor[K comparable] struct {
	tree      *Tree[K]
	fn        VisitFunc
	cell      [3]int32
	scheduled int
}

func (v *visitor[K]) walk(lo, hi [3]int32) {
	if lo[0] > hi[0] || lo[1] > hi[1] || lo[2] > hi[2] {
		return
	}
	if lo == hi {
		v.visitCell(lo)
		return
	}
	var mid [3]int32
	for axis := range 3 {
		mid[axis] = lo[axis] + (hi[axis]-lo[axis])/2
	}
	for oct := range 8 {
		var l, h [3]int32
		for axis := range 3 {
			if oct&(1<<axis) == 0 {
				l[axis], h[axis] = lo[axis], mid[axis]
			} else {
				l[axis], h[axis] = mid[axis]+1, hi[axis]
			}
		}
		v.walk(l, h)
	}
}

func (v *visitor[K]) visitCell(idx [3]int32) {
	mins := geom.Vec3i{X: idx[0] * v.cell[0], Y: idx[1] * v.cell[1], Z: idx[2] * v.cell[2]}
	size := geom.Vec3i{X: v.cell[0], Y: v.cell[1], Z: v.cell[2]}
	box := geom.AABB{Min: mins.Vec3(), Max: mins.Add(size).Vec3()}
	if v.tree.anyAnchorIn(box) {
		return
	}
	maxs := mins.Add(size).Sub(geom.Vec3i{X: 1, Y: 1, Z: 1})
	if v.fn(mins, maxs) {
		v.scheduled++
	}
}
