// Package octree implements a loose octree over axis aligned boxes.
//
// Nodes live in a contiguous arena and refer to each other through int32
// handles, so there are no pointer cycles between parents and children.
// The tree indexes keys only; it never owns the data the keys refer to.
package octree

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/geom"
)

type handle = int32

const nilNode handle = -1

// Options configures a Tree.
type Options struct {
	// MinSize is the edge length of the smallest (leaf level) node.
	MinSize float32
	// Looseness scales node bounds around their centre; 1 gives a classic
	// octree, 2 lets an item of leaf size always fit into a leaf.
	Looseness float32
	// MaxDepth limits how many times the root may double above leaf size.
	MaxDepth int
	// MaxNodes limits the arena.
	MaxNodes int
}

// entry is an indexed key. anchor decides which grid cell the key fills and
// always lies inside the tight bounds of the node holding the entry.
type entry[K comparable] struct {
	key    K
	box    geom.AABB
	anchor mgl32.Vec3
}

type node[K comparable] struct {
	tight    geom.AABB
	loose    geom.AABB
	parent   handle
	children [8]handle
	items    []entry[K]
}

func (n *node[K]) isLeafEmpty() bool {
	if len(n.items) > 0 {
		return false
	}
	for _, c := range n.children {
		if c != nilNode {
			return false
		}
	}
	return true
}

// Tree is a loose octree keyed by K. It is not safe for concurrent use.
type Tree[K comparable] struct {
	opts  Options
	nodes []node[K]
	free  []handle
	root  handle
	// depth is the level of the root; the root edge is MinSize * 2^depth.
	depth int
	where map[K]handle
}

// New creates an empty tree.
func New[K comparable](opts Options) *Tree[K] {
	if opts.MinSize <= 0 {
		opts.MinSize = 1
	}
	if opts.Looseness < 1 {
		opts.Looseness = 1
	}
	if opts.MaxNodes < 1 {
		opts.MaxNodes = 1
	}
	return &Tree[K]{
		opts:  opts,
		root:  nilNode,
		where: make(map[K]handle),
	}
}

// Len returns the number of indexed keys.
func (t *Tree[K]) Len() int { return len(t.where) }

// NodeCount returns the number of live nodes.
func (t *Tree[K]) NodeCount() int { return len(t.nodes) - len(t.free) }

// Contains reports whether key is indexed.
func (t *Tree[K]) Contains(key K) bool {
	_, ok := t.where[key]
	return ok
}

// Bounds returns the box key was inserted with.
func (t *Tree[K]) Bounds(key K) (geom.AABB, bool) {
	h, ok := t.where[key]
	if !ok {
		return geom.AABB{}, false
	}
	for _, e := range t.nodes[h].items {
		if e.key == key {
			return e.box, true
		}
	}
	return geom.AABB{}, false
}

// Clear drops all nodes and keys.
func (t *Tree[K]) Clear() {
	t.nodes = t.nodes[:0]
	t.free = t.free[:0]
	t.root = nilNode
	t.depth = 0
	clear(t.where)
}

func (t *Tree[K]) looseOf(tight geom.AABB) geom.AABB {
	pad := tight.Size().Mul((t.opts.Looseness - 1) / 2)
	return geom.AABB{Min: tight.Min.Sub(pad), Max: tight.Max.Add(pad)}
}

func (t *Tree[K]) alloc(tight geom.AABB, parent handle) handle {
	n := node[K]{
		tight:    tight,
		loose:    t.looseOf(tight),
		parent:   parent,
		children: [8]handle{nilNode, nilNode, nilNode, nilNode, nilNode, nilNode, nilNode, nilNode},
	}
	if k := len(t.free); k > 0 {
		h := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[h] = n
		return h
	}
	if len(t.nodes) >= t.opts.MaxNodes {
		return nilNode
	}
	t.nodes = append(t.nodes, n)
	return handle(len(t.nodes) - 1)
}

func (t *Tree[K]) release(h handle) {
	t.nodes[h].items = nil
	t.free = append(t.free, h)
}

func cube(min mgl32.Vec3, size float32) geom.AABB {
	return geom.AABB{Min: min, Max: min.Add(mgl32.Vec3{size, size, size})}
}

// octant picks the child of tight that holds p. Bit 0 is x, bit 1 y, bit 2 z.
func octant(tight geom.AABB, p mgl32.Vec3) (int, geom.AABB) {
	c := tight.Center()
	half := (tight.Max.X() - tight.Min.X()) / 2
	idx := 0
	min := tight.Min
	for axis := range 3 {
		if p[axis] >= c[axis] {
			idx |= 1 << axis
			min[axis] = c[axis]
		}
	}
	return idx, cube(min, half)
}

// grow doubles the root towards whichever side box or anchor falls off,
// making the old root one of its children.
func (t *Tree[K]) grow(box geom.AABB, anchor mgl32.Vec3) bool {
	if t.depth+1 > t.opts.MaxDepth {
		return false
	}
	old := t.nodes[t.root].tight
	loose := t.nodes[t.root].loose
	size := old.Max.X() - old.Min.X()
	min := old.Min
	idx := 0
	for axis := range 3 {
		if anchor[axis] < old.Min[axis] || box.Min[axis] < loose.Min[axis] {
			min[axis] -= size
			idx |= 1 << axis
		}
	}
	h := t.alloc(cube(min, size*2), nilNode)
	if h == nilNode {
		return false
	}
	t.nodes[h].children[idx] = t.root
	t.nodes[t.root].parent = h
	t.root = h
	t.depth++
	return true
}

// Insert indexes key with box, anchored at the centre of box. Inserting an
// existing key moves it. It returns false for empty boxes and when the depth
// or node limits do not allow the box to be placed.
func (t *Tree[K]) Insert(key K, box geom.AABB) bool {
	return t.InsertAt(key, box, box.Center())
}

// InsertAt indexes key with box and an explicit anchor. Visit treats the
// cell containing anchor as filled, wherever the box itself lies.
func (t *Tree[K]) InsertAt(key K, box geom.AABB, anchor mgl32.Vec3) bool {
	if !box.IsValid() {
		return false
	}
	if t.Contains(key) {
		t.Remove(key)
	}
	if t.root == nilNode {
		origin := geom.Floor(anchor.Mul(1 / t.opts.MinSize)).Vec3().Mul(t.opts.MinSize)
		t.root = t.alloc(cube(origin, t.opts.MinSize), nilNode)
		t.depth = 0
		if t.root == nilNode {
			return false
		}
	}
	for !t.nodes[t.root].loose.Contains(box) || !t.nodes[t.root].tight.ContainsPoint(anchor) {
		if !t.grow(box, anchor) {
			t.pruneRoot()
			return false
		}
	}

	h := t.root
	for level := t.depth; level > 0; level-- {
		idx, childTight := octant(t.nodes[h].tight, anchor)
		if !t.looseOf(childTight).Contains(box) {
			break
		}
		child := t.nodes[h].children[idx]
		if child == nilNode {
			child = t.alloc(childTight, h)
			if child == nilNode {
				// arena exhausted, keep the item at the current level
				break
			}
			t.nodes[h].children[idx] = child
		}
		h = child
	}
	t.nodes[h].items = append(t.nodes[h].items, entry[K]{key: key, box: box, anchor: anchor})
	t.where[key] = h
	return true
}

// pruneRoot undoes growth that did not lead to a successful insert.
func (t *Tree[K]) pruneRoot() {
	for t.depth > 0 && len(t.nodes[t.root].items) == 0 {
		only := nilNode
		count := 0
		for _, c := range t.nodes[t.root].children {
			if c != nilNode {
				only = c
				count++
			}
		}
		if count != 1 {
			return
		}
		t.release(t.root)
		t.root = only
		t.nodes[only].parent = nilNode
		t.depth--
	}
}

// Remove drops key from the index and frees nodes left empty.
func (t *Tree[K]) Remove(key K) bool {
	h, ok := t.where[key]
	if !ok {
		return false
	}
	delete(t.where, key)
	items := t.nodes[h].items
	for i := range items {
		if items[i].key == key {
			last := len(items) - 1
			items[i] = items[last]
			t.nodes[h].items = items[:last]
			break
		}
	}
	for h != t.root && t.nodes[h].isLeafEmpty() {
		parent := t.nodes[h].parent
		for i, c := range t.nodes[parent].children {
			if c == h {
				t.nodes[parent].children[i] = nilNode
			}
		}
		t.release(h)
		h = parent
	}
	return true
}

// Query appends every key whose box intersects box to dst.
func (t *Tree[K]) Query(box geom.AABB, dst []K) []K {
	if t.root == nilNode || !box.IsValid() {
		return dst
	}
	stack := []handle{t.root}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[h]
		if !n.loose.Intersects(box) {
			continue
		}
		for _, e := range n.items {
			if e.box.Intersects(box) {
				dst = append(dst, e.key)
			}
		}
		for _, c := range n.children {
			if c != nilNode {
				stack = append(stack, c)
			}
		}
	}
	return dst
}

// anyAnchorIn reports whether some indexed key is anchored inside cell.
func (t *Tree[K]) anyAnchorIn(cell geom.AABB) bool {
	if t.root == nilNode {
		return false
	}
	stack := []handle{t.root}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[h]
		if !n.tight.Intersects(cell) {
			continue
		}
		for _, e := range n.items {
			if cell.ContainsPoint(e.anchor) {
				return true
			}
		}
		for _, c := range n.children {
			if c != nilNode {
				stack = append(stack, c)
			}
		}
	}
	return false
}
