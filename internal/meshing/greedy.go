package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/world"
)

type greedy struct {
	vol  *world.Volume
	mins [3]int32
	dims [3]int32
	mask []world.Voxel
	mesh *Mesh
}

func (g *greedy) at(p [3]int32) world.Voxel {
	return g.vol.At(p[0], p[1], p[2])
}

// sweep performs 2D greedy meshing for one face direction. axis is the face
// normal axis, sign is +1 or -1. Layers are walked along the normal, each
// layer builds a UxV mask of visible face colours that is then merged into
// rectangles.
func (g *greedy) sweep(axis int, sign int32) {
	u := (axis + 1) % 3
	v := (axis + 2) % 3
	du, dv := int(g.dims[u]), int(g.dims[v])
	if cap(g.mask) < du*dv {
		g.mask = make([]world.Voxel, du*dv)
	}
	mask := g.mask[:du*dv]

	face := uint8(axis * 2)
	if sign < 0 {
		face++
	}

	for layer := int32(0); layer < g.dims[axis]; layer++ {
		// Build mask: a face is visible when the voxel is solid and its
		// neighbour along the normal is air (possibly in the border).
		var p [3]int32
		p[axis] = g.mins[axis] + layer
		for j := 0; j < dv; j++ {
			for i := 0; i < du; i++ {
				p[u] = g.mins[u] + int32(i)
				p[v] = g.mins[v] + int32(j)
				c := g.at(p)
				n := p
				n[axis] += sign
				if c != world.Air && g.at(n) == world.Air {
					mask[j*du+i] = c
				} else {
					mask[j*du+i] = world.Air
				}
			}
		}

		plane := g.mins[axis] + layer
		if sign > 0 {
			plane++
		}

		// Greedy merge over mask
		for j := 0; j < dv; j++ {
			for i := 0; i < du; {
				c := mask[j*du+i]
				if c == world.Air {
					i++
					continue
				}
				w := 1
				for i+w < du && mask[j*du+i+w] == c {
					w++
				}
				h := 1
			grow:
				for j+h < dv {
					for k := 0; k < w; k++ {
						if mask[(j+h)*du+i+k] != c {
							break grow
						}
					}
					h++
				}
				for y := 0; y < h; y++ {
					for x := 0; x < w; x++ {
						mask[(j+y)*du+i+x] = world.Air
					}
				}
				g.emit(axis, u, v, sign, face, uint8(c), plane,
					g.mins[u]+int32(i), g.mins[v]+int32(j), int32(w), int32(h))
				i += w
			}
		}
	}
}

func (g *greedy) emit(axis, u, v int, sign int32, face, color uint8, plane, u0, v0, w, h int32) {
	corner := func(du, dv int32) Vertex {
		var p mgl32.Vec3
		p[axis] = float32(plane)
		p[u] = float32(u0 + du)
		p[v] = float32(v0 + dv)
		return Vertex{Position: p, Face: face, Color: color, AO: 3}
	}
	c0 := corner(0, 0)
	c1 := corner(w, 0)
	c2 := corner(w, h)
	c3 := corner(0, h)
	// u x v points along +axis, so the positive face is counter clockwise as
	// listed and the negative face needs the reverse order.
	if sign > 0 {
		g.mesh.AddQuad(c0, c1, c2, c3)
	} else {
		g.mesh.AddQuad(c0, c3, c2, c1)
	}
}
