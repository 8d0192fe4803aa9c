package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/geom"
)

// Face identifiers, two per axis: positive then negative.
const (
	FaceEast   uint8 = iota // +X
	FaceWest                // -X
	FaceTop                 // +Y
	FaceBottom              // -Y
	FaceNorth               // +Z
	FaceSouth               // -Z
)

// Vertex is one mesh corner in world space.
type Vertex struct {
	Position mgl32.Vec3
	Face     uint8
	Color    uint8
	// AO: 0 is the darkest, 3 is no occlusion at all
	AO uint8
}

// Mesh is an indexed triangle list for one chunk region.
type Mesh struct {
	Translation geom.Vec3i
	Vertices    []Vertex
	Indices     []uint32
}

// IsEmpty reports whether the mesh has nothing to draw.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Bounds is the min/max reduction over all vertex positions. A mesh without
// vertices yields geom.Empty().
func (m *Mesh) Bounds() geom.AABB {
	b := geom.Empty()
	for i := range m.Vertices {
		b = b.Extend(m.Vertices[i].Position)
	}
	return b
}

// AddQuad appends four corners and the two triangles (0,1,2) (0,2,3).
func (m *Mesh) AddQuad(v0, v1, v2, v3 Vertex) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, v0, v1, v2, v3)
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// Reset empties the mesh but keeps its backing arrays.
func (m *Mesh) Reset() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
	m.Translation = geom.Vec3i{}
}

// Append copies src into m, rebasing src's indices onto m's vertex count so
// the merged index list stays valid for a single draw call.
func (m *Mesh) Append(src *Mesh) {
	offset := uint32(len(m.Vertices))
	start := len(m.Indices)
	m.Indices = append(m.Indices, src.Indices...)
	for i := start; i < len(m.Indices); i++ {
		m.Indices[i] += offset
	}
	m.Vertices = append(m.Vertices, src.Vertices...)
}

// Merge resets dst and appends every mesh in order.
func Merge(dst *Mesh, meshes ...*Mesh) {
	dst.Reset()
	for _, m := range meshes {
		dst.Append(m)
	}
}
