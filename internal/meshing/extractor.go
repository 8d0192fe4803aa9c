package meshing

import (
	"github.com/pkg/errors"

	"voxstream/internal/world"
)

// Extractor turns the voxels of a region into a mesh. Implementations must be
// deterministic and safe for concurrent use.
//
// The volume may extend past the region; voxels in that border are only read
// to decide face visibility.
type Extractor interface {
	Extract(r world.Region, vol *world.Volume) (Mesh, error)
}

// CubicExtractor emits one quad per visible voxel face and greedily merges
// coplanar faces of the same colour into larger quads.
type CubicExtractor struct{}

// Extract implements Extractor.
func (CubicExtractor) Extract(r world.Region, vol *world.Volume) (Mesh, error) {
	if vol == nil {
		return Mesh{}, errors.New("nil volume")
	}
	if !vol.Region.ContainsRegion(r) {
		return Mesh{}, errors.Errorf("volume %s does not cover region %s", vol.Region, r)
	}
	mesh := Mesh{Translation: r.Translation()}
	g := greedy{
		vol:  vol,
		mins: [3]int32{r.Mins.X, r.Mins.Y, r.Mins.Z},
		dims: [3]int32{r.Width(), r.Height(), r.Depth()},
		mesh: &mesh,
	}
	for axis := range 3 {
		g.sweep(axis, +1)
		g.sweep(axis, -1)
	}
	return mesh, nil
}
