package world

import "github.com/pkg/errors"

// Voxel is a colour index; zero is air.
type Voxel uint8

const Air Voxel = 0

// Reference palette used by the heightmap pager.
const (
	VoxelBedrock Voxel = iota + 1
	VoxelStone
	VoxelDirt
	VoxelGrass
)

// Volume holds the raw voxels of one region, x-major then z then y.
type Volume struct {
	Region Region
	Voxels []Voxel
}

// NewVolume allocates an all-air volume covering r.
func NewVolume(r Region) *Volume {
	return &Volume{Region: r, Voxels: make([]Voxel, r.VoxelCount())}
}

// VolumeFromBytes wraps raw voxel bytes after checking their length.
func VolumeFromBytes(r Region, raw []byte) (*Volume, error) {
	if len(raw) != r.VoxelCount() {
		return nil, errors.Errorf("volume %s: got %d voxels, want %d", r, len(raw), r.VoxelCount())
	}
	v := &Volume{Region: r, Voxels: make([]Voxel, len(raw))}
	for i, b := range raw {
		v.Voxels[i] = Voxel(b)
	}
	return v, nil
}

// Bytes returns the voxels as a byte slice.
func (v *Volume) Bytes() []byte {
	out := make([]byte, len(v.Voxels))
	for i, vx := range v.Voxels {
		out[i] = byte(vx)
	}
	return out
}

func (v *Volume) index(x, y, z int32) int {
	r := v.Region
	lx := x - r.Mins.X
	ly := y - r.Mins.Y
	lz := z - r.Mins.Z
	return int(lx)*int(r.Depth())*int(r.Height()) + int(lz)*int(r.Height()) + int(ly)
}

// At returns the voxel at the world position, or Air outside the volume.
func (v *Volume) At(x, y, z int32) Voxel {
	if !v.Region.Contains(x, y, z) {
		return Air
	}
	return v.Voxels[v.index(x, y, z)]
}

// Set writes a voxel at the world position. Writes outside are ignored.
func (v *Volume) Set(x, y, z int32, val Voxel) {
	if !v.Region.Contains(x, y, z) {
		return
	}
	v.Voxels[v.index(x, y, z)] = val
}

// IsEmpty reports whether every voxel is air.
func (v *Volume) IsEmpty() bool {
	for _, vx := range v.Voxels {
		if vx != Air {
			return false
		}
	}
	return true
}
