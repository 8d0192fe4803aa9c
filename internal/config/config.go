package config

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings holds everything the streaming core needs. It is passed through
// constructors; nothing in the module reads configuration from globals.
type Settings struct {
	// MeshSize is the extent of one chunk region in voxels.
	MeshSize [3]int `yaml:"mesh_size"`
	// WorldHeight bounds the extraction sweep vertically.
	WorldHeight int `yaml:"world_height"`

	// ViewDistance is in world units.
	ViewDistance float32 `yaml:"view_distance"`
	// CullingMarginChunks widens the eviction cutoff by this many chunks so
	// meshes at the edge do not pop in and out.
	CullingMarginChunks int `yaml:"culling_margin_chunks"`
	// VerticalEviction makes eviction use the full 3D distance instead of the
	// planar x/z distance.
	VerticalEviction bool `yaml:"vertical_eviction"`
	// ExtractionDistance is the horizontal half extent of the extraction
	// sweep. Zero means the camera far plane.
	ExtractionDistance float32 `yaml:"extraction_distance"`
	// CullShift moves the cull volume backwards along the view direction.
	CullShift float32 `yaml:"cull_shift"`
	// PreciseCulling tests every candidate box against the frustum planes.
	PreciseCulling bool `yaml:"precise_culling"`

	PoolCapacity       int `yaml:"pool_capacity"`
	MaxMeshesPerFrame  int `yaml:"max_meshes_per_frame"`
	DropCooldownFrames int `yaml:"drop_cooldown_frames"`

	Workers            int `yaml:"workers"`
	CompletedQueueSize int `yaml:"completed_queue_size"`

	Octree OctreeSettings   `yaml:"octree"`
	World  WorldGenSettings `yaml:"world"`

	FPSLimit         int    `yaml:"fps_limit"`
	LogLevel         string `yaml:"log_level"`
	StrictInvariants bool   `yaml:"strict_invariants"`
}

// OctreeSettings configures the spatial index.
type OctreeSettings struct {
	Looseness float32 `yaml:"looseness"`
	MaxDepth  int     `yaml:"max_depth"`
	MaxNodes  int     `yaml:"max_nodes"`
}

// Default returns the settings used when no file is given.
func Default() Settings {
	return Settings{
		MeshSize:            [3]int{32, 32, 32},
		WorldHeight:         256,
		ViewDistance:        512,
		CullingMarginChunks: 2,
		ExtractionDistance:  192,
		CullShift:           10,
		PoolCapacity:        2048,
		MaxMeshesPerFrame:   4,
		DropCooldownFrames:  60,
		Workers:             runtime.NumCPU(),
		CompletedQueueSize:  256,
		Octree: OctreeSettings{
			Looseness: 2,
			MaxDepth:  24,
			MaxNodes:  1 << 18,
		},
		World:    DefaultWorldGen(),
		FPSLimit: 60,
		LogLevel: "info",
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, errors.Wrap(err, "read settings")
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, errors.Wrap(err, path)
	}
	s.Normalize()
	return s, nil
}

// Normalize clamps values to workable ranges.
func (s *Settings) Normalize() {
	for i := range s.MeshSize {
		if s.MeshSize[i] < 1 {
			s.MeshSize[i] = 32
		}
	}
	if s.WorldHeight < s.MeshSize[1] {
		s.WorldHeight = s.MeshSize[1]
	}
	s.SetViewDistance(s.ViewDistance)
	if s.CullingMarginChunks < 0 {
		s.CullingMarginChunks = 0
	}
	if s.CullShift < 0 {
		s.CullShift = 0
	}
	if s.PoolCapacity < 1 {
		s.PoolCapacity = 1
	}
	if s.MaxMeshesPerFrame < 1 {
		s.MaxMeshesPerFrame = 1
	}
	if s.DropCooldownFrames < 0 {
		s.DropCooldownFrames = 0
	}
	if s.Workers < 1 {
		s.Workers = max(runtime.NumCPU(), 1)
	}
	if s.CompletedQueueSize < 1 {
		s.CompletedQueueSize = 1
	}
	if s.Octree.Looseness < 1 {
		s.Octree.Looseness = 1
	}
	if s.Octree.MaxDepth < 1 {
		s.Octree.MaxDepth = 1
	}
	if s.Octree.MaxNodes < 1 {
		s.Octree.MaxNodes = 1
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

// SetViewDistance sets the view distance in world units.
func (s *Settings) SetViewDistance(distance float32) {
	// Clamp to reasonable values
	if distance < 32 {
		distance = 32
	}
	if distance > 8192 {
		distance = 8192
	}
	s.ViewDistance = distance
}
