package config

// WorldGenSettings configures the reference heightmap pager.
type WorldGenSettings struct {
	Seed        int64   `yaml:"seed"`
	BaseHeight  int     `yaml:"base_height"`
	Amplitude   float64 `yaml:"amplitude"`
	Scale       float64 `yaml:"scale"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`

	// PageCacheEntries bounds the number of compressed volumes kept by the
	// page cache.
	PageCacheEntries int `yaml:"page_cache_entries"`
}

// DefaultWorldGen returns rolling hills around y=64.
func DefaultWorldGen() WorldGenSettings {
	return WorldGenSettings{
		Seed:             1,
		BaseHeight:       64,
		Amplitude:        48,
		Scale:            1.0 / 96.0,
		Octaves:          4,
		Persistence:      0.5,
		Lacunarity:       2.0,
		PageCacheEntries: 4096,
	}
}
