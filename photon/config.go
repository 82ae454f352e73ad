package photon

import "fmt"

// Config holds the recognized `photon_map` options from §6. Constructed
// values must be validated before use; the orchestrator refuses partial
// initialization.
type Config struct {
	// Emissions is the nominal total photon count before caustic
	// oversampling.
	Emissions int `yaml:"emissions"`

	// CausticFactor multiplies Emissions to increase caustic sampling
	// density. 1/CausticFactor is the non-caustic accept probability.
	CausticFactor float64 `yaml:"caustic_factor"`

	// KNearestPhotons is k for both the caustic and global estimators.
	KNearestPhotons int `yaml:"k_nearest_photons"`

	// MaxPhotonsPerOctreeLeaf is the dynamic octree's max_node_data.
	MaxPhotonsPerOctreeLeaf int `yaml:"max_photons_per_octree_leaf"`

	// DirectVisualization bypasses the deferred-global heuristic in the
	// integrator, returning the raw global-map estimate at the first
	// non-dirac hit. Diagnostic use only.
	DirectVisualization bool `yaml:"direct_visualization"`
}

// DefaultConfig returns a Config with the spec's documented defaults for
// every field except Emissions and CausticFactor, which have no default
// and must be set explicitly.
func DefaultConfig() Config {
	return Config{
		KNearestPhotons:         50,
		MaxPhotonsPerOctreeLeaf: 200,
	}
}

// Validate rejects malformed configuration at construction time, per §7:
// missing/negative counts and caustic_factor < 1 are fatal, not partial.
func (c Config) Validate() error {
	if c.Emissions < 0 {
		return fmt.Errorf("photon: emissions must be >= 0, got %d", c.Emissions)
	}
	if c.CausticFactor < 1 {
		return fmt.Errorf("photon: caustic_factor must be >= 1, got %g", c.CausticFactor)
	}
	if c.KNearestPhotons < 1 {
		return fmt.Errorf("photon: k_nearest_photons must be >= 1, got %d", c.KNearestPhotons)
	}
	if c.MaxPhotonsPerOctreeLeaf < 1 {
		return fmt.Errorf("photon: max_photons_per_octree_leaf must be >= 1, got %d", c.MaxPhotonsPerOctreeLeaf)
	}
	return nil
}
