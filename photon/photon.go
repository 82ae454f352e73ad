// Package photon implements the photon-mapping global illumination core:
// emission/tracing of photons from emissive surfaces, a two-phase octree
// (dynamic build, then a compacted linear layout) over the resulting
// deposits, and the k-nearest-neighbor density estimators that turn a map
// into a caustic or indirect radiance value at a shading point.
package photon

import "github.com/achilleasa/photonmap/types"

// Photon is a single deposited energy packet. Immutable after deposit.
type Photon struct {
	// Flux carried by the photon (non-negative, three-channel spectrum).
	Flux types.Vec3

	// Position is where the photon was deposited.
	Position types.Vec3

	// IncomingDirection points from the surface toward the photon's
	// previous vertex, i.e. -ray.Direction at deposit time.
	IncomingDirection types.Vec3
}

// Pos returns the photon's position. Satisfies the generic payload
// requirement used by the octree ([Payload]).
func (p Photon) Pos() types.Vec3 {
	return p.Position
}
