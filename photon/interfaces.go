package photon

import "github.com/achilleasa/photonmap/types"

// Ray is a traced ray. DiracDelta and Depth are carried along the path so
// the tracer and integrator can apply the deposit rule and the
// double-counting guard from §4.7/§4.9 without re-deriving them.
type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3

	// DiracDelta is true when this ray was produced by sampling a
	// dirac-delta (pure specular) BSDF lobe.
	DiracDelta bool

	// Depth is the number of bounces already taken; 0 for a primary
	// camera ray or the initial photon-emission ray.
	Depth int
}

// Surface is an emissive surface the tracer can sample photons from.
type Surface interface {
	// Emittance returns the surface's outgoing radiant flux per unit
	// area, per unit solid angle (a spectrum).
	Emittance() types.Vec3

	// Area returns the surface's area.
	Area() float32

	// Sample maps two uniform variates in [0,1) to a point on the
	// surface.
	Sample(u, v float64) types.Vec3

	// Normal returns the outward-facing unit normal at point.
	Normal(point types.Vec3) types.Vec3
}

// Material is the BSDF collaborator attached to a scene interaction.
type Material interface {
	// DiracDelta reports whether the BSDF is a sum of dirac deltas
	// (perfect mirror / perfect refraction): such materials can't be
	// usefully density-estimated and never receive photon deposits.
	DiracDelta() bool

	// SampleBSDF draws a new direction from the BSDF, writing the
	// |cosθ|*f throughput factor and its pdf, and mutates ray in place
	// (Direction, DiracDelta) to continue the path. Depth is left as is;
	// callers advance it before calling. Returns false if sampling failed
	// (e.g. degenerate geometry, invalid pdf).
	SampleBSDF(ray *Ray, adjoint bool) (bsdfAbsIdotN types.Vec3, pdf float32, ok bool)

	// BSDF evaluates |cosθ|*f for a given incoming direction, for use by
	// the density estimators against photon directions.
	BSDF(incoming types.Vec3) (bsdfAbsIdotN types.Vec3, pdf float32, ok bool)

	// IOR returns the material's interior index of refraction. Ignored
	// by non-refractive materials; used by the refraction history to
	// track the ambient IOR across nested transmissive media.
	IOR() float32
}

// Interaction is what Scene.Intersect returns on a hit.
type Interaction struct {
	Point    types.Vec3
	Normal   types.Vec3
	Material Material

	// OutgoingDirection is -ray.Direction at the hit, i.e. the direction
	// back toward the ray's origin.
	OutgoingDirection types.Vec3

	// Emission is the interaction's own self-emitted radiance, if any.
	Emission types.Vec3
}

// Scene is the external ray-intersection/geometry collaborator. Everything
// about surface representation, acceleration structures for intersection,
// and material evaluation lives outside the photon-mapping core.
type Scene interface {
	// Intersect traces ray against the scene, returning the nearest hit
	// and true, or false on a miss. externalIOR is the index of
	// refraction of the medium the ray currently travels through (the
	// top of the caller's refraction history), needed to evaluate
	// Fresnel terms at the hit correctly.
	Intersect(ray Ray, externalIOR float32) (Interaction, bool)

	// Emissives lists every emissive surface, in a stable order.
	Emissives() []Surface

	// BB returns the scene-wide bounding box.
	BB() BoundingBox

	// IOR is the default external index of refraction (e.g. 1.0 for
	// vacuum/air).
	IOR() float32
}

// Sampler is the external stratified/low-discrepancy sampling collaborator.
type Sampler interface {
	Initiate(seed int64)
	SetIndex(i int)
	Shuffle()

	// Get2D returns two stratified variates in [0,1) tagged by dim, so
	// that repeated calls for logically distinct purposes (e.g. light
	// position vs. hemisphere direction) draw from distinct strata.
	Get2D(dim int) [2]float64

	// Get1D returns a single stratified variate in [0,1) tagged by dim,
	// used for scalar decisions like the non-caustic reject and Russian
	// roulette.
	Get1D(dim int) float64
}
