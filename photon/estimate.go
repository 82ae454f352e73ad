package photon

import (
	"math"

	"github.com/achilleasa/photonmap/types"
)

// coneNormalization is 1/(1-2/(3k)) for the cone filter with k=1, i.e. the
// "3" of §4.8's caustic estimator.
const coneNormalization = 3

const originEpsilonEstimate = 1e-4

// RadianceEstimator evaluates caustic and indirect radiance at a shading
// point by kNN density estimation against a finished pair of photon maps,
// and drives the per-pixel path integrator (§4.9) that decides when to
// terminate a camera path into a photon lookup versus continue tracing.
type RadianceEstimator struct {
	Maps  *Maps
	Cfg   Config
	Scene Scene
}

// QueryScratch bundles the reusable kNN result heap so repeated estimator
// calls don't allocate a fresh heap per query. Not safe for concurrent use;
// callers doing per-pixel/per-tile parallel estimation should keep one
// QueryScratch per worker.
type QueryScratch struct {
	neighbors *Queue[Neighbor[Photon]]
}

// NewQueryScratch returns an empty, ready-to-use QueryScratch.
func NewQueryScratch() *QueryScratch {
	return &QueryScratch{
		neighbors: NewQueue[Neighbor[Photon]](func(a, b Neighbor[Photon]) bool { return a.Dist2 > b.Dist2 }),
	}
}

// EstimateGlobal evaluates the constant-kernel indirect radiance estimate
// at hit against the global map, per §4.8.
func (e *RadianceEstimator) EstimateGlobal(hit Interaction, s *QueryScratch) types.Vec3 {
	tree := e.Maps.Global
	if len(tree.Data) == 0 {
		return types.Vec3{}
	}
	tree.KNN(hit.Point, e.Cfg.KNearestPhotons, s.neighbors)
	if s.neighbors.Empty() {
		return types.Vec3{}
	}
	r2 := s.neighbors.Top().Dist2
	if r2 <= 0 {
		return types.Vec3{}
	}

	sum := types.Vec3{}
	for _, n := range s.neighbors.Items() {
		bsdfAbsIdotN, pdf, ok := hit.Material.BSDF(n.Item.IncomingDirection)
		if !ok || pdf <= 0 || bsdfAbsIdotN.IsZero() {
			continue
		}
		sum = sum.Add(n.Item.Flux.MulVec3(bsdfAbsIdotN).Div(pdf))
	}
	return sum.Div(math.Pi * r2)
}

// EstimateCaustic evaluates the cone-filtered caustic radiance estimate at
// hit against the caustic map, per §4.8. Per §9's note on the source's
// stale comment, the cone weight is applied to all KNearestPhotons
// neighbors, not just a single one; the "3" normalizes the k=1 cone slope.
func (e *RadianceEstimator) EstimateCaustic(hit Interaction, s *QueryScratch) types.Vec3 {
	tree := e.Maps.Caustic
	if len(tree.Data) == 0 {
		return types.Vec3{}
	}
	tree.KNN(hit.Point, e.Cfg.KNearestPhotons, s.neighbors)
	if s.neighbors.Empty() {
		return types.Vec3{}
	}
	r2 := s.neighbors.Top().Dist2
	if r2 <= 0 {
		return types.Vec3{}
	}

	sum := types.Vec3{}
	for _, n := range s.neighbors.Items() {
		w := float32(1) - float32(math.Sqrt(float64(n.Dist2/r2)))
		if w < 0 {
			w = 0
		}
		bsdfAbsIdotN, pdf, ok := hit.Material.BSDF(n.Item.IncomingDirection)
		if !ok || pdf <= 0 || bsdfAbsIdotN.IsZero() {
			continue
		}
		contribution := n.Item.Flux.MulVec3(bsdfAbsIdotN).Div(pdf).Mul(w)
		sum = sum.Add(contribution)
	}
	return sum.Mul(coneNormalization / (math.Pi * r2))
}

// SampleRay traces ray through the scene, folding direct-light NEE with
// caustic/global photon lookups per §4.9.
func (e *RadianceEstimator) SampleRay(ray Ray, sampler Sampler, s *QueryScratch) types.Vec3 {
	result := types.Vec3{}
	throughput := types.Vec3{1, 1, 1}
	history := newRefractionHistory(e.Scene.IOR())

	for {
		sampler.Shuffle()

		hit, ok := e.Scene.Intersect(ray, history.current())
		if !ok {
			return result
		}

		if ray.Depth == 0 || ray.DiracDelta {
			result = result.Add(throughput.MulVec3(hit.Emission))
		}

		var bounce Ray
		var bsdfAbsIdotN types.Vec3
		var pdf float32

		if hit.Material.DiracDelta() {
			if !ray.DiracDelta && ray.Depth != 0 {
				return result
			}
			bounce = ray
			bounce.Depth = ray.Depth + 1
			var sok bool
			bsdfAbsIdotN, pdf, sok = hit.Material.SampleBSDF(&bounce, false)
			if !sok || pdf <= 0 {
				return result
			}
		} else {
			result = result.Add(throughput.MulVec3(e.EstimateCaustic(hit, s)))

			deferGlobal := !e.Cfg.DirectVisualization && (ray.DiracDelta || ray.Depth == 0)
			if deferGlobal {
				result = result.Add(throughput.MulVec3(e.sampleDirect(hit, sampler)))
				bounce = ray
				bounce.Depth = ray.Depth + 1
				var sok bool
				bsdfAbsIdotN, pdf, sok = hit.Material.SampleBSDF(&bounce, false)
				if !sok || pdf <= 0 {
					return result
				}
			} else {
				result = result.Add(throughput.MulVec3(e.EstimateGlobal(hit, s)))
				return result
			}
		}

		step := bsdfAbsIdotN.Mul(1 / pdf)
		pSurvive := step.CompMax()
		if pSurvive > 0.95 {
			pSurvive = 0.95
		}
		if pSurvive <= 0 || float32(sampler.Get1D(dimRouletteSurvival)) >= pSurvive {
			return result
		}
		throughput = throughput.MulVec3(step.Div(pSurvive))

		entering := bounce.Direction.Dot(hit.Normal) < 0
		history.update(entering, hit.Material.IOR())

		ray = Ray{
			Origin:     hit.Point.Add(bounce.Direction.Mul(originEpsilonEstimate)),
			Direction:  bounce.Direction,
			DiracDelta: bounce.DiracDelta,
			Depth:      bounce.Depth,
		}
	}
}

// sampleDirect estimates direct illumination at hit via next-event
// estimation: pick one light uniformly, sample a point on it, and evaluate
// the shadow-tested contribution converted to solid-angle measure.
func (e *RadianceEstimator) sampleDirect(hit Interaction, sampler Sampler) types.Vec3 {
	lights := e.Scene.Emissives()
	if len(lights) == 0 {
		return types.Vec3{}
	}
	uv := sampler.Get2D(dimLightPosition)
	idx := int(uv[0] * float64(len(lights)))
	if idx >= len(lights) {
		idx = len(lights) - 1
	}
	light := lights[idx]
	lightPdfSelect := 1 / float32(len(lights))

	uv2 := sampler.Get2D(dimLightDirection)
	lightPoint := light.Sample(uv2[0], uv2[1])
	lightNormal := light.Normal(lightPoint)

	toLight := lightPoint.Sub(hit.Point)
	dist2 := toLight.Dot(toLight)
	if dist2 <= 0 {
		return types.Vec3{}
	}
	dist := float32(math.Sqrt(float64(dist2)))
	wi := toLight.Div(dist)

	cosLight := -wi.Dot(lightNormal)
	if cosLight <= 0 {
		return types.Vec3{}
	}

	shadowRay := Ray{Origin: hit.Point.Add(wi.Mul(originEpsilonEstimate)), Direction: wi}
	occluder, hitSomething := e.Scene.Intersect(shadowRay, e.Scene.IOR())
	if hitSomething {
		occDist2 := occluder.Point.Sub(hit.Point).Dot(occluder.Point.Sub(hit.Point))
		if occDist2 < dist2-1e-3 {
			return types.Vec3{}
		}
	}

	bsdfAbsIdotN, pdf, ok := hit.Material.BSDF(wi)
	if !ok || pdf <= 0 {
		return types.Vec3{}
	}

	solidAnglePdf := lightPdfSelect * dist2 / (cosLight * light.Area())
	if solidAnglePdf <= 0 {
		return types.Vec3{}
	}
	return light.Emittance().MulVec3(bsdfAbsIdotN).Div(pdf * solidAnglePdf)
}
