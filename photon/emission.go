package photon

import (
	"math"
	"math/rand"

	"github.com/achilleasa/photonmap/types"
)

// EmissionsPerBatch (EPW in §4.7) is the unit of work handed to a single
// worker: a contiguous run of photon emissions from one light.
const EmissionsPerBatch = 100000

// Sampler dimension tags. Each logically distinct draw within a photon path
// gets its own tag so a stratified Sampler implementation can keep them on
// separate strata.
const (
	dimLightPosition = iota
	dimLightDirection
	dimNonCausticReject
	dimRouletteSurvival
)

// refractionHistory tracks nested transmissive media so the correct
// external index of refraction is available at each hit. Its lifetime is a
// single traced path.
type refractionHistory struct {
	iors []float32
}

func newRefractionHistory(sceneIOR float32) *refractionHistory {
	return &refractionHistory{iors: []float32{sceneIOR}}
}

// current returns the index of refraction of the medium the ray currently
// travels through.
func (h *refractionHistory) current() float32 {
	return h.iors[len(h.iors)-1]
}

// update pushes ior when the ray has just entered a new medium (crossing
// the surface normal from outside to inside) and pops when it has just
// exited the medium it was in.
func (h *refractionHistory) update(entering bool, ior float32) {
	if entering {
		h.iors = append(h.iors, ior)
	} else if len(h.iors) > 1 {
		h.iors = h.iors[:len(h.iors)-1]
	}
}

// lightWorkItem is a slice of the emission budget assigned to one light.
type lightWorkItem struct {
	light         Surface
	lightIndex    int
	count         int
	fluxPerPhoton types.Vec3
}

// allocateEmissions splits totalPhotons across scene.Emissives() in
// proportion to each light's flux (emittance channel-mean times area),
// per §4.7. Lights are skipped if the scene's total flux is zero.
func allocateEmissions(scene Scene, totalPhotons int) []lightWorkItem {
	lights := scene.Emissives()
	if len(lights) == 0 || totalPhotons <= 0 {
		return nil
	}

	fluxes := make([]types.Vec3, len(lights))
	scalarFlux := make([]float64, len(lights))
	var totalFlux float64
	for i, l := range lights {
		f := l.Emittance().Mul(l.Area())
		fluxes[i] = f
		s := float64(f[0]+f[1]+f[2]) / 3
		scalarFlux[i] = s
		totalFlux += s
	}
	if totalFlux <= 0 {
		return nil
	}

	items := make([]lightWorkItem, 0, len(lights))
	for i, l := range lights {
		n := int(math.Floor(float64(totalPhotons) * scalarFlux[i] / totalFlux))
		if n <= 0 {
			continue
		}
		items = append(items, lightWorkItem{
			light:         l,
			lightIndex:    i,
			count:         n,
			fluxPerPhoton: fluxes[i].Div(float32(n)),
		})
	}
	return items
}

// emissionBatch is one unit of scheduled work: a contiguous run of photons
// from a single light, starting at a given emission offset (used to seed
// and advance the worker's Sampler deterministically).
type emissionBatch struct {
	item           lightWorkItem
	emissionOffset int
	count          int
}

// scheduleBatches splits every light's allocation into EmissionsPerBatch
// chunks and shuffles the resulting list (seeded, for determinism) so that
// per-batch cost is balanced across workers regardless of which light a
// batch happens to belong to.
func scheduleBatches(items []lightWorkItem, seed int64) []emissionBatch {
	var batches []emissionBatch
	for _, item := range items {
		for offset := 0; offset < item.count; offset += EmissionsPerBatch {
			n := item.count - offset
			if n > EmissionsPerBatch {
				n = EmissionsPerBatch
			}
			batches = append(batches, emissionBatch{item: item, emissionOffset: offset, count: n})
		}
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(batches), func(i, j int) { batches[i], batches[j] = batches[j], batches[i] })
	return batches
}

// deposits accumulates the photons a single worker (or the merged result)
// produced.
type deposits struct {
	caustic []Photon
	global  []Photon
}

// lightIndexStride spaces out the per-light contribution to a photon's
// sampler index so two lights never replay the same (emissionOffset+i)
// substream, per §5's "seeded from the light index" requirement.
const lightIndexStride = 1 << 32

// tracePhotonBatch runs every photon in b through the scene, appending
// deposits into out, per the per-photon procedure of §4.7.
func tracePhotonBatch(scene Scene, sampler Sampler, b emissionBatch, causticFactor float64, out *deposits) {
	light := b.item.light
	for i := 0; i < b.count; i++ {
		sampler.SetIndex(b.item.lightIndex*lightIndexStride + b.emissionOffset + i)
		tracePhoton(scene, sampler, light, b.item.fluxPerPhoton, causticFactor, out)
	}
}

func tracePhoton(scene Scene, sampler Sampler, light Surface, fluxPerPhoton types.Vec3, causticFactor float64, out *deposits) {
	uv := sampler.Get2D(dimLightPosition)
	origin := light.Sample(uv[0], uv[1])
	normal := light.Normal(origin)

	dirLocal := sampler.Get2D(dimLightDirection)
	direction := cosineWeightedHemisphere(normal, dirLocal[0], dirLocal[1])

	const originEpsilon = 1e-4
	ray := Ray{
		Origin:    origin.Add(normal.Mul(originEpsilon)),
		Direction: direction,
	}

	flux := fluxPerPhoton
	history := newRefractionHistory(scene.IOR())

	for {
		sampler.Shuffle()

		hit, ok := scene.Intersect(ray, history.current())
		if !ok {
			return
		}

		if !hit.Material.DiracDelta() {
			if ray.DiracDelta {
				out.caustic = append(out.caustic, Photon{
					Flux:              flux,
					Position:          hit.Point,
					IncomingDirection: hit.OutgoingDirection,
				})
			} else if sampler.Get1D(dimNonCausticReject) < 1/causticFactor {
				out.global = append(out.global, Photon{
					Flux:              flux.Mul(float32(causticFactor)),
					Position:          hit.Point,
					IncomingDirection: hit.OutgoingDirection,
				})
			}
		}

		bounce := ray
		bounce.Depth = ray.Depth + 1
		// Particle tracing runs in the reverse (light-to-eye) transport
		// direction, so the adjoint BSDF correction applies.
		bsdfAbsIdotN, pdf, ok := hit.Material.SampleBSDF(&bounce, true)
		if !ok || pdf <= 0 {
			return
		}
		throughput := bsdfAbsIdotN.Mul(1 / pdf)

		pSurvive := throughput.CompMax()
		if pSurvive > 0.95 {
			pSurvive = 0.95
		}
		if float32(sampler.Get1D(dimRouletteSurvival)) >= pSurvive || pSurvive <= 0 {
			return
		}
		throughput = throughput.Div(pSurvive)
		flux = flux.MulVec3(throughput)

		entering := bounce.Direction.Dot(hit.Normal) < 0
		history.update(entering, hit.Material.IOR())

		ray = Ray{
			Origin:     hit.Point.Add(bounce.Direction.Mul(originEpsilon)),
			Direction:  bounce.Direction,
			DiracDelta: bounce.DiracDelta,
			Depth:      bounce.Depth,
		}
	}
}

// cosineWeightedHemisphere maps two uniform variates to a direction drawn
// from a cosine-weighted hemisphere around normal, using the Malley disk
// method and an orthonormal frame built from normal.
func cosineWeightedHemisphere(normal types.Vec3, u, v float64) types.Vec3 {
	r := float32(math.Sqrt(u))
	theta := float32(2 * math.Pi * v)
	x := r * float32(math.Cos(float64(theta)))
	y := r * float32(math.Sin(float64(theta)))
	z := float32(math.Sqrt(math.Max(0, 1-u)))

	t, b := orthonormalBasis(normal)
	return t.Mul(x).Add(b.Mul(y)).Add(normal.Mul(z))
}

// orthonormalBasis builds two vectors orthogonal to n and to each other,
// using Duff et al.'s branchless construction.
func orthonormalBasis(n types.Vec3) (t, b types.Vec3) {
	sign := float32(1)
	if n[2] < 0 {
		sign = -1
	}
	a := -1 / (sign + n[2])
	c := n[0] * n[1] * a
	t = types.Vec3{1 + sign*n[0]*n[0]*a, sign * c, -sign * n[0]}
	b = types.Vec3{c, sign + n[1]*n[1]*a, -n[1]}
	return t, b
}
