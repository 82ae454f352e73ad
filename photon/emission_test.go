package photon

import (
	"testing"

	"github.com/achilleasa/photonmap/types"
)

// fakeSurface is a flat disc light of constant emittance, enough to drive
// allocateEmissions/tracePhoton without a real scene package. It faces +y
// unless normal is set.
type fakeSurface struct {
	emittance types.Vec3
	area      float32
	origin    types.Vec3
	normal    types.Vec3
}

func (f *fakeSurface) Emittance() types.Vec3           { return f.emittance }
func (f *fakeSurface) Area() float32                   { return f.area }
func (f *fakeSurface) Sample(u, v float64) types.Vec3  { return f.origin }
func (f *fakeSurface) Normal(p types.Vec3) types.Vec3 {
	if f.normal.IsZero() {
		return types.Vec3{0, 1, 0}
	}
	return f.normal
}

func TestAllocateEmissionsProportionalToFlux(t *testing.T) {
	bright := &fakeSurface{emittance: types.Vec3{2, 2, 2}, area: 1}
	dim := &fakeSurface{emittance: types.Vec3{1, 1, 1}, area: 1}
	sc := &fakeScene{emissives: []Surface{bright, dim}}

	items := allocateEmissions(sc, 3000)
	if len(items) != 2 {
		t.Fatalf("expected both lights to receive an allocation, got %d items", len(items))
	}

	counts := map[int]int{}
	for _, it := range items {
		counts[it.lightIndex] = it.count
	}
	// flux ratio is 2:1, so the allocation should be ~2000:1000.
	if counts[0] < 1900 || counts[0] > 2100 {
		t.Fatalf("expected bright light to get ~2000 photons, got %d", counts[0])
	}
	if counts[1] < 900 || counts[1] > 1100 {
		t.Fatalf("expected dim light to get ~1000 photons, got %d", counts[1])
	}
}

func TestAllocateEmissionsNoLights(t *testing.T) {
	sc := &fakeScene{}
	if items := allocateEmissions(sc, 1000); items != nil {
		t.Fatalf("expected nil allocation for a scene with no emissives, got %v", items)
	}
}

func TestAllocateEmissionsZeroFlux(t *testing.T) {
	dark := &fakeSurface{emittance: types.Vec3{0, 0, 0}, area: 1}
	sc := &fakeScene{emissives: []Surface{dark}}
	if items := allocateEmissions(sc, 1000); items != nil {
		t.Fatalf("expected nil allocation when every light has zero flux, got %v", items)
	}
}

func TestScheduleBatchesCoversEveryPhoton(t *testing.T) {
	items := []lightWorkItem{
		{light: &fakeSurface{}, lightIndex: 0, count: EmissionsPerBatch*2 + 17},
	}
	batches := scheduleBatches(items, 1)

	var total int
	for _, b := range batches {
		if b.count > EmissionsPerBatch {
			t.Fatalf("batch count %d exceeds EmissionsPerBatch", b.count)
		}
		total += b.count
	}
	if total != items[0].count {
		t.Fatalf("expected batches to cover all %d photons, covered %d", items[0].count, total)
	}
}

func TestScheduleBatchesDeterministic(t *testing.T) {
	items := []lightWorkItem{{light: &fakeSurface{}, lightIndex: 0, count: 5 * EmissionsPerBatch}}
	a := scheduleBatches(items, 99)
	b := scheduleBatches(items, 99)
	if len(a) != len(b) {
		t.Fatalf("expected deterministic batch count for the same seed")
	}
	for i := range a {
		if a[i].emissionOffset != b[i].emissionOffset {
			t.Fatalf("expected identical shuffle order for the same seed at batch %d", i)
		}
	}
}

func TestRefractionHistory(t *testing.T) {
	h := newRefractionHistory(1.0)
	if h.current() != 1.0 {
		t.Fatalf("expected initial ior 1.0, got %v", h.current())
	}
	h.update(true, 1.5)
	if h.current() != 1.5 {
		t.Fatalf("expected ior 1.5 after entering a denser medium, got %v", h.current())
	}
	h.update(true, 2.0)
	if h.current() != 2.0 {
		t.Fatalf("expected ior 2.0 after entering a nested medium, got %v", h.current())
	}
	h.update(false, 0)
	if h.current() != 1.5 {
		t.Fatalf("expected ior to pop back to 1.5 on exit, got %v", h.current())
	}
	h.update(false, 0)
	if h.current() != 1.0 {
		t.Fatalf("expected ior to pop back to the scene default, got %v", h.current())
	}
	// Exiting past the scene default must not underflow the stack.
	h.update(false, 0)
	if h.current() != 1.0 {
		t.Fatalf("expected ior to stay at the scene default once the stack is exhausted, got %v", h.current())
	}
}

func TestTracePhotonDiffuseFloorDepositsGlobal(t *testing.T) {
	// The light faces down so its emission hemisphere points at the floor.
	light := &fakeSurface{emittance: types.Vec3{1, 1, 1}, area: 1, origin: types.Vec3{0, 5, 0}, normal: types.Vec3{0, -1, 0}}
	floor := &diffuseFloorScene{ior: 1}
	sampler := newDeterministicSampler(0.5)

	var out deposits
	// causticFactor 1 means every non-dirac hit is kept as a global
	// deposit (the accept probability 1/causticFactor is 1).
	tracePhoton(floor, sampler, light, types.Vec3{1, 1, 1}, 1, &out)

	if len(out.global) == 0 {
		t.Fatalf("expected at least one global deposit off a diffuse floor")
	}
	if len(out.caustic) != 0 {
		t.Fatalf("expected no caustic deposits from a purely diffuse scene")
	}
}

// diffuseFloorScene is a single infinite diffuse plane at y=0, facing up.
type diffuseFloorScene struct {
	ior float32
}

func (s *diffuseFloorScene) Intersect(ray Ray, externalIOR float32) (Interaction, bool) {
	if ray.Direction[1] >= 0 {
		return Interaction{}, false
	}
	t := -ray.Origin[1] / ray.Direction[1]
	if t <= 1e-4 {
		return Interaction{}, false
	}
	point := ray.Origin.Add(ray.Direction.Mul(t))
	return Interaction{
		Point:             point,
		Normal:            types.Vec3{0, 1, 0},
		Material:          &diffuseMat{},
		OutgoingDirection: ray.Direction.Neg(),
	}, true
}
func (s *diffuseFloorScene) Emissives() []Surface  { return nil }
func (s *diffuseFloorScene) BB() BoundingBox       { return BoundingBox{Min: types.Vec3{-10, -1, -10}, Max: types.Vec3{10, 10, 10}} }
func (s *diffuseFloorScene) IOR() float32          { return s.ior }

type diffuseMat struct{}

func (m *diffuseMat) DiracDelta() bool { return false }
func (m *diffuseMat) SampleBSDF(ray *Ray, adjoint bool) (types.Vec3, float32, bool) {
	ray.Direction = types.Vec3{0, 1, 0}
	ray.DiracDelta = false
	return types.Vec3{0, 0, 0}, 1, true // zero throughput: terminates the path after one bounce
}
func (m *diffuseMat) BSDF(incoming types.Vec3) (types.Vec3, float32, bool) {
	return types.Vec3{1 / 3.14159, 1 / 3.14159, 1 / 3.14159}, 0.3, true
}
func (m *diffuseMat) IOR() float32 { return 1 }

// fakeScene is a minimal Scene whose only role is to report a fixed set of
// emissives; Intersect is never exercised by the allocation/scheduling tests.
type fakeScene struct {
	emissives []Surface
}

func (f *fakeScene) Intersect(ray Ray, externalIOR float32) (Interaction, bool) { return Interaction{}, false }
func (f *fakeScene) Emissives() []Surface                                      { return f.emissives }
func (f *fakeScene) BB() BoundingBox                                           { return BoundingBox{} }
func (f *fakeScene) IOR() float32                                              { return 1 }

// deterministicSampler always returns the same variate, for tests that only
// need a fixed, reproducible path.
type deterministicSampler struct {
	v float64
}

func newDeterministicSampler(v float64) *deterministicSampler { return &deterministicSampler{v: v} }

func (s *deterministicSampler) Initiate(seed int64) {}
func (s *deterministicSampler) SetIndex(i int)       {}
func (s *deterministicSampler) Shuffle()             {}
func (s *deterministicSampler) Get2D(dim int) [2]float64 {
	return [2]float64{s.v, s.v}
}
func (s *deterministicSampler) Get1D(dim int) float64 { return s.v }
