package photon

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/photonmap/log"
)

// Maps is the finished pair of photon maps produced by a Build.
type Maps struct {
	Caustic *LinearOctree[Photon]
	Global  *LinearOctree[Photon]
}

// Stats summarizes a completed Build, suitable for a CLI report.
type Stats struct {
	Lights          int
	TargetPhotons   int
	EmittedPhotons  int
	CausticPhotons  int
	GlobalPhotons   int
	CausticNodes    int
	GlobalNodes     int
	BuildTime       time.Duration
	PerLightCounts  map[int]int
}

// Orchestrator allocates the photon budget across lights, drives the
// emission pass, and builds the two finished photon maps. It exclusively
// owns the deposit buffers, the transient dynamic octrees, and the final
// linear octrees for the duration of a Build call.
type Orchestrator struct {
	scene  Scene
	cfg    Config
	logger log.Logger

	// NewSampler creates a fresh per-worker Sampler. Required.
	NewSampler func() Sampler

	// Workers overrides the worker pool size; defaults to
	// runtime.GOMAXPROCS(0) when zero. The spec flags the original
	// source's single-worker-buffer sizing as a bug; this defaults to
	// the actual worker count instead.
	Workers int

	// Seed drives both the deterministic batch shuffle and, combined
	// with each worker's index, per-worker Sampler seeding.
	Seed int64
}

// NewOrchestrator validates cfg and returns an Orchestrator ready to Build
// photon maps for scene.
func NewOrchestrator(scene Scene, cfg Config, newSampler func() Sampler) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if newSampler == nil {
		return nil, fmt.Errorf("photon: NewSampler factory is required")
	}
	return &Orchestrator{
		scene:      scene,
		cfg:        cfg,
		logger:     log.New("photon.orchestrator"),
		NewSampler: newSampler,
	}, nil
}

// Build runs the full emission -> deposit -> octree pipeline and returns
// the finished maps together with a stats summary.
func (o *Orchestrator) Build() (*Maps, Stats, error) {
	start := time.Now()

	targetPhotons := int(float64(o.cfg.Emissions) * o.cfg.CausticFactor)
	items := allocateEmissions(o.scene, targetPhotons)

	stats := Stats{
		Lights:         len(o.scene.Emissives()),
		TargetPhotons:  targetPhotons,
		PerLightCounts: make(map[int]int, len(items)),
	}
	for _, it := range items {
		stats.PerLightCounts[it.lightIndex] = it.count
		stats.EmittedPhotons += it.count
	}

	if len(items) == 0 {
		o.logger.Notice("photon: no emissive surfaces or zero photon budget; maps are empty")
		stats.BuildTime = time.Since(start)
		return &Maps{Caustic: &LinearOctree[Photon]{}, Global: &LinearOctree[Photon]{}}, stats, nil
	}

	merged := o.runEmissionPass(items)
	stats.CausticPhotons = len(merged.caustic)
	stats.GlobalPhotons = len(merged.global)

	o.logger.Infof("photon: deposited %d caustic, %d global photons from %d lights",
		stats.CausticPhotons, stats.GlobalPhotons, stats.Lights)

	bb := o.scene.BB()
	causticBuilder := NewOctreeBuilder[Photon](bb, o.cfg.MaxPhotonsPerOctreeLeaf)
	for _, p := range merged.caustic {
		causticBuilder.Insert(p)
	}
	globalBuilder := NewOctreeBuilder[Photon](bb, o.cfg.MaxPhotonsPerOctreeLeaf)
	for _, p := range merged.global {
		globalBuilder.Insert(p)
	}

	caustic := Compact(causticBuilder)
	global := Compact(globalBuilder)
	stats.CausticNodes = len(caustic.Nodes)
	stats.GlobalNodes = len(global.Nodes)
	stats.BuildTime = time.Since(start)

	o.logger.Noticef("photon: built maps in %d ms (%d caustic nodes, %d global nodes)",
		stats.BuildTime.Milliseconds(), stats.CausticNodes, stats.GlobalNodes)

	return &Maps{Caustic: caustic, Global: global}, stats, nil
}

// runEmissionPass schedules batches across a fixed worker pool, each
// worker draining its own private deposit buffers, then merges every
// worker's buffers into the two final deposit vectors.
func (o *Orchestrator) runEmissionPass(items []lightWorkItem) deposits {
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}

	batches := scheduleBatches(items, o.Seed)
	batchCh := make(chan emissionBatch, len(batches))
	for _, b := range batches {
		batchCh <- b
	}
	close(batchCh)

	workerDeposits := make([]deposits, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			sampler := o.NewSampler()
			sampler.Initiate(o.Seed + int64(w))
			out := &workerDeposits[w]
			for b := range batchCh {
				tracePhotonBatch(o.scene, sampler, b, o.cfg.CausticFactor, out)
			}
		}(w)
	}
	wg.Wait()

	var merged deposits
	var causticTotal, globalTotal int
	for _, d := range workerDeposits {
		causticTotal += len(d.caustic)
		globalTotal += len(d.global)
	}
	merged.caustic = make([]Photon, 0, causticTotal)
	merged.global = make([]Photon, 0, globalTotal)
	for i := range workerDeposits {
		merged.caustic = append(merged.caustic, workerDeposits[i].caustic...)
		merged.global = append(merged.global, workerDeposits[i].global...)
		workerDeposits[i] = deposits{}
	}
	return merged
}
