// Package scene is a reference implementation of the photon package's
// Scene/Surface/Material/Interaction collaborators: a brute-force
// plane-and-sphere scene with Lambertian, mirror and dielectric materials,
// sufficient to exercise and test the photon-mapping core against real
// geometry without pulling in a full asset pipeline.
package scene

import (
	"fmt"

	"github.com/achilleasa/photonmap/photon"
	"github.com/achilleasa/photonmap/types"
)

// Scene is a flat list of primitives intersected by brute force. Its
// bounding box is the union of every primitive's bounds, computed once at
// construction.
type Scene struct {
	Primitives []*Primitive
	bb         photon.BoundingBox

	// DefaultIOR is the index of refraction of the ambient medium (1 for
	// vacuum/air).
	DefaultIOR float32
}

// NewScene builds a Scene from primitives. Every primitive must carry a
// non-nil Material.
func NewScene(primitives []*Primitive, defaultIOR float32) (*Scene, error) {
	bb := photon.EmptyBoundingBox()
	for i, p := range primitives {
		if p.Material == nil {
			return nil, fmt.Errorf("scene: primitive %d has no material", i)
		}
		bb = bb.MergeBox(p.bounds())
	}
	return &Scene{Primitives: primitives, bb: bb, DefaultIOR: defaultIOR}, nil
}

// Intersect implements photon.Scene by testing every primitive and keeping
// the closest hit.
func (s *Scene) Intersect(ray photon.Ray, externalIOR float32) (photon.Interaction, bool) {
	var (
		bestDist float32
		bestPrim *Primitive
		bestN    types.Vec3
		found    bool
	)
	for _, p := range s.Primitives {
		dist, normal, ok := p.intersect(ray)
		if !ok || (found && dist >= bestDist) {
			continue
		}
		bestDist, bestPrim, bestN, found = dist, p, normal, true
	}
	if !found {
		return photon.Interaction{}, false
	}

	point := ray.Origin.Add(ray.Direction.Mul(bestDist))
	var emission types.Vec3
	if bestPrim.Material.Type == EmissiveMaterial {
		emission = bestPrim.Material.Emissive
	}
	return photon.Interaction{
		Point:  point,
		Normal: bestN,
		Material: &boundMaterial{
			mat:         bestPrim.Material,
			normal:      bestN,
			externalIOR: externalIOR,
		},
		OutgoingDirection: ray.Direction.Neg(),
		Emission:          emission,
	}, true
}

// Emissives implements photon.Scene, returning every sphere primitive with
// an EmissiveMaterial.
func (s *Scene) Emissives() []photon.Surface {
	var lights []photon.Surface
	for _, p := range s.Primitives {
		if p.Type == SpherePrimitive && p.Material.Type == EmissiveMaterial {
			lights = append(lights, p)
		}
	}
	return lights
}

// BB implements photon.Scene.
func (s *Scene) BB() photon.BoundingBox {
	return s.bb
}

// IOR implements photon.Scene.
func (s *Scene) IOR() float32 {
	return s.DefaultIOR
}
