package scene

import (
	"math"

	"github.com/achilleasa/photonmap/photon"
	"github.com/achilleasa/photonmap/types"
)

type PrimitiveType uint8

const (
	PlanePrimitive PrimitiveType = iota
	SpherePrimitive
)

// Primitive is a scene primitive: an infinite plane (walls, floors) or a
// sphere (geometry and, when its Material is Emissive, an area light).
type Primitive struct {
	Type PrimitiveType

	// Sphere: Origin is the center, Dimensions[0] the radius.
	// Plane: Origin is the (normalized) plane normal, Dimensions[0] the
	// signed distance from the world origin: n·p = d.
	Origin     types.Vec3
	Dimensions types.Vec3

	Material *Material
}

// NewPlane creates an infinite plane with unit normal and signed distance
// planeDist from the origin, per the plane equation normal·p = planeDist.
func NewPlane(normal types.Vec3, planeDist float32, material *Material) *Primitive {
	return &Primitive{
		Type:       PlanePrimitive,
		Origin:     normal.Normalize(),
		Dimensions: types.Vec3{planeDist},
		Material:   material,
	}
}

// NewSphere creates a sphere primitive.
func NewSphere(center types.Vec3, radius float32, material *Material) *Primitive {
	return &Primitive{
		Type:       SpherePrimitive,
		Origin:     center,
		Dimensions: types.Vec3{radius},
		Material:   material,
	}
}

const intersectEpsilon = 1e-4

// intersect tests ray against the primitive, returning the hit distance and
// world-space outward normal at the hit point.
func (p *Primitive) intersect(ray photon.Ray) (dist float32, normal types.Vec3, ok bool) {
	switch p.Type {
	case PlanePrimitive:
		return p.intersectPlane(ray)
	case SpherePrimitive:
		return p.intersectSphere(ray)
	default:
		return 0, types.Vec3{}, false
	}
}

func (p *Primitive) intersectPlane(ray photon.Ray) (float32, types.Vec3, bool) {
	denom := ray.Direction.Dot(p.Origin)
	if denom > -1e-8 && denom < 1e-8 {
		return 0, types.Vec3{}, false
	}
	t := (p.Dimensions[0] - ray.Origin.Dot(p.Origin)) / denom
	if t < intersectEpsilon {
		return 0, types.Vec3{}, false
	}
	return t, p.Origin, true
}

func (p *Primitive) intersectSphere(ray photon.Ray) (float32, types.Vec3, bool) {
	radius := p.Dimensions[0]
	oc := ray.Origin.Sub(p.Origin)

	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return 0, types.Vec3{}, false
	}
	sqrtD := float32(math.Sqrt(float64(discriminant)))

	t := (-halfB - sqrtD) / a
	if t < intersectEpsilon {
		t = (-halfB + sqrtD) / a
		if t < intersectEpsilon {
			return 0, types.Vec3{}, false
		}
	}

	point := ray.Origin.Add(ray.Direction.Mul(t))
	normal := point.Sub(p.Origin).Mul(1 / radius)
	return t, normal, true
}

// bounds returns the primitive's world-space bounding box. Planes use a
// thin slab aligned to their normal's dominant axis where possible, falling
// back to a large bounding box for non-axis-aligned planes.
func (p *Primitive) bounds() photon.BoundingBox {
	switch p.Type {
	case SpherePrimitive:
		r := p.Dimensions[0]
		rv := types.Vec3{r, r, r}
		return photon.BoundingBox{Min: p.Origin.Sub(rv), Max: p.Origin.Add(rv)}
	case PlanePrimitive:
		const large = 1e5
		const slab = 1e-3
		n, d := p.Origin, p.Dimensions[0]
		switch {
		case math.Abs(float64(n[0])) > 0.999:
			x := d / n[0]
			return photon.BoundingBox{Min: types.Vec3{x - slab, -large, -large}, Max: types.Vec3{x + slab, large, large}}
		case math.Abs(float64(n[1])) > 0.999:
			y := d / n[1]
			return photon.BoundingBox{Min: types.Vec3{-large, y - slab, -large}, Max: types.Vec3{large, y + slab, large}}
		case math.Abs(float64(n[2])) > 0.999:
			z := d / n[2]
			return photon.BoundingBox{Min: types.Vec3{-large, -large, z - slab}, Max: types.Vec3{large, large, z + slab}}
		default:
			return photon.BoundingBox{Min: types.Vec3{-large, -large, -large}, Max: types.Vec3{large, large, large}}
		}
	default:
		return photon.BoundingBox{}
	}
}

// Emittance, Area, Sample and Normal implement photon.Surface. Only spheres
// with an EmissiveMaterial are meaningful light sources; Scene.Emissives
// filters to those before handing a Primitive out as a Surface.

func (p *Primitive) Emittance() types.Vec3 {
	return p.Material.Emissive
}

func (p *Primitive) Area() float32 {
	if p.Type != SpherePrimitive {
		return 0
	}
	r := p.Dimensions[0]
	return float32(4 * math.Pi * float64(r) * float64(r))
}

// Sample maps two uniform variates to a uniformly distributed point on the
// sphere's surface.
func (p *Primitive) Sample(u, v float64) types.Vec3 {
	z := 1 - 2*u
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * v
	local := types.Vec3{
		float32(r * math.Cos(phi)),
		float32(r * math.Sin(phi)),
		float32(z),
	}
	return p.Origin.Add(local.Mul(p.Dimensions[0]))
}

// Normal returns the outward unit normal at point, which is assumed to lie
// on (or very near) the sphere's surface.
func (p *Primitive) Normal(point types.Vec3) types.Vec3 {
	return point.Sub(p.Origin).Normalize()
}
