package scene

import (
	"math"
	"math/rand"

	"github.com/achilleasa/photonmap/photon"
	"github.com/achilleasa/photonmap/types"
)

type MaterialType uint8

const (
	DiffuseMaterial MaterialType = iota
	SpecularMaterial
	RefractiveMaterial
	EmissiveMaterial
)

// Material is a scene-authored material definition, attached to one or more
// primitives. It is not itself a photon.Material: intersecting a primitive
// binds it to the hit's shading normal and ambient IOR via boundMaterial,
// since the photon.Material contract has no other way to reach the geometry
// at the hit point.
type Material struct {
	Type MaterialType

	// Diffuse is the Lambertian albedo (Diffuse materials only).
	Diffuse types.Vec3

	// Emissive is the outgoing radiance of an EmissiveMaterial.
	Emissive types.Vec3

	// Ior is the interior index of refraction (Refractive materials only).
	Ior float32
}

// boundMaterial adapts a Material plus the geometry of one intersection into
// a photon.Material. Diffuse direction sampling and the refractive
// reflect-or-refract choice use package-level math/rand; this reference
// scene has no stake in the estimator's own deterministic Sampler draws.
type boundMaterial struct {
	mat         *Material
	normal      types.Vec3
	externalIOR float32
}

func (b *boundMaterial) DiracDelta() bool {
	return b.mat.Type == SpecularMaterial || b.mat.Type == RefractiveMaterial
}

func (b *boundMaterial) IOR() float32 {
	return b.mat.Ior
}

// shadingNormal returns the normal flipped to the same side as -incoming,
// i.e. facing back toward wherever incoming came from.
func (b *boundMaterial) shadingNormal(incoming types.Vec3) types.Vec3 {
	if incoming.Dot(b.normal) > 0 {
		return b.normal.Neg()
	}
	return b.normal
}

// BSDF evaluates |cosθ|*f for a photon arriving from incoming, for use by
// the density estimators. Only the Diffuse lobe is density-estimable;
// dirac-delta materials never receive photon deposits and always fail here.
func (b *boundMaterial) BSDF(incoming types.Vec3) (types.Vec3, float32, bool) {
	if b.mat.Type != DiffuseMaterial {
		return types.Vec3{}, 0, false
	}
	n := b.shadingNormal(incoming)
	cosTheta := -incoming.Dot(n)
	if cosTheta <= 0 {
		return types.Vec3{}, 0, false
	}
	f := b.mat.Diffuse.Mul(1 / math.Pi)
	return f.Mul(cosTheta), float32(cosTheta / math.Pi), true
}

// SampleBSDF draws the next bounce direction and mutates ray in place, per
// the lobe selected by the material type.
func (b *boundMaterial) SampleBSDF(ray *photon.Ray, adjoint bool) (types.Vec3, float32, bool) {
	switch b.mat.Type {
	case DiffuseMaterial:
		return b.sampleDiffuse(ray)
	case SpecularMaterial:
		return b.sampleSpecular(ray)
	case RefractiveMaterial:
		return b.sampleRefractive(ray)
	default:
		// Emissive materials do not reflect; the path terminates here.
		return types.Vec3{}, 0, false
	}
}

func (b *boundMaterial) sampleDiffuse(ray *photon.Ray) (types.Vec3, float32, bool) {
	n := b.shadingNormal(ray.Direction)
	dir := cosineWeightedHemisphere(n, rand.Float64(), rand.Float64())
	cosTheta := dir.Dot(n)
	if cosTheta <= 0 {
		return types.Vec3{}, 0, false
	}
	pdf := float32(cosTheta / math.Pi)
	f := b.mat.Diffuse.Mul(1 / math.Pi)

	ray.Direction = dir
	ray.DiracDelta = false
	return f.Mul(cosTheta), pdf, true
}

func (b *boundMaterial) sampleSpecular(ray *photon.Ray) (types.Vec3, float32, bool) {
	n := b.shadingNormal(ray.Direction)
	reflected := ray.Direction.Sub(n.Mul(2 * ray.Direction.Dot(n)))

	ray.Direction = reflected.Normalize()
	ray.DiracDelta = true
	return types.Vec3{1, 1, 1}, 1, true
}

func (b *boundMaterial) sampleRefractive(ray *photon.Ray) (types.Vec3, float32, bool) {
	incoming := ray.Direction.Normalize()
	outwardNormal := b.normal
	entering := incoming.Dot(outwardNormal) < 0

	n := outwardNormal
	etaFrom, etaTo := b.externalIOR, b.mat.Ior
	if !entering {
		n = outwardNormal.Neg()
		etaFrom, etaTo = b.mat.Ior, b.externalIOR
	}
	eta := etaFrom / etaTo

	cosTheta := float32(math.Min(float64(-incoming.Dot(n)), 1))
	sinTheta2 := 1 - cosTheta*cosTheta
	cannotRefract := eta*eta*sinTheta2 > 1

	if cannotRefract || schlickReflectance(cosTheta, eta) > float32(rand.Float64()) {
		reflected := incoming.Sub(n.Mul(2 * incoming.Dot(n)))
		ray.Direction = reflected.Normalize()
	} else {
		perp := incoming.Add(n.Mul(cosTheta)).Mul(eta)
		parallelLen := float32(math.Sqrt(math.Abs(1 - float64(perp.Dot(perp)))))
		parallel := n.Mul(-parallelLen)
		ray.Direction = perp.Add(parallel).Normalize()
	}
	ray.DiracDelta = true
	return types.Vec3{1, 1, 1}, 1, true
}

func schlickReflectance(cosine, eta float32) float32 {
	r0 := (1 - eta) / (1 + eta)
	r0 = r0 * r0
	return r0 + (1-r0)*float32(math.Pow(float64(1-cosine), 5))
}

// cosineWeightedHemisphere maps two uniform variates to a direction drawn
// from a cosine-weighted hemisphere around normal, via the Malley disk
// method and a branchless orthonormal frame (Duff et al.).
func cosineWeightedHemisphere(normal types.Vec3, u, v float64) types.Vec3 {
	r := float32(math.Sqrt(u))
	theta := float32(2 * math.Pi * v)
	x := r * float32(math.Cos(float64(theta)))
	y := r * float32(math.Sin(float64(theta)))
	z := float32(math.Sqrt(math.Max(0, 1-u)))

	sign := float32(1)
	if normal[2] < 0 {
		sign = -1
	}
	a := -1 / (sign + normal[2])
	c := normal[0] * normal[1] * a
	t := types.Vec3{1 + sign*normal[0]*normal[0]*a, sign * c, -sign * normal[0]}
	bv := types.Vec3{c, sign + normal[1]*normal[1]*a, -normal[1]}
	return t.Mul(x).Add(bv.Mul(y)).Add(normal.Mul(z))
}
