package scene

import (
	"fmt"

	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

type PrimitiveType uint32

const (
	PlanePrimitive PrimitiveType = iota
	SpherePrimitive
)

func (pt PrimitiveType) String() string {
	switch pt {
	case PlanePrimitive:
		return "plane"
	case SpherePrimitive:
		return "sphere"
	}
	return fmt.Sprintf("primitive(%d)", uint32(pt))
}

// Defines a scene primitive. The primitive type selects which of the
// geometry fields are meaningful.
type Primitive struct {
	// The primitive type.
	Type PrimitiveType

	// Sphere center and radius.
	Origin types.Vec3
	Radius float32

	// Unit plane normal and signed offset; the plane contains all points
	// x such that dot(x, Normal) + Dist = 0.
	Normal types.Vec3
	Dist   float32

	// The primitive material.
	Material Material
}

// Create new plane primitive for the equation dot(p, normal) + dist = 0. The
// normal does not need to be a unit vector; both terms are rescaled so the
// stored normal is unit length and the plane stays in place.
func NewPlane(normal types.Vec3, dist float32, material Material) *Primitive {
	if l := normal.Len(); l > 0 {
		normal = normal.Mul(1.0 / l)
		dist /= l
	}
	return &Primitive{
		Type:     PlanePrimitive,
		Normal:   normal,
		Dist:     dist,
		Material: material,
	}
}

// Create new sphere primitive.
func NewSphere(origin types.Vec3, radius float32, material Material) *Primitive {
	return &Primitive{
		Type:     SpherePrimitive,
		Origin:   origin,
		Radius:   radius,
		Material: material,
	}
}

// Validate primitive geometry and material.
func (p *Primitive) Validate() error {
	switch p.Type {
	case SpherePrimitive:
		if !(p.Radius > 0) {
			return fmt.Errorf("scene: sphere radius must be > 0; got %f", p.Radius)
		}
	case PlanePrimitive:
		if math32.Abs(p.Normal.Len()-1.0) > 1e-3 {
			return fmt.Errorf("scene: plane normal must be a unit vector; got %v", p.Normal)
		}
	default:
		return fmt.Errorf("scene: unsupported primitive type %d", p.Type)
	}
	return p.Material.Validate()
}

// Intersect ray with the primitive. The returned HitInfo has Hit set to false
// if the ray misses; no range check on t is performed here.
func (p *Primitive) Intersect(ray Ray) HitInfo {
	switch p.Type {
	case SpherePrimitive:
		return p.intersectSphere(ray)
	case PlanePrimitive:
		return p.intersectPlane(ray)
	}
	return NoHit()
}

// Always picks the near root, even when it lies behind the ray origin. Rays
// starting inside the sphere therefore report the entry point behind them,
// which the caller's t range check discards.
func (p *Primitive) intersectSphere(ray Ray) HitInfo {
	toSphere := ray.Origin.Sub(p.Origin)

	a := ray.Dir.Dot(ray.Dir)
	b := 2.0 * ray.Dir.Dot(toSphere)
	c := toSphere.Dot(toSphere) - p.Radius*p.Radius
	d := b*b - 4.0*a*c
	if !(d > 0) {
		return NoHit()
	}

	t := (-b - math32.Sqrt(d)) / (2.0 * a)
	hitPos := ray.At(t)
	return HitInfo{
		Hit:      true,
		T:        t,
		Position: hitPos,
		Normal:   hitPos.Sub(p.Origin).Normalize(),
		Material: p.Material,
	}
}

// A ray parallel to the plane produces a non-finite t which fails any
// range comparison performed by the caller.
func (p *Primitive) intersectPlane(ray Ray) HitInfo {
	t := -(ray.Origin.Dot(p.Normal) + p.Dist) / ray.Dir.Dot(p.Normal)
	return HitInfo{
		Hit:      true,
		T:        t,
		Position: ray.At(t),
		Normal:   p.Normal.Normalize(),
		Material: p.Material,
	}
}
