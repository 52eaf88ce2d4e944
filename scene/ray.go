package scene

import "github.com/achilleasa/lumen/types"

// A ray with an origin and a direction. Producers are not required to
// normalize the direction.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

// Get the point along the ray at parameter t.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Contains all information pertaining to a ray/primitive intersection.
// Position, Normal and Material are only meaningful when Hit is true.
type HitInfo struct {
	Hit      bool
	T        float32
	Position types.Vec3
	Normal   types.Vec3
	Material Material
}

// Returns the no-hit sentinel.
func NoHit() HitInfo {
	return HitInfo{}
}
