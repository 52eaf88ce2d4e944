package scene

import (
	"fmt"
)

// Near/far ray parameter limits used when tracing paths through a scene.
const (
	DefaultTMin float32 = 0.001
	DefaultTMax float32 = 10000.0
)

// A scene is an ordered list of primitives plus the camera used to view
// them. Scenes must not be modified once rendering starts.
type Scene struct {
	Name string

	Camera *Camera

	Primitives []*Primitive
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:       name,
		Camera:     DefaultCamera(),
		Primitives: make([]*Primitive, 0),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a primitive to the scene.
func (s *Scene) AddPrimitive(primitive *Primitive) error {
	if primitive == nil {
		return fmt.Errorf("scene: nil primitive")
	}
	for _, prim := range s.Primitives {
		if prim == primitive {
			return fmt.Errorf("scene: primitive already added")
		}
	}
	if err := primitive.Validate(); err != nil {
		return err
	}
	s.Primitives = append(s.Primitives, primitive)
	return nil
}

// Validate scene contents.
func (s *Scene) Validate() error {
	if len(s.Primitives) == 0 {
		return fmt.Errorf("scene: %q does not define any primitives", s.Name)
	}
	for index, prim := range s.Primitives {
		if err := prim.Validate(); err != nil {
			return fmt.Errorf("scene: primitive %d: %s", index, err.Error())
		}
	}
	if s.Camera == nil {
		return fmt.Errorf("scene: %q does not define a camera", s.Name)
	}
	return nil
}

// Count primitives by type.
func (s *Scene) Count(pt PrimitiveType) int {
	count := 0
	for _, prim := range s.Primitives {
		if prim.Type == pt {
			count++
		}
	}
	return count
}

// Find the closest intersection with tMin < t < tMax. Primitives are
// scanned in insertion order and a hit replaces the current best only if it
// is strictly closer, so the result does not depend on that order.
func (s *Scene) Intersect(ray Ray, tMin, tMax float32) HitInfo {
	best := NoHit()
	best.T = tMax

	for _, prim := range s.Primitives {
		hit := prim.Intersect(ray)
		if hit.Hit && hit.T < best.T && hit.T > tMin {
			best = hit
		}
	}

	if !best.Hit {
		return NoHit()
	}
	return best
}
