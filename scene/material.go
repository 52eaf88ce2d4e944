package scene

import (
	"fmt"

	"github.com/achilleasa/lumen/types"
)

// Defines a phong-like surface material with optional self-emission.
// Materials are plain values and are copied into each primitive that uses them.
type Material struct {
	// Lambertian reflectance.
	Diffuse types.Vec3

	// Specular reflectance for the glossy lobe.
	Specular types.Vec3

	// Phong exponent for the glossy lobe. Must be >= 0.
	Glossiness float32

	// Emitted radiance.
	Emission types.Vec3
}

// Returns true if the material emits light.
func (m Material) IsEmissive() bool {
	return m.Emission[0] > 0 || m.Emission[1] > 0 || m.Emission[2] > 0
}

// Validate material parameters.
func (m Material) Validate() error {
	if m.Glossiness < 0 {
		return fmt.Errorf("scene: material glossiness must be >= 0; got %f", m.Glossiness)
	}
	return nil
}
