package scene

import (
	"fmt"
	"sort"

	"github.com/achilleasa/lumen/types"
)

// The name of the scene used when none is specified.
const DefaultSceneName = "scene1"

var builtinScenes = map[string]func() *Scene{
	"scene1": builtinScene1,
	"scene2": builtinScene2,
	"scene3": builtinScene3,
}

// Get the list of built-in scene names.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinScenes))
	for name := range builtinScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load a built-in scene by name.
func Builtin(name string) (*Scene, error) {
	ctor, exists := builtinScenes[name]
	if !exists {
		return nil, fmt.Errorf("scene: unknown built-in scene %q", name)
	}
	return ctor(), nil
}

// The default scene: two planes, a glossy red sphere and a spherical light.
func DefaultScene() *Scene {
	return builtinScene1()
}

func builtinScene1() *Scene {
	sc := NewScene("scene1")
	sc.Primitives = append(sc.Primitives,
		NewPlane(types.Vec3{0, 1, 0}, 4.5, Material{
			Diffuse:    types.Splat3(0.8),
			Glossiness: 50,
		}),
		NewPlane(types.Vec3{0, 0, 1}, 18.5, Material{
			Diffuse:    types.Vec3{0.5, 0.8, 0.2},
			Glossiness: 5,
		}),
		NewSphere(types.Vec3{1, -2, -12}, 3, Material{
			Diffuse:    types.Vec3{0.9, 0.1, 0.2},
			Specular:   types.Splat3(1),
			Glossiness: 10,
		}),
		NewSphere(types.Vec3{-8, -2, -12}, 3, Material{
			Glossiness: 10,
			Emission:   types.Vec3{9, 8, 5},
		}),
	)
	return sc
}

// An emissive tilted back plane lighting two glossy spheres.
func builtinScene2() *Scene {
	sc := NewScene("scene2")
	sc.Primitives = append(sc.Primitives,
		NewPlane(types.Vec3{0, 1, 0}, 4.5, Material{
			Diffuse:    types.Vec3{0.8, 0.5, 0.2},
			Specular:   types.Splat3(1),
			Glossiness: 50,
		}),
		NewPlane(types.Vec3{1, -1, 1}, 80, Material{
			Diffuse:    types.Vec3{0.5, 0.8, 0.2},
			Glossiness: 5,
			Emission:   types.Splat3(2),
		}),
		NewSphere(types.Vec3{1, -2, -12}, 3, Material{
			Diffuse:    types.Vec3{0.9, 0.1, 0.2},
			Specular:   types.Splat3(1),
			Glossiness: 10,
		}),
		NewSphere(types.Vec3{-8, -2, -10}, 2, Material{
			Diffuse:    types.Vec3{0.8, 0.9, 0.2},
			Specular:   types.Splat3(1),
			Glossiness: 10,
		}),
	)
	return sc
}

// Like scene2 but with a closer pair of shinier spheres.
func builtinScene3() *Scene {
	sc := NewScene("scene3")
	sc.Primitives = append(sc.Primitives,
		NewPlane(types.Vec3{0, 1, 0}, 4.5, Material{
			Diffuse:    types.Vec3{0.8, 0.5, 0.2},
			Specular:   types.Splat3(1),
			Glossiness: 50,
		}),
		NewPlane(types.Vec3{1, -1, 1}, 80, Material{
			Diffuse:  types.Vec3{0.5, 0.8, 0.2},
			Emission: types.Splat3(2),
		}),
		NewSphere(types.Vec3{1, -2, -12}, 3, Material{
			Diffuse:    types.Vec3{0.9, 0.9, 0.2},
			Specular:   types.Splat3(1),
			Glossiness: 20,
		}),
		NewSphere(types.Vec3{-4, -1, -6}, 3, Material{
			Diffuse:    types.Vec3{0.2, 0.9, 0.9},
			Specular:   types.Splat3(1),
			Glossiness: 20,
		}),
	)
	return sc
}
