package scene

import (
	"testing"

	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

func TestSphereIntersection(t *testing.T) {
	type spec struct {
		radius float32
		dist   float32
	}
	specs := []spec{
		{1, 5},
		{3, 10},
		{0.5, 0.75},
	}

	for index, s := range specs {
		sphere := NewSphere(types.Vec3{}, s.radius, Material{})
		ray := Ray{Origin: types.Vec3{0, 0, s.dist}, Dir: types.Vec3{0, 0, -1}}

		hit := sphere.Intersect(ray)
		if !hit.Hit {
			t.Fatalf("[spec %d] expected ray to hit the sphere", index)
		}
		if math32.Abs(hit.T-(s.dist-s.radius)) > 1e-5 {
			t.Fatalf("[spec %d] expected t to be %f; got %f", index, s.dist-s.radius, hit.T)
		}
		if !types.ApproxEqual(hit.Position, types.Vec3{0, 0, s.radius}, 1e-5) {
			t.Fatalf("[spec %d] expected hit position to be (0, 0, %f); got %v", index, s.radius, hit.Position)
		}
		if !types.ApproxEqual(hit.Normal, types.Vec3{0, 0, 1}, 1e-5) {
			t.Fatalf("[spec %d] expected hit normal to be (0, 0, 1); got %v", index, hit.Normal)
		}
	}
}

func TestSphereMiss(t *testing.T) {
	sphere := NewSphere(types.Vec3{}, 1, Material{Emission: types.Splat3(1)})

	// Passes beside the sphere
	hit := sphere.Intersect(Ray{Origin: types.Vec3{2, 0, 5}, Dir: types.Vec3{0, 0, -1}})
	if hit.Hit {
		t.Fatal("expected ray to miss the sphere")
	}
	if hit.Material != (Material{}) {
		t.Fatalf("expected no-hit sentinel to carry a zero material; got %v", hit.Material)
	}

	// Tangent rays (D == 0) are treated as misses
	hit = sphere.Intersect(Ray{Origin: types.Vec3{1, 0, 5}, Dir: types.Vec3{0, 0, -1}})
	if hit.Hit {
		t.Fatal("expected tangent ray to miss the sphere")
	}
}

func TestSphereIntersectionFromInside(t *testing.T) {
	sc := NewScene("inside")
	sc.Primitives = append(sc.Primitives, NewSphere(types.Vec3{}, 2, Material{}))

	ray := Ray{Origin: types.Vec3{}, Dir: types.Vec3{0, 0, 1}}

	// The near root lies behind the origin
	hit := sc.Primitives[0].Intersect(ray)
	if !hit.Hit || hit.T >= 0 {
		t.Fatalf("expected the near root to be behind the ray origin; got hit=%t t=%f", hit.Hit, hit.T)
	}

	// and is discarded by the scene range check
	if sc.Intersect(ray, DefaultTMin, DefaultTMax).Hit {
		t.Fatal("expected scene query from inside a sphere to report no hit")
	}
}

func TestPlaneIntersection(t *testing.T) {
	plane := NewPlane(types.Vec3{0, 1, 0}, 4.5, Material{})
	ray := Ray{Origin: types.Vec3{0, 10, 0}, Dir: types.Vec3{0, -1, 0}}

	hit := plane.Intersect(ray)
	if !hit.Hit {
		t.Fatal("expected ray to hit the plane")
	}

	// Points on the plane satisfy dot(p, n) + d = 0
	if dist := hit.Position.Dot(plane.Normal) + plane.Dist; math32.Abs(dist) > 1e-5 {
		t.Fatalf("expected hit position to satisfy the plane equation; got residual %f", dist)
	}
	if math32.Abs(hit.T-14.5) > 1e-5 {
		t.Fatalf("expected t to be 14.5; got %f", hit.T)
	}
	if !types.ApproxEqual(hit.Position, types.Vec3{0, -4.5, 0}, 1e-5) {
		t.Fatalf("expected hit position to be (0, -4.5, 0); got %v", hit.Position)
	}
	if !types.ApproxEqual(hit.Normal, types.Vec3{0, 1, 0}, 1e-6) {
		t.Fatalf("expected hit normal to be (0, 1, 0); got %v", hit.Normal)
	}
}

func TestPlaneWithNonUnitNormal(t *testing.T) {
	plane := NewPlane(types.Vec3{1, -1, 1}, 80, Material{})
	if err := plane.Validate(); err != nil {
		t.Fatal(err)
	}

	ray := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}
	hit := plane.Intersect(ray)
	if math32.Abs(hit.T-80) > 1e-3 {
		t.Fatalf("expected t to be 80; got %f", hit.T)
	}
	if !types.ApproxEqual(hit.Position, types.Vec3{0, 0, -80}, 1e-3) {
		t.Fatalf("expected hit position to be (0, 0, -80); got %v", hit.Position)
	}

	invSqrt3 := 1.0 / math32.Sqrt(3)
	if exp := (types.Vec3{invSqrt3, -invSqrt3, invSqrt3}); !types.ApproxEqual(hit.Normal, exp, 1e-5) {
		t.Fatalf("expected hit normal to be %v; got %v", exp, hit.Normal)
	}

	// The emissive back plane of the built-in scenes is placed the same way
	for _, name := range []string{"scene2", "scene3"} {
		sc, err := Builtin(name)
		if err != nil {
			t.Fatal(err)
		}
		back := sc.Primitives[1]
		if back.Type != PlanePrimitive {
			t.Fatalf("[%s] expected primitive 1 to be a plane; got %s", name, back.Type)
		}
		if hit = back.Intersect(ray); math32.Abs(hit.T-80) > 1e-3 {
			t.Fatalf("[%s] expected back plane to be hit at t=80; got %f", name, hit.T)
		}
	}
}

func TestPlaneNormalIsNotFlipped(t *testing.T) {
	plane := NewPlane(types.Vec3{0, 1, 0}, 4.5, Material{})
	ray := Ray{Origin: types.Vec3{0, -10, 0}, Dir: types.Vec3{0, 1, 0}}

	hit := plane.Intersect(ray)
	if !types.ApproxEqual(hit.Normal, types.Vec3{0, 1, 0}, 1e-6) {
		t.Fatalf("expected hit normal to remain (0, 1, 0) for rays hitting the back side; got %v", hit.Normal)
	}
}

func TestParallelRayIsRejectedByScene(t *testing.T) {
	sc := NewScene("parallel")
	sc.Primitives = append(sc.Primitives, NewPlane(types.Vec3{0, 1, 0}, 4.5, Material{}))

	ray := Ray{Origin: types.Vec3{0, 10, 0}, Dir: types.Vec3{1, 0, 0}}
	if hit := sc.Primitives[0].Intersect(ray); !math32.IsInf(hit.T, 0) && !math32.IsNaN(hit.T) {
		t.Fatalf("expected parallel ray to produce a non-finite t; got %f", hit.T)
	}
	if sc.Intersect(ray, DefaultTMin, DefaultTMax).Hit {
		t.Fatal("expected parallel ray to be rejected by the scene query")
	}
}

func TestNearestHitIsOrderIndependent(t *testing.T) {
	near := NewSphere(types.Vec3{0, 0, -5}, 1, Material{Diffuse: types.Vec3{1, 0, 0}})
	far := NewSphere(types.Vec3{0, 0, -15}, 1, Material{Diffuse: types.Vec3{0, 0, 1}})
	ray := Ray{Origin: types.Vec3{}, Dir: types.Vec3{0, 0, -1}}

	orders := [][]*Primitive{
		{near, far},
		{far, near},
	}

	for index, order := range orders {
		sc := NewScene("order")
		sc.Primitives = order

		hit := sc.Intersect(ray, DefaultTMin, DefaultTMax)
		if !hit.Hit {
			t.Fatalf("[order %d] expected a hit", index)
		}
		if math32.Abs(hit.T-4) > 1e-5 {
			t.Fatalf("[order %d] expected closest hit at t=4; got %f", index, hit.T)
		}
		if hit.Material != near.Material {
			t.Fatalf("[order %d] expected the material of the near sphere; got %v", index, hit.Material)
		}
	}
}

func TestIntersectRange(t *testing.T) {
	sc := NewScene("range")
	sc.Primitives = append(sc.Primitives, NewSphere(types.Vec3{0, 0, -5}, 1, Material{}))
	ray := Ray{Origin: types.Vec3{}, Dir: types.Vec3{0, 0, -1}}

	if sc.Intersect(ray, 0, 3).Hit {
		t.Fatal("expected hit beyond tMax to be rejected")
	}
	if sc.Intersect(ray, 4.5, 100).Hit {
		t.Fatal("expected hit before tMin to be rejected")
	}
	if !sc.Intersect(ray, 0, 100).Hit {
		t.Fatal("expected hit inside range")
	}
}

func TestDefaultSceneLayout(t *testing.T) {
	sc := DefaultScene()
	if err := sc.Validate(); err != nil {
		t.Fatal(err)
	}

	if got := sc.Count(SpherePrimitive); got != 2 {
		t.Fatalf("expected 2 spheres; got %d", got)
	}
	if got := sc.Count(PlanePrimitive); got != 2 {
		t.Fatalf("expected 2 planes; got %d", got)
	}

	emissive := 0
	for _, prim := range sc.Primitives {
		if prim.Material.IsEmissive() {
			emissive++
		}
	}
	if emissive != 1 {
		t.Fatalf("expected exactly one emissive primitive; got %d", emissive)
	}
}

func TestBuiltinScenes(t *testing.T) {
	for _, name := range BuiltinNames() {
		sc, err := Builtin(name)
		if err != nil {
			t.Fatal(err)
		}
		if sc.Name != name {
			t.Fatalf("expected scene name to be %q; got %q", name, sc.Name)
		}
		if err = sc.Validate(); err != nil {
			t.Fatalf("scene %q: %v", name, err)
		}
	}

	if _, err := Builtin("no-such-scene"); err == nil {
		t.Fatal("expected an error for an unknown scene")
	}
}

func TestAddPrimitive(t *testing.T) {
	sc := NewScene("add")
	sphere := NewSphere(types.Vec3{}, 1, Material{})

	if err := sc.AddPrimitive(sphere); err != nil {
		t.Fatal(err)
	}

	expError := "scene: primitive already added"
	if err := sc.AddPrimitive(sphere); err == nil || err.Error() != expError {
		t.Fatalf("expected to get %q; got %v", expError, err)
	}

	if err := sc.AddPrimitive(NewSphere(types.Vec3{}, 0, Material{})); err == nil {
		t.Fatal("expected an error for a zero radius sphere")
	}

	if err := sc.AddPrimitive(NewSphere(types.Vec3{}, 1, Material{Glossiness: -1})); err == nil {
		t.Fatal("expected an error for negative glossiness")
	}
}

func TestCameraCenterRay(t *testing.T) {
	cam := DefaultCamera()

	// The fragment at the centre of the sensor looks straight down -Z
	ray := cam.PrimaryRay(types.Vec2{256, 128}, 512, 256, types.Vec2{0.5, 0.5})
	if !types.ApproxEqual(ray.Origin, types.Vec3{0, 0, 1}, 1e-6) {
		t.Fatalf("expected ray origin to be (0, 0, 1); got %v", ray.Origin)
	}
	if !types.ApproxEqual(ray.Dir, types.Vec3{0, 0, -1}, 1e-5) {
		t.Fatalf("expected ray direction to be (0, 0, -1); got %v", ray.Dir)
	}
}

func TestCameraCornerRays(t *testing.T) {
	cam := DefaultCamera()

	type spec struct {
		frag   types.Vec2
		expDir types.Vec3
	}
	specs := []spec{
		{types.Vec2{0, 0}, types.Vec3{-1, -0.5, -1}.Normalize()},
		{types.Vec2{512, 256}, types.Vec3{1, 0.5, -1}.Normalize()},
		{types.Vec2{512, 0}, types.Vec3{1, -0.5, -1}.Normalize()},
	}

	for index, s := range specs {
		// Lens samples have no effect on a pinhole camera
		for _, lens := range []types.Vec2{{0, 0}, {0.9, 0.1}} {
			ray := cam.PrimaryRay(s.frag, 512, 256, lens)
			if !types.ApproxEqual(ray.Dir, s.expDir, 1e-5) {
				t.Fatalf("[spec %d] expected ray direction %v; got %v", index, s.expDir, ray.Dir)
			}
		}
	}
}

func TestCameraApertureKeepsFocus(t *testing.T) {
	cam := DefaultCamera()
	cam.ApertureSize = 0.5
	cam.FocalPlane = 10

	frag := types.Vec2{300, 100}
	pinhole := DefaultCamera().PrimaryRay(frag, 512, 256, types.Vec2{0.5, 0.5})
	focus := pinhole.At(10)

	for _, lens := range []types.Vec2{{0, 0}, {1, 1}, {0.25, 0.75}} {
		ray := cam.PrimaryRay(frag, 512, 256, lens)
		if ray.Origin[2] != 1 {
			t.Fatalf("expected lens origin to stay on the lens plane; got %v", ray.Origin)
		}

		// All lens rays for a fragment converge on the focal plane
		toFocus := focus.Sub(ray.Origin)
		if !types.ApproxEqual(ray.Dir, toFocus.Normalize(), 1e-4) {
			t.Fatalf("expected lens ray %v to pass through focus point %v", ray, focus)
		}
	}
}
