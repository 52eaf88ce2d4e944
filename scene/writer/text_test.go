package writer

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/scene/reader"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

func TestWriteBuiltinScenes(t *testing.T) {
	dir := t.TempDir()

	for _, name := range scene.BuiltinNames() {
		sc, err := scene.Builtin(name)
		if err != nil {
			t.Fatal(err)
		}

		sceneFile := filepath.Join(dir, name+".scn")
		if err = WriteScene(sc, sceneFile); err != nil {
			t.Fatalf("[%s] %v", name, err)
		}

		readSc, err := reader.ReadScene(sceneFile)
		if err != nil {
			t.Fatalf("[%s] %v", name, err)
		}

		if readSc.Name != name {
			t.Fatalf("[%s] expected scene name to be %q; got %q", name, name, readSc.Name)
		}
		if len(readSc.Primitives) != len(sc.Primitives) {
			t.Fatalf("[%s] expected %d primitives; got %d", name, len(sc.Primitives), len(readSc.Primitives))
		}

		for index, prim := range sc.Primitives {
			readPrim := readSc.Primitives[index]
			if readPrim.Type != prim.Type {
				t.Fatalf("[%s: %d] expected primitive type %s; got %s", name, index, prim.Type, readPrim.Type)
			}
			if readPrim.Material != prim.Material {
				t.Fatalf("[%s: %d] expected material %+v; got %+v", name, index, prim.Material, readPrim.Material)
			}
			if !approxEqual(readPrim.Origin, prim.Origin) || !approxEqual(readPrim.Normal, prim.Normal) ||
				readPrim.Radius != prim.Radius || math32.Abs(readPrim.Dist-prim.Dist) > 1e-4 {
				t.Fatalf("[%s: %d] expected geometry to survive a write/read cycle", name, index)
			}
		}

		if *readSc.Camera != *sc.Camera {
			t.Fatalf("[%s] expected camera %s; got %s", name, sc.Camera.String(), readSc.Camera.String())
		}
	}
}

func TestWriteSharesMaterials(t *testing.T) {
	mat := scene.Material{Diffuse: types.Splat3(0.5)}
	sc := scene.NewScene("shared")
	sc.Primitives = append(sc.Primitives,
		scene.NewSphere(types.Vec3{0, 0, -5}, 1, mat),
		scene.NewSphere(types.Vec3{2, 0, -5}, 1, mat),
		scene.NewPlane(types.Vec3{0, 1, 0}, 1, scene.Material{Emission: types.Splat3(1)}),
	)

	var buf bytes.Buffer
	if err := Write(sc, &buf); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if count := strings.Count(out, "\nmaterial "); count != 2 {
		t.Fatalf("expected 2 material definitions; got %d\n%s", count, out)
	}
	if count := strings.Count(out, "usemtl "); count != 2 {
		t.Fatalf("expected 2 usemtl directives; got %d\n%s", count, out)
	}
}

func TestWriteInvalidScene(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(scene.NewScene("empty"), &buf); err == nil {
		t.Fatal("expected an error when writing a scene without primitives")
	}
}

func approxEqual(a, b types.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math32.Abs(a[i]-b[i]) > 1e-6 {
			return false
		}
	}
	return true
}
