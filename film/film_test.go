package film

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
	"github.com/mrjoshuak/go-openexr/exr"
)

func TestAccumulatorAdd(t *testing.T) {
	acc := NewAccumulator(4, 3)
	if len(acc.Data) != 4*3*ComponentsPerPixel {
		t.Fatalf("expected accumulator to hold %d floats; got %d", 4*3*ComponentsPerPixel, len(acc.Data))
	}

	for frame := 0; frame < 5; frame++ {
		acc.Add(2, 1, types.Vec3{1, 2, 3})
	}

	if exp, got := (types.Vec4{5, 10, 15, 5}), acc.Sum(2, 1); got != exp {
		t.Fatalf("expected sum %v; got %v", exp, got)
	}
	if exp, got := (types.Vec3{1, 2, 3}), acc.Radiance(2, 1, 5); !types.ApproxEqual(got, exp, 1e-6) {
		t.Fatalf("expected radiance %v; got %v", exp, got)
	}
	if got := acc.Radiance(2, 1, 0); got != (types.Vec3{}) {
		t.Fatalf("expected zero sample count to yield black; got %v", got)
	}

	// Neighbours are untouched
	if got := acc.Sum(1, 1); got != (types.Vec4{}) {
		t.Fatalf("expected neighbour pixel to be empty; got %v", got)
	}
}

func TestAccumulatorReset(t *testing.T) {
	acc := NewAccumulator(2, 4)
	for y := uint32(0); y < 4; y++ {
		acc.Add(0, y, types.Splat3(1))
	}

	acc.ResetRows(1, 3)
	for y, exp := range []float32{1, 0, 0, 1} {
		if got := acc.Sum(0, uint32(y))[3]; got != exp {
			t.Fatalf("[row %d] expected sample count %f; got %f", y, exp, got)
		}
	}

	acc.Reset()
	for i, v := range acc.Data {
		if v != 0 {
			t.Fatalf("expected accumulator to be cleared; got %f at index %d", v, i)
		}
	}

	acc.Resize(3, 3)
	if acc.FrameW != 3 || acc.FrameH != 3 || len(acc.Data) != 9*ComponentsPerPixel {
		t.Fatalf("expected a 3x3 accumulator; got %dx%d with %d floats", acc.FrameW, acc.FrameH, len(acc.Data))
	}
}

func TestTonemapColor(t *testing.T) {
	type spec struct {
		sum         types.Vec3
		sampleCount uint32
		exp         types.Vec3
	}
	specs := []spec{
		{types.Vec3{1, 1, 1}, 1, types.Vec3{1, 1, 1}},
		{types.Vec3{0.5, 0, 4}, 2, types.Vec3{math32.Pow(0.25, 1/2.2), 0, math32.Pow(2, 1/2.2)}},
		{types.Vec3{-1, 0, 1}, 1, types.Vec3{0, 0, 1}},
		{types.Vec3{1, 1, 1}, 0, types.Vec3{}},
	}

	opts := DefaultTonemapOptions()
	for index, s := range specs {
		if got := TonemapColor(s.sum, s.sampleCount, opts); !types.ApproxEqual(got, s.exp, 1e-5) {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}
}

func TestTonemapKeepsInfiniteRadiance(t *testing.T) {
	got := TonemapColor(types.Vec3{math32.Inf(1), math32.NaN(), -1}, 1, DefaultTonemapOptions())
	if !math32.IsInf(got[0], 1) {
		t.Fatalf("expected infinite radiance to stay infinite; got %f", got[0])
	}
	if got[1] != 0 || got[2] != 0 {
		t.Fatalf("expected NaN and negative channels to clamp to 0; got %v", got)
	}
	if toByte(got[0]) != 255 {
		t.Fatalf("expected infinite radiance to saturate; got %d", toByte(got[0]))
	}
}

func TestTonemapLuminanceScaling(t *testing.T) {
	opts := DefaultTonemapOptions()
	opts.Gamma = 1
	opts.LuminanceScaling = true

	// L / (0.2 * L + 0.001) with L = 1
	exp := 1.0 / 0.201
	got := TonemapColor(types.Vec3{1, 1, 1}, 1, opts)
	if math32.Abs(got[0]-float32(exp)) > 1e-3 {
		t.Fatalf("expected scaled value %f; got %f", exp, got[0])
	}
}

func TestTonemapIsIdempotent(t *testing.T) {
	acc := NewAccumulator(16, 8)
	for y := uint32(0); y < 8; y++ {
		for x := uint32(0); x < 16; x++ {
			acc.Add(x, y, types.Vec3{float32(x) / 8, float32(y) / 4, 0.3})
			acc.Add(x, y, types.Vec3{0.1, 0.2, float32(x*y) / 64})
		}
	}
	snapshot := append([]float32(nil), acc.Data...)

	opts := DefaultTonemapOptions()
	first := Tonemap(acc, 2, opts)
	second := Tonemap(acc, 2, opts)

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatal("expected repeated tonemapping to produce identical output")
	}
	for i := range snapshot {
		if snapshot[i] != acc.Data[i] {
			t.Fatalf("expected tonemapping to leave the accumulator untouched; index %d changed", i)
		}
	}

	// Rows can be tonemapped independently
	partial := Tonemap(NewAccumulator(16, 8), 2, opts)
	TonemapRows(partial, acc, 2, opts, 0, 5)
	TonemapRows(partial, acc, 2, opts, 5, 8)
	if !bytes.Equal(first.Pix, partial.Pix) {
		t.Fatal("expected row-wise tonemapping to match a full pass")
	}
}

func TestTonemapQuantization(t *testing.T) {
	acc := NewAccumulator(4, 1)
	acc.Add(0, 0, types.Vec3{0, 0, 0})
	acc.Add(1, 0, types.Vec3{1, 1, 1})
	acc.Add(2, 0, types.Vec3{9, 9, 9})
	acc.Add(3, 0, types.Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)})

	img := Tonemap(acc, 1, DefaultTonemapOptions())
	for x, exp := range []uint8{0, 255, 255, 255} {
		c := img.RGBAAt(x, 0)
		if c.R != exp || c.A != 255 {
			t.Fatalf("[pixel %d] expected (%d, a=255); got %v", x, exp, c)
		}
	}
}

func TestSavePNG(t *testing.T) {
	acc := NewAccumulator(4, 4)
	acc.Add(1, 2, types.Vec3{0.5, 0.25, 1})
	img := Tonemap(acc, 1, DefaultTonemapOptions())

	imgFile := filepath.Join(t.TempDir(), "frame.png")
	if err := SavePNG(imgFile, img); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(imgFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("expected bounds %v; got %v", img.Bounds(), decoded.Bounds())
	}
}

func TestSaveEXR(t *testing.T) {
	acc := NewAccumulator(4, 2)
	for frame := 0; frame < 4; frame++ {
		acc.Add(3, 1, types.Vec3{2, 0.5, 0.25})
		acc.Add(0, 0, types.Vec3{0, 1, 0})
	}

	imgFile := filepath.Join(t.TempDir(), "frame.exr")
	if err := SaveEXR(imgFile, acc, 4); err != nil {
		t.Fatal(err)
	}

	img, err := exr.DecodeFile(imgFile)
	if err != nil {
		t.Fatal(err)
	}

	type spec struct {
		x, y int
		exp  types.Vec3
	}
	specs := []spec{
		{3, 1, types.Vec3{2, 0.5, 0.25}},
		{0, 0, types.Vec3{0, 1, 0}},
		{1, 1, types.Vec3{}},
	}
	for index, s := range specs {
		r, g, b, _ := img.RGBA(s.x, s.y)
		// Values are stored as half floats
		if got := (types.Vec3{r, g, b}); !types.ApproxEqual(got, s.exp, 1e-2) {
			t.Fatalf("[spec %d] expected pixel (%d, %d) to be %v; got %v", index, s.x, s.y, s.exp, got)
		}
	}

	if err = SaveEXR(imgFile, acc, 0); err == nil {
		t.Fatal("expected an error when exporting without samples")
	}
}
