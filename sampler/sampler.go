// Package sampler generates the per-pixel sample stream consumed by the
// path integrator. Samples combine a low-discrepancy Halton sequence indexed
// by the frame number with a per-pixel LCG stream (Cranley-Patterson
// rotation), so that consecutive frames progressively fill each sampling
// dimension while neighbouring pixels stay decorrelated.
package sampler

import (
	"math"

	"github.com/achilleasa/lumen/types"
)

// Sampling dimension registry. Every quantity sampled while generating a
// pixel sample owns a fixed dimension index so that its Halton base stays
// the same across frames.
const (
	// Sub-pixel jitter (2D).
	AntiAliasDimension = 0

	// Lens aperture position (2D).
	LensDimension = 2

	// First path vertex direction (2D); vertex i uses PathVertexDimension(i).
	PathDimension = 4
)

// Get the dimension of the 2D direction sample for path vertex i.
func PathVertexDimension(i int) int {
	return PathDimension + 2*i
}

// Maximum digits extracted when evaluating the radical inverse.
const maxHaltonDigits = 100

// Halton bases per sampling dimension. Index 3 maps to 6; the table is kept
// as-is since changing any entry changes the sample sequence.
var primeTable = [...]int{2, 3, 5, 6, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53}

// Get the Halton base for a sampling dimension. Dimensions outside the table
// fall back to base 2.
func Prime(dimension int) int {
	if dimension < 0 || dimension >= len(primeTable) {
		return 2
	}
	return primeTable[dimension]
}

// Get the number of dimensions with a dedicated Halton base.
func MaxDimensions() int {
	return len(primeTable)
}

// Evaluate the radical inverse of index in the given base. Non-positive
// indices map to 0 and bases < 2 are treated as 2.
func Halton(index, base int) float32 {
	if base < 2 {
		base = 2
	}

	var out float64
	f := 1.0 / float64(base)
	for digit := 0; digit < maxHaltonDigits && index > 0; digit++ {
		out += f * float64(index%base)
		index /= base
		f /= float64(base)
	}
	return float32(out)
}

// Hash a fragment coordinate and dimension into a 15-bit integer. The value
// only depends on its inputs so it is stable across frames.
func PixelIntegerSeed(fragX, fragY float32, dimension int) uint32 {
	dot := float64(fragX)*23.14069263277926 +
		float64(fragY)*2.665144142690225 +
		float64(dimension)*7.358926345
	h := math.Cos(dot) * 123456.0
	h -= math.Floor(h)
	seed := uint32(32768.0 * h)
	if seed > 0x7fff {
		seed = 0x7fff
	}
	return seed
}

// Get the pixel seed for a dimension mapped to [0, 1).
func PixelSeed(fragX, fragY float32, dimension int) float32 {
	return float32(PixelIntegerSeed(fragX, fragY, dimension)) / 32768.0
}

// A Sampler holds the sampling state for a single pixel during a single
// frame. It is not safe for concurrent use; each pixel evaluation owns one.
type Sampler struct {
	// The progressive sample index (frame counter).
	frame int

	// LCG state.
	state uint32

	// If false, Sample returns plain LCG values.
	halton bool
}

// Create a sampler for the fragment at (fragX, fragY). The LCG stream is
// seeded from the per-frame global seed and the pixel seed of dimension 0.
func New(fragX, fragY float32, frame int, globalSeed uint32, useHalton bool) *Sampler {
	return &Sampler{
		frame:  frame,
		state:  globalSeed + PixelIntegerSeed(fragX, fragY, 0),
		halton: useHalton,
	}
}

// Get the frame index this sampler draws from.
func (s *Sampler) Frame() int {
	return s.frame
}

// Advance the LCG and return a 15-bit integer.
func (s *Sampler) next() uint32 {
	s.state = s.state*1103515245 + 12345
	return (s.state >> 16) & 0x7fff
}

// Get the next uniform random value in [0, 1) from the pixel's LCG stream.
func (s *Sampler) UniformRandom() float32 {
	return float32(s.next()) / 32768.0
}

// Get a well-distributed value in [0, 1) for the given sampling dimension.
func (s *Sampler) Sample(dimension int) float32 {
	if !s.halton {
		return s.UniformRandom()
	}
	return types.Fract(Halton(s.frame, Prime(dimension)) + s.UniformRandom())
}

// Get a 2D sample from dimensions (dimension, dimension+1).
func (s *Sampler) Sample2(dimension int) types.Vec2 {
	x := s.Sample(dimension)
	y := s.Sample(dimension + 1)
	return types.Vec2{x, y}
}
