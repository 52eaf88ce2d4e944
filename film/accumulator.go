// Package film holds the float accumulation buffer that collects radiance
// samples across frames and the tonemapping pass that turns it into a
// displayable image.
package film

import (
	"github.com/achilleasa/lumen/types"
)

// Number of float32 components stored per pixel (RGBA).
const ComponentsPerPixel = 4

// An additive RGBA float buffer. Every radiance sample adds (r, g, b, 1) to
// its pixel so the alpha channel tracks the number of accumulated samples.
//
// Accumulators are not synchronized. Concurrent writers must work on
// disjoint rows.
type Accumulator struct {
	FrameW uint32
	FrameH uint32

	// Pixel data stored in row-major order with row 0 at the top.
	Data []float32
}

// Allocate a zeroed accumulator for the given frame dimensions.
func NewAccumulator(frameW, frameH uint32) *Accumulator {
	acc := &Accumulator{}
	acc.Resize(frameW, frameH)
	return acc
}

// Resize the accumulator. Resizing always discards the accumulated samples.
func (a *Accumulator) Resize(frameW, frameH uint32) {
	size := int(frameW*frameH) * ComponentsPerPixel
	if cap(a.Data) >= size {
		a.Data = a.Data[:size]
		a.Reset()
	} else {
		a.Data = make([]float32, size)
	}
	a.FrameW = frameW
	a.FrameH = frameH
}

// Clear all accumulated samples.
func (a *Accumulator) Reset() {
	a.ResetRows(0, a.FrameH)
}

// Clear the accumulated samples for rows [rowStart, rowEnd).
func (a *Accumulator) ResetRows(rowStart, rowEnd uint32) {
	if rowEnd > a.FrameH {
		rowEnd = a.FrameH
	}
	if rowStart >= rowEnd {
		return
	}
	rows := a.Data[a.offset(0, rowStart):a.offset(0, rowEnd)]
	for i := range rows {
		rows[i] = 0
	}
}

func (a *Accumulator) offset(x, y uint32) int {
	return int(y*a.FrameW+x) * ComponentsPerPixel
}

// Add a radiance sample to pixel (x, y).
func (a *Accumulator) Add(x, y uint32, radiance types.Vec3) {
	offset := a.offset(x, y)
	a.Data[offset] += radiance[0]
	a.Data[offset+1] += radiance[1]
	a.Data[offset+2] += radiance[2]
	a.Data[offset+3] += 1.0
}

// Get the raw accumulated RGBA value for pixel (x, y).
func (a *Accumulator) Sum(x, y uint32) types.Vec4 {
	offset := a.offset(x, y)
	return types.Vec4{a.Data[offset], a.Data[offset+1], a.Data[offset+2], a.Data[offset+3]}
}

// Get the mean radiance for pixel (x, y) given the number of accumulated
// samples. A zero sample count yields black.
func (a *Accumulator) Radiance(x, y uint32, sampleCount uint32) types.Vec3 {
	if sampleCount == 0 {
		return types.Vec3{}
	}
	return a.Sum(x, y).Vec3().Mul(1.0 / float32(sampleCount))
}
