package renderer

import (
	"context"
	"image"

	"github.com/achilleasa/lumen/film"
)

type Renderer interface {
	// Render frames until the configured number of samples has been
	// accumulated or the context is cancelled.
	Render(ctx context.Context) error

	// Render a single frame, adding one sample to every pixel.
	RenderFrame() error

	// Discard accumulated samples. The next frame restarts the
	// progressive sequence.
	Reset()

	// Get the number of samples accumulated so far.
	SampleCount() uint32

	// Get a copy of the last tonemapped frame.
	FrameBuffer() *image.RGBA

	// Get a copy of the accumulated radiance sums.
	Accumulator() *film.Accumulator

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
