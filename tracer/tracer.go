package tracer

import (
	"image"
	"time"

	"github.com/achilleasa/lumen/film"
)

type UpdateType uint8

const (
	// Replace the scene; data is a *scene.Scene.
	UpdateScene UpdateType = iota

	// Replace the render target; data is a *RenderTarget.
	UpdateRenderTarget
)

// The shared buffers that tracers write into. Each tracer only touches the
// rows of the blocks assigned to it.
type RenderTarget struct {
	Accumulator *film.Accumulator
	FrameBuffer *image.RGBA
}

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The progressive sample index. The accumulator rows for this block
	// are cleared when Frame is 0 and after processing the block they
	// hold Frame+1 samples.
	Frame uint32

	// A random seed value for the tracer's random number generator.
	Seed uint32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Get the number of samples accumulated once this block is processed.
func (br *BlockRequest) SampleCount() uint32 {
	return br.Frame + 1
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering this block
	RenderTime time.Duration

	// The time for applying pending updates
	UpdateTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the computation speed estimate (in GFlops).
	Speed() uint32

	// Initialize tracer and start processing block requests.
	Init() error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Queue an update. Pending updates are applied before processing the
	// next block request; newer updates of the same type replace older ones.
	Update(UpdateType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats
}
