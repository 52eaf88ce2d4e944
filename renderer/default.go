package renderer

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/achilleasa/lumen/device"
	"github.com/achilleasa/lumen/film"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/tracer/cpu"
)

// A renderer that splits each frame into blocks, distributes them to a set
// of tracers and waits for all blocks to complete before moving on to the
// next frame.
type defaultRenderer struct {
	logger log.Logger

	// mutex for synchronizing frame rendering and resets
	sync.Mutex

	options   Options
	scene     *scene.Scene
	scheduler tracer.BlockScheduler

	tracers          []tracer.Tracer
	blockAssignments []uint32

	// Shared buffers written by the tracers.
	target *tracer.RenderTarget

	// Number of samples accumulated so far.
	accumulatedSamples uint32

	// Generator for per-frame seeds.
	rng *rand.Rand

	// Channels for collecting block completion replies.
	doneChan chan uint32
	errChan  chan error

	stats FrameStats
}

// Create a new default renderer using the specified block scheduler. One or
// more cpu tracers are spawned for every detected device that is not
// blacklisted.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	if err := validate(sc, opts); err != nil {
		return nil, err
	}

	tracers, err := createTracers(opts)
	if err != nil {
		return nil, err
	}

	r, err := newDefaultRenderer(sc, scheduler, tracers, opts)
	if err != nil {
		for _, tr := range tracers {
			tr.Close()
		}
		return nil, err
	}
	return r, nil
}

func validate(sc *scene.Scene, opts Options) error {
	if sc == nil {
		return ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return ErrCameraNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return ErrInvalidFrameSize
	}
	return sc.Validate()
}

// Select devices and create a cpu tracer for each device partition.
func createTracers(opts Options) ([]tracer.Tracer, error) {
	devList, err := device.SelectDevices(device.CpuDevice, "")
	if err != nil {
		return nil, err
	}

	numTracers := int(opts.NumTracers)
	if numTracers < 1 {
		numTracers = 1
	}

	pipeline := cpu.DefaultPipeline(opts.Integrator, opts.tonemapOptions())
	tracers := make([]tracer.Tracer, 0)
	for _, dev := range devList {
		if isBlackListed(dev.Name, opts.BlackListedDevices) {
			continue
		}

		for _, part := range dev.Partition(numTracers) {
			// A tracer needs at least one row to work on
			if uint32(len(tracers)) == opts.FrameH {
				break
			}

			tr, err := cpu.NewTracer(fmt.Sprintf("tracer-%02d", len(tracers)), part, pipeline)
			if err != nil {
				return nil, err
			}
			tracers = append(tracers, tr)
		}
	}

	if len(tracers) == 0 {
		return nil, ErrNoTracers
	}
	return tracers, nil
}

func isBlackListed(name string, blackList []string) bool {
	for _, entry := range blackList {
		if entry != "" && strings.Contains(name, entry) {
			return true
		}
	}
	return false
}

func newDefaultRenderer(sc *scene.Scene, scheduler tracer.BlockScheduler, tracers []tracer.Tracer, opts Options) (*defaultRenderer, error) {
	if err := validate(sc, opts); err != nil {
		return nil, err
	}
	if len(tracers) == 0 {
		return nil, ErrNoTracers
	}
	if scheduler == nil {
		scheduler = tracer.NaiveScheduler()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		options:   opts,
		scene:     applyCameraOverrides(sc, opts),
		scheduler: scheduler,
		tracers:   tracers,
		target: &tracer.RenderTarget{
			Accumulator: film.NewAccumulator(opts.FrameW, opts.FrameH),
			FrameBuffer: image.NewRGBA(image.Rect(0, 0, int(opts.FrameW), int(opts.FrameH))),
		},
		rng:      rand.New(rand.NewSource(seed)),
		doneChan: make(chan uint32, len(tracers)),
		errChan:  make(chan error, len(tracers)),
	}

	for _, tr := range tracers {
		if err := tr.Init(); err != nil {
			return nil, err
		}
		tr.Update(tracer.UpdateScene, r.scene)
		tr.Update(tracer.UpdateRenderTarget, r.target)
	}

	r.logger.Noticef(
		"rendering scene %q at %dx%d using %d tracer(s); integrator: %s",
		r.scene.Name, opts.FrameW, opts.FrameH, len(tracers), opts.Integrator,
	)

	return r, nil
}

// Apply the camera overrides to a copy of the scene so that the caller's
// scene is never modified.
func applyCameraOverrides(sc *scene.Scene, opts Options) *scene.Scene {
	if opts.ApertureSize <= 0 && opts.FocalPlane <= 0 {
		return sc
	}

	camera := *sc.Camera
	if opts.ApertureSize > 0 {
		camera.ApertureSize = opts.ApertureSize
	}
	if opts.FocalPlane > 0 {
		camera.FocalPlane = opts.FocalPlane
	}

	scCopy := *sc
	scCopy.Camera = &camera
	return &scCopy
}

// Render frames until NumFrames samples have been accumulated.
func (r *defaultRenderer) Render(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ErrInterrupted
		default:
		}

		r.Lock()
		if r.accumulatedSamples >= r.options.NumFrames {
			r.Unlock()
			return nil
		}
		err := r.renderFrame()
		r.Unlock()

		if err != nil {
			return err
		}
	}
}

// Render a single frame.
func (r *defaultRenderer) RenderFrame() error {
	r.Lock()
	defer r.Unlock()

	return r.renderFrame()
}

// Render the next frame. This method is meant to be called while holding r.Lock()
func (r *defaultRenderer) renderFrame() error {
	frame := r.accumulatedSamples
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)
	seed := uint32(r.rng.Int31n(32768))

	start := time.Now()
	var blockY uint32 = 0
	pending := 0
	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		if blockH == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			FrameW:   r.options.FrameW,
			FrameH:   r.options.FrameH,
			BlockY:   blockY,
			BlockH:   blockH,
			Frame:    frame,
			Seed:     seed,
			DoneChan: r.doneChan,
			ErrChan:  r.errChan,
		})
		blockY += blockH
		pending++
	}

	// Wait for all blocks to complete before returning. The accumulator
	// holds frame+1 samples for every pixel only after all tracers reply.
	var err error
	for ; pending > 0; pending-- {
		select {
		case <-r.doneChan:
		case blockErr := <-r.errChan:
			if err == nil {
				err = blockErr
			}
		}
	}
	if err != nil {
		return err
	}

	r.accumulatedSamples++
	r.updateStats(time.Since(start))

	r.logger.Debugf("frame %d rendered in %s", frame, r.stats.RenderTime)
	return nil
}

// Collect tracer stats for the last rendered frame.
func (r *defaultRenderer) updateStats(renderTime time.Duration) {
	r.stats.Tracers = r.stats.Tracers[:0]
	for idx, tr := range r.tracers {
		stats := tr.Stats()
		r.stats.Tracers = append(r.stats.Tracers, TracerStat{
			Id:           tr.Id(),
			BlockH:       r.blockAssignments[idx],
			FramePercent: 100.0 * float32(r.blockAssignments[idx]) / float32(r.options.FrameH),
			RenderTime:   stats.RenderTime,
		})
	}

	r.stats.SampleCount = r.accumulatedSamples
	r.stats.RenderTime = renderTime
	r.stats.SamplesPerSecond = 0
	if seconds := renderTime.Seconds(); seconds > 0 {
		r.stats.SamplesPerSecond = float64(r.options.FrameW*r.options.FrameH) / seconds
	}
}

// Discard accumulated samples.
func (r *defaultRenderer) Reset() {
	r.Lock()
	defer r.Unlock()

	r.accumulatedSamples = 0
}

// Get the number of samples accumulated so far.
func (r *defaultRenderer) SampleCount() uint32 {
	r.Lock()
	defer r.Unlock()

	return r.accumulatedSamples
}

// Get a copy of the last tonemapped frame.
func (r *defaultRenderer) FrameBuffer() *image.RGBA {
	r.Lock()
	defer r.Unlock()

	fb := r.target.FrameBuffer
	out := image.NewRGBA(fb.Rect)
	copy(out.Pix, fb.Pix)
	return out
}

// Get a copy of the accumulation buffer.
func (r *defaultRenderer) Accumulator() *film.Accumulator {
	r.Lock()
	defer r.Unlock()

	acc := r.target.Accumulator
	return &film.Accumulator{
		FrameW: acc.FrameW,
		FrameH: acc.FrameH,
		Data:   append([]float32(nil), acc.Data...),
	}
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	r.Lock()
	defer r.Unlock()

	stats := r.stats
	stats.Tracers = append([]TracerStat(nil), r.stats.Tracers...)
	return stats
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	r.Lock()
	defer r.Unlock()

	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}
