package cpu

import (
	"time"

	"github.com/achilleasa/lumen/film"
	"github.com/achilleasa/lumen/integrator"
	"github.com/achilleasa/lumen/tracer"
)

// An alias for functions that can be used as part of the rendering pipeline.
type PipelineStage func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error)

// The list of pluggable of stages that are used to render the scene.
type Pipeline struct {
	// Reset the tracer state. This stage is executed for block requests
	// that start a new progressive sequence (frame 0).
	Reset PipelineStage

	// This stage implements an integrator function that traces the
	// block pixels and adds their contribution into the accumulation buffer.
	Integrator PipelineStage

	// A set of post-processing stages that are executed after the
	// integrator has processed the block.
	PostProcess []PipelineStage
}

func DefaultPipeline(integratorOpts integrator.Options, tonemapOpts film.TonemapOptions) *Pipeline {
	return &Pipeline{
		Reset:      ClearAccumulator(),
		Integrator: PathIntegrator(integratorOpts),
		PostProcess: []PipelineStage{
			TonemapGamma(tonemapOpts),
		},
	}
}

// Clear the accumulator rows of the block.
func ClearAccumulator() PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		tr.target.Accumulator.ResetRows(blockReq.BlockY, blockReq.BlockY+blockReq.BlockH)
		return time.Since(start), nil
	}
}

// Use a progressive path integrator to add one radiance sample to every
// block pixel.
func PathIntegrator(opts integrator.Options) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()

		in := integrator.NewPathIntegrator(tr.sceneData, opts)
		acc := tr.target.Accumulator
		frame := int(blockReq.Frame)

		tr.forEachRow(blockReq, func(y uint32) {
			for x := uint32(0); x < blockReq.FrameW; x++ {
				acc.Add(x, y, in.PixelRadiance(x, y, frame, blockReq.Seed, blockReq.FrameW, blockReq.FrameH))
			}
		})

		return time.Since(start), nil
	}
}

// Apply gamma tonemapping to the block rows and write them to the frame buffer.
func TonemapGamma(opts film.TonemapOptions) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		film.TonemapRows(
			tr.target.FrameBuffer,
			tr.target.Accumulator,
			blockReq.SampleCount(),
			opts,
			blockReq.BlockY,
			blockReq.BlockY+blockReq.BlockH,
		)
		return time.Since(start), nil
	}
}
