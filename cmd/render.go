package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/achilleasa/lumen/film"
	"github.com/achilleasa/lumen/renderer"
	"github.com/achilleasa/lumen/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render the scene progressively and write the result to disk.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}
	if opts.NumFrames == 0 {
		return errors.New("the number of frames must be greater than zero")
	}

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(sc, selectScheduler(ctx), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	renderCtx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelFn()

	renderErr := r.Render(renderCtx)
	if renderErr != nil && renderErr != renderer.ErrInterrupted {
		return renderErr
	}

	// Save whatever has been accumulated so far even if interrupted
	sampleCount := r.SampleCount()
	if sampleCount == 0 {
		return renderErr
	}
	if renderErr == renderer.ErrInterrupted {
		logger.Warningf("rendering interrupted after %d of %d samples", sampleCount, opts.NumFrames)
	}

	imgFile := ctx.String("out")
	if err = film.SavePNG(imgFile, r.FrameBuffer()); err != nil {
		return err
	}
	logger.Noticef("wrote %d spp frame to %s", sampleCount, imgFile)

	if exrFile := ctx.String("exr"); exrFile != "" {
		if err = film.SaveEXR(exrFile, r.Accumulator(), sampleCount); err != nil {
			return err
		}
		logger.Noticef("wrote radiance to %s", exrFile)
	}

	displayFrameStats(r.Stats())

	return renderErr
}

// Render the scene progressively while serving previews over http.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewInteractive(sc, selectScheduler(ctx), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	renderCtx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelFn()

	if err = r.Render(renderCtx); err != nil && err != renderer.ErrInterrupted {
		return err
	}

	displayFrameStats(r.Stats())
	return nil
}

// Build renderer options from command flags.
func renderOptions(ctx *cli.Context) (renderer.Options, error) {
	opts := renderer.DefaultOptions()
	opts.FrameW = uint32(ctx.Int("width"))
	opts.FrameH = uint32(ctx.Int("height"))
	opts.NumFrames = uint32(ctx.Int("frames"))
	opts.NumTracers = uint32(ctx.Int("tracers"))
	opts.Gamma = float32(ctx.Float64("gamma"))
	opts.Exposure = float32(ctx.Float64("exposure"))
	opts.ApertureSize = float32(ctx.Float64("aperture"))
	opts.FocalPlane = float32(ctx.Float64("focal-plane"))
	opts.Seed = ctx.Int64("seed")
	opts.BlackListedDevices = ctx.StringSlice("blacklist")
	if ctx.IsSet("listen") {
		opts.ListenAddr = ctx.String("listen")
	}

	if opts.FrameW == 0 || opts.FrameH == 0 {
		return opts, renderer.ErrInvalidFrameSize
	}

	if err := opts.Integrator.Disable(ctx.StringSlice("disable")...); err != nil {
		return opts, err
	}
	if err := opts.Integrator.Enable(ctx.StringSlice("enable")...); err != nil {
		return opts, err
	}

	return opts, nil
}

func selectScheduler(ctx *cli.Context) tracer.BlockScheduler {
	if ctx.Bool("perfect-scheduler") {
		return tracer.PerfectScheduler()
	}
	return tracer.NaiveScheduler()
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef(
		"frame statistics (%d spp, %.0f samples/sec)\n%s",
		stats.SampleCount, stats.SamplesPerSecond, buf.String(),
	)
}
