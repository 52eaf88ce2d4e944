package renderer

import (
	"github.com/achilleasa/lumen/film"
	"github.com/achilleasa/lumen/integrator"
)

// Default render settings.
const (
	DefaultFrameW    uint32 = 512
	DefaultFrameH    uint32 = 256
	DefaultNumFrames uint32 = 250
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of progressive frames (samples per pixel) to render. A value
	// of 0 lets the interactive renderer accumulate samples forever.
	NumFrames uint32

	// Number of tracers to spawn per device.
	NumTracers uint32

	// Tonemapping settings.
	Gamma    float32
	Exposure float32

	// Integrator feature switches.
	Integrator integrator.Options

	// Camera overrides; ignored when not positive.
	ApertureSize float32
	FocalPlane   float32

	// Seed for the per-frame random seeds. If 0, a time-based seed is used.
	Seed int64

	// Device selection.
	BlackListedDevices []string

	// Address for the interactive preview server.
	ListenAddr string
}

// Get the default renderer options.
func DefaultOptions() Options {
	tonemap := film.DefaultTonemapOptions()
	return Options{
		FrameW:     DefaultFrameW,
		FrameH:     DefaultFrameH,
		NumFrames:  DefaultNumFrames,
		NumTracers: 1,
		Gamma:      tonemap.Gamma,
		Exposure:   tonemap.Exposure,
		Integrator: integrator.DefaultOptions(),
		ListenAddr: ":8080",
	}
}

func (opts Options) tonemapOptions() film.TonemapOptions {
	tonemap := film.DefaultTonemapOptions()
	if opts.Gamma > 0 {
		tonemap.Gamma = opts.Gamma
	}
	if opts.Exposure > 0 {
		tonemap.Exposure = opts.Exposure
	}
	return tonemap
}
