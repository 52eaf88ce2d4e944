package integrator

import (
	"fmt"
	"strings"
)

// Integrator feature switches. Every option defaults to enabled; disabling
// one replaces the corresponding part of the estimator with a simpler
// stand-in so that its contribution can be inspected in isolation.
type Options struct {
	// Collect emitted radiance. If disabled, the diffuse color of each
	// hit surface is collected instead.
	Light bool

	// Sample a new direction at each path vertex. If disabled the
	// outgoing direction is the zero vector and the path ends at the next
	// intersection query.
	Bounce bool

	// Weight throughput by the BRDF and cosine term. If disabled the
	// throughput is scaled by a constant 0.1 per bounce.
	Throughput bool

	// Rotate Halton samples by the per-pixel random stream. If disabled
	// samples come straight from the random stream.
	Halton bool

	// Mirror directions sampled below the surface into the visible
	// hemisphere and double their density.
	ImportanceSampling bool

	// Average 9 paths on a 3x3 half-pixel grid. If disabled a single path
	// through the pixel centre is traced.
	AntiAlias bool

	// Jitter each supersample position by up to half a pixel using the
	// anti-aliasing sample dimensions. Disabled by default.
	Jitter bool
}

// Get the default integrator options.
func DefaultOptions() Options {
	return Options{
		Light:              true,
		Bounce:             true,
		Throughput:         true,
		Halton:             true,
		ImportanceSampling: true,
		AntiAlias:          true,
	}
}

// Implements Stringer.
func (o Options) String() string {
	flags := make([]string, 0, 7)
	for _, f := range o.flags() {
		if *f.value {
			flags = append(flags, f.name)
		}
	}
	if len(flags) == 0 {
		return "none"
	}
	return strings.Join(flags, ",")
}

type optionFlag struct {
	name  string
	value *bool
}

func (o *Options) flags() []optionFlag {
	return []optionFlag{
		{"light", &o.Light},
		{"bounce", &o.Bounce},
		{"throughput", &o.Throughput},
		{"halton", &o.Halton},
		{"importance-sampling", &o.ImportanceSampling},
		{"aa", &o.AntiAlias},
		{"jitter", &o.Jitter},
	}
}

// Disable the named features. Names match the ones reported by String.
func (o *Options) Disable(names ...string) error {
	return o.set(false, names)
}

// Enable the named features. Names match the ones reported by String.
func (o *Options) Enable(names ...string) error {
	return o.set(true, names)
}

func (o *Options) set(value bool, names []string) error {
	flags := o.flags()
nextName:
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		for _, f := range flags {
			if f.name == name {
				*f.value = value
				continue nextName
			}
		}
		return fmt.Errorf("integrator: unknown feature %q", name)
	}
	return nil
}
