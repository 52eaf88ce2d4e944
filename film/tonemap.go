package film

import (
	"image"

	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

// Tonemapping parameters.
type TonemapOptions struct {
	// Display gamma; output = radiance^(1/Gamma).
	Gamma float32

	// Linear exposure multiplier applied before gamma correction.
	Exposure float32

	// Luminance used by the optional luminance scaling curve.
	MaxLuminance float32

	// If set, colors are scaled by L / (MaxLuminance * L + 0.001) where
	// L is the green channel of the averaged radiance.
	LuminanceScaling bool
}

// Get the default tonemapping options (plain gamma 2.2).
func DefaultTonemapOptions() TonemapOptions {
	return TonemapOptions{
		Gamma:        2.2,
		Exposure:     1.0,
		MaxLuminance: 0.2,
	}
}

// Map an accumulated radiance sum to a display color in [0, +inf). The sum
// is divided by sampleCount before applying exposure and gamma; negative and
// NaN results clamp to 0 while +Inf is kept and saturates when quantized.
func TonemapColor(sum types.Vec3, sampleCount uint32, opts TonemapOptions) types.Vec3 {
	if sampleCount == 0 {
		return types.Vec3{}
	}

	color := sum.Mul(1.0 / float32(sampleCount))
	scale := opts.Exposure
	if opts.LuminanceScaling {
		luminance := color[1]
		scale *= luminance / (opts.MaxLuminance*luminance + 0.001)
	}

	gamma := opts.Gamma
	if !(gamma > 0) {
		gamma = 1.0
	}

	return color.Mul(scale).Pow(1.0 / gamma).MaxZero()
}

// Tonemap the accumulator into a new RGBA image.
func Tonemap(acc *Accumulator, sampleCount uint32, opts TonemapOptions) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, int(acc.FrameW), int(acc.FrameH)))
	TonemapRows(dst, acc, sampleCount, opts, 0, acc.FrameH)
	return dst
}

// Tonemap rows [rowStart, rowEnd) of the accumulator into dst which must
// have the same dimensions as the accumulator. The output only depends on
// the accumulator contents so repeated calls yield identical pixels.
func TonemapRows(dst *image.RGBA, acc *Accumulator, sampleCount uint32, opts TonemapOptions, rowStart, rowEnd uint32) {
	if rowEnd > acc.FrameH {
		rowEnd = acc.FrameH
	}

	for y := rowStart; y < rowEnd; y++ {
		pixOffset := dst.PixOffset(0, int(y))
		for x := uint32(0); x < acc.FrameW; x, pixOffset = x+1, pixOffset+4 {
			color := TonemapColor(acc.Sum(x, y).Vec3(), sampleCount, opts)
			dst.Pix[pixOffset] = toByte(color[0])
			dst.Pix[pixOffset+1] = toByte(color[1])
			dst.Pix[pixOffset+2] = toByte(color[2])
			dst.Pix[pixOffset+3] = 255
		}
	}
}

// Quantize a [0, 1] channel value; values above 1 saturate.
func toByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math32.Round(v * 255.0))
}
