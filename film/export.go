package film

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/mrjoshuak/go-openexr/exr"
)

// Convert the accumulator to a linear HDR image holding the mean radiance of
// each pixel. The alpha channel is set to 1.
func ToImage(acc *Accumulator, sampleCount uint32) *exr.RGBAImage {
	img := exr.NewRGBAImage(image.Rect(0, 0, int(acc.FrameW), int(acc.FrameH)))
	for y := uint32(0); y < acc.FrameH; y++ {
		for x := uint32(0); x < acc.FrameW; x++ {
			radiance := acc.Radiance(x, y, sampleCount)
			img.SetRGBA(int(x), int(y), radiance[0], radiance[1], radiance[2], 1.0)
		}
	}
	return img
}

// Write the mean accumulated radiance to an OpenEXR file.
func SaveEXR(imgFile string, acc *Accumulator, sampleCount uint32) error {
	if sampleCount == 0 {
		return fmt.Errorf("film: cannot export %q without any accumulated samples", imgFile)
	}
	return exr.EncodeFile(imgFile, ToImage(acc, sampleCount))
}

// Write a tonemapped frame to a PNG file.
func SavePNG(imgFile string, img image.Image) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
