package scene

import (
	"fmt"

	"github.com/achilleasa/lumen/types"
)

// A thin-lens camera looking down the -Z axis. The sensor is a fixed
// rectangle placed SensorDistance units in front of the lens; fragment
// coordinates are mapped onto it with (0,0) at the bottom-left corner.
type Camera struct {
	// Distance between the lens and the sensor plane.
	SensorDistance float32

	// Sensor extents.
	SensorMin types.Vec2
	SensorMax types.Vec2

	// Lens aperture; 0 yields a pinhole camera.
	ApertureSize float32

	// Distance to the plane in focus.
	FocalPlane float32
}

func DefaultCamera() *Camera {
	return &Camera{
		SensorDistance: 1.0,
		SensorMin:      types.Vec2{-1, -0.5},
		SensorMax:      types.Vec2{1, 0.5},
		ApertureSize:   0.0,
		FocalPlane:     100.0,
	}
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"sensor [%3.3f, %3.3f]x[%3.3f, %3.3f] at %3.3f, aperture %3.3f, focal plane %3.3f",
		c.SensorMin[0], c.SensorMax[0], c.SensorMin[1], c.SensorMax[1],
		c.SensorDistance, c.ApertureSize, c.FocalPlane,
	)
}

// Get the size of a single pixel on the sensor.
func (c *Camera) PixelSize(frameW, frameH uint32) types.Vec2 {
	return c.SensorMax.Sub(c.SensorMin).DivVec(types.Vec2{float32(frameW), float32(frameH)})
}

// Generate the primary ray through the given fragment coordinate. The lens
// sample is a 2D point in [0,1)^2 used to jitter the ray origin across the
// aperture.
func (c *Camera) PrimaryRay(fragCoord types.Vec2, frameW, frameH uint32, lensSample types.Vec2) Ray {
	origin := types.Vec3{0, 0, c.SensorDistance}
	pixelSize := c.PixelSize(frameW, frameH)
	sensorPoint := c.SensorMin.Add(pixelSize.MulVec(fragCoord))
	dir := sensorPoint.Vec3(-c.SensorDistance).Normalize()

	focusPoint := origin.Add(dir.Mul(c.FocalPlane))
	lensOffset := lensSample.Sub(types.Vec2{0.5, 0.5}).Mul(c.ApertureSize)
	origin[0] += lensOffset[0]
	origin[1] += lensOffset[1]

	return Ray{
		Origin: origin,
		Dir:    focusPoint.Sub(origin).Normalize(),
	}
}
