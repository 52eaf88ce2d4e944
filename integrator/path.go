package integrator

import (
	"github.com/achilleasa/lumen/sampler"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

// Maximum number of path vertices. Paths are truncated after this many
// intersections; there is no russian roulette.
const MaxPathLength = 3

// Uniform sphere sampling density.
const uniformSpherePdf = 1.0 / (4.0 * math32.Pi)

// Supersample offsets in pixels. The pixel centre comes first, followed by
// its 8 half-pixel neighbours in row order.
var aaOffsets = [9]types.Vec2{
	{0, 0},
	{-0.5, -0.5}, {0, -0.5}, {0.5, -0.5},
	{-0.5, 0}, {0.5, 0},
	{-0.5, 0.5}, {0, 0.5}, {0.5, 0.5},
}

// A Monte-Carlo path integrator over an analytic scene. A PathIntegrator is
// read-only once created and may be shared by any number of goroutines.
type PathIntegrator struct {
	scene   *scene.Scene
	camera  *scene.Camera
	options Options
}

// Create a new path integrator for the given scene. If the scene does not
// define a camera, the default camera is used.
func NewPathIntegrator(sc *scene.Scene, opts Options) *PathIntegrator {
	camera := sc.Camera
	if camera == nil {
		camera = scene.DefaultCamera()
	}
	return &PathIntegrator{
		scene:   sc,
		camera:  camera,
		options: opts,
	}
}

// Get the integrator options.
func (in *PathIntegrator) Options() Options {
	return in.options
}

// Estimate the radiance reaching pixel (x, y) for the given frame. Pixel
// rows are numbered top to bottom; the camera works with bottom-up fragment
// coordinates sampled at pixel centres.
func (in *PathIntegrator) PixelRadiance(x, y uint32, frame int, seed uint32, frameW, frameH uint32) types.Vec3 {
	fragCoord := types.Vec2{float32(x) + 0.5, float32(frameH-1-y) + 0.5}
	smp := sampler.New(fragCoord[0], fragCoord[1], frame, seed, in.options.Halton)

	if !in.options.AntiAlias {
		return in.fragmentRadiance(fragCoord, frameW, frameH, smp)
	}

	var sum types.Vec3
	for _, offset := range aaOffsets {
		sum = sum.Add(in.fragmentRadiance(fragCoord.Add(offset), frameW, frameH, smp))
	}
	return sum.Mul(1.0 / float32(len(aaOffsets)))
}

func (in *PathIntegrator) fragmentRadiance(fragCoord types.Vec2, frameW, frameH uint32, smp *sampler.Sampler) types.Vec3 {
	if in.options.Jitter {
		fragCoord = fragCoord.Add(smp.Sample2(sampler.AntiAliasDimension).Sub(types.Vec2{0.5, 0.5}))
	}

	// The lens sample is always drawn so the random stream advances the same
	// way regardless of the aperture size.
	ray := in.camera.PrimaryRay(fragCoord, frameW, frameH, smp.Sample2(sampler.LensDimension))
	return in.SamplePath(ray, smp)
}

// Trace a path starting with the given ray and return its radiance estimate.
func (in *PathIntegrator) SamplePath(ray scene.Ray, smp *sampler.Sampler) types.Vec3 {
	radiance, _ := in.tracePath(ray, smp)
	return radiance
}

// Trace a path and also report the number of scene intersection queries.
func (in *PathIntegrator) tracePath(ray scene.Ray, smp *sampler.Sampler) (types.Vec3, int) {
	var result types.Vec3
	throughput := types.Splat3(1.0)
	queries := 0

	for vertex := 0; vertex < MaxPathLength; vertex++ {
		hit := in.scene.Intersect(ray, scene.DefaultTMin, scene.DefaultTMax)
		queries++
		if !hit.Hit {
			return result, queries
		}

		result = result.Add(throughput.MulVec(in.emission(hit.Material)))

		var outDir types.Vec3
		if in.options.Bounce {
			outDir = sampleUniformSphere(smp.Sample2(sampler.PathVertexDimension(vertex)))
		}

		pdf := float32(uniformSpherePdf)
		if in.options.ImportanceSampling && outDir.Dot(hit.Normal) < 0 {
			outDir = outDir.Neg()
			pdf *= 2.0
		}

		if in.options.Throughput {
			reflectance := phongReflectance(hit.Material, hit.Normal, ray.Dir, outDir)
			throughput = throughput.MulVec(reflectance.Mul(geometricTerm(hit.Normal, outDir)))
		} else {
			throughput = throughput.Mul(0.1)
		}
		throughput = throughput.Mul(1.0 / pdf)

		ray = scene.Ray{Origin: hit.Position, Dir: outDir}
	}

	return result, queries
}

func (in *PathIntegrator) emission(mat scene.Material) types.Vec3 {
	if !in.options.Light {
		return mat.Diffuse
	}
	return mat.Emission
}

// Map a 2D sample in [0,1)^2 to a direction on the unit sphere using the
// inverse CDF of the uniform sphere distribution.
func sampleUniformSphere(sigma types.Vec2) types.Vec3 {
	theta := math32.Acos(2.0*sigma[0] - 1.0)
	phi := 2.0 * math32.Pi * sigma[1]
	sinTheta := math32.Sin(theta)
	return types.Vec3{
		sinTheta * math32.Cos(phi),
		sinTheta * math32.Sin(phi),
		math32.Cos(theta),
	}
}

// Evaluate the normalized phong BRDF:
// diffuse/pi + specular * (n+2)/(2pi) * max(0, dot(out, reflect(in, normal)))^n
func phongReflectance(mat scene.Material, normal, inDir, outDir types.Vec3) types.Vec3 {
	n := mat.Glossiness
	cosR := types.ClampZero(outDir.Dot(inDir.Reflect(normal)))
	lobe := (n + 2.0) / (2.0 * math32.Pi) * math32.Pow(cosR, n)

	return mat.Diffuse.Mul(1.0 / math32.Pi).Add(mat.Specular.Mul(lobe)).ClampZero()
}

// Clamped cosine between the outgoing direction and the surface normal.
func geometricTerm(normal, outDir types.Vec3) float32 {
	cosTheta := outDir.Dot(normal) / (outDir.Len() * normal.Len())
	return types.ClampZero(cosTheta)
}
