package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Raytracer renders a whole image on the calling goroutine with a single
// random stream. Output depends only on the scene, integrator and seed.
type Raytracer struct {
	scene      core.Scene
	integrator core.Integrator
	width      int
	height     int
	config     core.SamplingConfig
	sampler    core.Sampler
}

// NewRaytracer creates a new raytracer using the scene's sampling config
func NewRaytracer(scene core.Scene, integrator core.Integrator, seed int64) *Raytracer {
	config := scene.GetSamplingConfig()
	return &Raytracer{
		scene:      scene,
		integrator: integrator,
		width:      config.Width,
		height:     config.Height,
		config:     config,
		sampler:    core.NewSeededSampler(seed),
	}
}

// SetSamplingConfig replaces the sampling configuration
func (rt *Raytracer) SetSamplingConfig(config core.SamplingConfig) {
	rt.config = config
	rt.width = config.Width
	rt.height = config.Height
}

// MergeSamplingConfig updates only the non-zero fields of the sampling configuration
func (rt *Raytracer) MergeSamplingConfig(updates core.SamplingConfig) {
	rt.SetSamplingConfig(MergeSamplingConfig(rt.config, updates))
}

// MergeSamplingConfig overlays the non-zero fields of updates onto base
func MergeSamplingConfig(base, updates core.SamplingConfig) core.SamplingConfig {
	if updates.Width != 0 {
		base.Width = updates.Width
	}
	if updates.Height != 0 {
		base.Height = updates.Height
	}
	if updates.SamplesPerPixel != 0 {
		base.SamplesPerPixel = updates.SamplesPerPixel
	}
	if updates.MaxDepth != 0 {
		base.MaxDepth = updates.MaxDepth
	}
	if updates.AdaptiveMinSamples != 0 {
		base.AdaptiveMinSamples = updates.AdaptiveMinSamples
	}
	if updates.AdaptiveThreshold != 0 {
		base.AdaptiveThreshold = updates.AdaptiveThreshold
	}
	return base
}

// SamplePixel averages SamplesPerPixel jittered samples for pixel (i, j),
// where j counts rows upward from the bottom of the image
func (rt *Raytracer) SamplePixel(i, j int) core.Vec3 {
	camera := rt.scene.GetCamera()
	colorAccum := core.Vec3{}

	for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
		s := (float64(i) + rt.sampler.Get1D()) / float64(rt.width)
		t := (float64(j) + rt.sampler.Get1D()) / float64(rt.height)

		ray := camera.GetRay(s, t, rt.sampler)
		colorAccum = colorAccum.Add(rt.integrator.RayColor(ray, rt.scene, rt.sampler))
	}

	return colorAccum.Multiply(1.0 / float64(rt.config.SamplesPerPixel))
}

// RenderPass renders every pixel with multi-sampling and returns an image
func (rt *Raytracer) RenderPass() (*image.RGBA, RenderStats) {
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))

	for j := rt.height - 1; j >= 0; j-- {
		for i := 0; i < rt.width; i++ {
			img.SetRGBA(i, rt.height-1-j, Vec3ToColor(rt.SamplePixel(i, j)))
		}
	}

	samples := rt.config.SamplesPerPixel
	stats := RenderStats{
		TotalPixels:    rt.width * rt.height,
		TotalSamples:   rt.width * rt.height * samples,
		AverageSamples: float64(samples),
		MaxSamples:     samples,
		MinSamples:     samples,
		MaxSamplesUsed: samples,
	}
	return img, stats
}

// Vec3ToColor converts a linear Vec3 color to RGBA with gamma 2 and clamping
func Vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0).GammaCorrect(2.0)

	return color.RGBA{
		R: uint8(255.99 * colorVec.X),
		G: uint8(255.99 * colorVec.Y),
		B: uint8(255.99 * colorVec.Z),
		A: 255,
	}
}
