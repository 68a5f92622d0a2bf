package renderer

import (
	"context"
	"image"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	scene      core.Scene
	integrator core.Integrator
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(scene core.Scene, integratorInst core.Integrator) *TileRenderer {
	return &TileRenderer{
		scene:      scene,
		integrator: integratorInst,
	}
}

// RenderTileBounds renders pixels within the specified bounds (image
// coordinates, y down) until each pixel holds targetSamples samples or
// converges. ctx is checked before each row; on cancellation the rows done
// so far stay in pixelStats and ctx.Err() is returned.
func (tr *TileRenderer) RenderTileBounds(ctx context.Context, bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) (RenderStats, error) {
	camera := tr.scene.GetCamera()
	samplingConfig := tr.scene.GetSamplingConfig()
	width := len(pixelStats[0])
	height := len(pixelStats)

	// Initialize statistics tracking for this specific bounds
	stats := tr.initRenderStatsForBounds(bounds, targetSamples)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			samplesUsed := tr.adaptiveSamplePixel(camera, x, y, width, height, &pixelStats[y][x], sampler, targetSamples, samplingConfig)
			tr.updateStats(&stats, samplesUsed)
		}
	}

	// Finalize statistics
	tr.finalizeStats(&stats)
	return stats, nil
}

// adaptiveSamplePixel takes jittered samples until convergence or maxSamples
func (tr *TileRenderer) adaptiveSamplePixel(camera core.Camera, x, y, width, height int, ps *PixelStats, sampler core.Sampler, maxSamples int, samplingConfig core.SamplingConfig) int {
	initialSampleCount := ps.SampleCount

	// Image rows grow downward; the camera's t grows upward
	row := height - 1 - y

	for ps.SampleCount < maxSamples && !tr.shouldStopSampling(ps, maxSamples, samplingConfig) {
		s := (float64(x) + sampler.Get1D()) / float64(width)
		t := (float64(row) + sampler.Get1D()) / float64(height)

		ray := camera.GetRay(s, t, sampler)
		ps.AddSample(tr.integrator.RayColor(ray, tr.scene, sampler))
	}

	return ps.SampleCount - initialSampleCount
}

// shouldStopSampling determines if adaptive sampling should stop based on perceptual relative error
func (tr *TileRenderer) shouldStopSampling(ps *PixelStats, maxSamples int, samplingConfig core.SamplingConfig) bool {
	if samplingConfig.AdaptiveThreshold <= 0 {
		return false
	}

	// Calculate minimum samples as percentage of max samples, but ensure at least 1 sample
	minSamples := max(1, int(float64(maxSamples)*samplingConfig.AdaptiveMinSamples))

	// Don't stop before minimum samples
	if ps.SampleCount < minSamples {
		return false
	}

	// Black pixels converge on absolute variance, the rest on relative error
	if ps.LuminanceAccum <= 1e-8*float64(ps.SampleCount) {
		return ps.RelativeError() < 1e-6
	}
	return ps.RelativeError() < samplingConfig.AdaptiveThreshold
}

// initRenderStatsForBounds initializes the render statistics tracking for specific bounds
func (tr *TileRenderer) initRenderStatsForBounds(bounds image.Rectangle, maxSamples int) RenderStats {
	return RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  maxSamples,
		MinSamples:  maxSamples, // Start with max, will be reduced
	}
}

// updateStats updates the render statistics with data from a single pixel
func (tr *TileRenderer) updateStats(stats *RenderStats, samplesUsed int) {
	stats.TotalSamples += samplesUsed
	stats.MinSamples = min(stats.MinSamples, samplesUsed)
	stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
}

// finalizeStats calculates final statistics after all pixels are rendered
func (tr *TileRenderer) finalizeStats(stats *RenderStats) {
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
}
