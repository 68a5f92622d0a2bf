package renderer

import (
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// RenderStats summarises how many samples a render actually took
type RenderStats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`     // Per-pixel target
	MinSamples     int     `json:"minSamples"`     // Fewest samples any pixel took
	MaxSamplesUsed int     `json:"maxSamplesUsed"` // Most samples any pixel took
}

// PixelStats accumulates the samples of one pixel. Luminance sums feed the
// adaptive stopping test.
type PixelStats struct {
	ColorAccum       core.Vec3
	LuminanceAccum   float64
	LuminanceSqAccum float64
	SampleCount      int
}

// AddSample adds one linear-space color sample
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := color.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the mean of the samples so far, black with no samples
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// RelativeError returns the coefficient of variation of the sampled
// luminance. Near-black pixels report their raw variance instead, so a
// converged black pixel reads as 0.
func (ps *PixelStats) RelativeError() float64 {
	if ps.SampleCount == 0 {
		return math.Inf(1)
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	variance := math.Max(0, ps.LuminanceSqAccum/n-mean*mean)
	if mean <= 1e-8 {
		return variance
	}
	return math.Sqrt(variance) / mean
}

// newPixelStatsGrid allocates a height x width grid of empty pixel statistics
func newPixelStatsGrid(width, height int) [][]PixelStats {
	grid := make([][]PixelStats, height)
	for y := range grid {
		grid[y] = make([]PixelStats, width)
	}
	return grid
}

// mergeTileStats folds one tile's statistics into a running image total.
// total.MinSamples must start at the per-pixel target.
func mergeTileStats(total *RenderStats, tile RenderStats) {
	total.TotalPixels += tile.TotalPixels
	total.TotalSamples += tile.TotalSamples
	if tile.TotalPixels > 0 {
		total.MinSamples = min(total.MinSamples, tile.MinSamples)
	}
	total.MaxSamplesUsed = max(total.MaxSamplesUsed, tile.MaxSamplesUsed)
}
