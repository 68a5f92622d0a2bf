package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ParallelConfig contains configuration for tiled parallel rendering
type ParallelConfig struct {
	TileSize   int   // Size of each tile in pixels (32 recommended)
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed; tile i draws from its own stream seeded Seed+i
}

// DefaultParallelConfig returns sensible default values
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		TileSize:   32,
		NumWorkers: 0,  // Auto-detect CPU count
		Seed:       42, // Deterministic by default
	}
}

// ParallelRaytracer splits the image into tiles and renders them on a worker pool
type ParallelRaytracer struct {
	scene         core.Scene
	integrator    core.Integrator
	width, height int
	config        ParallelConfig
	logger        core.Logger
}

// TileCompletionResult describes a finished tile for progress callbacks
type TileCompletionResult struct {
	TileX      int             // Tile coordinates (not pixel coordinates)
	TileY      int             //
	Bounds     image.Rectangle // Pixel bounds in image coordinates
	TileImage  *image.RGBA     // Image data for just this tile
	TileNumber int             // Completion order, 1-based
	TotalTiles int
}

// NewParallelRaytracer creates a tiled renderer. Image size and sample count
// come from the scene's sampling config.
func NewParallelRaytracer(scene core.Scene, integrator core.Integrator, config ParallelConfig, logger core.Logger) *ParallelRaytracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultParallelConfig().TileSize
	}

	samplingConfig := scene.GetSamplingConfig()
	return &ParallelRaytracer{
		scene:      scene,
		integrator: integrator,
		width:      samplingConfig.Width,
		height:     samplingConfig.Height,
		config:     config,
		logger:     logger,
	}
}

// Render renders every tile to the scene's SamplesPerPixel and assembles the
// image. tileCallback, if non-nil, is invoked on the calling goroutine as each
// tile finishes. Cancelling ctx abandons the render with ctx.Err().
func (pr *ParallelRaytracer) Render(ctx context.Context, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	startTime := time.Now()
	targetSamples := max(1, pr.scene.GetSamplingConfig().SamplesPerPixel)

	tiles := NewTileGrid(pr.width, pr.height, pr.config.TileSize, pr.config.Seed)
	pixelStats := newPixelStatsGrid(pr.width, pr.height)

	workerPool := NewWorkerPool(pr.scene, pr.integrator, len(tiles), pr.config.NumWorkers)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	pr.logger.Printf("Rendering %dx%d at %d samples per pixel (%d tiles, %d workers)...\n",
		pr.width, pr.height, targetSamples, len(tiles), workerPool.GetNumWorkers())

	for taskID, tile := range tiles {
		workerPool.SubmitTask(TileTask{
			Tile:          tile,
			TargetSamples: targetSamples,
			TaskID:        taskID,
			PixelStats:    pixelStats,
		})
	}

	stats := RenderStats{MaxSamples: targetSamples, MinSamples: targetSamples}
	for i := 0; i < len(tiles); i++ {
		if err := ctx.Err(); err != nil {
			pr.logger.Printf("Rendering cancelled after %d of %d tiles\n", i, len(tiles))
			return nil, RenderStats{}, err
		}

		var result TileResult
		select {
		case <-ctx.Done():
			pr.logger.Printf("Rendering cancelled after %d of %d tiles\n", i, len(tiles))
			return nil, RenderStats{}, ctx.Err()
		case r, ok := <-workerPool.Results():
			if !ok {
				return nil, RenderStats{}, errors.New("worker pool closed unexpectedly")
			}
			result = r
		}
		if result.Error != nil {
			return nil, RenderStats{}, result.Error
		}

		mergeTileStats(&stats, result.Stats)

		tile := tiles[result.TaskID]

		if tileCallback != nil {
			tileCallback(TileCompletionResult{
				TileX:      tile.Bounds.Min.X / pr.config.TileSize,
				TileY:      tile.Bounds.Min.Y / pr.config.TileSize,
				Bounds:     tile.Bounds,
				TileImage:  extractTileImage(pixelStats, tile.Bounds),
				TileNumber: i + 1,
				TotalTiles: len(tiles),
			})
		}
	}

	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	img := assembleImage(pixelStats)
	pr.logger.Printf("Render completed in %v (average %.1f samples/pixel)\n",
		time.Since(startTime), stats.AverageSamples)
	return img, stats, nil
}

// extractTileImage copies one tile out of the shared pixel stats array
func extractTileImage(pixelStats [][]PixelStats, bounds image.Rectangle) *image.RGBA {
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			stats := &pixelStats[y][x]
			if stats.SampleCount > 0 {
				tileImage.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, Vec3ToColor(stats.GetColor()))
			}
		}
	}

	return tileImage
}

// assembleImage converts the pixel stats into the final image
func assembleImage(pixelStats [][]PixelStats) *image.RGBA {
	height := len(pixelStats)
	width := 0
	if height > 0 {
		width = len(pixelStats[0])
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, Vec3ToColor(pixelStats[y][x].GetColor()))
		}
	}

	return img
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID      int             // Unique tile identifier
	Bounds  image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	Sampler core.Sampler    // Tile-owned random stream; never shared between workers
}

// NewTile creates a new tile with the specified bounds and its own random stream
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewSeededSampler(seed + int64(id)),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}
