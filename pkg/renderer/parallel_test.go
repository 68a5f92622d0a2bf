package renderer

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/integrator"
)

// silentLogger discards renderer output during tests
type silentLogger struct{}

func (silentLogger) Printf(format string, args ...interface{}) {}

func renderParallel(t *testing.T, scene core.Scene, config ParallelConfig) (*image.RGBA, RenderStats) {
	t.Helper()
	pathIntegrator := integrator.NewPathTracingIntegrator(scene.GetSamplingConfig())
	img, stats, err := NewParallelRaytracer(scene, pathIntegrator, config, silentLogger{}).Render(context.Background(), nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return img, stats
}

func TestNewTileGrid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tileSize      int
		wantTiles     int
	}{
		{"exact fit", 64, 32, 32, 2},
		{"partial edge tiles", 70, 40, 32, 6},
		{"single tile larger than image", 10, 10, 64, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileSize, 0)
			if len(tiles) != tt.wantTiles {
				t.Fatalf("got %d tiles, want %d", len(tiles), tt.wantTiles)
			}

			covered := 0
			for i, tile := range tiles {
				if tile.ID != i {
					t.Errorf("tile %d has ID %d", i, tile.ID)
				}
				if tile.Bounds.Max.X > tt.width || tile.Bounds.Max.Y > tt.height {
					t.Errorf("tile %d bounds %v exceed image", i, tile.Bounds)
				}
				if tile.Sampler == nil {
					t.Errorf("tile %d has no sampler", i)
				}
				covered += tile.Bounds.Dx() * tile.Bounds.Dy()
			}
			if covered != tt.width*tt.height {
				t.Errorf("tiles cover %d pixels, want %d", covered, tt.width*tt.height)
			}
		})
	}
}

func TestNewTile_OwnRandomStream(t *testing.T) {
	// Tile i is seeded with seed+i, so tile 1 of seed 5 matches tile 0 of seed 6
	a := NewTile(1, image.Rect(0, 0, 1, 1), 5)
	b := NewTile(0, image.Rect(0, 0, 1, 1), 6)
	c := NewTile(2, image.Rect(0, 0, 1, 1), 5)

	va, vb, vc := a.Sampler.Get1D(), b.Sampler.Get1D(), c.Sampler.Get1D()
	if va != vb {
		t.Errorf("equal effective seeds gave %v and %v", va, vb)
	}
	if va == vc {
		t.Errorf("neighbouring tiles share a stream: both drew %v", va)
	}
}

func TestParallelRaytracer_IndependentOfWorkerCount(t *testing.T) {
	scene := newSingleSphereScene(24, 12, 4)

	single, stats := renderParallel(t, scene, ParallelConfig{TileSize: 8, NumWorkers: 1, Seed: 3})
	many, _ := renderParallel(t, scene, ParallelConfig{TileSize: 8, NumWorkers: 4, Seed: 3})

	for i := range single.Pix {
		if single.Pix[i] != many.Pix[i] {
			t.Fatalf("worker count changed pixel data at byte %d", i)
		}
	}

	if stats.TotalPixels != 24*12 {
		t.Errorf("TotalPixels = %d, want %d", stats.TotalPixels, 24*12)
	}
	if stats.MinSamples != 4 || stats.MaxSamplesUsed != 4 || stats.AverageSamples != 4 {
		t.Errorf("every pixel should take exactly 4 samples, got %+v", stats)
	}
}

func TestParallelRaytracer_SeedChangesImage(t *testing.T) {
	scene := newSingleSphereScene(24, 12, 2)

	a, _ := renderParallel(t, scene, ParallelConfig{TileSize: 8, NumWorkers: 2, Seed: 1})
	b, _ := renderParallel(t, scene, ParallelConfig{TileSize: 8, NumWorkers: 2, Seed: 2})

	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return
		}
	}
	t.Error("different seeds produced identical images")
}

func TestParallelRaytracer_TileCallbacks(t *testing.T) {
	scene := newSingleSphereScene(20, 10, 1)
	pr := NewParallelRaytracer(scene, integrator.NewNormalIntegrator(), ParallelConfig{TileSize: 8, NumWorkers: 2}, silentLogger{})

	var results []TileCompletionResult
	img, _, err := pr.Render(context.Background(), func(result TileCompletionResult) {
		results = append(results, result)
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if len(results) != 6 {
		t.Fatalf("got %d tile callbacks, want 6", len(results))
	}

	for i, result := range results {
		if result.TileNumber != i+1 || result.TotalTiles != 6 {
			t.Errorf("callback %d reports tile %d of %d", i, result.TileNumber, result.TotalTiles)
		}
		if result.TileImage.Bounds().Dx() != result.Bounds.Dx() || result.TileImage.Bounds().Dy() != result.Bounds.Dy() {
			t.Errorf("tile image %v does not match bounds %v", result.TileImage.Bounds(), result.Bounds)
		}
		// Tile pixels must match the assembled image
		origin := result.Bounds.Min
		if got, want := result.TileImage.RGBAAt(0, 0), img.RGBAAt(origin.X, origin.Y); got != want {
			t.Errorf("tile (%d,%d) first pixel %v, image has %v", result.TileX, result.TileY, got, want)
		}
	}
}

func TestParallelRaytracer_Cancelled(t *testing.T) {
	scene := newSingleSphereScene(16, 16, 1)
	pr := NewParallelRaytracer(scene, integrator.NewNormalIntegrator(), ParallelConfig{TileSize: 4}, silentLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := pr.Render(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParallelRaytracer_CancelledMidRender(t *testing.T) {
	config := smallSamplingConfig(64, 64, 1)
	scene := &testScene{camera: NewFixedCamera(), world: emptyWorld{}, config: config}
	counter := &countingIntegrator{delay: time.Millisecond}
	pr := NewParallelRaytracer(scene, counter, ParallelConfig{TileSize: 8, NumWorkers: 2}, silentLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, _, err := pr.Render(ctx, nil)
	elapsed := time.Since(start)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	// A full render needs 4096 samples at 1ms each over 2 workers, about 2s
	if elapsed > time.Second {
		t.Errorf("Render returned %v after cancellation", elapsed)
	}
	if got := counter.samples.Load(); got >= 64*64 {
		t.Errorf("traced %d samples, cancellation should have stopped the render early", got)
	}
}

func TestDefaultParallelConfig(t *testing.T) {
	config := DefaultParallelConfig()
	if config.TileSize != 32 {
		t.Errorf("default tile size = %d, want 32", config.TileSize)
	}
	if config.NumWorkers != 0 {
		t.Errorf("default workers = %d, want 0 (auto)", config.NumWorkers)
	}
}
