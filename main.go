package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/integrator"
	"github.com/df07/go-sphere-tracer/pkg/output"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// cliConfig holds the parsed command line
type cliConfig struct {
	Scene      string
	Width      int
	Samples    int
	MaxDepth   int
	Workers    int
	TileSize   int
	Seed       int64
	Integrator string
	Format     string
	Output     string
	Serial     bool
	Annotate   bool
	List       bool
	Help       bool
}

// writerLogger implements core.Logger on any writer
type writerLogger struct {
	w io.Writer
}

func (l writerLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.w, format, args...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stdout io.Writer) (cliConfig, *flag.FlagSet, error) {
	var cfg cliConfig
	fs := flag.NewFlagSet("sphere-tracer", flag.ContinueOnError)
	fs.SetOutput(stdout)

	fs.StringVar(&cfg.Scene, "scene", "default", "Scene: built-in name, json:<name> or path to a .json scene file")
	fs.IntVar(&cfg.Width, "width", 0, "Image width in pixels (0 = scene default, height follows the aspect ratio)")
	fs.IntVar(&cfg.Samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&cfg.MaxDepth, "depth", 0, "Maximum scatter depth (0 = scene default)")
	fs.IntVar(&cfg.Workers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	fs.IntVar(&cfg.TileSize, "tile", renderer.DefaultParallelConfig().TileSize, "Tile size in pixels")
	fs.Int64Var(&cfg.Seed, "seed", renderer.DefaultParallelConfig().Seed, "Random seed")
	fs.StringVar(&cfg.Integrator, "integrator", "", fmt.Sprintf("Integrator %v (empty = scene preference)", integrator.Names()))
	fs.StringVar(&cfg.Format, "format", "", fmt.Sprintf("Output format %v (empty = from -out extension, else png)", output.Formats()))
	fs.StringVar(&cfg.Output, "out", "", "Output file (default output/<scene>/render_<timestamp>.<format>)")
	fs.BoolVar(&cfg.Serial, "serial", false, "Render on one goroutine with a single random stream")
	fs.BoolVar(&cfg.Annotate, "annotate", false, "Draw render statistics onto the image")
	fs.BoolVar(&cfg.List, "list", false, "List available scenes and exit")
	fs.BoolVar(&cfg.Help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return cfg, fs, err
	}
	if cfg.Width < 0 || cfg.Samples < 0 || cfg.MaxDepth < 0 || cfg.Workers < 0 {
		return cfg, fs, errors.New("width, samples, depth and workers must not be negative")
	}
	if cfg.TileSize <= 0 {
		return cfg, fs, fmt.Errorf("tile size must be positive, got %d", cfg.TileSize)
	}
	return cfg, fs, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, fs, err := parseFlags(args, stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if cfg.Help {
		fmt.Fprintln(stdout, "Sphere Tracer")
		fmt.Fprintln(stdout, "Usage: sphere-tracer [options]")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stdout)
		return listScenes(stdout)
	}
	if cfg.List {
		return listScenes(stdout)
	}

	logger := writerLogger{w: stdout}

	selectedScene, err := createScene(cfg.Scene, cfg.Width)
	if err != nil {
		return err
	}
	selectedScene.SamplingConfig = renderer.MergeSamplingConfig(selectedScene.SamplingConfig, core.SamplingConfig{
		SamplesPerPixel: cfg.Samples,
		MaxDepth:        cfg.MaxDepth,
	})

	integratorName := cfg.Integrator
	if integratorName == "" {
		integratorName = selectedScene.Integrator
	}
	if integratorName == "" {
		integratorName = "path"
	}
	integratorInst, err := integrator.New(integratorName, selectedScene.SamplingConfig)
	if err != nil {
		return err
	}

	format, outputPath, err := resolveOutput(cfg)
	if err != nil {
		return err
	}

	samplingConfig := selectedScene.GetSamplingConfig()
	logger.Printf("Rendering scene %q: %dx%d, %d samples/pixel, max depth %d, %d spheres, %s integrator\n",
		cfg.Scene, samplingConfig.Width, samplingConfig.Height, samplingConfig.SamplesPerPixel,
		samplingConfig.MaxDepth, selectedScene.GetPrimitiveCount(), integratorName)

	startTime := time.Now()
	var img *image.RGBA
	var stats renderer.RenderStats
	if cfg.Serial {
		img, stats = renderer.NewRaytracer(selectedScene, integratorInst, cfg.Seed).RenderPass()
	} else {
		parallelConfig := renderer.ParallelConfig{TileSize: cfg.TileSize, NumWorkers: cfg.Workers, Seed: cfg.Seed}
		raytracer := renderer.NewParallelRaytracer(selectedScene, integratorInst, parallelConfig, logger)
		img, stats, err = raytracer.Render(ctx, nil)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	renderTime := time.Since(startTime)

	logger.Printf("Render completed in %v\n", renderTime)
	logger.Printf("Samples per pixel: %.1f (range %d - %d)\n",
		stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)

	if cfg.Annotate {
		img = output.Annotate(img, fmt.Sprintf("%s  %.1f spp  %v", cfg.Scene, stats.AverageSamples, renderTime.Round(time.Millisecond)))
	}

	if err := output.WriteFile(outputPath, img, format); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", outputPath)
	return nil
}

// createScene resolves a scene by built-in name, json:<name> ID or file path.
// A non-zero width overrides the scene's image width.
func createScene(sceneType string, width int) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, errors.New("scene name cannot be empty")
	}

	override := renderer.CameraConfig{Width: width}
	if strings.HasSuffix(strings.ToLower(sceneType), ".json") {
		return scene.NewJSONScene(sceneType, override)
	}
	return scene.Create(sceneType, override)
}

// resolveOutput decides the output format and path from the flags
func resolveOutput(cfg cliConfig) (output.Format, string, error) {
	var format output.Format
	var err error

	switch {
	case cfg.Format != "":
		format, err = output.ParseFormat(cfg.Format)
	case cfg.Output != "":
		format, err = output.FormatFromPath(cfg.Output)
	default:
		format = output.PNG
	}
	if err != nil {
		return "", "", err
	}

	if cfg.Output != "" {
		return format, cfg.Output, nil
	}

	// Scene IDs like json:name and file paths make poor directory names
	sceneDir := strings.TrimSuffix(filepath.Base(strings.TrimPrefix(cfg.Scene, "json:")), ".json")
	timestamp := time.Now().Format("20060102_150405")
	return format, filepath.Join("output", sceneDir, fmt.Sprintf("render_%s.%s", timestamp, format)), nil
}

func listScenes(stdout io.Writer) error {
	response, err := scene.ListAllScenes()
	if err != nil {
		return err
	}

	for _, group := range response.Groups {
		fmt.Fprintf(stdout, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Fprintf(stdout, "  %-16s %s\n", info.ID, info.Description)
		}
	}
	return nil
}
