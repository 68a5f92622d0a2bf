package renderer

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// testScene is a minimal core.Scene for renderer tests
type testScene struct {
	camera core.Camera
	world  core.Shape
	config core.SamplingConfig
}

func (s *testScene) GetCamera() core.Camera { return s.camera }
func (s *testScene) GetWorld() core.Shape   { return s.world }
func (s *testScene) GetBackgroundColors() (core.Vec3, core.Vec3) {
	return core.NewVec3(0.5, 0.7, 1.0), core.NewVec3(1.0, 1.0, 1.0)
}
func (s *testScene) GetSamplingConfig() core.SamplingConfig { return s.config }

// emptyWorld never reports a hit
type emptyWorld struct{}

func (emptyWorld) Hit(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	return nil, false
}

// constantIntegrator returns the same color for every ray and counts nothing
type constantIntegrator struct {
	color core.Vec3
}

func (ci constantIntegrator) RayColor(ray core.Ray, scene core.Scene, sampler core.Sampler) core.Vec3 {
	return ci.color
}

// countingIntegrator counts every sample it is asked for. onSample, if set,
// sees the running count; delay slows each sample down.
type countingIntegrator struct {
	samples  atomic.Int64
	delay    time.Duration
	onSample func(n int64)
}

func (ci *countingIntegrator) RayColor(ray core.Ray, scene core.Scene, sampler core.Sampler) core.Vec3 {
	n := ci.samples.Add(1)
	if ci.onSample != nil {
		ci.onSample(n)
	}
	if ci.delay > 0 {
		time.Sleep(ci.delay)
	}
	return core.NewVec3(0.5, 0.5, 0.5)
}

// fixedSampler returns the same value for every dimension
type fixedSampler struct {
	value float64
}

func (f fixedSampler) Get1D() float64 { return f.value }
func (f fixedSampler) Get2D() core.Vec2 {
	return core.NewVec2(f.value, f.value)
}
func (f fixedSampler) Get3D() core.Vec3 {
	return core.NewVec3(f.value, f.value, f.value)
}

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func smallSamplingConfig(width, height, samples int) core.SamplingConfig {
	config := core.DefaultSamplingConfig()
	config.Width = width
	config.Height = height
	config.SamplesPerPixel = samples
	return config
}
