package integrator

import (
	"math"
	"sync"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

var (
	skyBlue = core.NewVec3(0.5, 0.7, 1.0)
	white   = core.NewVec3(1.0, 1.0, 1.0)
)

// MockScene implements core.Scene for testing
type MockScene struct {
	world       core.Shape
	topColor    core.Vec3
	bottomColor core.Vec3
}

func (m *MockScene) GetCamera() core.Camera                      { return nil }
func (m *MockScene) GetWorld() core.Shape                        { return m.world }
func (m *MockScene) GetBackgroundColors() (core.Vec3, core.Vec3) { return m.topColor, m.bottomColor }
func (m *MockScene) GetSamplingConfig() core.SamplingConfig      { return core.DefaultSamplingConfig() }

func newMockScene(shapes ...core.Shape) *MockScene {
	return &MockScene{
		world:       geometry.NewShapeList(shapes...),
		topColor:    skyBlue,
		bottomColor: white,
	}
}

// MockMaterial implements core.Material with a pluggable scatter function
type MockMaterial struct {
	mu        sync.Mutex
	calls     int
	scatterFn func(rayIn core.Ray, hit core.HitRecord) (core.ScatterResult, bool)
}

func (m *MockMaterial) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.scatterFn(rayIn, hit)
}

func TestPathTracing_SkyGradientBoundaries(t *testing.T) {
	pt := NewPathTracingIntegrator(core.DefaultSamplingConfig())
	scene := newMockScene()
	sampler := core.NewSeededSampler(1)

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up is zenith", core.NewVec3(0, 3, 0), skyBlue},
		{"straight down is horizon", core.NewVec3(0, -0.2, 0), white},
		{"horizontal is midpoint", core.NewVec3(1, 0, 0), white.Lerp(skyBlue, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color := pt.RayColor(core.NewRay(core.Vec3{}, tt.direction), scene, sampler)
			if !color.Equals(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, color)
			}
		})
	}
}

func TestPathTracing_AbsorptionIsBlack(t *testing.T) {
	absorber := &MockMaterial{
		scatterFn: func(core.Ray, core.HitRecord) (core.ScatterResult, bool) {
			return core.ScatterResult{}, false
		},
	}
	scene := newMockScene(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, absorber))
	pt := NewPathTracingIntegrator(core.DefaultSamplingConfig())

	color := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, core.NewSeededSampler(1))
	if !color.Equals(core.Vec3{}) {
		t.Errorf("Expected black for absorbed ray, got %v", color)
	}
}

func TestPathTracing_AttenuationMultiplies(t *testing.T) {
	// Scatters straight up into the sky, halving every channel
	halfUp := &MockMaterial{
		scatterFn: func(rayIn core.Ray, hit core.HitRecord) (core.ScatterResult, bool) {
			return core.ScatterResult{
				Scattered:   core.NewRay(hit.Point, core.NewVec3(0, 1, 0)),
				Attenuation: core.NewVec3(0.5, 0.25, 1.0),
			}, true
		},
	}
	scene := newMockScene(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, halfUp))
	pt := NewPathTracingIntegrator(core.DefaultSamplingConfig())

	color := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, core.NewSeededSampler(1))
	expected := core.NewVec3(0.5, 0.25, 1.0).MultiplyVec(skyBlue)
	if !color.Equals(expected) {
		t.Errorf("Expected %v, got %v", expected, color)
	}
}

func TestPathTracing_DepthCutoffBetweenMirrors(t *testing.T) {
	mirror := material.NewMetal(core.NewVec3(1, 1, 1), 0.0)
	counter := &MockMaterial{}
	counter.scatterFn = func(rayIn core.Ray, hit core.HitRecord) (core.ScatterResult, bool) {
		return mirror.Scatter(rayIn, hit, nil)
	}

	// Two mirrors facing each other along Z; a ray on the axis bounces forever
	scene := newMockScene(
		geometry.NewSphere(core.NewVec3(0, 0, -2), 1.0, counter),
		geometry.NewSphere(core.NewVec3(0, 0, 2), 1.0, counter),
	)
	pt := NewPathTracingIntegrator(core.DefaultSamplingConfig())

	color := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, core.NewSeededSampler(1))
	if !color.Equals(core.Vec3{}) {
		t.Errorf("Expected exactly black after depth cutoff, got %v", color)
	}
	if counter.calls != core.DefaultMaxDepth {
		t.Errorf("Expected %d scatter events, got %d", core.DefaultMaxDepth, counter.calls)
	}
}

func TestPathTracing_MaxDepthConfig(t *testing.T) {
	tests := []struct {
		name     string
		maxDepth int
		expected int
	}{
		{"explicit depth", 5, 5},
		{"zero falls back to default", 0, core.DefaultMaxDepth},
		{"negative falls back to default", -3, core.DefaultMaxDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := NewPathTracingIntegrator(core.SamplingConfig{MaxDepth: tt.maxDepth})
			if pt.MaxDepth() != tt.expected {
				t.Errorf("Expected max depth %d, got %d", tt.expected, pt.MaxDepth())
			}
		})
	}
}

func TestPathTracing_DeterministicPerSeedAcrossGoroutines(t *testing.T) {
	scene := newMockScene(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.8, 0.3, 0.3))),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
	)
	pt := NewPathTracingIntegrator(core.DefaultSamplingConfig())
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0.1, -0.05, -1))

	render := func(seed int64) core.Vec3 {
		sampler := core.NewSeededSampler(seed)
		sum := core.Vec3{}
		for i := 0; i < 64; i++ {
			sum = sum.Add(pt.RayColor(ray, scene, sampler))
		}
		return sum
	}

	expected := render(7)
	if !expected.IsFinite() {
		t.Fatalf("Expected finite radiance, got %v", expected)
	}

	results := make([]core.Vec3, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = render(7)
		}(i)
	}
	wg.Wait()

	for i, result := range results {
		if !result.Equals(expected) {
			t.Errorf("Goroutine %d: expected %v, got %v", i, expected, result)
		}
	}
}

func TestNormalIntegrator_GoldenCenterPixel(t *testing.T) {
	scene := newMockScene(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	// Center of the classic (-2,-1,-1) + u*(4,0,0) + v*(0,2,0) viewport
	ray := core.NewRay(core.Vec3{}, core.NewVec3(-2, -1, -1).Add(core.NewVec3(4, 0, 0).Multiply(0.5)).Add(core.NewVec3(0, 2, 0).Multiply(0.5)))

	color := NewNormalIntegrator().RayColor(ray, scene, nil)
	expected := core.NewVec3(0.5, 0.5, 1.0)
	if math.Abs(color.Subtract(expected).Length()) > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, color)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		if _, err := New(name, core.DefaultSamplingConfig()); err != nil {
			t.Errorf("Unexpected error for %q: %v", name, err)
		}
	}
	if _, err := New("bdpt", core.DefaultSamplingConfig()); err == nil {
		t.Error("Expected error for unknown integrator")
	}
}
