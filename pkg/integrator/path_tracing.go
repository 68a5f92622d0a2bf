package integrator

import (
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// PathTracingIntegrator implements recursive unidirectional path tracing.
// It holds no per-ray state, so one instance can serve many goroutines as
// long as each passes its own sampler.
type PathTracingIntegrator struct {
	maxDepth int
}

// NewPathTracingIntegrator creates a new path tracing integrator.
// A non-positive MaxDepth falls back to core.DefaultMaxDepth.
func NewPathTracingIntegrator(config core.SamplingConfig) *PathTracingIntegrator {
	maxDepth := config.MaxDepth
	if maxDepth <= 0 {
		maxDepth = core.DefaultMaxDepth
	}
	return &PathTracingIntegrator{maxDepth: maxDepth}
}

// MaxDepth returns the number of scatter events after which paths turn black
func (pt *PathTracingIntegrator) MaxDepth() int {
	return pt.maxDepth
}

// RayColor computes the radiance arriving along a camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene core.Scene, sampler core.Sampler) core.Vec3 {
	return pt.rayColorRecursive(ray, scene, sampler, 0)
}

// rayColorRecursive returns the color for a ray that has already scattered depth times
func (pt *PathTracingIntegrator) rayColorRecursive(ray core.Ray, scene core.Scene, sampler core.Sampler, depth int) core.Vec3 {
	hit, isHit := scene.GetWorld().Hit(ray, MinHitDistance, math.Inf(1))
	if !isHit {
		return backgroundGradient(ray, scene)
	}

	// Paths that bounce too long are truncated, not extended
	if depth >= pt.maxDepth {
		return core.Vec3{}
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{} // Material absorbed the ray
	}

	return scatter.Attenuation.MultiplyVec(
		pt.rayColorRecursive(scatter.Scattered, scene, sampler, depth+1))
}
