package integrator

import (
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// NormalIntegrator shades the first hit by its surface normal mapped into
// [0,1] per channel. Misses fall back to the sky gradient. Useful for
// checking geometry without sampling noise.
type NormalIntegrator struct{}

// NewNormalIntegrator creates a normal-shading integrator
func NewNormalIntegrator() *NormalIntegrator {
	return &NormalIntegrator{}
}

// RayColor returns (normal + 1) * 0.5 for the nearest hit
func (ni *NormalIntegrator) RayColor(ray core.Ray, scene core.Scene, sampler core.Sampler) core.Vec3 {
	hit, isHit := scene.GetWorld().Hit(ray, MinHitDistance, math.Inf(1))
	if !isHit {
		return backgroundGradient(ray, scene)
	}
	return hit.Normal.Add(core.NewVec3(1, 1, 1)).Multiply(0.5)
}
