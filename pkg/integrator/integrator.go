package integrator

import (
	"fmt"
	"sort"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// MinHitDistance is the lower t bound for every scene query. Starting
// slightly off the surface keeps scattered rays from re-hitting their origin
// point because of floating point error (shadow acne).
const MinHitDistance = 0.001

var constructors = map[string]func(core.SamplingConfig) core.Integrator{
	"path": func(config core.SamplingConfig) core.Integrator {
		return NewPathTracingIntegrator(config)
	},
	"normal": func(core.SamplingConfig) core.Integrator {
		return NewNormalIntegrator()
	},
}

// New returns the integrator registered under name ("path" or "normal")
func New(name string, config core.SamplingConfig) (core.Integrator, error) {
	constructor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q (available: %v)", name, Names())
	}
	return constructor(config), nil
}

// Names lists the registered integrator names in sorted order
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// backgroundGradient blends from the scene's bottom color (straight down)
// to its top color (straight up) by the ray's vertical direction
func backgroundGradient(ray core.Ray, scene core.Scene) core.Vec3 {
	topColor, bottomColor := scene.GetBackgroundColors()

	unitDirection := ray.Direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)

	return bottomColor.Lerp(topColor, t)
}
