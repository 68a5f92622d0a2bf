package scene

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// classicCameraConfig reproduces the fixed 4x2 viewport one unit down -Z
func classicCameraConfig() renderer.CameraConfig {
	return renderer.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       200,
		AspectRatio: 2.0,
		VFov:        90.0,
	}
}

// NewDefaultScene creates the classic four-sphere scene: a large ground
// sphere, a diffuse sphere and two mirror-finish metal spheres
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := applyCameraOverrides(classicCameraConfig(), cameraOverrides)
	s := newScene(cameraConfig, core.DefaultSamplingConfig())

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0)))
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.8, 0.3, 0.3)))
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0))
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0))

	return s
}

// NewGlassScene adds a glass sphere and fuzzy metal to the classic layout,
// seen from above and to the left with slight defocus
func NewGlassScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		Center:        core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         400,
		AspectRatio:   16.0 / 9.0,
		VFov:          40.0,
		Aperture:      0.1,
		FocusDistance: 0.0, // Auto-calculate focus distance
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)
	s := newScene(cameraConfig, core.DefaultSamplingConfig())

	glass := material.NewDielectric(1.5)

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0)))
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5)))
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3))
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	// Small glass marble in front, shows refraction of the ground
	s.AddSphere(core.NewVec3(-0.4, -0.35, -0.4), 0.15, glass)

	return s
}

// NewMirrorsScene places two perfect mirrors facing each other so paths
// bounce until the depth limit cuts them off
func NewMirrorsScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		Center:      core.NewVec3(0, 0.4, 1.5),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       300,
		AspectRatio: 1.5,
		VFov:        50.0,
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)
	s := newScene(cameraConfig, core.DefaultSamplingConfig())

	mirror := material.NewMetal(core.NewVec3(0.95, 0.95, 0.95), 0.0)

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	s.AddSphere(core.NewVec3(-0.55, 0, -1), 0.5, mirror)
	s.AddSphere(core.NewVec3(0.55, 0, -1), 0.5, mirror)
	s.AddSphere(core.NewVec3(0, -0.3, -0.4), 0.2, material.NewLambertian(core.NewVec3(0.9, 0.2, 0.1)))

	return s
}

// NewNormalsScene is a single sphere under the classic camera, rendered by
// normal shading for geometry checks
func NewNormalsScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := applyCameraOverrides(classicCameraConfig(), cameraOverrides)

	samplingConfig := core.DefaultSamplingConfig()
	samplingConfig.SamplesPerPixel = 4 // Normal shading is noise free apart from edge antialiasing

	s := newScene(cameraConfig, samplingConfig)
	s.Integrator = "normal"

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	return s
}
