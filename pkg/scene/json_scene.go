package scene

import (
	"fmt"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/loaders"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// NewJSONScene loads a JSON scene file and builds a renderable scene from it
func NewJSONScene(filename string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	sceneFile, err := loaders.LoadSceneJSON(filename)
	if err != nil {
		return nil, err
	}
	return NewSceneFromFile(sceneFile, cameraOverrides...)
}

// NewSceneFromFile converts a validated scene description into a scene.
// Materials are built once and shared by every sphere that names them.
func NewSceneFromFile(sceneFile *loaders.SceneFile, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	if err := sceneFile.Validate(); err != nil {
		return nil, err
	}

	image := sceneFile.Image
	defaultCameraConfig := renderer.CameraConfig{
		Center:        sceneFile.Camera.LookFrom.Vec3(),
		LookAt:        sceneFile.Camera.LookAt.Vec3(),
		Up:            sceneFile.Camera.UpVector(),
		Width:         image.Width,
		AspectRatio:   float64(image.Width) / float64(image.Height),
		VFov:          sceneFile.Camera.VFov,
		Aperture:      sceneFile.Camera.Aperture,
		FocusDistance: sceneFile.Camera.FocusDistance,
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)
	if err := cameraConfig.Validate(); err != nil {
		return nil, fmt.Errorf("camera override: %w", err)
	}

	samplingConfig := core.SamplingConfig{
		SamplesPerPixel:    image.SamplesPerPixel,
		MaxDepth:           image.MaxDepth,
		AdaptiveMinSamples: image.AdaptiveMin,
		AdaptiveThreshold:  image.AdaptiveError,
	}
	if samplingConfig.MaxDepth == 0 {
		samplingConfig.MaxDepth = core.DefaultMaxDepth
	}

	s := newScene(cameraConfig, samplingConfig)
	if len(cameraOverrides) == 0 || cameraOverrides[0].Width == 0 && cameraOverrides[0].AspectRatio == 0 {
		// Keep the file's exact height; width/aspect rounding can lose a row
		s.SamplingConfig.Height = image.Height
	}
	if sceneFile.Background.Top != nil {
		s.TopColor = sceneFile.Background.Top.Vec3()
	}
	if sceneFile.Background.Bottom != nil {
		s.BottomColor = sceneFile.Background.Bottom.Vec3()
	}

	materials := make(map[string]core.Material, len(sceneFile.Materials))
	for name, cfg := range sceneFile.Materials {
		materials[name] = buildMaterial(cfg)
	}

	for _, sphere := range sceneFile.Spheres {
		s.AddSphere(sphere.Center.Vec3(), sphere.Radius, materials[sphere.Material])
	}

	return s, nil
}

// buildMaterial assumes cfg has passed validation
func buildMaterial(cfg loaders.MaterialCfg) core.Material {
	switch cfg.Type {
	case loaders.MaterialMetal:
		return material.NewMetal(cfg.Albedo.Vec3(), cfg.Fuzz)
	case loaders.MaterialDielectric:
		return material.NewDielectric(cfg.RefractiveIndex)
	default:
		return material.NewLambertian(cfg.Albedo.Vec3())
	}
}
