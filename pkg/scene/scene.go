package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// ErrUnknownScene is returned when a scene ID matches no built-in or file scene
var ErrUnknownScene = errors.New("unknown scene")

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         core.Camera
	World          *geometry.ShapeList // Spheres in the scene, scanned linearly
	TopColor       core.Vec3           // Sky color straight up
	BottomColor    core.Vec3           // Sky color straight down
	SamplingConfig core.SamplingConfig
	CameraConfig   renderer.CameraConfig
	Integrator     string // Preferred integrator name; empty means "path"
}

// Default sky gradient used by every built-in scene
var (
	SkyTop    = core.NewVec3(0.5, 0.7, 1.0) // Blue zenith
	SkyBottom = core.NewVec3(1.0, 1.0, 1.0) // White horizon
)

// newScene builds an empty scene for a camera config, with image size taken
// from the camera's width and aspect ratio
func newScene(cameraConfig renderer.CameraConfig, samplingConfig core.SamplingConfig) *Scene {
	samplingConfig.Width = cameraConfig.Width
	samplingConfig.Height = cameraConfig.Height()

	return &Scene{
		Camera:         renderer.NewCamera(cameraConfig),
		World:          geometry.NewShapeList(),
		TopColor:       SkyTop,
		BottomColor:    SkyBottom,
		SamplingConfig: samplingConfig,
		CameraConfig:   cameraConfig,
	}
}

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat core.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}

// GetCamera returns the scene's camera
func (s *Scene) GetCamera() core.Camera {
	return s.Camera
}

// GetWorld returns the intersectable collection of every object
func (s *Scene) GetWorld() core.Shape {
	return s.World
}

// GetBackgroundColors returns the sky gradient colors
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// GetSamplingConfig returns the scene's sampling configuration
func (s *Scene) GetSamplingConfig() core.SamplingConfig {
	return s.SamplingConfig
}

// GetPrimitiveCount returns the number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// builtinScene is a registry entry for a scene constructed in code
type builtinScene struct {
	info   SceneInfo
	create func(cameraOverrides ...renderer.CameraConfig) *Scene
}

var builtins = map[string]builtinScene{
	"default": {
		info:   builtinInfo("default", "Default Scene", "Ground, a diffuse sphere and two metal spheres under the fixed camera"),
		create: NewDefaultScene,
	},
	"glass": {
		info:   builtinInfo("glass", "Glass Spheres", "Diffuse, fuzzy metal and glass spheres with a positioned camera"),
		create: NewGlassScene,
	},
	"spheregrid": {
		info:   builtinInfo("spheregrid", "Sphere Grid", "Grid of mixed-material spheres with depth of field"),
		create: NewSphereGridScene,
	},
	"mirrors": {
		info:   builtinInfo("mirrors", "Facing Mirrors", "Two perfect mirror spheres reflecting each other"),
		create: NewMirrorsScene,
	},
	"normals": {
		info:   builtinInfo("normals", "Surface Normals", "Single sphere shaded by surface normal"),
		create: NewNormalsScene,
	},
}

// Names lists the built-in scene IDs in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds a scene by ID. Built-in IDs are plain names; scene files are
// addressed as "json:<file name without extension>". Non-zero fields of the
// optional camera override replace the scene's camera defaults.
func Create(id string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	if entry, ok := builtins[id]; ok {
		if len(cameraOverrides) > 0 {
			merged := renderer.MergeCameraConfig(entry.create().CameraConfig, cameraOverrides[0])
			if err := merged.Validate(); err != nil {
				return nil, fmt.Errorf("camera override: %w", err)
			}
		}
		return entry.create(cameraOverrides...), nil
	}

	files, err := ListSceneFiles()
	if err != nil {
		return nil, err
	}
	for _, info := range files {
		if info.ID == id {
			return NewJSONScene(info.FilePath, cameraOverrides...)
		}
	}

	return nil, fmt.Errorf("%w %q (built-in scenes: %v)", ErrUnknownScene, id, Names())
}

// applyCameraOverrides merges the first override, if any, onto the defaults
func applyCameraOverrides(defaults renderer.CameraConfig, overrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(overrides) == 0 {
		return defaults
	}
	return renderer.MergeCameraConfig(defaults, overrides[0])
}
