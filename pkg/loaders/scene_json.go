package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// ErrInvalidScene is wrapped by every validation failure of a scene description
var ErrInvalidScene = errors.New("invalid scene description")

// Material type names accepted in scene files
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// Vec3Cfg is a 3-vector written as a JSON array [x, y, z]
type Vec3Cfg [3]float64

// Vec3 converts the array to a core vector
func (v Vec3Cfg) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// CameraCfg mirrors the camera configuration fields
type CameraCfg struct {
	LookFrom      Vec3Cfg  `json:"lookFrom"`
	LookAt        Vec3Cfg  `json:"lookAt"`
	Up            *Vec3Cfg `json:"up,omitempty"` // defaults to +Y
	VFov          float64  `json:"vfov"`
	Aperture      float64  `json:"aperture,omitempty"`
	FocusDistance float64  `json:"focusDistance,omitempty"` // 0 = distance to lookAt
}

// ImageCfg sets output size and sampling
type ImageCfg struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	SamplesPerPixel int     `json:"samplesPerPixel"`
	MaxDepth        int     `json:"maxDepth,omitempty"`
	AdaptiveMin     float64 `json:"adaptiveMinSamples,omitempty"`
	AdaptiveError   float64 `json:"adaptiveThreshold,omitempty"`
}

// BackgroundCfg is the sky gradient; both ends default to the classic blue/white sky
type BackgroundCfg struct {
	Top    *Vec3Cfg `json:"top,omitempty"`
	Bottom *Vec3Cfg `json:"bottom,omitempty"`
}

// MaterialCfg describes one named material
type MaterialCfg struct {
	Type            string  `json:"type"`
	Albedo          Vec3Cfg `json:"albedo,omitempty"`
	Fuzz            float64 `json:"fuzz,omitempty"`
	RefractiveIndex float64 `json:"refractiveIndex,omitempty"`
}

// SphereCfg places a sphere with a reference into the material table
type SphereCfg struct {
	Center   Vec3Cfg `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// SceneFile is the top-level JSON scene description
type SceneFile struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Group       string                 `json:"group,omitempty"`
	Camera      CameraCfg              `json:"camera"`
	Image       ImageCfg               `json:"image"`
	Background  BackgroundCfg          `json:"background,omitempty"`
	Materials   map[string]MaterialCfg `json:"materials"`
	Spheres     []SphereCfg            `json:"spheres"`
}

// ParseSceneJSON decodes and validates a scene description. Unknown fields
// are rejected so typos don't silently fall back to defaults.
func ParseSceneJSON(reader io.Reader) (*SceneFile, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	var scene SceneFile
	if err := decoder.Decode(&scene); err != nil {
		return nil, fmt.Errorf("failed to decode scene JSON: %w", err)
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return &scene, nil
}

// LoadSceneJSON loads and parses a JSON scene file
func LoadSceneJSON(filename string) (*SceneFile, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	scene, err := ParseSceneJSON(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return scene, nil
}

// Validate checks every value the scene constructors would otherwise panic on
func (s *SceneFile) Validate() error {
	if s.Image.Width <= 0 || s.Image.Height <= 0 {
		return invalidf("image size must be positive, got %dx%d", s.Image.Width, s.Image.Height)
	}
	if s.Image.SamplesPerPixel <= 0 {
		return invalidf("samplesPerPixel must be positive, got %d", s.Image.SamplesPerPixel)
	}
	if s.Image.MaxDepth < 0 {
		return invalidf("maxDepth must not be negative, got %d", s.Image.MaxDepth)
	}
	if s.Image.AdaptiveMin < 0 || s.Image.AdaptiveMin > 1 {
		return invalidf("adaptiveMinSamples must be in [0, 1], got %v", s.Image.AdaptiveMin)
	}
	if s.Image.AdaptiveError < 0 {
		return invalidf("adaptiveThreshold must not be negative, got %v", s.Image.AdaptiveError)
	}

	if err := s.Camera.validate(); err != nil {
		return err
	}

	for name, m := range s.Materials {
		if err := m.validate(); err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
	}

	if len(s.Spheres) == 0 {
		return invalidf("scene has no spheres")
	}
	for i, sphere := range s.Spheres {
		if !(sphere.Radius > 0) {
			return invalidf("sphere %d: radius must be positive, got %v", i, sphere.Radius)
		}
		if _, ok := s.Materials[sphere.Material]; !ok {
			return invalidf("sphere %d: unknown material %q", i, sphere.Material)
		}
	}

	return nil
}

// UpVector returns the configured up vector or +Y
func (c CameraCfg) UpVector() core.Vec3 {
	if c.Up == nil {
		return core.NewVec3(0, 1, 0)
	}
	return c.Up.Vec3()
}

func (c CameraCfg) validate() error {
	if !(c.VFov > 0 && c.VFov < 180) {
		return invalidf("camera vfov must be in (0, 180), got %v", c.VFov)
	}
	if c.Aperture < 0 || c.FocusDistance < 0 {
		return invalidf("camera aperture and focusDistance must not be negative")
	}
	view := c.LookFrom.Vec3().Subtract(c.LookAt.Vec3())
	if view.LengthSquared() == 0 {
		return invalidf("camera lookFrom and lookAt must differ")
	}
	if c.UpVector().Cross(view).LengthSquared() == 0 {
		return invalidf("camera up must not be parallel to the view direction")
	}
	return nil
}

func (m MaterialCfg) validate() error {
	switch m.Type {
	case MaterialLambertian:
		return validateAlbedo(m.Albedo)
	case MaterialMetal:
		if m.Fuzz < 0 || m.Fuzz > 1 {
			return invalidf("fuzz must be in [0, 1], got %v", m.Fuzz)
		}
		return validateAlbedo(m.Albedo)
	case MaterialDielectric:
		if !(m.RefractiveIndex > 0) {
			return invalidf("refractiveIndex must be positive, got %v", m.RefractiveIndex)
		}
		return nil
	default:
		return invalidf("unknown material type %q", m.Type)
	}
}

func validateAlbedo(albedo Vec3Cfg) error {
	for _, c := range albedo {
		if c < 0 || c > 1 {
			return invalidf("albedo components must be in [0, 1], got %v", albedo)
		}
	}
	return nil
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidScene, fmt.Sprintf(format, args...))
}

// validateFilePath only admits .json files inside a scenes/ directory or the temp directory
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	cleanPath := filepath.ToSlash(filepath.Clean(filename))
	tempDir := filepath.ToSlash(filepath.Clean(os.TempDir()))

	if !strings.HasPrefix(cleanPath, "scenes/") &&
		!strings.HasPrefix(cleanPath, tempDir) &&
		!strings.Contains(cleanPath, "/scenes/") {
		return fmt.Errorf("file path must be in scenes/ directory")
	}

	if strings.Contains(cleanPath, "..") && !strings.Contains(cleanPath, "scenes/") {
		return fmt.Errorf("invalid file path: directory traversal not allowed")
	}

	if ext := strings.ToLower(filepath.Ext(cleanPath)); ext != ".json" {
		return fmt.Errorf("invalid file extension %q: only .json files are allowed", ext)
	}

	return nil
}
