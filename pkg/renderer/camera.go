package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center        core.Vec3 // Camera position (look-from)
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	Width         int       // Image width in pixels
	AspectRatio   float64   // Width / height ratio
	VFov          float64   // Vertical field of view in degrees, in (0, 180)
	Aperture      float64   // Lens aperture diameter; 0 disables depth of field
	FocusDistance float64   // Distance to the plane in focus; 0 = distance to LookAt
}

// Validate reports configurations the camera derivation cannot handle
func (c CameraConfig) Validate() error {
	if !(c.VFov > 0 && c.VFov < 180) {
		return fmt.Errorf("vertical field of view must be in (0, 180) degrees, got %v", c.VFov)
	}
	if !(c.AspectRatio > 0) {
		return fmt.Errorf("aspect ratio must be positive, got %v", c.AspectRatio)
	}
	if c.Width < 0 {
		return fmt.Errorf("image width must not be negative, got %d", c.Width)
	}
	if c.Width > 0 && c.Height() < 1 {
		return fmt.Errorf("image width %d gives zero height at aspect ratio %v", c.Width, c.AspectRatio)
	}
	if c.Aperture < 0 {
		return fmt.Errorf("aperture must not be negative, got %v", c.Aperture)
	}
	if c.FocusDistance < 0 {
		return fmt.Errorf("focus distance must not be negative, got %v", c.FocusDistance)
	}
	if c.Center.Subtract(c.LookAt).LengthSquared() == 0 {
		return fmt.Errorf("camera center and look-at point must differ")
	}
	if c.Up.Cross(c.Center.Subtract(c.LookAt)).LengthSquared() == 0 {
		return fmt.Errorf("up vector must not be parallel to the view direction")
	}
	return nil
}

// Height returns the image height implied by Width and AspectRatio
func (c CameraConfig) Height() int {
	return int(float64(c.Width) / c.AspectRatio)
}

// MergeCameraConfig overlays the non-zero fields of override onto base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}
	if !override.Center.Equals(zero) {
		result.Center = override.Center
	}
	if !override.LookAt.Equals(zero) {
		result.LookAt = override.LookAt
	}
	if !override.Up.Equals(zero) {
		result.Up = override.Up
	}
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}

// Camera generates rays for rendering
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v            core.Vec3 // Lens basis for defocus offsets
	lensRadius      float64
}

// NewCamera derives a camera from config. It panics on an invalid config;
// call config.Validate first when the values come from user input.
func NewCamera(config CameraConfig) *Camera {
	if err := config.Validate(); err != nil {
		panic("renderer: invalid camera config: " + err.Error())
	}

	focusDistance := config.FocusDistance
	if focusDistance == 0 {
		focusDistance = config.Center.Subtract(config.LookAt).Length()
	}

	theta := config.VFov * math.Pi / 180.0
	halfHeight := math.Tan(theta / 2)
	halfWidth := config.AspectRatio * halfHeight

	// Orthonormal basis: w points backwards, u right, v up
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(2 * halfWidth * focusDistance)
	vertical := v.Multiply(2 * halfHeight * focusDistance)
	lowerLeftCorner := config.Center.
		Subtract(u.Multiply(halfWidth * focusDistance)).
		Subtract(v.Multiply(halfHeight * focusDistance)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          config.Center,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		lensRadius:      config.Aperture / 2,
	}
}

// NewFixedCamera creates the classic pinhole camera at the origin looking
// down -Z with a 4x2 viewport one unit away
func NewFixedCamera() *Camera {
	return &Camera{
		origin:          core.NewVec3(0, 0, 0),
		lowerLeftCorner: core.NewVec3(-2, -1, -1),
		horizontal:      core.NewVec3(4, 0, 0),
		vertical:        core.NewVec3(0, 2, 0),
		u:               core.NewVec3(1, 0, 0),
		v:               core.NewVec3(0, 1, 0),
	}
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1.
// With a non-zero aperture the origin is jittered across the lens disk.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		origin = origin.Add(c.u.Multiply(rd.X)).Add(c.v.Multiply(rd.Y))
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}
