package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material core.Material
}

// NewSphere creates a new sphere. It panics if radius is not positive or
// material is nil; scene loaders validate their input before calling it.
func NewSphere(center core.Vec3, radius float64, material core.Material) *Sphere {
	if !(radius > 0) {
		panic(fmt.Sprintf("geometry: sphere radius must be positive, got %v", radius))
	}
	if material == nil {
		panic("geometry: sphere material must not be nil")
	}
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic a*t^2 + 2*halfB*t + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	// Tangent rays (discriminant == 0) count as misses
	discriminant := halfB*halfB - a*c
	if discriminant <= 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer root first; bounds are exclusive on both ends
	root := (-halfB - sqrtD) / a
	if !(root > tMin && root < tMax) {
		root = (-halfB + sqrtD) / a
		if !(root > tMin && root < tMax) {
			return nil, false
		}
	}

	point := ray.At(root)
	return &core.HitRecord{
		T:        root,
		Point:    point,
		Normal:   point.Subtract(s.Center).Divide(s.Radius),
		Material: s.Material,
	}, true
}
