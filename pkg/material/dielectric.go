package material

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material. It panics if the
// refractive index is not positive.
func NewDielectric(refractiveIndex float64) *Dielectric {
	if !(refractiveIndex > 0) {
		panic(fmt.Sprintf("material: refractive index must be positive, got %v", refractiveIndex))
	}
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements the Material interface for dielectric scattering.
// Exactly one ray is produced: reflection is chosen with the Schlick
// probability, or always under total internal reflection.
func (d *Dielectric) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	// Clear glass does not tint
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	unitDirection := rayIn.Direction.Normalize()

	// Hit normals point outward; a positive dot means the ray is leaving the material
	var normal core.Vec3
	var niOverNt float64
	if unitDirection.Dot(hit.Normal) > 0 {
		normal = hit.Normal.Negate()
		niOverNt = d.RefractiveIndex
	} else {
		normal = hit.Normal
		niOverNt = 1.0 / d.RefractiveIndex
	}
	// Unscaled on exit too; Schlick takes the cosine on the incident side
	cosine := -unitDirection.Dot(normal)

	var direction core.Vec3
	if refracted, ok := Refract(unitDirection, normal, niOverNt); ok && sampler.Get1D() >= Schlick(cosine, d.RefractiveIndex) {
		direction = refracted
	} else {
		direction = Reflect(unitDirection, normal)
	}

	return core.ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: attenuation,
	}, true
}

// Reflect calculates the reflection of a vector v off a surface with normal n
func Reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// Refract bends the unit vector uv through a surface with unit normal n
// (facing against uv) using Snell's law. It reports false under total
// internal reflection, including the boundary case where the discriminant is zero.
func Refract(uv, n core.Vec3, niOverNt float64) (core.Vec3, bool) {
	dt := uv.Dot(n)
	discriminant := 1.0 - niOverNt*niOverNt*(1.0-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	refracted := uv.Subtract(n.Multiply(dt)).Multiply(niOverNt).Subtract(n.Multiply(math.Sqrt(discriminant)))
	return refracted, true
}

// Schlick calculates the Fresnel reflectance using Schlick's approximation
func Schlick(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
