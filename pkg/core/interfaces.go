package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// HitRecord contains information about a ray-object intersection.
// Normal is unit length and points outward from the surface that was hit;
// it is not flipped to face the ray.
type HitRecord struct {
	T        float64  // Parameter t along the ray
	Point    Vec3     // Point of intersection
	Normal   Vec3     // Outward surface normal at intersection
	Material Material // Material of the hit object
}

// Shape is anything a ray can be intersected with
type Shape interface {
	// Hit returns the nearest intersection with t strictly inside (tMin, tMax)
	Hit(ray Ray, tMin, tMax float64) (*HitRecord, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   Ray  // The outgoing ray
	Attenuation Vec3 // Per-channel color attenuation
}

// Material decides how an incoming ray leaves a surface.
// A false return means the ray was absorbed.
type Material interface {
	Scatter(rayIn Ray, hit HitRecord, sampler Sampler) (ScatterResult, bool)
}

// Camera generates primary rays for normalized image coordinates (s, t) in [0,1]
type Camera interface {
	GetRay(s, t float64, sampler Sampler) Ray
}

// Integrator computes the color carried back along a camera ray
type Integrator interface {
	RayColor(ray Ray, scene Scene, sampler Sampler) Vec3
}
