package core

import "math/rand"

// MaxRejectionAttempts bounds the rejection samplers below. Each attempt
// succeeds with probability >= pi/6, so exhausting the budget means the
// sampler is broken rather than unlucky.
const MaxRejectionAttempts = 64

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator.
// A RandomSampler is not safe for concurrent use; give each worker its own.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// RandomInUnitSphere returns a point strictly inside the unit sphere by
// rejection sampling the enclosing cube. If MaxRejectionAttempts draws all
// land outside the sphere the zero vector is returned.
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for i := 0; i < MaxRejectionAttempts; i++ {
		s := sampler.Get3D()
		p := NewVec3(2*s.X-1, 2*s.Y-1, 2*s.Z-1)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
	return Vec3{}
}

// RandomInUnitDisk returns a point strictly inside the unit disk in the XY
// plane (for depth of field). Falls back to the origin like RandomInUnitSphere.
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for i := 0; i < MaxRejectionAttempts; i++ {
		s := sampler.Get2D()
		p := NewVec3(2*s.X-1, 2*s.Y-1, 0)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
	return Vec3{}
}
