package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// stubMaterial absorbs everything; geometry tests only care about identity
type stubMaterial struct{ name string }

func (m *stubMaterial) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	return core.ScatterResult{}, false
}

func newTestSphere(center core.Vec3, radius float64) *Sphere {
	return NewSphere(center, radius, &stubMaterial{name: "stub"})
}

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := newTestSphere(core.NewVec3(0, 0, 0), 1.0)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_OutsideAndInside(t *testing.T) {
	sphere := newTestSphere(core.NewVec3(0, 0, 0), 1.0)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedNormal core.Vec3
	}{
		{
			name:           "hit from outside",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			// Normals always point outward, even when the ray starts inside
			name:           "hit from inside",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "unnormalized direction",
			rayOrigin:      core.NewVec3(0, 3, 0),
			rayDirection:   core.NewVec3(0, -2, 0),
			expectedT:      1.0,
			expectedNormal: core.NewVec3(0, 1, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if !vecNear(hit.Normal, tt.expectedNormal, 1e-9) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
			if !vecNear(hit.Point, ray.At(hit.T), 1e-12) {
				t.Errorf("Hit point %v is not ray.At(%f)", hit.Point, hit.T)
			}
		})
	}
}

func TestSphere_Hit_ThroughCenterNormal(t *testing.T) {
	radius := 2.5
	sphere := newTestSphere(core.NewVec3(0, 0, 0), radius)
	ray := core.NewRay(core.NewVec3(-3, -4, 10), core.NewVec3(3, 4, -10))

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected ray through center to hit")
	}

	if math.Abs(hit.Normal.Dot(hit.Normal)-1.0) > 1e-9 {
		t.Errorf("Expected unit normal, got |n|^2=%f", hit.Normal.Dot(hit.Normal))
	}

	// Normal must be parallel to point - center
	radial := hit.Point.Subtract(sphere.Center)
	if radial.Cross(hit.Normal).Length() > 1e-9 || radial.Dot(hit.Normal) <= 0 {
		t.Errorf("Normal %v not parallel to point-center %v", hit.Normal, radial)
	}
}

func TestSphere_Hit_NormalsAreUnitLength(t *testing.T) {
	sampler := core.NewSeededSampler(1)
	sphere := newTestSphere(core.NewVec3(0.3, -0.2, -1), 0.7)

	hits := 0
	for i := 0; i < 500; i++ {
		origin := core.RandomInUnitSphere(sampler).Multiply(5)
		target := sphere.Center.Add(core.RandomInUnitSphere(sampler).Multiply(0.5))
		ray := core.NewRay(origin, target.Subtract(origin))

		if hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1)); isHit {
			hits++
			if math.Abs(hit.Normal.Dot(hit.Normal)-1.0) > 1e-9 {
				t.Fatalf("Non-unit normal %v on iteration %d", hit.Normal, i)
			}
		}
	}
	if hits == 0 {
		t.Fatal("Expected at least some hits")
	}
}

func TestSphere_Hit_TangentIsMiss(t *testing.T) {
	sphere := newTestSphere(core.NewVec3(0, 0, 0), 1.0)
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))

	if hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1)); isHit {
		t.Errorf("Expected tangent ray to miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := newTestSphere(core.NewVec3(0, 0, 0), 1.0)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	tests := []struct {
		name      string
		tMin      float64
		tMax      float64
		expectHit bool
		expectedT float64
	}{
		{"tMax before near root", 0.001, 0.5, false, 0},
		{"tMin after far root", 3.5, 1000.0, false, 0},
		{"tMin skips near root", 1.5, 1000.0, true, 3.0},
		{"tMax equal to near root is exclusive", 0.001, 1.0, false, 0},
		{"tMin equal to near root falls back to far root", 1.0, 1000.0, true, 3.0},
		{"tMax equal to far root is exclusive", 1.5, 3.0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(ray, tt.tMin, tt.tMax)
			if isHit != tt.expectHit {
				t.Fatalf("Expected hit=%t, got %t", tt.expectHit, isHit)
			}
			if isHit && math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
		})
	}
}

func TestSphere_Hit_CarriesMaterial(t *testing.T) {
	mat := &stubMaterial{name: "marker"}
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, mat)

	hit, isHit := sphere.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit")
	}
	if hit.Material != mat {
		t.Errorf("Expected hit record to reference the sphere's material")
	}
}

func TestNewSphere_InvalidRadiusPanics(t *testing.T) {
	for _, radius := range []float64{0, -1, math.NaN()} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Expected panic for radius %v", radius)
				}
			}()
			NewSphere(core.Vec3{}, radius, &stubMaterial{})
		}()
	}
}
