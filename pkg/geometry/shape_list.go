package geometry

import "github.com/df07/go-sphere-tracer/pkg/core"

// ShapeList is a linear-scan aggregate of shapes
type ShapeList struct {
	Shapes []core.Shape
}

// NewShapeList creates an aggregate over the given shapes
func NewShapeList(shapes ...core.Shape) *ShapeList {
	return &ShapeList{Shapes: shapes}
}

// Add appends shapes to the list
func (l *ShapeList) Add(shapes ...core.Shape) {
	l.Shapes = append(l.Shapes, shapes...)
}

// Len returns the number of shapes in the list
func (l *ShapeList) Len() int {
	return len(l.Shapes)
}

// Hit returns the closest hit among all shapes. Each hit tightens the
// upper bound, so the result does not depend on the order of Shapes.
func (l *ShapeList) Hit(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	var closestHit *core.HitRecord
	closestSoFar := tMax

	for _, shape := range l.Shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}
