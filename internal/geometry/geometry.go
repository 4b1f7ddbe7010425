// Package geometry provides the pure 2D kernel for room measurements:
// distances, shoelace polygon areas, perimeters, per-edge lengths, and the
// decimal rounding rule every derived measurement passes through.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// MeasurementDecimals is the number of decimal places all derived
// measurements are rounded to. Rounding to a fixed precision keeps display
// values stable and makes derived-value invariants checkable with exact
// equality.
const MeasurementDecimals = 2

// Point2D is a floor-plane coordinate in metres. A pure value with no
// identity.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3D is a wall corner or endpoint in metres. Y is the vertical axis;
// X and Z span the floor plane.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Lift maps a floor-plane point to 3D at the given height.
func (p Point2D) Lift(height float64) Point3D {
	return Point3D{X: p.X, Y: height, Z: p.Y}
}

// Distance returns the Euclidean distance between two floor-plane points.
func Distance(a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PolygonArea returns the unsigned area of the polygon described by the
// ordered vertices, using the shoelace formula. Fewer than 3 vertices is a
// degenerate polygon with area 0, not an error.
//
// Simplicity is not validated: a self-intersecting polygon produces a
// mathematically well-defined value that may not match the visual outline.
func PolygonArea(vertices []Point2D) float64 {
	n := len(vertices)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += vertices[i].X * vertices[j].Y
		area -= vertices[j].X * vertices[i].Y
	}
	return math.Abs(area / 2)
}

// PolygonPerimeter returns the sum of all cyclic edge lengths, or 0 for
// fewer than 2 vertices.
func PolygonPerimeter(vertices []Point2D) float64 {
	n := len(vertices)
	if n < 2 {
		return 0
	}
	perimeter := 0.0
	for i := 0; i < n; i++ {
		perimeter += Distance(vertices[i], vertices[(i+1)%n])
	}
	return perimeter
}

// EdgeLengths returns the rounded length of each cyclic edge. Used to
// resynchronise wall lengths after a vertex edit.
func EdgeLengths(vertices []Point2D) []float64 {
	n := len(vertices)
	if n == 0 {
		return nil
	}
	lengths := make([]float64, n)
	for i := 0; i < n; i++ {
		lengths[i] = Round(Distance(vertices[i], vertices[(i+1)%n]))
	}
	return lengths
}

// Centroid returns the vertex mean of the polygon, the reference point room
// rotation pivots around. Returns the zero point for an empty vertex list.
func Centroid(vertices []Point2D) Point2D {
	n := len(vertices)
	if n == 0 {
		return Point2D{}
	}
	var sx, sy float64
	for _, v := range vertices {
		sx += v.X
		sy += v.Y
	}
	return Point2D{X: sx / float64(n), Y: sy / float64(n)}
}

// Round rounds a measurement to MeasurementDecimals decimal places.
func Round(v float64) float64 {
	return RoundTo(v, MeasurementDecimals)
}

// RoundTo rounds v to the given number of decimal places, half away from
// zero.
func RoundTo(v float64, decimals int) float64 {
	return scalar.Round(v, decimals)
}
