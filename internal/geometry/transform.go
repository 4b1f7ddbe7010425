package geometry

import "math"

// PlaceVertices maps a room's local floor-plane vertices into the shared
// building-plan space: each vertex is rotated about the polygon centroid by
// rotationDeg degrees, then translated by (dx, dy).
//
// Placement is a transform-on-read. It is never baked back into stored
// vertices, which keeps a room's intrinsic measurements invariant under
// repositioning.
func PlaceVertices(vertices []Point2D, dx, dy, rotationDeg float64) []Point2D {
	if len(vertices) == 0 {
		return nil
	}
	rad := rotationDeg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	c := Centroid(vertices)

	placed := make([]Point2D, len(vertices))
	for i, v := range vertices {
		rx := (v.X-c.X)*cos - (v.Y-c.Y)*sin + c.X
		ry := (v.X-c.X)*sin + (v.Y-c.Y)*cos + c.Y
		placed[i] = Point2D{X: rx + dx, Y: ry + dy}
	}
	return placed
}

// Bounds returns the axis-aligned bounding box of the vertices as
// (minX, minY, maxX, maxY). All zeros for an empty list.
func Bounds(vertices []Point2D) (minX, minY, maxX, maxY float64) {
	if len(vertices) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = vertices[0].X, vertices[0].Y
	maxX, maxY = minX, minY
	for _, v := range vertices[1:] {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	return minX, minY, maxX, maxY
}
