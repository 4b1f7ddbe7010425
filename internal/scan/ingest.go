package scan

import (
	"github.com/selter2001/hause-scanner/internal/geometry"
	"github.com/selter2001/hause-scanner/internal/room"
)

// Placeholder footprint used when a bundle carries no usable floor outline,
// so downstream code never sees missing geometry. The user corrects the
// shape in the editor afterwards.
const (
	placeholderWidth = 4.0
	placeholderDepth = 3.0
)

// IngestBundle translates a scan result bundle into a derived Room. The
// bundle is normalized first; wall ids reported by the source are adopted so
// a wall keeps its identity from detection through editing.
//
// A missing or degenerate floor outline is replaced with a rectangular
// placeholder built from the source's width/depth measurements, falling back
// to a fixed default when those are absent too.
func IngestBundle(b ResultBundle) room.Room {
	b = Normalize(b)

	vertices := floorOutline(b)
	wallIDs := make([]string, len(b.Walls))
	for i, w := range b.Walls {
		wallIDs[i] = w.ID
	}

	return room.Derive(vertices, b.Measurements.Height, room.WithWallIDs(wallIDs))
}

func floorOutline(b ResultBundle) []geometry.Point2D {
	if len(b.Floors) > 0 && len(b.Floors[0].Vertices) >= 3 {
		return b.Floors[0].Vertices
	}

	width, depth := placeholderWidth, placeholderDepth
	if len(b.Floors) > 0 && b.Floors[0].Width > 0 && b.Floors[0].Depth > 0 {
		width = b.Floors[0].Width
		depth = b.Floors[0].Depth
	}
	return []geometry.Point2D{
		{X: 0, Y: 0}, {X: width, Y: 0}, {X: width, Y: depth}, {X: 0, Y: depth},
	}
}
