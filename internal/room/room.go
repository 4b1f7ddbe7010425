// Package room holds the room measurement model: walls, floor, ceiling and
// the derivation rules that keep them consistent with the floor polygon.
package room

import (
	"github.com/selter2001/hause-scanner/internal/geometry"
)

// DefaultName is the placeholder name for a room until the user renames it
// or the scan source supplies a detected label.
const DefaultName = "New Room"

// Wall is one edge of the floor polygon extruded vertically. Length and area
// are derived from the endpoints and height, never set independently.
type Wall struct {
	ID     string           `json:"id"`
	Start  geometry.Point3D `json:"start"`
	End    geometry.Point3D `json:"end"`
	Height float64          `json:"height"`
	Length float64          `json:"length"`
	Area   float64          `json:"area"`
	// Corners is the wall's rectangular face in order:
	// base-start, base-end, top-end, top-start.
	Corners []geometry.Point3D `json:"corners"`
}

// Floor is the room footprint: an ordered simple polygon and its area.
type Floor struct {
	Area     float64            `json:"area"`
	Vertices []geometry.Point2D `json:"vertices"`
}

// Ceiling mirrors the floor footprint at the given height.
type Ceiling struct {
	Height float64 `json:"height"`
	Area   float64 `json:"area"`
}

// Position places a room's local origin in the shared building-plan space.
// Rotation is in degrees. It is applied transform-on-read by consumers and
// never baked into the stored vertices.
type Position struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// Room is one scanned or edited enclosed floor area. Walls correspond 1:1 to
// floor polygon edges in cyclic order: Walls[i] spans the edge from
// Floor.Vertices[i] to Floor.Vertices[(i+1) % n]. Derive is the only way to
// produce a well-formed Room; editing vertices requires a full re-derivation.
type Room struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Walls         []Wall   `json:"walls"`
	Floor         Floor    `json:"floor"`
	Ceiling       Ceiling  `json:"ceiling"`
	TotalWallArea float64  `json:"totalWallArea"`
	Perimeter     float64  `json:"perimeter"`
	Position      Position `json:"position"`
	Color         string   `json:"color"`
}

// Reposition returns a copy of the room placed at p. Intrinsic measurements
// (areas, lengths) are untouched.
func (r Room) Reposition(p Position) Room {
	r.Position = p
	return r
}

// Rename returns a copy of the room with the given name.
func (r Room) Rename(name string) Room {
	r.Name = name
	return r
}

// PlacedVertices returns the floor vertices mapped into building-plan space
// using the room's position.
func (r Room) PlacedVertices() []geometry.Point2D {
	return geometry.PlaceVertices(r.Floor.Vertices, r.Position.X, r.Position.Y, r.Position.Rotation)
}
