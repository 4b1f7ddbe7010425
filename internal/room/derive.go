package room

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/selter2001/hause-scanner/internal/geometry"
)

// Option configures a Derive call.
type Option func(*deriveOptions)

type deriveOptions struct {
	id       string
	name     string
	wallIDs  []string
	position Position
	color    string
}

// WithID sets the room id instead of generating one.
func WithID(id string) Option {
	return func(o *deriveOptions) { o.id = id }
}

// WithName sets the room name instead of the default placeholder.
func WithName(name string) Option {
	return func(o *deriveOptions) { o.name = name }
}

// WithWalls preserves wall identity across a re-derivation: the new wall at
// each index keeps the id of the existing wall at the same index. This keeps
// UI selection state stable while a vertex is dragged.
func WithWalls(existing []Wall) Option {
	return func(o *deriveOptions) {
		ids := make([]string, len(existing))
		for i, w := range existing {
			ids[i] = w.ID
		}
		o.wallIDs = ids
	}
}

// WithWallIDs assigns wall ids by positional index, for scan sources that
// report their own wall identifiers.
func WithWallIDs(ids []string) Option {
	return func(o *deriveOptions) { o.wallIDs = ids }
}

// WithPosition sets the room's building-plan placement.
func WithPosition(p Position) Option {
	return func(o *deriveOptions) { o.position = p }
}

// WithColor sets the room's plan colour.
func WithColor(c string) Option {
	return func(o *deriveOptions) { o.color = c }
}

// Derive builds a fully consistent Room from a floor polygon and ceiling
// height. For each cyclic edge it produces a wall whose base endpoints are
// the 3D lift of the edge's vertices, with rounded length, area and the four
// face corners.
//
// Fewer than 3 vertices yields a degenerate room (floor area 0) rather than
// an error; callers that need a valid footprint must check Floor.Area > 0.
func Derive(vertices []geometry.Point2D, ceilingHeight float64, opts ...Option) Room {
	o := deriveOptions{name: DefaultName}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.New().String()
	}

	n := len(vertices)
	walls := make([]Wall, 0, n)
	for i := 0; i < n; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]
		var id string
		if i < len(o.wallIDs) && o.wallIDs[i] != "" {
			id = o.wallIDs[i]
		} else {
			id = uuid.New().String()
		}
		walls = append(walls, buildWall(id, a, b, ceilingHeight))
	}

	floorArea := geometry.Round(geometry.PolygonArea(vertices))

	wallAreas := make([]float64, n)
	wallLengths := make([]float64, n)
	for i, w := range walls {
		wallAreas[i] = w.Area
		wallLengths[i] = w.Length
	}

	return Room{
		ID:    o.id,
		Name:  o.name,
		Walls: walls,
		Floor: Floor{
			Area:     floorArea,
			Vertices: vertices,
		},
		Ceiling: Ceiling{
			Height: ceilingHeight,
			Area:   floorArea,
		},
		TotalWallArea: geometry.Round(floats.Sum(wallAreas)),
		Perimeter:     geometry.Round(floats.Sum(wallLengths)),
		Position:      o.position,
		Color:         o.color,
	}
}

// Rederive recomputes a room after a vertex edit, keeping its identity,
// name, placement, colour and wall ids.
func Rederive(r Room, vertices []geometry.Point2D) Room {
	return Derive(vertices, r.Ceiling.Height,
		WithID(r.ID),
		WithName(r.Name),
		WithWalls(r.Walls),
		WithPosition(r.Position),
		WithColor(r.Color),
	)
}

func buildWall(id string, a, b geometry.Point2D, height float64) Wall {
	length := geometry.Round(geometry.Distance(a, b))
	start := a.Lift(0)
	end := b.Lift(0)
	return Wall{
		ID:     id,
		Start:  start,
		End:    end,
		Height: height,
		Length: length,
		Area:   geometry.Round(length * height),
		Corners: []geometry.Point3D{
			start,
			end,
			b.Lift(height),
			a.Lift(height),
		},
	}
}
