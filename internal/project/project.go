// Package project aggregates rooms into scan projects and keeps the
// project-level totals consistent with the room list.
//
// All operations are pure: they return a new project value and never mutate
// their input, so a partially updated project is never observable and the
// totals are always a function of the room list.
package project

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/selter2001/hause-scanner/internal/geometry"
	"github.com/selter2001/hause-scanner/internal/room"
	"github.com/selter2001/hause-scanner/internal/timeutil"
)

// DefaultName is the placeholder project name until the user renames it.
const DefaultName = "New Scan"

// RoomSpacing is the conventional x-axis offset applied per existing room
// when a new room is staged onto the building plan, so appended rooms do not
// land on top of each other.
const RoomSpacing = 6.0

// ScanProject is an ordered collection of rooms sharing one building-plan
// coordinate space. TotalArea and TotalWallArea are always recomputed from
// the full room list, never incrementally adjusted, so floating-point drift
// cannot accumulate across edits.
type ScanProject struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Rooms         []room.Room `json:"rooms"`
	TotalArea     float64     `json:"totalArea"`
	TotalWallArea float64     `json:"totalWallArea"`
}

// Aggregator applies project mutations with a consistent clock for the
// updatedAt timestamp.
type Aggregator struct {
	clock timeutil.Clock
}

// NewAggregator creates an Aggregator. A nil clock falls back to real time.
func NewAggregator(clock timeutil.Clock) *Aggregator {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Aggregator{clock: clock}
}

// New creates a project containing the first confirmed room.
func (a *Aggregator) New(name string, first room.Room) ScanProject {
	if name == "" {
		name = DefaultName
	}
	now := a.clock.Now()
	p := ScanProject{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Rooms:     []room.Room{first},
	}
	return withTotals(p)
}

// Rename returns the project with a new name.
func (a *Aggregator) Rename(p ScanProject, name string) ScanProject {
	p.Name = name
	p.UpdatedAt = a.clock.Now()
	return p
}

// StageRoom assigns the conventional placement and palette colour for a room
// about to be appended: offset along x by RoomSpacing per existing room, and
// the palette colour indexed by the pre-append room count.
func (a *Aggregator) StageRoom(p ScanProject, r room.Room) room.Room {
	n := len(p.Rooms)
	r = r.Reposition(room.Position{X: float64(n) * RoomSpacing})
	r.Color = room.ColorFor(n)
	return r
}

// AddRoom appends r to the project, preserving order, and recomputes both
// totals from scratch. The caller assigns the room's position and colour
// first (see StageRoom).
func (a *Aggregator) AddRoom(p ScanProject, r room.Room) ScanProject {
	rooms := make([]room.Room, 0, len(p.Rooms)+1)
	rooms = append(rooms, p.Rooms...)
	rooms = append(rooms, r)
	p.Rooms = rooms
	p.UpdatedAt = a.clock.Now()
	return withTotals(p)
}

// UpdateRoom replaces the room with a matching id in place, keeping order,
// and recomputes totals. If no room matches, the project is returned
// unchanged; "not found = unchanged" is the documented policy, not an error.
func (a *Aggregator) UpdateRoom(p ScanProject, updated room.Room) ScanProject {
	idx := indexOf(p.Rooms, updated.ID)
	if idx < 0 {
		return p
	}
	rooms := make([]room.Room, len(p.Rooms))
	copy(rooms, p.Rooms)
	rooms[idx] = updated
	p.Rooms = rooms
	p.UpdatedAt = a.clock.Now()
	return withTotals(p)
}

// UpdateRoomPosition moves or rotates a room on the building plan. Position
// never affects measurements, but the totals are still recomputed for
// uniformity with every other mutation. Missing ids leave the project
// unchanged.
func (a *Aggregator) UpdateRoomPosition(p ScanProject, roomID string, pos room.Position) ScanProject {
	idx := indexOf(p.Rooms, roomID)
	if idx < 0 {
		return p
	}
	rooms := make([]room.Room, len(p.Rooms))
	copy(rooms, p.Rooms)
	rooms[idx] = rooms[idx].Reposition(pos)
	p.Rooms = rooms
	p.UpdatedAt = a.clock.Now()
	return withTotals(p)
}

// RemoveRoom deletes the room with the given id. Removing the last room
// leaves a project with totals of 0. Missing ids leave the project
// unchanged.
func (a *Aggregator) RemoveRoom(p ScanProject, roomID string) ScanProject {
	idx := indexOf(p.Rooms, roomID)
	if idx < 0 {
		return p
	}
	rooms := make([]room.Room, 0, len(p.Rooms)-1)
	rooms = append(rooms, p.Rooms[:idx]...)
	rooms = append(rooms, p.Rooms[idx+1:]...)
	p.Rooms = rooms
	p.UpdatedAt = a.clock.Now()
	return withTotals(p)
}

// Room returns the room with the given id, if present.
func (p ScanProject) Room(roomID string) (room.Room, bool) {
	idx := indexOf(p.Rooms, roomID)
	if idx < 0 {
		return room.Room{}, false
	}
	return p.Rooms[idx], true
}

// WithRecomputedTotals returns p with both totals recomputed from its rooms,
// leaving timestamps alone. Used when a project is rehydrated from storage.
func WithRecomputedTotals(p ScanProject) ScanProject {
	return withTotals(p)
}

func withTotals(p ScanProject) ScanProject {
	floorAreas := make([]float64, len(p.Rooms))
	wallAreas := make([]float64, len(p.Rooms))
	for i, r := range p.Rooms {
		floorAreas[i] = r.Floor.Area
		wallAreas[i] = r.TotalWallArea
	}
	p.TotalArea = geometry.Round(floats.Sum(floorAreas))
	p.TotalWallArea = geometry.Round(floats.Sum(wallAreas))
	return p
}

func indexOf(rooms []room.Room, id string) int {
	for i, r := range rooms {
		if r.ID == id {
			return i
		}
	}
	return -1
}
