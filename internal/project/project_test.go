package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selter2001/hause-scanner/internal/geometry"
	"github.com/selter2001/hause-scanner/internal/room"
	"github.com/selter2001/hause-scanner/internal/timeutil"
)

func testRoom(t *testing.T, w, d, h float64) room.Room {
	t.Helper()
	vertices := []geometry.Point2D{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: d}, {X: 0, Y: d}}
	return room.Derive(vertices, h)
}

// assertTotals checks that the stored totals match a from-scratch
// recomputation over the room list.
func assertTotals(t *testing.T, p ScanProject) {
	t.Helper()
	var floorSum, wallSum float64
	for _, r := range p.Rooms {
		floorSum += r.Floor.Area
		wallSum += r.TotalWallArea
	}
	assert.Equal(t, geometry.Round(floorSum), p.TotalArea)
	assert.Equal(t, geometry.Round(wallSum), p.TotalWallArea)
}

func TestNew(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	agg := NewAggregator(clock)

	first := testRoom(t, 5, 4, 2.7)
	p := agg.New("", first)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, clock.Now(), p.CreatedAt)
	assert.Equal(t, clock.Now(), p.UpdatedAt)
	require.Len(t, p.Rooms, 1)
	assert.Equal(t, 20.0, p.TotalArea)
	assert.Equal(t, 48.6, p.TotalWallArea)
	assertTotals(t, p)
}

func TestTotalsAfterEveryMutation(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	agg := NewAggregator(clock)

	p := agg.New("Apartment", testRoom(t, 5, 4, 2.7))
	assertTotals(t, p)

	p = agg.AddRoom(p, agg.StageRoom(p, testRoom(t, 4.2, 3.8, 2.65)))
	assertTotals(t, p)
	assert.Equal(t, 35.96, p.TotalArea)

	p = agg.AddRoom(p, agg.StageRoom(p, testRoom(t, 3, 2.5, 2.65)))
	assertTotals(t, p)

	// edit the middle room's footprint
	mid := p.Rooms[1]
	edited := room.Rederive(mid, []geometry.Point2D{
		{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 3.8}, {X: 0, Y: 3.8},
	})
	p = agg.UpdateRoom(p, edited)
	assertTotals(t, p)
	assert.Equal(t, 50.3, p.TotalArea) // 20 + 22.8 + 7.5

	// repositioning must not move the totals
	before := p.TotalArea
	p = agg.UpdateRoomPosition(p, p.Rooms[0].ID, room.Position{X: 12, Y: 3, Rotation: 90})
	assertTotals(t, p)
	assert.Equal(t, before, p.TotalArea)

	p = agg.RemoveRoom(p, p.Rooms[1].ID)
	assertTotals(t, p)
	require.Len(t, p.Rooms, 2)
}

func TestStageRoom_ColorAndPositionDeterminism(t *testing.T) {
	agg := NewAggregator(timeutil.NewMockClock(time.Now()))

	p := agg.New("", testRoom(t, 4, 3, 2.5))
	// the first room was added by New without staging; stage the rest
	for n := 1; n < 8; n++ {
		staged := agg.StageRoom(p, testRoom(t, 4, 3, 2.5))
		assert.Equal(t, room.ColorFor(n), staged.Color, "room %d colour", n)
		assert.Equal(t, float64(n)*RoomSpacing, staged.Position.X, "room %d offset", n)
		assert.Equal(t, 0.0, staged.Position.Y)
		p = agg.AddRoom(p, staged)
	}
}

func TestUpdateRoom_MissingIDIsNoOp(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	agg := NewAggregator(clock)
	p := agg.New("Flat", testRoom(t, 5, 4, 2.7))

	clock.Advance(time.Minute)
	ghost := testRoom(t, 2, 2, 2.5)
	p2 := agg.UpdateRoom(p, ghost)
	assert.Equal(t, p, p2, "unknown id leaves the project unchanged")

	p3 := agg.UpdateRoomPosition(p, "no-such-room", room.Position{X: 1})
	assert.Equal(t, p, p3)

	p4 := agg.RemoveRoom(p, "no-such-room")
	assert.Equal(t, p, p4)
}

func TestRemoveRoom_LastRoomZeroesTotals(t *testing.T) {
	agg := NewAggregator(timeutil.NewMockClock(time.Now()))
	p := agg.New("", testRoom(t, 5, 4, 2.7))

	p = agg.RemoveRoom(p, p.Rooms[0].ID)
	assert.Empty(t, p.Rooms)
	assert.Equal(t, 0.0, p.TotalArea)
	assert.Equal(t, 0.0, p.TotalWallArea)
}

func TestMutationsRefreshUpdatedAt(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(start)
	agg := NewAggregator(clock)

	p := agg.New("", testRoom(t, 5, 4, 2.7))

	clock.Advance(time.Minute)
	p = agg.AddRoom(p, agg.StageRoom(p, testRoom(t, 3, 3, 2.5)))
	assert.Equal(t, start.Add(time.Minute), p.UpdatedAt)
	assert.Equal(t, start, p.CreatedAt, "createdAt never moves")

	clock.Advance(time.Minute)
	p = agg.UpdateRoomPosition(p, p.Rooms[1].ID, room.Position{X: 9})
	assert.Equal(t, start.Add(2*time.Minute), p.UpdatedAt)

	clock.Advance(time.Minute)
	p = agg.Rename(p, "Ground Floor")
	assert.Equal(t, "Ground Floor", p.Name)
	assert.Equal(t, start.Add(3*time.Minute), p.UpdatedAt)
}

func TestOperationsArePure(t *testing.T) {
	agg := NewAggregator(timeutil.NewMockClock(time.Now()))
	p := agg.New("", testRoom(t, 5, 4, 2.7))

	snapshotRooms := len(p.Rooms)
	snapshotTotal := p.TotalArea

	_ = agg.AddRoom(p, agg.StageRoom(p, testRoom(t, 3, 3, 2.5)))
	_ = agg.RemoveRoom(p, p.Rooms[0].ID)
	_ = agg.UpdateRoomPosition(p, p.Rooms[0].ID, room.Position{X: 50})

	assert.Len(t, p.Rooms, snapshotRooms, "input project must not be mutated")
	assert.Equal(t, snapshotTotal, p.TotalArea)
	assert.Equal(t, room.Position{}, p.Rooms[0].Position)
}

func TestRoomLookup(t *testing.T) {
	agg := NewAggregator(timeutil.NewMockClock(time.Now()))
	p := agg.New("", testRoom(t, 5, 4, 2.7))

	got, ok := p.Room(p.Rooms[0].ID)
	require.True(t, ok)
	assert.Equal(t, p.Rooms[0].ID, got.ID)

	_, ok = p.Room("missing")
	assert.False(t, ok)
}

func TestWithRecomputedTotals(t *testing.T) {
	agg := NewAggregator(timeutil.NewMockClock(time.Now()))
	p := agg.New("", testRoom(t, 5, 4, 2.7))

	// simulate stale persisted totals
	p.TotalArea = 0
	p.TotalWallArea = 0

	p = WithRecomputedTotals(p)
	assert.Equal(t, 20.0, p.TotalArea)
	assert.Equal(t, 48.6, p.TotalWallArea)
}
