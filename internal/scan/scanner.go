// Package scan defines the boundary to the LiDAR scanning capability and
// the ingestion of its measurement bundles into the room model.
//
// The capability itself is opaque: on a supported device it is backed by the
// native room-scanning framework, elsewhere by the Simulator. Both sides are
// used identically through the Scanner interface.
package scan

import (
	"errors"
	"time"

	"github.com/selter2001/hause-scanner/internal/geometry"
)

var (
	// ErrNotSupported is returned by session controls when the scanning
	// capability is unavailable on this device.
	ErrNotSupported = errors.New("scanning capability not supported")

	// ErrScanInProgress is returned by StartScan while a session is running.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrNotScanning is returned by StopScan when no session is running.
	ErrNotScanning = errors.New("no scan in progress")

	// ErrNoResults is returned by Results before a scan has completed.
	// Requesting results early is a caller precondition violation, not a
	// silently defaulted state.
	ErrNoResults = errors.New("no scan results available")
)

// Status describes the scan session state machine.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusScanning   Status = "scanning"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Support is the capability probe result. Unsupported capability is a
// structured value, never an error: callers check before starting a scan.
type Support struct {
	Supported bool   `json:"supported"`
	Version   string `json:"version"`
	Reason    string `json:"reason,omitempty"`
}

// Progress is a snapshot of a running session, suitable for polling from a
// client while the scan runs.
type Progress struct {
	Scanning      bool    `json:"isScanning"`
	Percent       float64 `json:"progress"`
	DetectedWalls int     `json:"detectedWalls"`
	CurrentArea   float64 `json:"currentArea"`
	Status        Status  `json:"status"`
	Message       string  `json:"message,omitempty"`
}

// CompleteEvent is the one-shot notification delivered when a scan finishes.
type CompleteEvent struct {
	WallCount int     `json:"wallCount"`
	FloorArea float64 `json:"floorArea"`
	Status    Status  `json:"status"`
}

// WallMeasurement is one detected wall in a result bundle.
type WallMeasurement struct {
	ID       string             `json:"id"`
	Length   float64            `json:"length"`
	Height   float64            `json:"height"`
	Area     float64            `json:"area"`
	Position geometry.Point3D   `json:"position"`
	Corners  []geometry.Point3D `json:"corners"`
}

// FloorMeasurement is one detected floor surface in a result bundle.
type FloorMeasurement struct {
	ID       string             `json:"id"`
	Width    float64            `json:"width"`
	Depth    float64            `json:"depth"`
	Area     float64            `json:"area"`
	Position geometry.Point3D   `json:"position"`
	Vertices []geometry.Point2D `json:"vertices"`
}

// Measurements is the source's flat aggregate summary. The source computes
// these authoritatively; ingestion re-rounds them but does not re-derive.
type Measurements struct {
	WallCount      int     `json:"wallCount"`
	TotalWallArea  float64 `json:"totalWallArea"`
	TotalFloorArea float64 `json:"totalFloorArea"`
	CeilingArea    float64 `json:"ceilingArea"`
	Perimeter      float64 `json:"perimeter"`
	Height         float64 `json:"height"`
}

// Metadata describes the scan session that produced a bundle.
type Metadata struct {
	ScanDuration float64   `json:"scanDuration"`
	Timestamp    time.Time `json:"timestamp"`
}

// ResultBundle is the raw output of a completed scan.
type ResultBundle struct {
	Walls        []WallMeasurement  `json:"walls"`
	Floors       []FloorMeasurement `json:"floors"`
	Measurements Measurements       `json:"measurements"`
	Metadata     Metadata           `json:"metadata"`
}

// Scanner is the session-control surface of the scanning capability.
type Scanner interface {
	// IsSupported probes whether scanning can run on this device.
	IsSupported() Support

	// StartScan begins a session.
	StartScan() error

	// StopScan cancels a running session, discarding partial state.
	StopScan() error

	// Progress returns a snapshot of the current session.
	Progress() Progress

	// Results returns the bundle of the last completed scan, or ErrNoResults.
	Results() (ResultBundle, error)

	// Complete returns the channel on which completion events are delivered.
	Complete() <-chan CompleteEvent
}

// Unavailable is the Scanner used where no scanning hardware exists. Every
// session control fails with ErrNotSupported; the probe carries the reason.
type Unavailable struct {
	Reason string
}

func (u Unavailable) IsSupported() Support {
	return Support{Supported: false, Version: "1.0", Reason: u.Reason}
}

func (u Unavailable) StartScan() error { return ErrNotSupported }

func (u Unavailable) StopScan() error { return ErrNotSupported }

func (u Unavailable) Progress() Progress { return Progress{Status: StatusIdle} }

func (u Unavailable) Results() (ResultBundle, error) {
	return ResultBundle{}, ErrNoResults
}

func (u Unavailable) Complete() <-chan CompleteEvent { return nil }

// Normalize re-rounds every aggregate numeric field of a bundle to the
// model's display precision (2 decimals; 1 for the scan duration). The
// source pre-rounds, but the bundle crosses a trust boundary and the model
// relies on rounded values for exact-equality invariants.
func Normalize(b ResultBundle) ResultBundle {
	walls := make([]WallMeasurement, len(b.Walls))
	for i, w := range b.Walls {
		w.Length = geometry.Round(w.Length)
		w.Height = geometry.Round(w.Height)
		w.Area = geometry.Round(w.Area)
		walls[i] = w
	}
	b.Walls = walls

	floors := make([]FloorMeasurement, len(b.Floors))
	for i, f := range b.Floors {
		f.Width = geometry.Round(f.Width)
		f.Depth = geometry.Round(f.Depth)
		f.Area = geometry.Round(f.Area)
		floors[i] = f
	}
	b.Floors = floors

	m := &b.Measurements
	m.TotalWallArea = geometry.Round(m.TotalWallArea)
	m.TotalFloorArea = geometry.Round(m.TotalFloorArea)
	m.CeilingArea = geometry.Round(m.CeilingArea)
	m.Perimeter = geometry.Round(m.Perimeter)
	m.Height = geometry.Round(m.Height)

	b.Metadata.ScanDuration = geometry.RoundTo(b.Metadata.ScanDuration, 1)
	return b
}
