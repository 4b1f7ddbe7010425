package scan

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/selter2001/hause-scanner/internal/geometry"
)

// Default simulated room dimensions, matching the capability's preview
// bundle: a 4.2m x 3.8m room with a 2.65m ceiling.
const (
	simDefaultWidth  = 4.2
	simDefaultDepth  = 3.8
	simDefaultHeight = 2.65
)

// simWallsPerRoom is how many walls the simulated rectangular room reports.
const simWallsPerRoom = 4

// Simulator is the substitutable scanning capability used wherever the
// native framework is unavailable. A session advances on a ticker, reporting
// plausible intermediate progress, and completes with a structurally valid
// result bundle.
type Simulator struct {
	interval time.Duration
	step     float64
	rng      *rand.Rand
	random   bool

	mu       sync.Mutex
	progress Progress
	bundle   *ResultBundle
	stop     chan struct{}
	complete chan CompleteEvent
}

// SimOption configures a Simulator.
type SimOption func(*Simulator)

// WithInterval sets the tick interval of a simulated session. Tests use a
// short interval to complete quickly.
func WithInterval(d time.Duration) SimOption {
	return func(s *Simulator) { s.interval = d }
}

// WithStep fixes the progress increment per tick instead of the default
// randomized 2-7%.
func WithStep(step float64) SimOption {
	return func(s *Simulator) { s.step = step }
}

// WithRandomRoom makes each completed scan produce randomized but
// dimensionally plausible room sizes, seeded for reproducibility. Without
// this option every scan reports the fixed preview room.
func WithRandomRoom(seed int64) SimOption {
	return func(s *Simulator) {
		s.random = true
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// NewSimulator creates an idle Simulator.
func NewSimulator(opts ...SimOption) *Simulator {
	s := &Simulator{
		interval: 200 * time.Millisecond,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		progress: Progress{Status: StatusIdle},
		complete: make(chan CompleteEvent, 4),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsSupported reports the simulated capability as available.
func (s *Simulator) IsSupported() Support {
	return Support{Supported: true, Version: "1.0 (simulated)"}
}

// StartScan begins a simulated session.
func (s *Simulator) StartScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress.Scanning {
		return ErrScanInProgress
	}
	s.progress = Progress{
		Scanning: true,
		Status:   StatusScanning,
		Message:  "Point the camera at the walls...",
	}
	s.stop = make(chan struct{})
	go s.run(s.stop)
	return nil
}

// StopScan cancels a running session. Partial state is discarded; no bundle
// is produced from an interrupted scan.
func (s *Simulator) StopScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.progress.Scanning {
		return ErrNotScanning
	}
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.progress = Progress{Status: StatusIdle}
	return nil
}

// Progress returns a snapshot of the current session.
func (s *Simulator) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Results returns the bundle of the last completed scan.
func (s *Simulator) Results() (ResultBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle == nil {
		return ResultBundle{}, ErrNoResults
	}
	return *s.bundle, nil
}

// Complete returns the completion event channel.
func (s *Simulator) Complete() <-chan CompleteEvent {
	return s.complete
}

// run advances a session until it completes or the stop channel closes.
func (s *Simulator) run(stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	percent := 0.0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		// a Stop racing this tick may have torn the session down while the
		// tick was pending; it must stay torn down
		select {
		case <-stop:
			s.mu.Unlock()
			return
		default:
		}
		step := s.step
		if step == 0 {
			step = s.rng.Float64()*5 + 2
		}
		percent += step

		if percent >= 100 {
			bundle := s.buildBundle()
			s.bundle = &bundle
			s.progress = Progress{
				Percent:       100,
				DetectedWalls: len(bundle.Walls),
				CurrentArea:   bundle.Measurements.TotalFloorArea,
				Status:        StatusComplete,
				Message:       "Scan complete",
			}
			event := CompleteEvent{
				WallCount: bundle.Measurements.WallCount,
				FloorArea: bundle.Measurements.TotalFloorArea,
				Status:    StatusComplete,
			}
			s.mu.Unlock()

			select {
			case s.complete <- event:
			default:
			}
			return
		}

		walls := int(percent / 15)
		if walls > simWallsPerRoom {
			walls = simWallsPerRoom
		}
		message := "Looking for walls..."
		if walls > 0 {
			message = fmt.Sprintf("Detected %d walls...", walls)
		}
		s.progress = Progress{
			Scanning:      true,
			Percent:       geometry.RoundTo(percent, 1),
			DetectedWalls: walls,
			CurrentArea:   geometry.RoundTo(float64(walls)*(8+s.rng.Float64()*4), 1),
			Status:        StatusScanning,
			Message:       message,
		}
		s.mu.Unlock()
	}
}

// buildBundle produces the result bundle for a completed simulated scan.
// Called with s.mu held.
func (s *Simulator) buildBundle() ResultBundle {
	width, depth, height := simDefaultWidth, simDefaultDepth, simDefaultHeight
	if s.random {
		width = geometry.Round(3 + s.rng.Float64()*3)
		depth = geometry.Round(2.5 + s.rng.Float64()*2.5)
		height = geometry.Round(2.4 + s.rng.Float64()*0.6)
	}

	vertices := []geometry.Point2D{
		{X: 0, Y: 0}, {X: width, Y: 0}, {X: width, Y: depth}, {X: 0, Y: depth},
	}

	walls := make([]WallMeasurement, 0, simWallsPerRoom)
	for i := 0; i < simWallsPerRoom; i++ {
		a := vertices[i]
		b := vertices[(i+1)%simWallsPerRoom]
		length := geometry.Round(geometry.Distance(a, b))
		walls = append(walls, WallMeasurement{
			ID:     fmt.Sprintf("wall-%d", i+1),
			Length: length,
			Height: height,
			Area:   geometry.Round(length * height),
			Position: geometry.Point3D{
				X: (a.X + b.X) / 2,
				Z: (a.Y + b.Y) / 2,
			},
			Corners: []geometry.Point3D{
				a.Lift(0), b.Lift(0), b.Lift(height), a.Lift(height),
			},
		})
	}

	floorArea := geometry.Round(width * depth)
	return ResultBundle{
		Walls: walls,
		Floors: []FloorMeasurement{{
			ID:       "floor-1",
			Width:    width,
			Depth:    depth,
			Area:     floorArea,
			Vertices: vertices,
		}},
		Measurements: Measurements{
			WallCount:      simWallsPerRoom,
			TotalWallArea:  geometry.Round(2 * (width + depth) * height),
			TotalFloorArea: floorArea,
			CeilingArea:    floorArea,
			Perimeter:      geometry.Round(2 * (width + depth)),
			Height:         height,
		},
		Metadata: Metadata{
			ScanDuration: 12.5,
			Timestamp:    time.Now(),
		},
	}
}
