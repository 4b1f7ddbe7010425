package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/selter2001/hause-scanner/internal/project"
	"github.com/selter2001/hause-scanner/internal/scan"
	"github.com/selter2001/hause-scanner/internal/store"
	"github.com/selter2001/hause-scanner/internal/testutil"
	"github.com/selter2001/hause-scanner/internal/timeutil"
)

func newTestServer(scanner scan.Scanner) *Server {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	return NewServer(scanner, store.NewMemoryStore(), project.NewAggregator(clock))
}

func (s *Server) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	return rec
}

// completeScan runs a full simulated scan so Results has a bundle.
func completeScan(t *testing.T, sim *scan.Simulator) {
	t.Helper()
	if err := sim.StartScan(); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	select {
	case <-sim.Complete():
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not complete in time")
	}
}

func fastSim() *scan.Simulator {
	return scan.NewSimulator(scan.WithInterval(time.Millisecond), scan.WithStep(60))
}

func TestScannerSupported(t *testing.T) {
	srv := newTestServer(scan.Unavailable{Reason: "no depth sensor"})

	rec := srv.do(testutil.NewJSONRequest(t, http.MethodGet, "/api/scanner/supported", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got scan.Support
	testutil.DecodeJSONBody(t, rec, &got)
	if got.Supported {
		t.Error("supported = true, want false")
	}
	if got.Reason != "no depth sensor" {
		t.Errorf("reason = %q", got.Reason)
	}
}

func TestScannerStart_Unsupported(t *testing.T) {
	srv := newTestServer(scan.Unavailable{Reason: "no depth sensor"})

	rec := srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/scanner/start", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusConflict)
}

func TestScannerStart_WhileScanningConflicts(t *testing.T) {
	// slow ticks so the first scan cannot complete before the second request
	sim := scan.NewSimulator(scan.WithInterval(time.Hour))
	srv := newTestServer(sim)

	rec := srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/scanner/start", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/scanner/start", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusConflict)

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/scanner/stop", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
}

func TestScannerLifecycle(t *testing.T) {
	sim := fastSim()
	srv := newTestServer(sim)

	rec := srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/scanner/start", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	select {
	case <-sim.Complete():
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not complete in time")
	}

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodGet, "/api/scanner/status", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var prog scan.Progress
	testutil.DecodeJSONBody(t, rec, &prog)
	if prog.Status != scan.StatusComplete {
		t.Errorf("status = %q, want complete", prog.Status)
	}

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodGet, "/api/scanner/results", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var bundle scan.ResultBundle
	testutil.DecodeJSONBody(t, rec, &bundle)
	if len(bundle.Walls) != 4 {
		t.Errorf("walls = %d, want 4", len(bundle.Walls))
	}
	if bundle.Measurements.TotalFloorArea != 15.96 {
		t.Errorf("floor area = %v, want 15.96", bundle.Measurements.TotalFloorArea)
	}
}

func TestScannerResults_BeforeAnyScan(t *testing.T) {
	srv := newTestServer(fastSim())

	rec := srv.do(testutil.NewJSONRequest(t, http.MethodGet, "/api/scanner/results", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusConflict)
}

func TestCreateProject_NoResults(t *testing.T) {
	srv := newTestServer(fastSim())

	rec := srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/projects", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusConflict)
}

func TestProjectWorkflow(t *testing.T) {
	sim := fastSim()
	srv := newTestServer(sim)

	// confirm a completed scan into a new project
	completeScan(t, sim)
	rec := srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/projects",
		map[string]string{"name": "My Flat"}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusCreated)

	var p project.ScanProject
	testutil.DecodeJSONBody(t, rec, &p)
	if p.Name != "My Flat" {
		t.Errorf("name = %q, want My Flat", p.Name)
	}
	if len(p.Rooms) != 1 {
		t.Fatalf("rooms = %d, want 1", len(p.Rooms))
	}
	if p.TotalArea != 15.96 {
		t.Errorf("total area = %v, want 15.96", p.TotalArea)
	}
	if p.TotalWallArea != 42.4 {
		t.Errorf("total wall area = %v, want 42.4", p.TotalWallArea)
	}

	// scan a second room and append it
	completeScan(t, sim)
	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/projects/"+p.ID+"/rooms", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.DecodeJSONBody(t, rec, &p)
	if len(p.Rooms) != 2 {
		t.Fatalf("rooms = %d, want 2", len(p.Rooms))
	}
	if p.Rooms[1].Position.X != project.RoomSpacing {
		t.Errorf("second room x offset = %v, want %v", p.Rooms[1].Position.X, project.RoomSpacing)
	}
	if p.TotalArea != 31.92 {
		t.Errorf("total area = %v, want 31.92", p.TotalArea)
	}

	// rename a room
	roomID := p.Rooms[1].ID
	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPut,
		"/api/projects/"+p.ID+"/rooms/"+roomID+"/name", map[string]string{"name": "Kitchen"}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.DecodeJSONBody(t, rec, &p)
	if p.Rooms[1].Name != "Kitchen" {
		t.Errorf("room name = %q, want Kitchen", p.Rooms[1].Name)
	}

	// move it on the plan; measurements must not change
	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPut,
		"/api/projects/"+p.ID+"/rooms/"+roomID+"/position",
		map[string]float64{"x": 10, "y": 5, "rotation": 90}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.DecodeJSONBody(t, rec, &p)
	if p.Rooms[1].Position.Rotation != 90 {
		t.Errorf("rotation = %v, want 90", p.Rooms[1].Position.Rotation)
	}
	if p.TotalArea != 31.92 {
		t.Errorf("total area after move = %v, want 31.92", p.TotalArea)
	}

	// edit the floor outline of the first room; walls and totals re-derive
	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPut,
		"/api/projects/"+p.ID+"/rooms/"+p.Rooms[0].ID+"/vertices",
		map[string]interface{}{"vertices": []map[string]float64{
			{"x": 0, "y": 0}, {"x": 5, "y": 0}, {"x": 5, "y": 4}, {"x": 0, "y": 4},
		}}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.DecodeJSONBody(t, rec, &p)
	if p.Rooms[0].Floor.Area != 20.0 {
		t.Errorf("edited floor area = %v, want 20.0", p.Rooms[0].Floor.Area)
	}
	if p.TotalArea != 35.96 {
		t.Errorf("total area after edit = %v, want 35.96", p.TotalArea)
	}

	// the plan view places both rooms
	rec = srv.do(testutil.NewJSONRequest(t, http.MethodGet, "/api/projects/"+p.ID+"/plan", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var plan planResponse
	testutil.DecodeJSONBody(t, rec, &plan)
	if len(plan.Rooms) != 2 {
		t.Fatalf("plan rooms = %d, want 2", len(plan.Rooms))
	}
	if plan.Bounds.MaxX <= plan.Bounds.MinX || plan.Bounds.MaxY <= plan.Bounds.MinY {
		t.Errorf("degenerate plan bounds: %+v", plan.Bounds)
	}

	// remove the second room; totals drop back
	rec = srv.do(testutil.NewJSONRequest(t, http.MethodDelete,
		"/api/projects/"+p.ID+"/rooms/"+roomID, nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.DecodeJSONBody(t, rec, &p)
	if len(p.Rooms) != 1 {
		t.Fatalf("rooms after delete = %d, want 1", len(p.Rooms))
	}
	if p.TotalArea != 20.0 {
		t.Errorf("total area after delete = %v, want 20.0", p.TotalArea)
	}

	// delete the project
	rec = srv.do(testutil.NewJSONRequest(t, http.MethodDelete, "/api/projects/"+p.ID, nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNoContent)

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodGet, "/api/projects/"+p.ID, nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestRenameProject(t *testing.T) {
	sim := fastSim()
	srv := newTestServer(sim)

	completeScan(t, sim)
	rec := srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/projects", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusCreated)
	var p project.ScanProject
	testutil.DecodeJSONBody(t, rec, &p)
	if p.Name != project.DefaultName {
		t.Errorf("default name = %q, want %q", p.Name, project.DefaultName)
	}

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPut, "/api/projects/"+p.ID,
		map[string]string{"name": "Ground Floor"}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.DecodeJSONBody(t, rec, &p)
	if p.Name != "Ground Floor" {
		t.Errorf("name = %q, want Ground Floor", p.Name)
	}

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPut, "/api/projects/"+p.ID,
		map[string]string{"name": ""}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestRoomEndpoints_NotFound(t *testing.T) {
	sim := fastSim()
	srv := newTestServer(sim)

	completeScan(t, sim)
	rec := srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/projects", nil))
	var p project.ScanProject
	testutil.DecodeJSONBody(t, rec, &p)

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPut,
		"/api/projects/"+p.ID+"/rooms/nope/name", map[string]string{"name": "X"}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodDelete,
		"/api/projects/"+p.ID+"/rooms/nope", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPut,
		"/api/projects/nope/rooms/also-nope/position", map[string]float64{"x": 1}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestVerticesUpdate_RejectsDegenerate(t *testing.T) {
	sim := fastSim()
	srv := newTestServer(sim)

	completeScan(t, sim)
	rec := srv.do(testutil.NewJSONRequest(t, http.MethodPost, "/api/projects", nil))
	var p project.ScanProject
	testutil.DecodeJSONBody(t, rec, &p)

	rec = srv.do(testutil.NewJSONRequest(t, http.MethodPut,
		"/api/projects/"+p.ID+"/rooms/"+p.Rooms[0].ID+"/vertices",
		map[string]interface{}{"vertices": []map[string]float64{{"x": 0, "y": 0}, {"x": 1, "y": 1}}}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestListProjects_Empty(t *testing.T) {
	srv := newTestServer(fastSim())

	rec := srv.do(testutil.NewJSONRequest(t, http.MethodGet, "/api/projects", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var projects []project.ScanProject
	testutil.DecodeJSONBody(t, rec, &projects)
	if len(projects) != 0 {
		t.Errorf("projects = %d, want 0", len(projects))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(fastSim())

	paths := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/scanner/supported"},
		{http.MethodGet, "/api/scanner/start"},
		{http.MethodGet, "/api/scanner/stop"},
		{http.MethodPost, "/api/scanner/status"},
		{http.MethodPost, "/api/scanner/results"},
		{http.MethodDelete, "/api/projects"},
	}
	for _, tt := range paths {
		rec := srv.do(testutil.NewJSONRequest(t, tt.method, tt.path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want 405", tt.method, tt.path, rec.Code)
		}
	}
}
