package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/selter2001/hause-scanner/internal/geometry"
	"github.com/selter2001/hause-scanner/internal/httputil"
	"github.com/selter2001/hause-scanner/internal/project"
	"github.com/selter2001/hause-scanner/internal/room"
	"github.com/selter2001/hause-scanner/internal/scan"
	"github.com/selter2001/hause-scanner/internal/store"
)

type createProjectRequest struct {
	Name string `json:"name"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type verticesRequest struct {
	Vertices []geometry.Point2D `json:"vertices"`
}

type positionRequest struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// planRoom is one room mapped into the shared building-plan space.
type planRoom struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Color    string             `json:"color"`
	Vertices []geometry.Point2D `json:"vertices"`
}

type planBounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

type planResponse struct {
	ProjectID string     `json:"projectId"`
	Rooms     []planRoom `json:"rooms"`
	Bounds    planBounds `json:"bounds"`
}

func (s *Server) projectsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listProjects(w)
	case http.MethodPost:
		s.createProject(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) listProjects(w http.ResponseWriter) {
	projects, err := s.store.ListProjects()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list projects: %v", err))
		return
	}
	if projects == nil {
		projects = []project.ScanProject{}
	}
	httputil.WriteJSONOK(w, projects)
}

// createProject confirms the latest completed scan into a new project. The
// scan result bundle is the source of the first room; without one there is
// nothing to create.
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if r.ContentLength != 0 {
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
	}

	bundle, err := s.scanner.Results()
	if err != nil {
		if errors.Is(err, scan.ErrNoResults) {
			httputil.Conflict(w, "no scan results to confirm")
			return
		}
		httputil.InternalServerError(w, "failed to read scan results")
		return
	}

	first := scan.IngestBundle(bundle)
	first.Color = room.ColorFor(0)
	p := s.agg.New(req.Name, first)

	if err := s.store.PutProject(p); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to save project: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) projectsResource(w http.ResponseWriter, r *http.Request) {
	segs := pathSegments(r.URL.Path)
	switch {
	case len(segs) == 1:
		s.projectByID(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "plan":
		s.projectPlan(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "rooms":
		s.appendRoom(w, r, segs[0])
	case len(segs) == 3 && segs[1] == "rooms":
		s.roomByID(w, r, segs[0], segs[2])
	case len(segs) == 4 && segs[1] == "rooms":
		s.roomAttribute(w, r, segs[0], segs[2], segs[3])
	default:
		httputil.NotFound(w, "unknown resource")
	}
}

// loadProject fetches a project, writing the error response itself when the
// lookup fails.
func (s *Server) loadProject(w http.ResponseWriter, id string) (project.ScanProject, bool) {
	p, err := s.store.GetProject(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.NotFound(w, "project not found")
		} else {
			httputil.InternalServerError(w, fmt.Sprintf("failed to load project: %v", err))
		}
		return project.ScanProject{}, false
	}
	return p, true
}

// saveAndRespond persists the mutated project and echoes it back.
func (s *Server) saveAndRespond(w http.ResponseWriter, p project.ScanProject) {
	if err := s.store.PutProject(p); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to save project: %v", err))
		return
	}
	httputil.WriteJSONOK(w, p)
}

func (s *Server) projectByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		p, ok := s.loadProject(w, id)
		if !ok {
			return
		}
		httputil.WriteJSONOK(w, p)

	case http.MethodPut:
		var req renameRequest
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if req.Name == "" {
			httputil.BadRequest(w, "name must not be empty")
			return
		}
		p, ok := s.loadProject(w, id)
		if !ok {
			return
		}
		s.saveAndRespond(w, s.agg.Rename(p, req.Name))

	case http.MethodDelete:
		if err := s.store.DeleteProject(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				httputil.NotFound(w, "project not found")
			} else {
				httputil.InternalServerError(w, fmt.Sprintf("failed to delete project: %v", err))
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		httputil.MethodNotAllowed(w)
	}
}

// appendRoom confirms the latest scan results as an additional room of an
// existing project. Placement offset and palette colour follow the room count.
func (s *Server) appendRoom(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	bundle, err := s.scanner.Results()
	if err != nil {
		if errors.Is(err, scan.ErrNoResults) {
			httputil.Conflict(w, "no scan results to confirm")
			return
		}
		httputil.InternalServerError(w, "failed to read scan results")
		return
	}

	p, ok := s.loadProject(w, projectID)
	if !ok {
		return
	}

	staged := s.agg.StageRoom(p, scan.IngestBundle(bundle))
	s.saveAndRespond(w, s.agg.AddRoom(p, staged))
}

func (s *Server) roomByID(w http.ResponseWriter, r *http.Request, projectID, roomID string) {
	if r.Method != http.MethodDelete {
		httputil.MethodNotAllowed(w)
		return
	}
	p, ok := s.loadProject(w, projectID)
	if !ok {
		return
	}
	if _, found := p.Room(roomID); !found {
		httputil.NotFound(w, "room not found")
		return
	}
	s.saveAndRespond(w, s.agg.RemoveRoom(p, roomID))
}

func (s *Server) roomAttribute(w http.ResponseWriter, r *http.Request, projectID, roomID, attr string) {
	if r.Method != http.MethodPut {
		httputil.MethodNotAllowed(w)
		return
	}

	p, ok := s.loadProject(w, projectID)
	if !ok {
		return
	}
	current, found := p.Room(roomID)
	if !found {
		httputil.NotFound(w, "room not found")
		return
	}

	switch attr {
	case "vertices":
		var req verticesRequest
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if len(req.Vertices) < 3 {
			httputil.BadRequest(w, "at least 3 vertices required")
			return
		}
		updated := room.Rederive(current, req.Vertices)
		s.saveAndRespond(w, s.agg.UpdateRoom(p, updated))

	case "position":
		var req positionRequest
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		pos := room.Position{X: req.X, Y: req.Y, Rotation: req.Rotation}
		s.saveAndRespond(w, s.agg.UpdateRoomPosition(p, roomID, pos))

	case "name":
		var req renameRequest
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if req.Name == "" {
			httputil.BadRequest(w, "name must not be empty")
			return
		}
		s.saveAndRespond(w, s.agg.UpdateRoom(p, current.Rename(req.Name)))

	default:
		httputil.NotFound(w, "unknown room attribute")
	}
}

// projectPlan renders the building-plan view: every room's floor outline
// mapped through its placement, plus the overall bounding box.
func (s *Server) projectPlan(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	p, ok := s.loadProject(w, id)
	if !ok {
		return
	}

	resp := planResponse{ProjectID: p.ID, Rooms: []planRoom{}}
	var all []geometry.Point2D
	for _, rm := range p.Rooms {
		placed := rm.PlacedVertices()
		all = append(all, placed...)
		resp.Rooms = append(resp.Rooms, planRoom{
			ID:       rm.ID,
			Name:     rm.Name,
			Color:    rm.Color,
			Vertices: placed,
		})
	}
	minX, minY, maxX, maxY := geometry.Bounds(all)
	resp.Bounds = planBounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	httputil.WriteJSONOK(w, resp)
}
