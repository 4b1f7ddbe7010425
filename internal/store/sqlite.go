package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/selter2001/hause-scanner/internal/geometry"
	"github.com/selter2001/hause-scanner/internal/project"
	"github.com/selter2001/hause-scanner/internal/room"
)

// SQLiteStore is the durable ProjectStore backed by SQLite.
//
// Rooms are persisted by their inputs (floor outline, ceiling height, wall
// ids) plus identity and placement; derived measurements are re-derived on
// load. Stored derived values can therefore never diverge from the model's
// invariants.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// bootstraps the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scan_projects (
			project_id        TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			created_at_ns     BIGINT NOT NULL,
			updated_at_ns     BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS scan_rooms (
			room_id           TEXT PRIMARY KEY,
			project_id        TEXT NOT NULL,
			seq               INTEGER NOT NULL,
			name              TEXT NOT NULL,
			color             TEXT NOT NULL DEFAULT '',
			pos_x             DOUBLE NOT NULL DEFAULT 0,
			pos_y             DOUBLE NOT NULL DEFAULT 0,
			rotation          DOUBLE NOT NULL DEFAULT 0,
			ceiling_height    DOUBLE NOT NULL,
			vertices_json     TEXT NOT NULL,
			wall_ids_json     TEXT NOT NULL,
			FOREIGN KEY(project_id) REFERENCES scan_projects(project_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying connection for admin tooling and migrations.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// PutProject writes a full project snapshot, replacing any previous rooms.
func (s *SQLiteStore) PutProject(p project.ScanProject) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin put project: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO scan_projects (project_id, name, created_at_ns, updated_at_ns)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			name = excluded.name,
			updated_at_ns = excluded.updated_at_ns
	`, p.ID, p.Name, p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM scan_rooms WHERE project_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear rooms: %w", err)
	}

	for seq, r := range p.Rooms {
		verticesJSON, err := json.Marshal(r.Floor.Vertices)
		if err != nil {
			return fmt.Errorf("encode vertices: %w", err)
		}
		wallIDs := make([]string, len(r.Walls))
		for i, w := range r.Walls {
			wallIDs[i] = w.ID
		}
		wallIDsJSON, err := json.Marshal(wallIDs)
		if err != nil {
			return fmt.Errorf("encode wall ids: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO scan_rooms (
				room_id, project_id, seq, name, color,
				pos_x, pos_y, rotation, ceiling_height,
				vertices_json, wall_ids_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			r.ID, p.ID, seq, r.Name, r.Color,
			r.Position.X, r.Position.Y, r.Position.Rotation, r.Ceiling.Height,
			string(verticesJSON), string(wallIDsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert room %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// GetProject loads one project with its rooms re-derived.
func (s *SQLiteStore) GetProject(id string) (project.ScanProject, error) {
	var p project.ScanProject
	var createdNs, updatedNs int64

	err := s.db.QueryRow(`
		SELECT project_id, name, created_at_ns, updated_at_ns
		FROM scan_projects WHERE project_id = ?
	`, id).Scan(&p.ID, &p.Name, &createdNs, &updatedNs)
	if err == sql.ErrNoRows {
		return project.ScanProject{}, ErrNotFound
	}
	if err != nil {
		return project.ScanProject{}, fmt.Errorf("get project: %w", err)
	}

	p.CreatedAt = time.Unix(0, createdNs)
	p.UpdatedAt = time.Unix(0, updatedNs)

	rooms, err := s.loadRooms(id)
	if err != nil {
		return project.ScanProject{}, err
	}
	p.Rooms = rooms

	return project.WithRecomputedTotals(p), nil
}

// ListProjects returns all projects, most recently updated first.
func (s *SQLiteStore) ListProjects() ([]project.ScanProject, error) {
	rows, err := s.db.Query(`
		SELECT project_id FROM scan_projects ORDER BY updated_at_ns DESC, project_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	projects := make([]project.ScanProject, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetProject(id)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// DeleteProject removes a project and all of its rooms.
func (s *SQLiteStore) DeleteProject(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete project: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM scan_rooms WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("delete rooms: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM scan_projects WHERE project_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (s *SQLiteStore) loadRooms(projectID string) ([]room.Room, error) {
	rows, err := s.db.Query(`
		SELECT room_id, name, color, pos_x, pos_y, rotation,
		       ceiling_height, vertices_json, wall_ids_json
		FROM scan_rooms
		WHERE project_id = ?
		ORDER BY seq ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()

	var rooms []room.Room
	for rows.Next() {
		var (
			id, name, color              string
			posX, posY, rotation, height float64
			verticesJSON, wallIDsJSON    string
		)
		if err := rows.Scan(&id, &name, &color, &posX, &posY, &rotation,
			&height, &verticesJSON, &wallIDsJSON); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}

		var vertices []geometry.Point2D
		if err := json.Unmarshal([]byte(verticesJSON), &vertices); err != nil {
			return nil, fmt.Errorf("decode vertices for room %s: %w", id, err)
		}
		var wallIDs []string
		if err := json.Unmarshal([]byte(wallIDsJSON), &wallIDs); err != nil {
			return nil, fmt.Errorf("decode wall ids for room %s: %w", id, err)
		}

		rooms = append(rooms, room.Derive(vertices, height,
			room.WithID(id),
			room.WithName(name),
			room.WithWallIDs(wallIDs),
			room.WithPosition(room.Position{X: posX, Y: posY, Rotation: rotation}),
			room.WithColor(color),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}

	return rooms, nil
}
