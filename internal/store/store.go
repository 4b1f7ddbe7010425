// Package store persists scan projects. The core model stays pure; a
// ProjectStore is an explicit collaborator owned by the caller, never a
// singleton.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/selter2001/hause-scanner/internal/project"
)

// ErrNotFound is returned when no project with the requested id exists.
var ErrNotFound = errors.New("project not found")

// ProjectStore persists whole project snapshots. Put always writes the full
// value; partial updates are not expressible, matching the copy-on-write
// model.
type ProjectStore interface {
	// PutProject inserts or replaces a project snapshot.
	PutProject(p project.ScanProject) error

	// GetProject returns the project with the given id, or ErrNotFound.
	GetProject(id string) (project.ScanProject, error)

	// ListProjects returns all projects, most recently updated first.
	ListProjects() ([]project.ScanProject, error)

	// DeleteProject removes a project and its rooms. Deleting a missing id
	// returns ErrNotFound.
	DeleteProject(id string) error

	// Close releases any underlying resources.
	Close() error
}

// MemoryStore is an in-memory ProjectStore for dev mode and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]project.ScanProject
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[string]project.ScanProject)}
}

func (m *MemoryStore) PutProject(p project.ScanProject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *MemoryStore) GetProject(id string) (project.ScanProject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return project.ScanProject{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) ListProjects() ([]project.ScanProject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	projects := make([]project.ScanProject, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	sortByUpdatedAt(projects)
	return projects, nil
}

func (m *MemoryStore) DeleteProject(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func sortByUpdatedAt(projects []project.ScanProject) {
	// newest first; id breaks ties so the order is deterministic
	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].UpdatedAt.Equal(projects[j].UpdatedAt) {
			return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
		}
		return projects[i].ID < projects[j].ID
	})
}
