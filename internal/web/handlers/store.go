package handlers

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codyswanson/vcselect/internal/colorindex"
	"github.com/codyswanson/vcselect/internal/mesh"
	"github.com/codyswanson/vcselect/internal/selector"
)

// StoredMesh is one uploaded mesh held in memory for the lifetime of the
// server, together with its lazily built color index.
type StoredMesh struct {
	ID         string
	Name       string
	Mesh       *mesh.Mesh
	UploadedAt time.Time

	mu    sync.Mutex
	index *colorindex.Index // nil until first nearest query
}

// Index returns the color index for the mesh, building it on first use.
// Mutating operations must call InvalidateIndex afterwards.
func (s *StoredMesh) Index(reduction selector.SampleReduction) (*colorindex.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		idx := colorindex.New()
		if err := idx.Build(s.Mesh, reduction); err != nil {
			return nil, err
		}
		s.index = idx
	}
	return s.index, nil
}

// InvalidateIndex drops the cached color index so the next nearest query
// rebuilds it. Selection changes do not affect colors, so only color edits
// need this; it exists for callers that replace the mesh in place.
func (s *StoredMesh) InvalidateIndex() {
	s.mu.Lock()
	s.index = nil
	s.mu.Unlock()
}

// MeshStore keeps uploaded meshes in memory, keyed by generated ID.
type MeshStore struct {
	mu     sync.RWMutex
	meshes map[string]*StoredMesh
}

// NewMeshStore creates an empty mesh store.
func NewMeshStore() *MeshStore {
	return &MeshStore{
		meshes: make(map[string]*StoredMesh),
	}
}

// Add stores a mesh under a fresh ID and returns the stored entry.
func (ms *MeshStore) Add(name string, m *mesh.Mesh) *StoredMesh {
	stored := &StoredMesh{
		ID:         uuid.New().String(),
		Name:       name,
		Mesh:       m,
		UploadedAt: time.Now(),
	}

	ms.mu.Lock()
	ms.meshes[stored.ID] = stored
	ms.mu.Unlock()

	return stored
}

// Get returns the mesh with the given ID, or nil when unknown.
func (ms *MeshStore) Get(id string) *StoredMesh {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.meshes[id]
}

// Delete removes the mesh with the given ID. Returns false when unknown.
func (ms *MeshStore) Delete(id string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.meshes[id]; !ok {
		return false
	}
	delete(ms.meshes, id)
	return true
}

// List returns all stored meshes ordered by upload time, oldest first.
func (ms *MeshStore) List() []*StoredMesh {
	ms.mu.RLock()
	out := make([]*StoredMesh, 0, len(ms.meshes))
	for _, m := range ms.meshes {
		out = append(out, m)
	}
	ms.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out
}
