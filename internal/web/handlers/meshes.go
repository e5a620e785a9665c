package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codyswanson/vcselect/internal/mesh"
)

// maxMeshUploadSize limits PLY uploads to 256 MB.
const maxMeshUploadSize = 256 << 20

// MeshesHandler handles mesh upload and lifecycle endpoints.
type MeshesHandler struct {
	store *MeshStore
}

// NewMeshesHandler creates a new meshes handler.
func NewMeshesHandler(store *MeshStore) *MeshesHandler {
	return &MeshesHandler{store: store}
}

// meshResponse is the JSON shape of a stored mesh.
type meshResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Vertices      int       `json:"vertices"`
	Faces         int       `json:"faces"`
	HasColorLayer bool      `json:"has_color_layer"`
	Selected      int       `json:"selected"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

func toMeshResponse(s *StoredMesh) meshResponse {
	return meshResponse{
		ID:            s.ID,
		Name:          s.Name,
		Vertices:      len(s.Mesh.Vertices),
		Faces:         len(s.Mesh.Faces),
		HasColorLayer: s.Mesh.HasColorLayer(),
		Selected:      s.Mesh.SelectedCount(),
		UploadedAt:    s.UploadedAt,
	}
}

// getStoredMesh resolves the {id} URL parameter to a stored mesh, writing a
// 404 response when it does not exist.
func (h *MeshesHandler) getStoredMesh(w http.ResponseWriter, r *http.Request) *StoredMesh {
	id := chi.URLParam(r, "id")
	stored := h.store.Get(id)
	if stored == nil {
		respondError(w, http.StatusNotFound, "mesh not found")
	}
	return stored
}

// Upload accepts a PLY file as a multipart form ("file" field) or as a raw
// request body, parses it, and stores the mesh.
func (h *MeshesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMeshUploadSize)

	var (
		m    *mesh.Mesh
		name string
		err  error
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMeshUploadSize); err != nil {
			respondError(w, http.StatusBadRequest, "failed to parse multipart form")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		name = filepath.Base(header.Filename)
		m, err = mesh.ReadPLY(file)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid PLY file: %v", err))
			return
		}
	} else {
		name = r.URL.Query().Get("name")
		if name == "" {
			name = "upload.ply"
		}
		m, err = mesh.ReadPLY(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid PLY file: %v", err))
			return
		}
	}

	stored := h.store.Add(name, m)
	log.Printf("stored mesh %s (%s): %d vertices, %d faces", stored.ID, sanitizeForLog(name), len(m.Vertices), len(m.Faces))

	respondJSON(w, http.StatusCreated, toMeshResponse(stored))
}

// List returns all stored meshes.
func (h *MeshesHandler) List(w http.ResponseWriter, r *http.Request) {
	stored := h.store.List()
	out := make([]meshResponse, 0, len(stored))
	for _, s := range stored {
		out = append(out, toMeshResponse(s))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"meshes": out,
		"count":  len(out),
	})
}

// Get returns metadata for one mesh.
func (h *MeshesHandler) Get(w http.ResponseWriter, r *http.Request) {
	stored := h.getStoredMesh(w, r)
	if stored == nil {
		return
	}
	respondJSON(w, http.StatusOK, toMeshResponse(stored))
}

// Delete removes a mesh from the store.
func (h *MeshesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.store.Delete(id) {
		respondError(w, http.StatusNotFound, "mesh not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// Export streams the mesh back as an ASCII PLY file, selection included.
func (h *MeshesHandler) Export(w http.ResponseWriter, r *http.Request) {
	stored := h.getStoredMesh(w, r)
	if stored == nil {
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stored.Name))
	if err := mesh.WritePLY(stored.Mesh, w); err != nil {
		// Headers already sent; nothing better to do than log.
		log.Printf("exporting mesh %s: %v", stored.ID, err)
	}
}

// GetSelection returns the indices of the currently selected faces.
func (h *MeshesHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	stored := h.getStoredMesh(w, r)
	if stored == nil {
		return
	}

	indices := stored.Mesh.SelectedIndices()
	respondJSON(w, http.StatusOK, map[string]any{
		"selected": indices,
		"count":    len(indices),
	})
}

// selectionRequest is the body of a PUT selection call.
type selectionRequest struct {
	Selected []int `json:"selected"`
}

// PutSelection replaces the mesh selection with an explicit face index list.
func (h *MeshesHandler) PutSelection(w http.ResponseWriter, r *http.Request) {
	stored := h.getStoredMesh(w, r)
	if stored == nil {
		return
	}

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	for _, idx := range req.Selected {
		if idx < 0 || idx >= len(stored.Mesh.Faces) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("face index %d out of range", idx))
			return
		}
	}

	stored.Mesh.SelectOnly(req.Selected...)
	respondJSON(w, http.StatusOK, map[string]any{
		"selected": stored.Mesh.SelectedIndices(),
		"count":    stored.Mesh.SelectedCount(),
	})
}
