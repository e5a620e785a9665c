package handlers

import (
	"image/png"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/codyswanson/vcselect/internal/preview"
)

// PreviewHandler renders mesh snapshots.
type PreviewHandler struct {
	store *MeshStore
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(store *MeshStore) *PreviewHandler {
	return &PreviewHandler{store: store}
}

// Preview renders the mesh with its current selection highlighted and
// returns it as a PNG. The optional size query parameter sets the edge
// length in pixels.
func (h *PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	stored := h.store.Get(chi.URLParam(r, "id"))
	if stored == nil {
		respondError(w, http.StatusNotFound, "mesh not found")
		return
	}

	opts := preview.Options{}
	if s := r.URL.Query().Get("size"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil || size <= 0 || size > 4096 {
			respondError(w, http.StatusBadRequest, "size must be a positive integer up to 4096")
			return
		}
		opts.Size = size
	}

	img, err := preview.Render(stored.Mesh, opts)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		// Headers are already out; the client gave up mid-transfer.
		log.Printf("encoding preview for mesh %s: %v", stored.ID, err)
	}
}
