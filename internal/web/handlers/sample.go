package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codyswanson/vcselect/internal/selector"
	"github.com/codyswanson/vcselect/internal/web/middleware"
)

// SampleHandler handles reference color sampling endpoints.
type SampleHandler struct {
	store *MeshStore
}

// NewSampleHandler creates a new sample handler.
func NewSampleHandler(store *MeshStore) *SampleHandler {
	return &SampleHandler{store: store}
}

type sampleRequest struct {
	Reduction string `json:"reduction,omitempty"`
}

type sampleResponse struct {
	Color     string     `json:"color"`
	RGBA      [4]float32 `json:"rgba"`
	Face      int        `json:"face"`
	Reduction string     `json:"reduction"`
}

// Sample reads the color of the single selected face and stores it as the
// session's reference color. Requires exactly one selected face.
func (h *SampleHandler) Sample(w http.ResponseWriter, r *http.Request) {
	stored := h.store.Get(chi.URLParam(r, "id"))
	if stored == nil {
		respondError(w, http.StatusNotFound, "mesh not found")
		return
	}

	session := middleware.GetSessionFromContext(r.Context())
	reduction := session.Reduction()

	// Body is optional; an empty body keeps the session reduction.
	var req sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Reduction != "" {
		parsed, err := selector.ParseSampleReduction(req.Reduction)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		reduction = parsed
	}

	c, err := selector.Sample(stored.Mesh, reduction)
	if err != nil {
		var countErr *selector.InvalidSelectionCountError
		if errors.As(err, &countErr) {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("sampling requires exactly %d selected face, got %d", countErr.Required, countErr.Got))
			return
		}
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	session.SetReference(c)
	session.SetReduction(reduction)

	// Sample only succeeds with exactly one selected face.
	faceIdx := stored.Mesh.SelectedIndices()[0]
	respondJSON(w, http.StatusOK, sampleResponse{
		Color:     c.Hex(),
		RGBA:      [4]float32{c.R, c.G, c.B, c.A},
		Face:      faceIdx,
		Reduction: string(reduction),
	})
}
