package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codyswanson/vcselect/internal/colorindex"
	"github.com/codyswanson/vcselect/internal/mesh"
	"github.com/codyswanson/vcselect/internal/selector"
	"github.com/codyswanson/vcselect/internal/web/middleware"
)

// defaultNearestK is how many faces a nearest query returns when k is unset.
const defaultNearestK = 5

// NearestHandler handles nearest-color face lookups.
type NearestHandler struct {
	store *MeshStore
}

// NewNearestHandler creates a new nearest handler.
func NewNearestHandler(store *MeshStore) *NearestHandler {
	return &NearestHandler{store: store}
}

type nearestRequest struct {
	Color string `json:"color,omitempty"` // hex, defaults to the session reference
	K     int    `json:"k,omitempty"`
}

// Nearest returns the k faces whose color is closest to the query color,
// using the mesh's color index. The index builds lazily on first use.
func (h *NearestHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	stored := h.store.Get(chi.URLParam(r, "id"))
	if stored == nil {
		respondError(w, http.StatusNotFound, "mesh not found")
		return
	}

	var req nearestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	session := middleware.GetSessionFromContext(r.Context())

	query := session.Reference()
	if req.Color != "" {
		c, err := mesh.ParseHex(req.Color)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid color: %v", err))
			return
		}
		query = c
	}

	k := req.K
	if k <= 0 {
		k = defaultNearestK
	}

	idx, err := stored.Index(session.Reduction())
	if err != nil {
		var missingErr *selector.MissingColorDataError
		if errors.As(err, &missingErr) {
			respondError(w, http.StatusUnprocessableEntity, "mesh has no vertex color layer")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results, err := idx.Nearest(query, k)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []colorindex.Result{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"query":   query.Hex(),
		"results": results,
	})
}
