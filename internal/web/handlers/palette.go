package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codyswanson/vcselect/internal/database"
	"github.com/codyswanson/vcselect/internal/database/postgres"
	"github.com/codyswanson/vcselect/internal/mesh"
	"github.com/codyswanson/vcselect/internal/web/middleware"
)

// PaletteHandler handles the persistent swatch palette endpoints. All of
// them return 503 when the server runs without a database.
type PaletteHandler struct {
	swatches *postgres.SwatchRepository // nil when no palette store is configured
}

// NewPaletteHandler creates a new palette handler.
func NewPaletteHandler(swatches *postgres.SwatchRepository) *PaletteHandler {
	return &PaletteHandler{swatches: swatches}
}

// requireStore writes a 503 response and returns false when the palette
// store is not configured.
func (h *PaletteHandler) requireStore(w http.ResponseWriter) bool {
	if h.swatches == nil {
		respondError(w, http.StatusServiceUnavailable, "palette store is not configured, set DATABASE_URL")
		return false
	}
	return true
}

type swatchResponse struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func toSwatchResponse(s *database.StoredSwatch) swatchResponse {
	return swatchResponse{
		Name:      s.Name,
		Label:     s.Label,
		Color:     s.Color.Hex(),
		CreatedAt: s.CreatedAt,
	}
}

type saveSwatchRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"` // hex, empty means the session reference
}

// Save stores a named swatch, overwriting any previous color under the same
// normalized name. Without an explicit color the session reference is saved.
func (h *PaletteHandler) Save(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	var req saveSwatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	var c mesh.Color
	if req.Color != "" {
		parsed, err := mesh.ParseHex(req.Color)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid color: %v", err))
			return
		}
		c = parsed
	} else {
		c = middleware.GetSessionFromContext(r.Context()).Reference()
	}

	swatch, err := h.swatches.Save(r.Context(), req.Name, c)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, toSwatchResponse(swatch))
}

// List returns all saved swatches.
func (h *PaletteHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	swatches, err := h.swatches.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]swatchResponse, 0, len(swatches))
	for i := range swatches {
		out = append(out, toSwatchResponse(&swatches[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"swatches": out,
		"count":    len(out),
	})
}

// Get returns one swatch by name.
func (h *PaletteHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	name := chi.URLParam(r, "name")
	swatch, err := h.swatches.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, postgres.ErrSwatchNotFound) {
			respondError(w, http.StatusNotFound, "swatch not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toSwatchResponse(swatch))
}

// Delete removes a swatch by name.
func (h *PaletteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	name := chi.URLParam(r, "name")
	if err := h.swatches.Delete(r.Context(), name); err != nil {
		if errors.Is(err, postgres.ErrSwatchNotFound) {
			respondError(w, http.StatusNotFound, "swatch not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": name})
}

type nearestSwatchRequest struct {
	Color string `json:"color"` // hex, empty means the session reference
	K     int    `json:"k,omitempty"`
}

// Nearest finds the saved swatches closest to a color using the database's
// vector distance ordering.
func (h *PaletteHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	var req nearestSwatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	var query mesh.Color
	if req.Color != "" {
		parsed, err := mesh.ParseHex(req.Color)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid color: %v", err))
			return
		}
		query = parsed
	} else {
		query = middleware.GetSessionFromContext(r.Context()).Reference()
	}

	k := req.K
	if k <= 0 {
		k = defaultNearestK
	}

	swatches, err := h.swatches.Nearest(r.Context(), query, k)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]swatchResponse, 0, len(swatches))
	for i := range swatches {
		out = append(out, toSwatchResponse(&swatches[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"query":    query.Hex(),
		"swatches": out,
	})
}
