package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codyswanson/vcselect/internal/config"
	"github.com/codyswanson/vcselect/internal/database/postgres"
	"github.com/codyswanson/vcselect/internal/mesh"
	"github.com/codyswanson/vcselect/internal/selector"
	"github.com/codyswanson/vcselect/internal/web/middleware"
)

// SelectHandler handles the color-match selection endpoint.
type SelectHandler struct {
	config   *config.Config
	store    *MeshStore
	swatches *postgres.SwatchRepository // nil when no palette store is configured
}

// NewSelectHandler creates a new select handler.
func NewSelectHandler(cfg *config.Config, store *MeshStore, swatches *postgres.SwatchRepository) *SelectHandler {
	return &SelectHandler{
		config:   cfg,
		store:    store,
		swatches: swatches,
	}
}

type selectRequest struct {
	Color      string   `json:"color,omitempty"`  // hex, overrides the session reference
	Swatch     string   `json:"swatch,omitempty"` // palette swatch name, overrides the session reference
	Threshold  *float64 `json:"threshold,omitempty"`
	MatchMode  string   `json:"match_mode,omitempty"`
	SelectMode string   `json:"select_mode,omitempty"`
}

type selectResponse struct {
	Matched    int     `json:"matched"`
	Selected   int     `json:"selected"`
	Reference  string  `json:"reference"`
	Threshold  float64 `json:"threshold"`
	MatchMode  string  `json:"match_mode"`
	SelectMode string  `json:"select_mode"`
}

// resolveReference picks the reference color for a select run: an explicit
// hex color wins, then a palette swatch, then the session's sampled color.
func (h *SelectHandler) resolveReference(r *http.Request, req selectRequest) (mesh.Color, error) {
	if req.Color != "" {
		c, err := mesh.ParseHex(req.Color)
		if err != nil {
			return mesh.Color{}, fmt.Errorf("invalid color: %w", err)
		}
		return c, nil
	}

	if req.Swatch != "" {
		if h.swatches == nil {
			return mesh.Color{}, errors.New("palette store is not configured")
		}
		swatch, err := h.swatches.Get(r.Context(), req.Swatch)
		if err != nil {
			return mesh.Color{}, fmt.Errorf("loading swatch %q: %w", req.Swatch, err)
		}
		return swatch.Color, nil
	}

	session := middleware.GetSessionFromContext(r.Context())
	return session.Reference(), nil
}

// Select runs a color-match pass over the mesh and applies the result to the
// face selection. Defaults for threshold and modes come from the embedded
// configuration; the request body can override each of them.
func (h *SelectHandler) Select(w http.ResponseWriter, r *http.Request) {
	stored := h.store.Get(chi.URLParam(r, "id"))
	if stored == nil {
		respondError(w, http.StatusNotFound, "mesh not found")
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	defaults := h.config.Defaults.Select

	threshold := defaults.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 {
		respondError(w, http.StatusBadRequest, "threshold must not be negative")
		return
	}

	matchMode := defaults.MatchMode
	if req.MatchMode != "" {
		matchMode = req.MatchMode
	}
	matchPolicy, err := selector.ParseMatchPolicy(matchMode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	selectMode := defaults.SelectMode
	if req.SelectMode != "" {
		selectMode = req.SelectMode
	}
	selectPolicy, err := selector.ParseSelectPolicy(selectMode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reference, err := h.resolveReference(r, req)
	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrSwatchNotFound):
			respondError(w, http.StatusNotFound, fmt.Sprintf("swatch %q not found", req.Swatch))
		case req.Swatch != "" && h.swatches == nil:
			respondError(w, http.StatusServiceUnavailable, err.Error())
		case req.Swatch != "":
			respondError(w, http.StatusInternalServerError, err.Error())
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	matches, err := selector.Match(stored.Mesh, reference, threshold, matchPolicy, selector.MatchOptions{})
	if err != nil {
		var missingErr *selector.MissingColorDataError
		if errors.As(err, &missingErr) {
			respondError(w, http.StatusUnprocessableEntity, "mesh has no vertex color layer")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	selector.Apply(stored.Mesh, matches, selectPolicy)

	respondJSON(w, http.StatusOK, selectResponse{
		Matched:    len(matches),
		Selected:   stored.Mesh.SelectedCount(),
		Reference:  reference.Hex(),
		Threshold:  threshold,
		MatchMode:  string(matchPolicy),
		SelectMode: string(selectPolicy),
	})
}
