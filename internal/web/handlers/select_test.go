package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codyswanson/vcselect/internal/web/middleware"
)

func newSelectFixture(t *testing.T) (*SelectHandler, *MeshStore, *middleware.SessionManager) {
	t.Helper()
	store := NewMeshStore()
	return NewSelectHandler(testConfig(), store, nil), store, middleware.NewSessionManager("test-secret")
}

func runSelect(t *testing.T, h *SelectHandler, sm *middleware.SessionManager, meshID, body string) (*httptest.ResponseRecorder, *middleware.Session) {
	t.Helper()
	req := requestWithChiParams(
		httptest.NewRequest("POST", "/api/v1/meshes/"+meshID+"/select", strings.NewReader(body)),
		map[string]string{"id": meshID})
	req, session := requestWithSession(t, sm, req)
	rec := httptest.NewRecorder()
	h.Select(rec, req)
	return rec, session
}

func TestSelect_ByExplicitColor(t *testing.T) {
	h, store, sm := newSelectFixture(t)
	stored := store.Add("test.ply", testMesh())

	rec, _ := runSelect(t, h, sm, stored.ID, `{"color": "#ff0000", "threshold": 0}`)
	assertStatusCode(t, rec, http.StatusOK)

	var resp selectResponse
	parseJSONResponse(t, rec, &resp)
	if resp.Matched != 2 || resp.Selected != 2 {
		t.Errorf("expected 2 matched and selected, got %+v", resp)
	}
	if resp.Reference != "#ff0000" {
		t.Errorf("expected reference #ff0000, got %s", resp.Reference)
	}

	got := stored.Mesh.SelectedIndices()
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("expected faces 0 and 2 selected, got %v", got)
	}
}

func TestSelect_SessionReferenceDefault(t *testing.T) {
	h, store, sm := newSelectFixture(t)
	stored := store.Add("test.ply", testMesh())

	// Fresh sessions start at white; nothing in the mesh is white, and the
	// default threshold is small.
	rec, _ := runSelect(t, h, sm, stored.ID, `{}`)
	assertStatusCode(t, rec, http.StatusOK)

	var resp selectResponse
	parseJSONResponse(t, rec, &resp)
	if resp.Matched != 0 {
		t.Errorf("expected no matches against white, got %d", resp.Matched)
	}
	if resp.Reference != "#ffffff" {
		t.Errorf("expected white reference, got %s", resp.Reference)
	}
}

func TestSelect_AddModeExtendsSelection(t *testing.T) {
	h, store, sm := newSelectFixture(t)

	m := testMesh()
	m.Faces[1].Selected = true // blue
	stored := store.Add("test.ply", m)

	rec, _ := runSelect(t, h, sm, stored.ID, `{"color": "#ff0000", "select_mode": "add"}`)
	assertStatusCode(t, rec, http.StatusOK)

	var resp selectResponse
	parseJSONResponse(t, rec, &resp)
	if resp.Matched != 2 {
		t.Errorf("expected 2 matched, got %d", resp.Matched)
	}
	if resp.Selected != 3 {
		t.Errorf("expected prior selection kept, selected=%d", resp.Selected)
	}
}

func TestSelect_ReplaceModeDropsPriorSelection(t *testing.T) {
	h, store, sm := newSelectFixture(t)

	m := testMesh()
	m.Faces[1].Selected = true
	stored := store.Add("test.ply", m)

	rec, _ := runSelect(t, h, sm, stored.ID, `{"color": "#ff0000", "select_mode": "replace"}`)
	assertStatusCode(t, rec, http.StatusOK)

	var resp selectResponse
	parseJSONResponse(t, rec, &resp)
	if resp.Selected != 2 {
		t.Errorf("expected only matched faces selected, got %d", resp.Selected)
	}
	if stored.Mesh.Faces[1].Selected {
		t.Error("blue face still selected after replace")
	}
}

func TestSelect_WideThresholdMatchesEverything(t *testing.T) {
	h, store, sm := newSelectFixture(t)
	stored := store.Add("test.ply", testMesh())

	rec, _ := runSelect(t, h, sm, stored.ID, `{"color": "#ff0000", "threshold": 1.0}`)
	assertStatusCode(t, rec, http.StatusOK)

	var resp selectResponse
	parseJSONResponse(t, rec, &resp)
	if resp.Matched != 3 {
		t.Errorf("expected all faces matched at threshold 1.0, got %d", resp.Matched)
	}
}

func TestSelect_BadRequests(t *testing.T) {
	h, store, sm := newSelectFixture(t)
	stored := store.Add("test.ply", testMesh())

	tests := []struct {
		name string
		body string
	}{
		{"negative threshold", `{"color": "#ff0000", "threshold": -0.1}`},
		{"bad color", `{"color": "red-ish"}`},
		{"bad match mode", `{"color": "#ff0000", "match_mode": "some"}`},
		{"bad select mode", `{"color": "#ff0000", "select_mode": "subtract"}`},
		{"malformed json", `{"color":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := runSelect(t, h, sm, stored.ID, tt.body)
			assertStatusCode(t, rec, http.StatusBadRequest)
		})
	}
}

func TestSelect_FailureLeavesSelectionUntouched(t *testing.T) {
	h, store, sm := newSelectFixture(t)

	m := testMesh()
	m.Faces[0].Selected = true
	stored := store.Add("test.ply", m)

	rec, _ := runSelect(t, h, sm, stored.ID, `{"color": "#0000ff", "threshold": -1}`)
	assertStatusCode(t, rec, http.StatusBadRequest)

	if got := stored.Mesh.SelectedIndices(); len(got) != 1 || got[0] != 0 {
		t.Errorf("selection changed on failed select: %v", got)
	}
}

func TestSelect_NoColorLayer(t *testing.T) {
	h, store, sm := newSelectFixture(t)

	m := testMesh()
	m.SetColorLayer(false)
	stored := store.Add("test.ply", m)

	rec, _ := runSelect(t, h, sm, stored.ID, `{"color": "#ff0000"}`)
	assertStatusCode(t, rec, http.StatusUnprocessableEntity)
}

func TestSelect_SwatchWithoutStore(t *testing.T) {
	h, store, sm := newSelectFixture(t)
	stored := store.Add("test.ply", testMesh())

	rec, _ := runSelect(t, h, sm, stored.ID, `{"swatch": "hull red"}`)
	assertStatusCode(t, rec, http.StatusServiceUnavailable)
}

func TestSelect_MeshNotFound(t *testing.T) {
	h, _, sm := newSelectFixture(t)

	rec, _ := runSelect(t, h, sm, "missing", `{"color": "#ff0000"}`)
	assertStatusCode(t, rec, http.StatusNotFound)
}
