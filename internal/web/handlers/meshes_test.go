package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testPLY = `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
element face 1
property list uchar int vertex_indices
end_header
0 0 0 255 0 0
1 0 0 255 0 0
1 1 0 255 0 0
3 0 1 2
`

func TestMeshesUpload_RawBody(t *testing.T) {
	h := NewMeshesHandler(NewMeshStore())

	req := httptest.NewRequest("POST", "/api/v1/meshes?name=tri.ply", strings.NewReader(testPLY))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assertStatusCode(t, rec, http.StatusCreated)

	var resp meshResponse
	parseJSONResponse(t, rec, &resp)
	if resp.ID == "" {
		t.Error("expected a generated mesh ID")
	}
	if resp.Name != "tri.ply" {
		t.Errorf("expected name 'tri.ply', got %q", resp.Name)
	}
	if resp.Vertices != 3 || resp.Faces != 1 {
		t.Errorf("expected 3 vertices and 1 face, got %d and %d", resp.Vertices, resp.Faces)
	}
	if !resp.HasColorLayer {
		t.Error("expected a color layer")
	}
}

func TestMeshesUpload_Multipart(t *testing.T) {
	h := NewMeshesHandler(NewMeshStore())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "cube.ply")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write([]byte(testPLY))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/meshes", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assertStatusCode(t, rec, http.StatusCreated)

	var resp meshResponse
	parseJSONResponse(t, rec, &resp)
	if resp.Name != "cube.ply" {
		t.Errorf("expected name 'cube.ply', got %q", resp.Name)
	}
}

func TestMeshesUpload_InvalidPLY(t *testing.T) {
	h := NewMeshesHandler(NewMeshStore())

	req := httptest.NewRequest("POST", "/api/v1/meshes", strings.NewReader("not a ply file"))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestMeshesListAndGet(t *testing.T) {
	store := NewMeshStore()
	h := NewMeshesHandler(store)
	stored := store.Add("test.ply", testMesh())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest("GET", "/api/v1/meshes", nil))
	assertStatusCode(t, rec, http.StatusOK)

	var listResp struct {
		Meshes []meshResponse `json:"meshes"`
		Count  int            `json:"count"`
	}
	parseJSONResponse(t, rec, &listResp)
	if listResp.Count != 1 || len(listResp.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got count=%d len=%d", listResp.Count, len(listResp.Meshes))
	}

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/meshes/"+stored.ID, nil),
		map[string]string{"id": stored.ID})
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	assertStatusCode(t, rec, http.StatusOK)

	var resp meshResponse
	parseJSONResponse(t, rec, &resp)
	if resp.Faces != 3 {
		t.Errorf("expected 3 faces, got %d", resp.Faces)
	}
}

func TestMeshesGet_NotFound(t *testing.T) {
	h := NewMeshesHandler(NewMeshStore())

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/meshes/missing", nil),
		map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assertStatusCode(t, rec, http.StatusNotFound)
	assertJSONError(t, rec, "mesh not found")
}

func TestMeshesDelete(t *testing.T) {
	store := NewMeshStore()
	h := NewMeshesHandler(store)
	stored := store.Add("test.ply", testMesh())

	req := requestWithChiParams(httptest.NewRequest("DELETE", "/api/v1/meshes/"+stored.ID, nil),
		map[string]string{"id": stored.ID})
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	assertStatusCode(t, rec, http.StatusOK)

	if store.Get(stored.ID) != nil {
		t.Error("mesh still in store after delete")
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	assertStatusCode(t, rec, http.StatusNotFound)
}

func TestMeshesExport_RoundTrip(t *testing.T) {
	store := NewMeshStore()
	h := NewMeshesHandler(store)

	m := testMesh()
	m.Faces[1].Selected = true
	stored := store.Add("test.ply", m)

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/meshes/"+stored.ID+"/export", nil),
		map[string]string{"id": stored.ID})
	rec := httptest.NewRecorder()
	h.Export(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	body := rec.Body.String()
	if !strings.HasPrefix(body, "ply\n") {
		t.Errorf("expected PLY output, got %q", body[:min(len(body), 20)])
	}
	if !strings.Contains(body, "property uchar selected") {
		t.Error("expected export to carry the selection property")
	}
}

func TestMeshesSelection_GetAndPut(t *testing.T) {
	store := NewMeshStore()
	h := NewMeshesHandler(store)
	stored := store.Add("test.ply", testMesh())

	put := func(body string) *httptest.ResponseRecorder {
		req := requestWithChiParams(
			httptest.NewRequest("PUT", "/api/v1/meshes/"+stored.ID+"/selection", strings.NewReader(body)),
			map[string]string{"id": stored.ID})
		rec := httptest.NewRecorder()
		h.PutSelection(rec, req)
		return rec
	}

	rec := put(`{"selected": [0, 2]}`)
	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		Selected []int `json:"selected"`
		Count    int   `json:"count"`
	}
	parseJSONResponse(t, rec, &resp)
	if resp.Count != 2 || len(resp.Selected) != 2 {
		t.Fatalf("expected 2 selected faces, got %+v", resp)
	}

	// Replaces, not extends.
	rec = put(`{"selected": [1]}`)
	assertStatusCode(t, rec, http.StatusOK)
	parseJSONResponse(t, rec, &resp)
	if resp.Count != 1 || resp.Selected[0] != 1 {
		t.Errorf("expected selection {1}, got %+v", resp.Selected)
	}

	// Out of range leaves the selection untouched.
	rec = put(`{"selected": [7]}`)
	assertStatusCode(t, rec, http.StatusBadRequest)
	if got := stored.Mesh.SelectedIndices(); len(got) != 1 || got[0] != 1 {
		t.Errorf("selection changed on failed put: %v", got)
	}

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/meshes/"+stored.ID+"/selection", nil),
		map[string]string{"id": stored.ID})
	rec = httptest.NewRecorder()
	h.GetSelection(rec, req)
	assertStatusCode(t, rec, http.StatusOK)
	parseJSONResponse(t, rec, &resp)
	if resp.Count != 1 || resp.Selected[0] != 1 {
		t.Errorf("expected selection {1}, got %+v", resp.Selected)
	}
}
