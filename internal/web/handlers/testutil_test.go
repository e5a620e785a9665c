package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/codyswanson/vcselect/internal/config"
	"github.com/codyswanson/vcselect/internal/mesh"
	"github.com/codyswanson/vcselect/internal/web/middleware"
)

var (
	red  = mesh.Color{R: 1, G: 0, B: 0, A: 1}
	blue = mesh.Color{R: 0, G: 0, B: 1, A: 1}
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return config.Load()
}

// testMesh builds a small colored mesh: face 0 red, face 1 blue, face 2 red.
func testMesh() *mesh.Mesh {
	m := mesh.New()
	m.Vertices = []mesh.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 2, Y: 1, Z: 0},
	}
	m.AddFace(red, 0, 1, 2)
	m.AddFace(blue, 1, 4, 5)
	m.AddFace(red, 0, 2, 3)
	m.SetColorLayer(true)
	return m
}

// requestWithSession creates a request carrying a fresh session
func requestWithSession(t *testing.T, sm *middleware.SessionManager, req *http.Request) (*http.Request, *middleware.Session) {
	t.Helper()
	session, err := sm.CreateSession()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	ctx := middleware.SetSessionInContext(req.Context(), session)
	return req.WithContext(ctx), session
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
