package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codyswanson/vcselect/internal/database/postgres"
	"github.com/codyswanson/vcselect/internal/web/handlers"
	"github.com/codyswanson/vcselect/internal/web/middleware"
)

func (s *Server) setupRoutes(swatches *postgres.SwatchRepository) {
	// Create handlers
	meshesHandler := handlers.NewMeshesHandler(s.meshStore)
	sampleHandler := handlers.NewSampleHandler(s.meshStore)
	selectHandler := handlers.NewSelectHandler(s.config, s.meshStore, swatches)
	nearestHandler := handlers.NewNearestHandler(s.meshStore)
	previewHandler := handlers.NewPreviewHandler(s.meshStore)
	paletteHandler := handlers.NewPaletteHandler(swatches)

	// Health check (no session required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Every route gets a session; it holds the sampled reference color.
		r.Use(middleware.WithSession(s.sessionManager))

		// Meshes
		r.Post("/meshes", meshesHandler.Upload)
		r.Get("/meshes", meshesHandler.List)
		r.Get("/meshes/{id}", meshesHandler.Get)
		r.Delete("/meshes/{id}", meshesHandler.Delete)
		r.Get("/meshes/{id}/export", meshesHandler.Export)
		r.Get("/meshes/{id}/selection", meshesHandler.GetSelection)
		r.Put("/meshes/{id}/selection", meshesHandler.PutSelection)

		// Color operations
		r.Post("/meshes/{id}/sample", sampleHandler.Sample)
		r.Post("/meshes/{id}/select", selectHandler.Select)
		r.Post("/meshes/{id}/nearest", nearestHandler.Nearest)
		r.Get("/meshes/{id}/preview.png", previewHandler.Preview)

		// Palette
		r.Post("/palette", paletteHandler.Save)
		r.Get("/palette", paletteHandler.List)
		r.Get("/palette/{name}", paletteHandler.Get)
		r.Delete("/palette/{name}", paletteHandler.Delete)
		r.Post("/palette/nearest", paletteHandler.Nearest)
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex serves a minimal landing page pointing at the API.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>vcselect</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
        code { background: #2a2a3e; padding: 2px 8px; border-radius: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>vcselect</h1>
        <p>Upload a PLY mesh with <code>POST /api/v1/meshes</code> and select faces by vertex color.</p>
        <p>API is available at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
