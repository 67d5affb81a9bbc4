package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faceattend/faceattend/internal/attendance"
	"github.com/faceattend/faceattend/internal/web/handlers"
)

func (s *Server) setupRoutes(recorder *attendance.Recorder, backends Backends) {
	// Create handlers
	enrollHandler := handlers.NewEnrollHandler(recorder)
	attendanceHandler := handlers.NewAttendanceHandler(recorder)
	recordsHandler := handlers.NewRecordsHandler(backends.Ledger)
	identitiesHandler := handlers.NewIdentitiesHandler(backends.Identities, backends.Searcher)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Identities
		r.Get("/identities", identitiesHandler.List)
		r.Post("/identities", enrollHandler.Enroll)
		r.Post("/identities/nearest", identitiesHandler.Nearest)

		// Attendance
		r.Post("/attendance", attendanceHandler.Mark)
		r.Get("/attendance", recordsHandler.List)
		r.Get("/attendance/export", recordsHandler.Export)
		r.Get("/attendance/stats", recordsHandler.Stats)
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex serves a placeholder page; the kiosk frontend is deployed separately.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Face Attendance</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Face Attendance API</h1>
        <p>The kiosk frontend is deployed separately.</p>
        <p>API is available at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
