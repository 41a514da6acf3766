package repo

import (
	"net/http"
)

// Handler returns the service's HTTP handler: the OAuth entry points,
// the session-gated API, and the embedded static frontend.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// OAuth entry points, reachable without a session.
	mux.HandleFunc("GET /auth/{$}", s.handleAuthRedirect)
	mux.HandleFunc("GET /auth/authorized", s.handleAuthorized)

	// Session-gated API.
	mux.Handle("GET /api/username", s.RequireSession(authAPI, http.HandlerFunc(s.handleUsername)))
	mux.Handle("GET /api/mod", s.RequireSession(authAPI, http.HandlerFunc(s.handleListMods)))
	mux.Handle("POST /api/mod/{name}", s.RequireSession(authAPI, http.HandlerFunc(s.handleUploadMod)))
	mux.Handle("POST /api/reindex", s.RequireSession(authAPI, http.HandlerFunc(s.handleReindex)))

	// Static frontend assets.
	mux.Handle("GET /", http.FileServerFS(s.assets))

	return LogRequest(Recoverer(mux))
}
