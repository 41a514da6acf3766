package repo

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"
)

// modListEntry is one row of the archive listing returned to the UI.
type modListEntry struct {
	Name         string    `json:"name"`
	LastModified time.Time `json:"lastModified"`
	Size         int64     `json:"size"`
}

// httpError logs err and writes it as a plain-text response with the
// given status.
func httpError(w http.ResponseWriter, status int, err error) {
	slog.Error("Request failed", "status", status, "error", err)
	http.Error(w, err.Error(), status)
}

// handleListMods returns every stored archive except the manifest
// itself, most recently modified first.
func (s *Server) handleListMods(w http.ResponseWriter, r *http.Request) {

	objects, err := s.store.List(r.Context())
	if err != nil {
		httpError(w, http.StatusInternalServerError, fmt.Errorf("failed to list object store: %w", err))
		return
	}

	entries := make([]modListEntry, 0, len(objects))
	for _, obj := range objects {
		if obj.Key == ManifestKey {
			continue
		}
		entries = append(entries, modListEntry{
			Name:         obj.Key,
			LastModified: obj.LastModified,
			Size:         obj.Size,
		})
	}

	slices.SortFunc(entries, func(a, b modListEntry) int {
		return b.LastModified.Compare(a.LastModified)
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		slog.Error("Failed to encode mod listing", "error", err)
	}
}

// handleUploadMod persists the request body as an archive and then
// republishes the manifest before answering. A reindex failure after a
// successful persist still fails the request; the uploaded bytes stay
// in place and the manifest is stale until the next reindex.
func (s *Server) handleUploadMod(w http.ResponseWriter, r *http.Request) {

	key := modKey(r.PathValue("name"))

	if err := s.uploadObject(r.Context(), key, r.Body); err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}

	slog.Info("Stored archive", "key", key)

	if err := s.reindex(r.Context()); err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleReindex forces a full manifest rebuild.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if err := s.reindex(r.Context()); err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleUsername returns the authenticated user's name in plain text.
func (s *Server) handleUsername(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, usernameFromContext(r.Context()))
}
