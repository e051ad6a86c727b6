package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cinelog/cinelog/internal/moviesearch"
)

type searchResponse struct {
	Results []moviesearch.Result `json:"results"`
}

// handleSearch proxies free-text catalog search to the external movie
// database so the upstream API key never reaches clients.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "query parameter is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.cfg.SearchTimeoutSecs)*time.Second)
	defer cancel()

	results, err := s.search.Search(ctx, query)
	if err != nil {
		s.logger.Printf("movie search failed for %q: %v", query, err)
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Movie search is temporarily unavailable")
		return
	}
	s.respondJSON(w, http.StatusOK, searchResponse{Results: results})
}
