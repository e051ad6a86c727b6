package httpserver

import (
	"net/http"
	"time"

	"github.com/cinelog/cinelog/internal/domain"
)

type watchlistAddRequest struct {
	MovieID string `json:"movieId" validate:"required,uuid"`
}

type watchlistEntryResponse struct {
	ID      string        `json:"id"`
	MovieID string        `json:"movieId"`
	AddedAt time.Time     `json:"addedAt"`
	Movie   movieResponse `json:"movie"`
}

func (s *Server) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req watchlistAddRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}

	entry, err := s.repo.Watchlist.Add(r.Context(), identity.UserID, req.MovieID)
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to add watchlist entry")
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), entry.MovieID)
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to add watchlist entry")
		return
	}
	entry.Movie = movie
	s.respondJSON(w, http.StatusCreated, toWatchlistEntryResponse(entry))
}

func (s *Server) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	movieID, err := uuidParam(r, "movieID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	// Removing an absent entry is deliberately a success: DELETE is idempotent.
	if err := s.repo.Watchlist.Remove(r.Context(), identity.UserID, movieID); err != nil {
		s.respondRepositoryError(w, err, "Failed to remove watchlist entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	entries, err := s.repo.Watchlist.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to list watchlist")
		return
	}

	resp := make([]watchlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, toWatchlistEntryResponse(entry))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func toWatchlistEntryResponse(entry domain.WatchlistEntry) watchlistEntryResponse {
	return watchlistEntryResponse{
		ID:      entry.ID,
		MovieID: entry.MovieID,
		AddedAt: entry.AddedAt,
		Movie:   toMovieResponse(entry.Movie),
	}
}
