package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cinelog/cinelog/internal/domain"
	"github.com/cinelog/cinelog/internal/repository"
)

type profileUpdateRequest struct {
	Username       *string  `json:"username" validate:"omitempty,min=3,max=50"`
	DisplayName    *string  `json:"displayName" validate:"omitempty,max=100"`
	Bio            *string  `json:"bio" validate:"omitempty,max=2000"`
	FavoriteGenres []string `json:"favoriteGenres" validate:"omitempty,dive,required"`
}

type profileResponse struct {
	Username       string    `json:"username"`
	DisplayName    *string   `json:"displayName,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	FavoriteGenres []string  `json:"favoriteGenres"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing username parameter")
		return
	}

	profile, err := s.repo.Profiles.GetByUsername(r.Context(), username)
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to fetch profile")
		return
	}
	s.respondJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) handleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	profile, err := s.repo.Profiles.GetByUserID(r.Context(), identity.UserID)
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to fetch profile")
		return
	}
	s.respondJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) handleUpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req profileUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}

	profile, err := s.repo.Profiles.Update(r.Context(), identity.UserID, repository.ProfileUpdateParams{
		Username:       normalizeStringPtr(req.Username),
		DisplayName:    req.DisplayName,
		Bio:            req.Bio,
		FavoriteGenres: req.FavoriteGenres,
	})
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to update profile")
		return
	}
	s.respondJSON(w, http.StatusOK, toProfileResponse(profile))
}

func toProfileResponse(profile domain.Profile) profileResponse {
	return profileResponse{
		Username:       profile.Username,
		DisplayName:    profile.DisplayName,
		Bio:            profile.Bio,
		FavoriteGenres: profile.FavoriteGenres,
		CreatedAt:      profile.CreatedAt,
		UpdatedAt:      profile.UpdatedAt,
	}
}
