package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cinelog/cinelog/internal/domain"
	"github.com/cinelog/cinelog/internal/repository"
)

type reviewSubmitRequest struct {
	Rating int     `json:"rating" validate:"required,gte=1,lte=5"`
	Text   *string `json:"text" validate:"omitempty,max=5000"`
}

type reviewUpdateRequest struct {
	Rating *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Text   *string `json:"text" validate:"omitempty,max=5000"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MovieID   string    `json:"movieId"`
	Rating    int       `json:"rating"`
	Text      *string   `json:"text,omitempty"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type reviewListResponse struct {
	Items []reviewResponse `json:"items"`
	Total int              `json:"total"`
}

type reviewWithMovieResponse struct {
	reviewResponse
	Movie movieResponse `json:"movie"`
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
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

	var req reviewSubmitRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}

	review, err := s.repo.Reviews.Submit(r.Context(), repository.ReviewSubmitParams{
		UserID:  identity.UserID,
		MovieID: movieID,
		Rating:  req.Rating,
		Text:    normalizeStringPtr(req.Text),
	})
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to submit review")
		return
	}
	s.respondJSON(w, http.StatusCreated, toReviewResponse(review))
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	reviewID, err := uuidParam(r, "reviewID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req reviewUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}
	if req.Rating == nil && req.Text == nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "At least one of rating or text is required")
		return
	}

	review, err := s.repo.Reviews.Update(r.Context(), reviewID, identity.UserID, repository.ReviewUpdateParams{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to update review")
		return
	}
	s.respondJSON(w, http.StatusOK, toReviewResponse(review))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	reviewID, err := uuidParam(r, "reviewID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.repo.Reviews.Delete(r.Context(), reviewID, identity.UserID); err != nil {
		s.respondRepositoryError(w, err, "Failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMovieReviews(w http.ResponseWriter, r *http.Request) {
	movieID, err := uuidParam(r, "movieID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	page := repository.ReviewListPage{}
	if val := strings.TrimSpace(r.URL.Query().Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid limit value")
			return
		}
		page.Limit = limit
	}
	if val := strings.TrimSpace(r.URL.Query().Get("offset")); val != "" {
		offset, err := strconv.Atoi(val)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid offset value")
			return
		}
		page.Offset = offset
	}

	// Listing reviews of an unknown movie is a 404, not an empty page.
	if _, err := s.repo.Movies.GetByID(r.Context(), movieID); err != nil {
		s.respondRepositoryError(w, err, "Failed to list reviews")
		return
	}

	items, total, err := s.repo.Reviews.ListByMovie(r.Context(), movieID, page)
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to list reviews")
		return
	}

	resp := reviewListResponse{Items: make([]reviewResponse, 0, len(items)), Total: total}
	for _, item := range items {
		entry := toReviewResponse(item.Review)
		entry.Username = item.Username
		resp.Items = append(resp.Items, entry)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMyReviews(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	items, err := s.repo.Reviews.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to list reviews")
		return
	}

	resp := make([]reviewWithMovieResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, reviewWithMovieResponse{
			reviewResponse: toReviewResponse(item.Review),
			Movie:          toMovieResponse(item.Movie),
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func toReviewResponse(review domain.Review) reviewResponse {
	return reviewResponse{
		ID:        review.ID,
		UserID:    review.UserID,
		MovieID:   review.MovieID,
		Rating:    review.Rating,
		Text:      review.Text,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}
