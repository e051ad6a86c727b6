package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cinelog/cinelog/internal/domain"
	"github.com/cinelog/cinelog/internal/repository"
)

type movieCreateRequest struct {
	Title          string   `json:"title" validate:"required,max=500"`
	Genres         []string `json:"genres" validate:"required,min=1,dive,required"`
	ReleaseYear    int      `json:"releaseYear" validate:"required,gte=1878,lte=2100"`
	Director       string   `json:"director" validate:"max=300"`
	Actors         []string `json:"actors" validate:"omitempty,dive,required"`
	Synopsis       string   `json:"synopsis" validate:"max=10000"`
	PosterURL      *string  `json:"posterUrl" validate:"omitempty,url"`
	TrailerURL     *string  `json:"trailerUrl" validate:"omitempty,url"`
	RuntimeMinutes *int     `json:"runtimeMinutes" validate:"omitempty,gt=0,lte=1000"`
}

type movieResponse struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Genres         []string `json:"genres"`
	ReleaseYear    int      `json:"releaseYear"`
	Director       string   `json:"director,omitempty"`
	Actors         []string `json:"actors,omitempty"`
	Synopsis       string   `json:"synopsis,omitempty"`
	PosterURL      *string  `json:"posterUrl,omitempty"`
	TrailerURL     *string  `json:"trailerUrl,omitempty"`
	RuntimeMinutes *int     `json:"runtimeMinutes,omitempty"`
	AverageRating  float64  `json:"averageRating"`
	TotalReviews   int      `json:"totalReviews"`
}

type movieListResponse struct {
	Items      []movieResponse `json:"items"`
	NextCursor *string         `json:"nextCursor,omitempty"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, err := buildMovieFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Movies.List(r.Context(), filters)
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to list movies")
		return
	}

	items := make([]movieResponse, 0, len(result.Items))
	for _, movie := range result.Items {
		items = append(items, toMovieResponse(movie))
	}
	s.respondJSON(w, http.StatusOK, movieListResponse{Items: items, NextCursor: result.NextCursor})
}

func buildMovieFilters(query url.Values) (repository.MovieListFilters, error) {
	var filters repository.MovieListFilters

	if q := strings.TrimSpace(query.Get("q")); q != "" {
		filters.Query = &q
	}
	if val := strings.TrimSpace(query.Get("genre")); val != "" {
		filters.Genre = &val
	}
	if val := strings.TrimSpace(query.Get("year")); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil {
			return filters, fmt.Errorf("invalid year value")
		}
		filters.Year = &year
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return filters, fmt.Errorf("invalid limit value")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("cursor")); val != "" {
		cursor, err := repository.DecodeCursor(val)
		if err != nil {
			return filters, fmt.Errorf("invalid cursor")
		}
		filters.Cursor = cursor
	}
	return filters, nil
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := uuidParam(r, "movieID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), movieID)
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to fetch movie")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	if !s.verifyAdmin(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}

	movie, err := s.repo.Movies.Create(r.Context(), repository.MovieCreateParams{
		Title:          strings.TrimSpace(req.Title),
		Genres:         req.Genres,
		ReleaseYear:    req.ReleaseYear,
		Director:       strings.TrimSpace(req.Director),
		Actors:         req.Actors,
		Synopsis:       strings.TrimSpace(req.Synopsis),
		PosterURL:      normalizeStringPtr(req.PosterURL),
		TrailerURL:     normalizeStringPtr(req.TrailerURL),
		RuntimeMinutes: req.RuntimeMinutes,
	})
	if err != nil {
		s.respondRepositoryError(w, err, "Failed to create movie")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%s", movie.ID))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:             movie.ID,
		Title:          movie.Title,
		Genres:         movie.Genres,
		ReleaseYear:    movie.ReleaseYear,
		Director:       movie.Director,
		Actors:         movie.Actors,
		Synopsis:       movie.Synopsis,
		PosterURL:      movie.PosterURL,
		TrailerURL:     movie.TrailerURL,
		RuntimeMinutes: movie.RuntimeMinutes,
		AverageRating:  movie.AverageRating,
		TotalReviews:   movie.TotalReviews,
	}
}

// uuidParam extracts and validates a uuid path parameter before it reaches
// the database layer.
func uuidParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return "", fmt.Errorf("missing %s parameter", name)
	}
	if err := uuid.Validate(raw); err != nil {
		return "", fmt.Errorf("invalid %s parameter", name)
	}
	return raw, nil
}
