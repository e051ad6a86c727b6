package domain

import "time"

// Movie represents the canonical catalog entry in the database/service.
// AverageRating and TotalReviews are derived from the review set and are
// written only by the review mutation transactions.
type Movie struct {
	ID             string
	Title          string
	Genres         []string
	ReleaseYear    int
	Director       string
	Actors         []string
	Synopsis       string
	PosterURL      *string
	TrailerURL     *string
	RuntimeMinutes *int
	AverageRating  float64
	TotalReviews   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
