package domain

import "time"

// Review represents a single user's rating and optional write-up for a movie.
// At most one review exists per (user, movie) pair.
type Review struct {
	ID        string
	UserID    string
	MovieID   string
	Rating    int
	Text      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewWithAuthor joins a review with the reviewer's public username.
type ReviewWithAuthor struct {
	Review
	Username string
}

// ReviewWithMovie joins a review with a snapshot of the reviewed movie.
type ReviewWithMovie struct {
	Review
	Movie Movie
}
