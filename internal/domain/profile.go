package domain

import "time"

// Profile holds user-facing identity data keyed one-to-one with an externally
// managed account. The account holder owns all mutations; reads are public.
type Profile struct {
	ID             string
	UserID         string
	Username       string
	DisplayName    *string
	Bio            *string
	FavoriteGenres []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
