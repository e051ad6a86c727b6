package domain

import "time"

// WatchlistEntry records a user's intent to watch a movie later. It carries
// the joined movie snapshot when returned from a list operation.
type WatchlistEntry struct {
	ID      string
	UserID  string
	MovieID string
	AddedAt time.Time
	Movie   Movie
}
