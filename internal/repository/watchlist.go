package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinelog/cinelog/internal/domain"
)

// WatchlistRepository tracks per-user watchlist membership. Entries are
// independent of reviews and never touch the movie aggregate.
type WatchlistRepository struct {
	pool *pgxpool.Pool
}

// Add inserts a (user, movie) entry. A duplicate pair fails with ErrDuplicate
// and an unknown movie with ErrNotFound.
func (r *WatchlistRepository) Add(ctx context.Context, userID, movieID string) (domain.WatchlistEntry, error) {
	const query = `
        INSERT INTO watchlist (id, user_id, movie_id)
        VALUES ($1,$2,$3)
        RETURNING id, user_id, movie_id, added_at
    `
	var entry domain.WatchlistEntry
	err := r.pool.QueryRow(ctx, query, uuid.NewString(), userID, movieID).Scan(
		&entry.ID, &entry.UserID, &entry.MovieID, &entry.AddedAt)
	if err != nil {
		return domain.WatchlistEntry{}, mapPgError(err)
	}
	return entry, nil
}

// Remove deletes a (user, movie) entry. Removing an absent entry is a no-op.
func (r *WatchlistRepository) Remove(ctx context.Context, userID, movieID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM watchlist WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return fmt.Errorf("remove watchlist entry: %w", err)
	}
	return nil
}

// ListByUser returns the user's entries newest-first, each carrying the joined
// movie snapshot.
func (r *WatchlistRepository) ListByUser(ctx context.Context, userID string) ([]domain.WatchlistEntry, error) {
	const query = `
        SELECT w.id, w.user_id, w.movie_id, w.added_at,
               m.id, m.title, m.genres, m.release_year, m.director, m.actors, m.synopsis,
               m.poster_url, m.trailer_url, m.runtime_minutes, m.average_rating, m.total_reviews,
               m.created_at, m.updated_at
        FROM watchlist w
        JOIN movies m ON m.id = w.movie_id
        WHERE w.user_id = $1
        ORDER BY w.added_at DESC, w.id DESC
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.WatchlistEntry, 0)
	for rows.Next() {
		var entry domain.WatchlistEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.MovieID, &entry.AddedAt,
			&entry.Movie.ID, &entry.Movie.Title, &entry.Movie.Genres, &entry.Movie.ReleaseYear,
			&entry.Movie.Director, &entry.Movie.Actors, &entry.Movie.Synopsis,
			&entry.Movie.PosterURL, &entry.Movie.TrailerURL, &entry.Movie.RuntimeMinutes,
			&entry.Movie.AverageRating, &entry.Movie.TotalReviews,
			&entry.Movie.CreatedAt, &entry.Movie.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
