package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinelog/cinelog/internal/domain"
)

// ReviewsRepository owns review mutations and the derived movie aggregate.
//
// Every mutation runs inside a single transaction that first locks the target
// movie row. The lock serializes recomputation per movie, so two concurrent
// mutations of the same movie's reviews cannot compute the aggregate from a
// stale snapshot, while reviews of different movies proceed in parallel.
// There is no other write path to movies.average_rating/total_reviews.
type ReviewsRepository struct {
	pool *pgxpool.Pool
}

const reviewColumns = `id, user_id, movie_id, rating, review_text, created_at, updated_at`

// refreshAggregateSQL rewrites the movie's derived fields from the live
// review set. COALESCE floors the average at 0.00 when the last review goes.
const refreshAggregateSQL = `
    UPDATE movies
    SET average_rating = COALESCE((SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE movie_id = $1), 0),
        total_reviews  = (SELECT COUNT(*) FROM reviews WHERE movie_id = $1),
        updated_at     = now()
    WHERE id = $1
`

// ReviewSubmitParams captures the payload required to create a review.
type ReviewSubmitParams struct {
	UserID  string
	MovieID string
	Rating  int
	Text    *string
}

// ReviewUpdateParams carries the mutable review fields. Nil means unchanged,
// so existing text can be revised but not cleared back to empty; the movie a
// review belongs to can never be reassigned.
type ReviewUpdateParams struct {
	Rating *int
	Text   *string
}

// ReviewListPage controls offset pagination for review listings.
type ReviewListPage struct {
	Limit  int
	Offset int
}

func (p *ReviewListPage) normalize() {
	if p.Limit <= 0 {
		p.Limit = 20
	} else if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// Submit creates a review and recomputes the movie aggregate in one
// transaction. A second review for the same (user, movie) pair fails with
// ErrDuplicate; an unknown movie fails with ErrNotFound.
func (r *ReviewsRepository) Submit(ctx context.Context, params ReviewSubmitParams) (domain.Review, error) {
	if !validRating(params.Rating) {
		return domain.Review{}, ErrInvalidInput
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Review{}, fmt.Errorf("begin submit review: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockMovie(ctx, tx, params.MovieID); err != nil {
		return domain.Review{}, err
	}

	query := fmt.Sprintf(`
        INSERT INTO reviews (id, user_id, movie_id, rating, review_text)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, reviewColumns)

	review, err := scanReview(tx.QueryRow(ctx, query,
		uuid.NewString(), params.UserID, params.MovieID, params.Rating, params.Text))
	if err != nil {
		return domain.Review{}, mapPgError(err)
	}

	if err := refreshAggregate(ctx, tx, params.MovieID); err != nil {
		return domain.Review{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Review{}, fmt.Errorf("commit submit review: %w", err)
	}
	return review, nil
}

// Update modifies a review owned by actingUserID and recomputes the movie
// aggregate in the same transaction. Non-owners get ErrForbidden.
func (r *ReviewsRepository) Update(ctx context.Context, reviewID, actingUserID string, params ReviewUpdateParams) (domain.Review, error) {
	if params.Rating != nil && !validRating(*params.Rating) {
		return domain.Review{}, ErrInvalidInput
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Review{}, fmt.Errorf("begin update review: %w", err)
	}
	defer tx.Rollback(ctx)

	movieID, err := authorizeReview(ctx, tx, reviewID, actingUserID)
	if err != nil {
		return domain.Review{}, err
	}
	if err := lockMovie(ctx, tx, movieID); err != nil {
		return domain.Review{}, err
	}

	query := fmt.Sprintf(`
        UPDATE reviews
        SET rating = COALESCE($2, rating),
            review_text = COALESCE($3, review_text),
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, reviewColumns)

	review, err := scanReview(tx.QueryRow(ctx, query, reviewID, params.Rating, params.Text))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, mapPgError(err)
	}

	if err := refreshAggregate(ctx, tx, movieID); err != nil {
		return domain.Review{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Review{}, fmt.Errorf("commit update review: %w", err)
	}
	return review, nil
}

// Delete removes a review owned by actingUserID and recomputes the movie
// aggregate in the same transaction. Deleting the last review resets the
// aggregate to 0.00/0.
func (r *ReviewsRepository) Delete(ctx context.Context, reviewID, actingUserID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin delete review: %w", err)
	}
	defer tx.Rollback(ctx)

	movieID, err := authorizeReview(ctx, tx, reviewID, actingUserID)
	if err != nil {
		return err
	}
	if err := lockMovie(ctx, tx, movieID); err != nil {
		return err
	}

	// RETURNING confirms the row was still present once the lock was held.
	var deletedMovieID string
	err = tx.QueryRow(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING movie_id`, reviewID).Scan(&deletedMovieID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := refreshAggregate(ctx, tx, deletedMovieID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete review: %w", err)
	}
	return nil
}

// GetByID fetches a single review.
func (r *ReviewsRepository) GetByID(ctx context.Context, reviewID string) (domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)
	review, err := scanReview(r.pool.QueryRow(ctx, query, reviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

// GetByUserAndMovie fetches the acting user's review of a movie, if any.
func (r *ReviewsRepository) GetByUserAndMovie(ctx context.Context, userID, movieID string) (domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE user_id = $1 AND movie_id = $2`, reviewColumns)
	review, err := scanReview(r.pool.QueryRow(ctx, query, userID, movieID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

// ListByMovie returns a movie's reviews newest-first with the reviewer's
// username joined in, plus the total count for pagination.
func (r *ReviewsRepository) ListByMovie(ctx context.Context, movieID string, page ReviewListPage) ([]domain.ReviewWithAuthor, int, error) {
	page.normalize()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE movie_id = $1`, movieID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	if total == 0 {
		return []domain.ReviewWithAuthor{}, 0, nil
	}

	query := `
        SELECT r.id, r.user_id, r.movie_id, r.rating, r.review_text, r.created_at, r.updated_at,
               COALESCE(p.username, '') AS username
        FROM reviews r
        LEFT JOIN profiles p ON p.user_id = r.user_id
        WHERE r.movie_id = $1
        ORDER BY r.created_at DESC, r.id DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.pool.Query(ctx, query, movieID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]domain.ReviewWithAuthor, 0)
	for rows.Next() {
		var item domain.ReviewWithAuthor
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.MovieID, &item.Rating, &item.Text,
			&item.CreatedAt, &item.UpdatedAt, &item.Username,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByUser returns a user's reviews newest-first with the reviewed movie
// snapshot joined in.
func (r *ReviewsRepository) ListByUser(ctx context.Context, userID string) ([]domain.ReviewWithMovie, error) {
	query := `
        SELECT r.id, r.user_id, r.movie_id, r.rating, r.review_text, r.created_at, r.updated_at,
               m.id, m.title, m.genres, m.release_year, m.director, m.actors, m.synopsis,
               m.poster_url, m.trailer_url, m.runtime_minutes, m.average_rating, m.total_reviews,
               m.created_at, m.updated_at
        FROM reviews r
        JOIN movies m ON m.id = r.movie_id
        WHERE r.user_id = $1
        ORDER BY r.created_at DESC, r.id DESC
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ReviewWithMovie, 0)
	for rows.Next() {
		var item domain.ReviewWithMovie
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.MovieID, &item.Rating, &item.Text,
			&item.CreatedAt, &item.UpdatedAt,
			&item.Movie.ID, &item.Movie.Title, &item.Movie.Genres, &item.Movie.ReleaseYear,
			&item.Movie.Director, &item.Movie.Actors, &item.Movie.Synopsis,
			&item.Movie.PosterURL, &item.Movie.TrailerURL, &item.Movie.RuntimeMinutes,
			&item.Movie.AverageRating, &item.Movie.TotalReviews,
			&item.Movie.CreatedAt, &item.Movie.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// authorizeReview resolves the review's owner and movie, enforcing ownership
// before any write is attempted.
func authorizeReview(ctx context.Context, tx pgx.Tx, reviewID, actingUserID string) (string, error) {
	var ownerID, movieID string
	err := tx.QueryRow(ctx, `SELECT user_id, movie_id FROM reviews WHERE id = $1`, reviewID).Scan(&ownerID, &movieID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if ownerID != actingUserID {
		return "", ErrForbidden
	}
	return movieID, nil
}

// lockMovie takes the per-movie row lock that serializes aggregate
// recomputation. Unknown movie ids surface as ErrNotFound.
func lockMovie(ctx context.Context, tx pgx.Tx, movieID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM movies WHERE id = $1 FOR UPDATE`, movieID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func refreshAggregate(ctx context.Context, tx pgx.Tx, movieID string) error {
	tag, err := tx.Exec(ctx, refreshAggregateSQL, movieID)
	if err != nil {
		return fmt.Errorf("refresh aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refresh aggregate: movie %s vanished mid-transaction", movieID)
	}
	return nil
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.MovieID,
		&review.Rating,
		&review.Text,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return domain.Review{}, err
	}
	return review, nil
}
