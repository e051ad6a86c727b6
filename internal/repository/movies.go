package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinelog/cinelog/internal/domain"
)

// MoviesRepository provides persistence helpers for catalog entries.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    title,
    genres,
    release_year,
    director,
    actors,
    synopsis,
    poster_url,
    trailer_url,
    runtime_minutes,
    average_rating,
    total_reviews,
    created_at,
    updated_at
`

// MovieCreateParams bundles the fields required to ingest a movie. Aggregate
// fields are not part of the payload; they start at their zero defaults.
type MovieCreateParams struct {
	Title          string
	Genres         []string
	ReleaseYear    int
	Director       string
	Actors         []string
	Synopsis       string
	PosterURL      *string
	TrailerURL     *string
	RuntimeMinutes *int
}

// MovieListFilters encapsulates search and pagination options.
type MovieListFilters struct {
	Query  *string
	Genre  *string
	Year   *int
	Limit  int
	Cursor *MovieCursor
}

// MovieCursor allows stable pagination by created_at/id.
type MovieCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// MovieListResult returns the paginated payload.
type MovieListResult struct {
	Items      []domain.Movie
	NextCursor *string
}

// Create inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (title, genres, release_year, director, actors, synopsis, poster_url, trailer_url, runtime_minutes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query,
		params.Title, params.Genres, params.ReleaseYear, params.Director, params.Actors,
		params.Synopsis, params.PosterURL, params.TrailerURL, params.RuntimeMinutes)
	return scanMovie(row)
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// List returns movies that match the provided filters.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) (MovieListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	} else if filters.Limit > 100 {
		filters.Limit = 100
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Query != nil && strings.TrimSpace(*filters.Query) != "" {
		q := "%" + strings.TrimSpace(*filters.Query) + "%"
		p1 := arg(q)
		p2 := arg(q)
		where = append(where, fmt.Sprintf("(title ILIKE %s OR director ILIKE %s)", p1, p2))
	}
	if filters.Genre != nil && strings.TrimSpace(*filters.Genre) != "" {
		where = append(where, fmt.Sprintf("%s = ANY (genres)", arg(strings.TrimSpace(*filters.Genre))))
	}
	if filters.Year != nil {
		where = append(where, fmt.Sprintf("release_year = %s", arg(*filters.Year)))
	}
	if filters.Cursor != nil {
		cursorCreated := arg(filters.Cursor.CreatedAt)
		cursorID := arg(filters.Cursor.ID)
		where = append(where, fmt.Sprintf("(created_at, id) < (%s, %s::uuid)", cursorCreated, cursorID))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(movieColumns)
	queryBuilder.WriteString(" FROM movies")
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", filters.Limit))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return MovieListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return MovieListResult{}, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return MovieListResult{}, err
	}

	var nextCursor *string
	if len(items) == filters.Limit {
		last := items[len(items)-1]
		token, err := encodeCursor(MovieCursor{CreatedAt: last.CreatedAt, ID: last.ID})
		if err != nil {
			return MovieListResult{}, err
		}
		nextCursor = &token
	}

	return MovieListResult{Items: items, NextCursor: nextCursor}, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genres,
		&movie.ReleaseYear,
		&movie.Director,
		&movie.Actors,
		&movie.Synopsis,
		&movie.PosterURL,
		&movie.TrailerURL,
		&movie.RuntimeMinutes,
		&movie.AverageRating,
		&movie.TotalReviews,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}

func encodeCursor(c MovieCursor) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeCursor parses a cursor token into a MovieCursor.
func DecodeCursor(token string) (*MovieCursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var cursor MovieCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor payload: %w", err)
	}
	return &cursor, nil
}
