package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinelog/cinelog/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicate indicates a uniqueness constraint rejected the write, e.g. a
// second review or watchlist entry for the same (user, movie) pair.
var ErrDuplicate = errors.New("repository: duplicate entry")

// ErrForbidden indicates the acting user does not own the target row.
var ErrForbidden = errors.New("repository: forbidden")

// ErrInvalidInput indicates a value was rejected before any write, e.g. a
// rating outside [1,5].
var ErrInvalidInput = errors.New("repository: invalid input")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Movies    *MoviesRepository
	Reviews   *ReviewsRepository
	Watchlist *WatchlistRepository
	Profiles  *ProfilesRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Movies:    &MoviesRepository{pool: pool},
		Reviews:   &ReviewsRepository{pool: pool},
		Watchlist: &WatchlistRepository{pool: pool},
		Profiles:  &ProfilesRepository{pool: pool},
	}
}

// Postgres error codes this package cares about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapPgError translates constraint violations into the package sentinels.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return ErrDuplicate
	case pgForeignKeyViolation:
		return ErrNotFound
	case pgCheckViolation:
		return ErrInvalidInput
	}
	return err
}
