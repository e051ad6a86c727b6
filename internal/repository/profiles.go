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

// ProfilesRepository stores user-facing identity data keyed on the external
// account id. Reads are public; mutations are restricted at the HTTP layer to
// the owning account.
type ProfilesRepository struct {
	pool *pgxpool.Pool
}

const profileColumns = `id, user_id, username, display_name, bio, favorite_genres, created_at, updated_at`

// ProfileUpdateParams carries the owner-mutable fields. Nil means unchanged.
type ProfileUpdateParams struct {
	Username       *string
	DisplayName    *string
	Bio            *string
	FavoriteGenres []string
}

// Ensure provisions a profile row for the account if one does not exist yet
// and returns the current profile. When the preferred username is already
// taken by another account, a short unique suffix is appended.
func (r *ProfilesRepository) Ensure(ctx context.Context, userID, username string) (domain.Profile, error) {
	profile, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Profile{}, err
	}

	insert := fmt.Sprintf(`
        INSERT INTO profiles (id, user_id, username)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id) DO NOTHING
        RETURNING %s
    `, profileColumns)

	profile, err = scanProfile(r.pool.QueryRow(ctx, insert, uuid.NewString(), userID, username))
	if err == nil {
		return profile, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		// Another request provisioned the row concurrently.
		return r.GetByUserID(ctx, userID)
	}
	if errors.Is(mapPgError(err), ErrDuplicate) {
		suffixed := username + "-" + uuid.NewString()[:8]
		profile, err = scanProfile(r.pool.QueryRow(ctx, insert, uuid.NewString(), userID, suffixed))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.GetByUserID(ctx, userID)
			}
			return domain.Profile{}, mapPgError(err)
		}
		return profile, nil
	}
	return domain.Profile{}, err
}

// GetByUserID fetches the profile owned by the given account.
func (r *ProfilesRepository) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = $1`, profileColumns)
	profile, err := scanProfile(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

// GetByUsername fetches a profile by its public username.
func (r *ProfilesRepository) GetByUsername(ctx context.Context, username string) (domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE username = $1`, profileColumns)
	profile, err := scanProfile(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

// Update mutates the owner's profile. A username collision with another
// account fails with ErrDuplicate.
func (r *ProfilesRepository) Update(ctx context.Context, userID string, params ProfileUpdateParams) (domain.Profile, error) {
	query := fmt.Sprintf(`
        UPDATE profiles
        SET username = COALESCE($2, username),
            display_name = COALESCE($3, display_name),
            bio = COALESCE($4, bio),
            favorite_genres = COALESCE($5::text[], favorite_genres),
            updated_at = now()
        WHERE user_id = $1
        RETURNING %s
    `, profileColumns)

	profile, err := scanProfile(r.pool.QueryRow(ctx, query,
		userID, params.Username, params.DisplayName, params.Bio, params.FavoriteGenres))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrNotFound
		}
		return domain.Profile{}, mapPgError(err)
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var profile domain.Profile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Username,
		&profile.DisplayName,
		&profile.Bio,
		&profile.FavoriteGenres,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}
