package db

import (
	"context"
	"fmt"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"

	"github.com/jackc/pgx/v5"
)

type AuthUserRepo struct {
	db *DB
}

func NewAuthUserRepo(db *DB) *AuthUserRepo {
	return &AuthUserRepo{db: db}
}

const authUserColumns = `id, email, provider, user_metadata, app_metadata, created_at`

func scanIdentity(row pgx.Row, extra ...any) (model.Identity, error) {
	var u model.Identity
	dest := append([]any{
		&u.ID,
		&u.Email,
		&u.Provider,
		&u.UserMetadata,
		&u.AppMetadata,
		&u.CreatedAt,
	}, extra...)
	err := row.Scan(dest...)
	return u, err
}

// Create inserts an identity. passwordHash is nil for OAuth identities.
func (ar *AuthUserRepo) Create(ctx context.Context, user model.Identity, passwordHash []byte) (model.Identity, error) {
	if user.UserMetadata == nil {
		user.UserMetadata = map[string]any{}
	}
	if user.AppMetadata == nil {
		user.AppMetadata = map[string]any{"provider": user.Provider}
	}

	q := `
		INSERT INTO auth_users (
			email,
			provider,
			password_hash,
			user_metadata,
			app_metadata
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + authUserColumns

	created, err := scanIdentity(ar.db.Pool().QueryRow(ctx, q,
		user.Email,
		user.Provider,
		passwordHash,
		user.UserMetadata,
		user.AppMetadata,
	))
	if err != nil {
		return model.Identity{}, mapErr(err, errUserNotFound, myerrors.ErrEmailRegistered, "insert auth user")
	}
	return created, nil
}

func (ar *AuthUserRepo) GetByEmail(ctx context.Context, email string) (model.Identity, []byte, error) {
	q := `SELECT ` + authUserColumns + `, password_hash FROM auth_users WHERE email = $1`

	var hash []byte
	u, err := scanIdentity(ar.db.Pool().QueryRow(ctx, q, email), &hash)
	if err != nil {
		return model.Identity{}, nil, mapErr(err, errUserNotFound, nil, "get auth user by email")
	}
	return u, hash, nil
}

func (ar *AuthUserRepo) GetByID(ctx context.Context, id string) (model.Identity, error) {
	q := `SELECT ` + authUserColumns + ` FROM auth_users WHERE id = $1`

	u, err := scanIdentity(ar.db.Pool().QueryRow(ctx, q, id))
	if err != nil {
		return model.Identity{}, mapErr(err, errUserNotFound, nil, "get auth user")
	}
	return u, nil
}

// UpdateMetadata merges metadata into the stored user_metadata object.
func (ar *AuthUserRepo) UpdateMetadata(ctx context.Context, id string, metadata map[string]any) (model.Identity, error) {
	q := `
		UPDATE auth_users
		SET
			user_metadata = user_metadata || $2::jsonb,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + authUserColumns

	u, err := scanIdentity(ar.db.Pool().QueryRow(ctx, q, id, metadata))
	if err != nil {
		return model.Identity{}, mapErr(err, errUserNotFound, nil, "update user metadata")
	}
	return u, nil
}

func (ar *AuthUserRepo) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	q := `UPDATE auth_users SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	cmd, err := ar.db.Pool().Exec(ctx, q, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return errUserNotFound
	}
	return nil
}
