package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/model"
	"file-manager-server/internal/util"
)

const userColumns = `id, name, email, password_hash, email_verified,
	verification_token, verification_expires, reset_token, reset_expires, created_at`

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// Create : inserts an unverified account with its verification token pair
func (r *UserRepository) Create(ctx context.Context, exec sqlx.ExtContext, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, verification_token, verification_expires)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.VerificationToken,
		user.VerificationExpires,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(apperr.KindConflict, "user already exists with this email", err)
		}
		return util.LogError("[UserRepo] inserting user failed", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] finding user by email failed", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.User, error) {
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] finding user by id failed", err)
	}
	return &user, nil
}

// VerifyEmail : marks the account verified and clears the token pair in one
// statement, so the token can never be redeemed twice
func (r *UserRepository) VerifyEmail(ctx context.Context, exec sqlx.ExtContext, token string) (*model.User, error) {
	query := `
		UPDATE users
		SET email_verified = TRUE, verification_token = NULL, verification_expires = NULL
		WHERE verification_token = $1 AND verification_expires > NOW()
		RETURNING ` + userColumns

	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Validation("invalid or expired verification token")
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] verifying email failed", err)
	}
	return &user, nil
}

// RotateVerificationToken : invalidates the previous token by overwrite
func (r *UserRepository) RotateVerificationToken(ctx context.Context, exec sqlx.ExtContext, userID string, token string, expires time.Time) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE users SET verification_token = $2, verification_expires = $3 WHERE id = $1
	`, userID, token, expires)
	if err != nil {
		return util.LogError("[UserRepo] rotating verification token failed", err)
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, exec sqlx.ExtContext, userID string, token string, expires time.Time) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE users SET reset_token = $2, reset_expires = $3 WHERE id = $1
	`, userID, token, expires)
	if err != nil {
		return util.LogError("[UserRepo] storing reset token failed", err)
	}
	return nil
}

// ResetPassword : updates the credential and clears the reset pair together
func (r *UserRepository) ResetPassword(ctx context.Context, exec sqlx.ExtContext, token string, passwordHash string) (*model.User, error) {
	query := `
		UPDATE users
		SET password_hash = $2, reset_token = NULL, reset_expires = NULL
		WHERE reset_token = $1 AND reset_expires > NOW()
		RETURNING ` + userColumns

	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, token, passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Validation("invalid or expired reset token")
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] resetting password failed", err)
	}
	return &user, nil
}

// SweepExpiredUnverified : deletes accounts that never verified before their
// token expired; idempotent
func (r *UserRepository) SweepExpiredUnverified(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
	res, err := exec.ExecContext(ctx, `
		DELETE FROM users
		WHERE email_verified = FALSE AND verification_expires < NOW()
	`)
	if err != nil {
		return 0, util.LogError("[UserRepo] sweeping unverified accounts failed", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
