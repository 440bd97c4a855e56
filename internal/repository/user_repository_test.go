package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-manager-server/internal/apperr"
	"file-manager-server/internal/model"
	"file-manager-server/internal/repository"
)

var userColumns = []string{
	"id", "name", "email", "password_hash", "email_verified",
	"verification_token", "verification_expires", "reset_token", "reset_expires", "created_at",
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)

	token := "tok"
	expires := time.Now().Add(24 * time.Hour)
	user := &model.User{
		ID:                  "u1",
		Name:                "Jane",
		Email:               "jane@example.com",
		PasswordHash:        "$2a$10$hash",
		VerificationToken:   &token,
		VerificationExpires: &expires,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("u1", "Jane", "jane@example.com", "$2a$10$hash", token, expires).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), db.DB, user))
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), db.DB, user)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindByEmail(context.Background(), db.DB, "ghost@example.com")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_VerifyEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)

	t.Run("marks verified and clears the token", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users\s+SET email_verified = TRUE, verification_token = NULL, verification_expires = NULL\s+WHERE verification_token = \$1 AND verification_expires > NOW\(\)`).
			WithArgs("good-token").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow("u1", "Jane", "jane@example.com", "hash", true, nil, nil, nil, nil, time.Now()))

		user, err := repo.VerifyEmail(context.Background(), db.DB, "good-token")
		require.NoError(t, err)
		assert.True(t, user.EmailVerified)
		assert.Nil(t, user.VerificationToken)
	})

	t.Run("expired token matches no rows", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users`).
			WithArgs("stale-token").
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := repo.VerifyEmail(context.Background(), db.DB, "stale-token")
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ResetPassword(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)

	t.Run("updates hash and clears the pair", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users\s+SET password_hash = \$2, reset_token = NULL, reset_expires = NULL\s+WHERE reset_token = \$1 AND reset_expires > NOW\(\)`).
			WithArgs("reset-token", "new-hash").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow("u1", "Jane", "jane@example.com", "new-hash", true, nil, nil, nil, nil, time.Now()))

		user, err := repo.ResetPassword(context.Background(), db.DB, "reset-token", "new-hash")
		require.NoError(t, err)
		assert.Equal(t, "new-hash", user.PasswordHash)
	})

	t.Run("expired token", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users`).
			WithArgs("stale", "new-hash").
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := repo.ResetPassword(context.Background(), db.DB, "stale", "new-hash")
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SweepExpiredUnverified(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)

	mock.ExpectExec(`DELETE FROM users\s+WHERE email_verified = FALSE AND verification_expires < NOW\(\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	removed, err := repo.SweepExpiredUnverified(context.Background(), db.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	require.NoError(t, mock.ExpectationsWereMet())
}
