package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/model"
	"file-manager-server/internal/repository"
)

func newMockDB(t *testing.T) (*config.Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &config.Database{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

var fileColumns = []string{
	"id", "owner_id", "original_name", "storage_name", "mime_type",
	"size_bytes", "upload_date", "download_count", "share_token", "share_expires",
}

func TestFileRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewFileRepository(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM files\s+WHERE id = \$1 AND owner_id = \$2`).
			WithArgs("file-1", "owner-1").
			WillReturnRows(sqlmock.NewRows(fileColumns).
				AddRow("file-1", "owner-1", "backup.tar.gz", "blob-1", "application/gzip",
					int64(1024), time.Now(), int64(3), nil, nil))

		file, err := repo.GetByID(context.Background(), db.DB, "file-1", "owner-1")
		require.NoError(t, err)
		assert.Equal(t, "backup.tar.gz", file.OriginalName)
		assert.Equal(t, int64(1024), file.SizeBytes)
	})

	t.Run("wrong owner is the same as absent", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM files`).
			WithArgs("file-1", "intruder").
			WillReturnRows(sqlmock.NewRows(fileColumns))

		_, err := repo.GetByID(context.Background(), db.DB, "file-1", "intruder")
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_Create_Conflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewFileRepository(db)

	mock.ExpectExec(`INSERT INTO files`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), db.DB, &model.File{ID: "file-1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewFileRepository(db)

	t.Run("returns the storage name", func(t *testing.T) {
		mock.ExpectQuery(`DELETE FROM files\s+WHERE id = \$1 AND owner_id = \$2\s+RETURNING storage_name`).
			WithArgs("file-1", "owner-1").
			WillReturnRows(sqlmock.NewRows([]string{"storage_name"}).AddRow("blob-1"))

		storageName, err := repo.Delete(context.Background(), db.DB, "file-1", "owner-1")
		require.NoError(t, err)
		assert.Equal(t, "blob-1", storageName)
	})

	t.Run("absent row", func(t *testing.T) {
		mock.ExpectQuery(`DELETE FROM files`).
			WithArgs("ghost", "owner-1").
			WillReturnRows(sqlmock.NewRows([]string{"storage_name"}))

		_, err := repo.Delete(context.Background(), db.DB, "ghost", "owner-1")
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_SetShare(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewFileRepository(db)

	t.Run("updates the grant", func(t *testing.T) {
		expires := time.Now().Add(7 * 24 * time.Hour)
		mock.ExpectExec(`UPDATE files\s+SET share_token = \$3, share_expires = \$4`).
			WithArgs("file-1", "owner-1", "tok", expires).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetShare(context.Background(), db.DB, "file-1", "owner-1", "tok", expires))
	})

	t.Run("absent or not owned", func(t *testing.T) {
		expires := time.Now()
		mock.ExpectExec(`UPDATE files`).
			WithArgs("ghost", "owner-1", "tok", expires).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetShare(context.Background(), db.DB, "ghost", "owner-1", "tok", expires)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_GetByShareToken_ExpiredIsAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewFileRepository(db)

	// the statement itself filters on share_expires > NOW(), so an expired
	// grant comes back as no rows
	mock.ExpectQuery(`WHERE share_token = \$1 AND share_expires > NOW\(\)`).
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows(fileColumns))

	_, err := repo.GetByShareToken(context.Background(), db.DB, "stale")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_SweepExpiredShares(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewFileRepository(db)

	mock.ExpectExec(`UPDATE files\s+SET share_token = NULL, share_expires = NULL\s+WHERE share_expires < NOW\(\)`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	cleared, err := repo.SweepExpiredShares(context.Background(), db.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cleared)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_IncrementDownloadCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewFileRepository(db)

	mock.ExpectExec(`UPDATE files SET download_count = download_count \+ 1 WHERE id = \$1`).
		WithArgs("file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementDownloadCount(context.Background(), db.DB, "file-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
