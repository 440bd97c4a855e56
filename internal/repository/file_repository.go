package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/model"
	"file-manager-server/internal/util"
)

type FileRepository struct {
	*config.Database
}

func NewFileRepository(database *config.Database) *FileRepository {
	return &FileRepository{database}
}

// Create : inserts a new catalog row; called only after the blob is durable
func (r *FileRepository) Create(ctx context.Context, exec sqlx.ExtContext, file *model.File) error {
	query := `
		INSERT INTO files (id, owner_id, original_name, storage_name, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		file.ID,
		file.OwnerID,
		file.OriginalName,
		file.StorageName,
		file.MimeType,
		file.SizeBytes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(apperr.KindConflict, "file id collision", err)
		}
		return util.LogError("[FileRepo] inserting file row failed", err)
	}
	return nil
}

// ListByOwner : the owner's files, newest upload first
func (r *FileRepository) ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]model.File, error) {
	query := `
		SELECT id, owner_id, original_name, storage_name, mime_type, size_bytes,
		       upload_date, download_count, share_token, share_expires
		FROM files
		WHERE owner_id = $1
		ORDER BY upload_date DESC
	`

	files := []model.File{}
	if err := sqlx.SelectContext(ctx, exec, &files, query, ownerID); err != nil {
		return nil, util.LogError("[FileRepo] listing files failed", err)
	}

	return files, nil
}

// GetByID : absent and not-owned are the same NotFound to the caller
func (r *FileRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, fileID string, ownerID string) (*model.File, error) {
	query := `
		SELECT id, owner_id, original_name, storage_name, mime_type, size_bytes,
		       upload_date, download_count, share_token, share_expires
		FROM files
		WHERE id = $1 AND owner_id = $2
	`

	var file model.File
	err := sqlx.GetContext(ctx, exec, &file, query, fileID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("file not found")
	}
	if err != nil {
		return nil, util.LogError("[FileRepo] fetching file failed", err)
	}

	return &file, nil
}

// IncrementDownloadCount : single-statement row update, safe under concurrency
func (r *FileRepository) IncrementDownloadCount(ctx context.Context, exec sqlx.ExtContext, fileID string) error {
	_, err := exec.ExecContext(ctx, `UPDATE files SET download_count = download_count + 1 WHERE id = $1`, fileID)
	if err != nil {
		return util.LogError("[FileRepo] incrementing download count failed", err)
	}
	return nil
}

// Delete : removes the row and returns the storage name so the caller can
// remove the blob afterwards
func (r *FileRepository) Delete(ctx context.Context, exec sqlx.ExtContext, fileID string, ownerID string) (string, error) {
	query := `
		DELETE FROM files
		WHERE id = $1 AND owner_id = $2
		RETURNING storage_name
	`

	var storageName string
	err := exec.QueryRowxContext(ctx, query, fileID, ownerID).Scan(&storageName)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.NotFound("file not found")
	}
	if err != nil {
		return "", util.LogError("[FileRepo] deleting file row failed", err)
	}

	return storageName, nil
}

// SetShare : overwrites any prior token, one live share grant per file
func (r *FileRepository) SetShare(ctx context.Context, exec sqlx.ExtContext, fileID string, ownerID string, token string, expires time.Time) error {
	query := `
		UPDATE files
		SET share_token = $3, share_expires = $4
		WHERE id = $1 AND owner_id = $2
	`

	res, err := exec.ExecContext(ctx, query, fileID, ownerID, token, expires)
	if err != nil {
		return util.LogError("[FileRepo] storing share token failed", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return util.LogError("[FileRepo] reading share update result failed", err)
	}
	if affected == 0 {
		return apperr.NotFound("file not found")
	}

	return nil
}

// GetByShareToken : token possession is the credential, no owner check.
// Expiry is evaluated in the same statement.
func (r *FileRepository) GetByShareToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.File, error) {
	query := `
		SELECT id, owner_id, original_name, storage_name, mime_type, size_bytes,
		       upload_date, download_count, share_token, share_expires
		FROM files
		WHERE share_token = $1 AND share_expires > NOW()
	`

	var file model.File
	err := sqlx.GetContext(ctx, exec, &file, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("share link not found or expired")
	}
	if err != nil {
		return nil, util.LogError("[FileRepo] resolving share token failed", err)
	}

	return &file, nil
}

// SweepExpiredShares : clears expired grants; idempotent, safe to run twice
func (r *FileRepository) SweepExpiredShares(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
	res, err := exec.ExecContext(ctx, `
		UPDATE files
		SET share_token = NULL, share_expires = NULL
		WHERE share_expires < NOW()
	`)
	if err != nil {
		return 0, util.LogError("[FileRepo] sweeping expired shares failed", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}
