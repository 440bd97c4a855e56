package ports

import (
	"context"
	"io"
	"mime/multipart"
	"time"

	"github.com/jmoiron/sqlx"

	"file-manager-server/internal/model"
	"file-manager-server/internal/model/requestresponse"
)

// FileRepository : catalog rows for uploaded files (SQL layer)
type FileRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, file *model.File) error
	ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]model.File, error)
	GetByID(ctx context.Context, exec sqlx.ExtContext, fileID string, ownerID string) (*model.File, error)
	IncrementDownloadCount(ctx context.Context, exec sqlx.ExtContext, fileID string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, fileID string, ownerID string) (string, error)
	SetShare(ctx context.Context, exec sqlx.ExtContext, fileID string, ownerID string, token string, expires time.Time) error
	GetByShareToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.File, error)
	SweepExpiredShares(ctx context.Context, exec sqlx.ExtContext) (int64, error)
}

// FileService : the transfer engine plus share-link lifecycle
type FileService interface {
	Upload(ctx context.Context, ownerID string, parts *multipart.Reader) (*requestresponse.UploadResponse, error)
	List(ctx context.Context, ownerID string) ([]requestresponse.FileView, error)
	Resolve(ctx context.Context, fileID string, ownerID string) (*model.File, error)
	ResolveShare(ctx context.Context, token string) (*model.File, error)
	OpenRange(ctx context.Context, file *model.File, start int64, end int64) (io.ReadCloser, error)
	FinishDownload(fileID string)
	Share(ctx context.Context, fileID string, ownerID string) (string, time.Time, error)
	Delete(ctx context.Context, fileID string, ownerID string) error
}
