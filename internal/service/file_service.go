package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/model"
	"file-manager-server/internal/model/requestresponse"
	"file-manager-server/internal/ports"
	"file-manager-server/internal/util"
)

const (
	shareTokenBytes = 32
	shareTTL        = 7 * 24 * time.Hour
	copyBufferSize  = 256 * 1024
)

// blockedExtensions : executable types that are never accepted, matched on the
// lowercased extension before any payload bytes are written.
var blockedExtensions = map[string]struct{}{
	".exe": {}, ".bat": {}, ".cmd": {}, ".com": {}, ".pif": {},
	".scr": {}, ".vbs": {}, ".js": {}, ".jar": {}, ".app": {},
}

type FileService struct {
	fileRepository ports.FileRepository
	blobs          ports.BlobStorage
	gate           ports.AccessGate
	db             *config.Database
	maxFiles       int
	maxFileSize    int64
}

func NewFileService(fileRepository ports.FileRepository, blobs ports.BlobStorage, gate ports.AccessGate, db *config.Database, maxFiles int, maxFileSize int64) *FileService {
	return &FileService{
		fileRepository: fileRepository,
		blobs:          blobs,
		gate:           gate,
		db:             db,
		maxFiles:       maxFiles,
		maxFileSize:    maxFileSize,
	}
}

// stagedFile : a blob fully written but not yet visible in the catalog
type stagedFile struct {
	originalName string
	storageName  string
	mimeType     string
	size         int64
}

// Upload streams a multipart batch straight into blob storage. Blobs are
// staged while parts arrive and catalog rows are inserted only after the whole
// request body has been consumed, so a batch that busts the file-count limit
// leaves nothing behind.
func (service *FileService) Upload(ctx context.Context, ownerID string, parts *multipart.Reader) (*requestresponse.UploadResponse, error) {
	if err := service.gate.CanUpload(ctx, ownerID); err != nil {
		return nil, err
	}

	var staged []stagedFile
	var failed []requestresponse.FileUploadResult
	fileCount := 0

	for {
		part, err := parts.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			service.discardStaged(staged)
			if ctx.Err() != nil {
				return nil, apperr.Timeout("Upload timed out")
			}
			return nil, apperr.Wrap(apperr.KindValidation, "malformed upload body", err)
		}

		if part.FileName() == "" {
			continue
		}

		fileCount++
		if fileCount > service.maxFiles {
			part.Close()
			service.discardStaged(staged)
			return nil, apperr.TooManyFiles(fmt.Sprintf("Maximum %d files allowed per upload", service.maxFiles))
		}

		name := filepath.Base(part.FileName())
		if err := checkExtension(name); err != nil {
			failed = append(failed, requestresponse.FileUploadResult{
				Name:     name,
				Uploaded: false,
				Error:    err.Error(),
			})
			continue
		}

		entry, err := service.stageOne(ctx, name, part)
		if err != nil {
			switch apperr.KindOf(err) {
			case apperr.KindFileTooLarge:
				failed = append(failed, requestresponse.FileUploadResult{
					Name:     name,
					Uploaded: false,
					Error:    err.Error(),
				})
				continue
			default:
				// timeouts and storage exhaustion sink the whole batch
				service.discardStaged(staged)
				return nil, err
			}
		}

		staged = append(staged, *entry)
	}

	if fileCount == 0 {
		return nil, apperr.Validation("No files uploaded")
	}

	results := make([]requestresponse.FileUploadResult, 0, len(staged)+len(failed))
	uploaded := 0
	now := time.Now()

	for _, entry := range staged {
		file := &model.File{
			ID:           uuid.New().String(),
			OwnerID:      ownerID,
			OriginalName: entry.originalName,
			StorageName:  entry.storageName,
			MimeType:     entry.mimeType,
			SizeBytes:    entry.size,
			UploadDate:   now,
		}

		if err := service.fileRepository.Create(ctx, service.db.DB, file); err != nil {
			util.LogError("inserting catalog row failed", err)
			if delErr := service.blobs.Delete(context.Background(), entry.storageName); delErr != nil {
				log.Printf("removing orphaned blob %s failed: %v", entry.storageName, delErr)
			}
			results = append(results, requestresponse.FileUploadResult{
				Name:     entry.originalName,
				Uploaded: false,
				Error:    "Failed to save file",
			})
			continue
		}

		uploaded++
		results = append(results, requestresponse.FileUploadResult{
			Name:     entry.originalName,
			ID:       file.ID,
			Size:     entry.size,
			Uploaded: true,
		})
	}
	results = append(results, failed...)

	return &requestresponse.UploadResponse{
		Message: fmt.Sprintf("%d file(s) uploaded successfully", uploaded),
		Files:   results,
	}, nil
}

// stageOne writes a single part into blob storage, enforcing the per-file
// size cap and the request deadline while copying.
func (service *FileService) stageOne(ctx context.Context, name string, part *multipart.Part) (*stagedFile, error) {
	storageName := uuid.New().String() + strings.ToLower(filepath.Ext(name))

	sink, err := service.blobs.WriteStream(ctx, storageName)
	if err != nil {
		return nil, err
	}

	size, err := service.copyCapped(ctx, sink, part)
	if err != nil {
		if abortErr := sink.Abort(); abortErr != nil {
			log.Printf("aborting blob %s failed: %v", storageName, abortErr)
		}
		return nil, err
	}

	if err := sink.Close(); err != nil {
		return nil, err
	}

	mimeType := part.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &stagedFile{
		originalName: name,
		storageName:  storageName,
		mimeType:     mimeType,
		size:         size,
	}, nil
}

func (service *FileService) copyCapped(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return written, apperr.Timeout("Upload timed out")
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if written+int64(n) > service.maxFileSize {
				return written, apperr.FileTooLarge(fmt.Sprintf("File exceeds the %dGB limit", service.maxFileSize/(1024*1024*1024)))
			}
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return written, writeErr
			}
			written += int64(n)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			if ctx.Err() != nil {
				return written, apperr.Timeout("Upload timed out")
			}
			return written, apperr.Wrap(apperr.KindValidation, "reading upload stream failed", readErr)
		}
	}
}

func (service *FileService) discardStaged(staged []stagedFile) {
	for _, entry := range staged {
		if err := service.blobs.Delete(context.Background(), entry.storageName); err != nil {
			log.Printf("removing staged blob %s failed: %v", entry.storageName, err)
		}
	}
}

func checkExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if _, blocked := blockedExtensions[ext]; blocked {
		return apperr.BlockedFileType(fmt.Sprintf("File type %s is not allowed", ext))
	}
	return nil
}

func (service *FileService) List(ctx context.Context, ownerID string) ([]requestresponse.FileView, error) {
	files, err := service.fileRepository.ListByOwner(ctx, service.db.DB, ownerID)
	if err != nil {
		return nil, util.LogError("listing files failed", err)
	}

	now := time.Now()
	views := make([]requestresponse.FileView, 0, len(files))
	for i := range files {
		views = append(views, requestresponse.FileViewFromModel(&files[i], now))
	}
	return views, nil
}

func (service *FileService) Resolve(ctx context.Context, fileID string, ownerID string) (*model.File, error) {
	return service.fileRepository.GetByID(ctx, service.db.DB, fileID, ownerID)
}

func (service *FileService) ResolveShare(ctx context.Context, token string) (*model.File, error) {
	file, err := service.fileRepository.GetByShareToken(ctx, service.db.DB, token)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Share link expired or invalid")
		}
		return nil, util.LogError("resolving share token failed", err)
	}
	return file, nil
}

func (service *FileService) OpenRange(ctx context.Context, file *model.File, start int64, end int64) (io.ReadCloser, error) {
	reader, err := service.blobs.ReadRange(ctx, file.StorageName, start, end)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			// catalog row without a blob means storage and catalog diverged
			log.Printf("catalog row %s points at missing blob %s", file.ID, file.StorageName)
			return nil, apperr.NotFound("File not found on server")
		}
		return nil, util.LogError("opening blob for download failed", err)
	}
	return reader, nil
}

// FinishDownload bumps the download counter after the response body has been
// fully streamed. Best effort; a failed increment never fails the download.
func (service *FileService) FinishDownload(fileID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := service.fileRepository.IncrementDownloadCount(ctx, service.db.DB, fileID); err != nil {
			log.Printf("incrementing download count for %s failed: %v", fileID, err)
		}
	}()
}

// Share issues a fresh share token for the file, replacing any previous one.
func (service *FileService) Share(ctx context.Context, fileID string, ownerID string) (string, time.Time, error) {
	token, err := util.GenerateToken(shareTokenBytes)
	if err != nil {
		return "", time.Time{}, util.LogError("generating share token failed", err)
	}

	expires := time.Now().Add(shareTTL)
	if err := service.fileRepository.SetShare(ctx, service.db.DB, fileID, ownerID, token, expires); err != nil {
		return "", time.Time{}, err
	}

	return token, expires, nil
}

// Delete removes the catalog row first; the blob removal is best effort so a
// storage hiccup cannot resurrect an already deleted file.
func (service *FileService) Delete(ctx context.Context, fileID string, ownerID string) error {
	storageName, err := service.fileRepository.Delete(ctx, service.db.DB, fileID, ownerID)
	if err != nil {
		return err
	}

	if err := service.blobs.Delete(ctx, storageName); err != nil {
		log.Printf("removing blob %s for deleted file %s failed: %v", storageName, fileID, err)
	}
	return nil
}
