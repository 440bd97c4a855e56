// Package storage implements the blob store: byte payloads addressed by
// system-generated names, streamed in and out without ever holding a whole
// file in memory. DiskStorage is the primary backend; S3Storage is the
// bucket-backed alternative.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"file-manager-server/internal/apperr"
	"file-manager-server/internal/ports"
)

type DiskStorage struct {
	basePath string
}

func NewDiskStorage(basePath string) (*DiskStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory failed: %w", err)
	}
	return &DiskStorage{basePath: basePath}, nil
}

// WriteStream : opens a sink backed by a temp file in the blob directory.
// The blob appears under its final name only when Close renames the temp
// file, so readers never observe a partial write.
func (s *DiskStorage) WriteStream(ctx context.Context, storageName string) (ports.BlobSink, error) {
	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return nil, wrapDiskErr("opening blob sink failed", err)
	}

	return &diskSink{
		file:      tmp,
		finalPath: s.blobPath(storageName),
	}, nil
}

// ReadRange : streams bytes [start, end] of the blob; end == -1 selects the
// last byte. The returned stream is finite and non-restartable.
func (s *DiskStorage) ReadRange(ctx context.Context, storageName string, start int64, end int64) (io.ReadCloser, error) {
	f, err := os.Open(s.blobPath(storageName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.KindNotFound, "blob not found", err)
		}
		return nil, fmt.Errorf("opening blob failed: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat blob failed: %w", err)
	}

	size := info.Size()
	if end < 0 || end > size-1 {
		end = size - 1
	}
	if start > 0 {
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("seeking blob failed: %w", err)
		}
	}

	return &rangeReader{
		Reader: io.LimitReader(f, end-start+1),
		closer: f,
	}, nil
}

// Delete : best-effort; a blob that is already gone is not an error
func (s *DiskStorage) Delete(ctx context.Context, storageName string) error {
	if err := os.Remove(s.blobPath(storageName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing blob failed: %w", err)
	}
	return nil
}

func (s *DiskStorage) blobPath(storageName string) string {
	// storageName is system-generated, but a Base call keeps any future
	// caller from smuggling separators into the join.
	return filepath.Join(s.basePath, filepath.Base(storageName))
}

type diskSink struct {
	file      *os.File
	finalPath string
}

func (d *diskSink) Write(p []byte) (int, error) {
	n, err := d.file.Write(p)
	if err != nil {
		return n, wrapDiskErr("writing blob failed", err)
	}
	return n, nil
}

// Close : makes the blob durable and visible under its final name
func (d *diskSink) Close() error {
	if err := d.file.Sync(); err != nil {
		d.file.Close()
		os.Remove(d.file.Name())
		return wrapDiskErr("syncing blob failed", err)
	}
	if err := d.file.Close(); err != nil {
		os.Remove(d.file.Name())
		return wrapDiskErr("closing blob failed", err)
	}
	if err := os.Rename(d.file.Name(), d.finalPath); err != nil {
		os.Remove(d.file.Name())
		return wrapDiskErr("publishing blob failed", err)
	}
	return nil
}

// Abort : discards the temp file; nothing becomes visible
func (d *diskSink) Abort() error {
	d.file.Close()
	if err := os.Remove(d.file.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("discarding blob failed: %w", err)
	}
	return nil
}

type rangeReader struct {
	io.Reader
	closer io.Closer
}

func (r *rangeReader) Close() error {
	return r.closer.Close()
}

// wrapDiskErr : types a full disk as StorageExhausted, everything else stays internal
func wrapDiskErr(message string, err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return apperr.Wrap(apperr.KindStorageExhausted, "insufficient storage space", err)
	}
	return fmt.Errorf("%s: %w", message, err)
}
