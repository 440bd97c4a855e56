package ports

import (
	"context"
	"io"
)

// BlobSink : scoped write handle. Bytes become durable and visible to readers
// only after Close returns nil; Abort discards everything written so far.
type BlobSink interface {
	io.Writer
	Close() error
	Abort() error
}

// BlobStorage : byte storage addressed by system-generated names. No untrusted
// input ever reaches a storage name.
type BlobStorage interface {
	WriteStream(ctx context.Context, storageName string) (BlobSink, error)
	// ReadRange streams bytes [start, end] inclusive; end == -1 means the last
	// byte. Offsets are int64 throughout, blobs may exceed 32-bit sizes.
	ReadRange(ctx context.Context, storageName string, start int64, end int64) (io.ReadCloser, error)
	// Delete is best-effort; callers log failures instead of propagating them.
	Delete(ctx context.Context, storageName string) error
}
