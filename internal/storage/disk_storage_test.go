package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-manager-server/internal/apperr"
	"file-manager-server/internal/storage"
)

func newTestStorage(t *testing.T) *storage.DiskStorage {
	t.Helper()
	s, err := storage.NewDiskStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func writeBlob(t *testing.T, s *storage.DiskStorage, name string, data []byte) {
	t.Helper()
	sink, err := s.WriteStream(context.Background(), name)
	require.NoError(t, err)
	_, err = sink.Write(data)
	require.NoError(t, err)
	require.NoError(t, sink.Close())
}

func readAll(t *testing.T, s *storage.DiskStorage, name string, start, end int64) []byte {
	t.Helper()
	r, err := s.ReadRange(context.Background(), name, start, end)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return data
}

func TestDiskStorage_RoundTrip(t *testing.T) {
	s := newTestStorage(t)
	payload := []byte("the quick brown fox jumps over the lazy dog")

	writeBlob(t, s, "blob-1", payload)

	assert.Equal(t, payload, readAll(t, s, "blob-1", 0, -1))
}

func TestDiskStorage_RangeReads(t *testing.T) {
	s := newTestStorage(t)
	payload := []byte("0123456789")
	writeBlob(t, s, "blob-1", payload)

	tests := []struct {
		name       string
		start, end int64
		want       string
	}{
		{"single byte", 0, 0, "0"},
		{"middle span", 2, 5, "2345"},
		{"open ended", 7, -1, "789"},
		{"end clamped to size", 5, 500, "56789"},
		{"full range", 0, 9, "0123456789"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(readAll(t, s, "blob-1", tt.start, tt.end)))
		})
	}
}

func TestDiskStorage_SequentialRangesReassemble(t *testing.T) {
	s := newTestStorage(t)
	payload := []byte("abcdefghijklmnopqrstuvwxyz")
	writeBlob(t, s, "blob-1", payload)

	// a resumed download fetches the file chunk by chunk
	var got []byte
	for start := int64(0); start < int64(len(payload)); start += 7 {
		end := start + 6
		if end > int64(len(payload))-1 {
			end = int64(len(payload)) - 1
		}
		got = append(got, readAll(t, s, "blob-1", start, end)...)
	}

	assert.Equal(t, payload, got)
}

func TestDiskStorage_BlobInvisibleUntilClose(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewDiskStorage(dir)
	require.NoError(t, err)

	sink, err := s.WriteStream(context.Background(), "blob-1")
	require.NoError(t, err)
	_, err = sink.Write([]byte("partial"))
	require.NoError(t, err)

	_, err = s.ReadRange(context.Background(), "blob-1", 0, -1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, sink.Close())
	assert.Equal(t, []byte("partial"), readAll(t, s, "blob-1", 0, -1))
}

func TestDiskStorage_AbortLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewDiskStorage(dir)
	require.NoError(t, err)

	sink, err := s.WriteStream(context.Background(), "blob-1")
	require.NoError(t, err)
	_, err = sink.Write([]byte("doomed"))
	require.NoError(t, err)
	require.NoError(t, sink.Abort())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskStorage_Delete(t *testing.T) {
	s := newTestStorage(t)
	writeBlob(t, s, "blob-1", []byte("data"))

	require.NoError(t, s.Delete(context.Background(), "blob-1"))

	_, err := s.ReadRange(context.Background(), "blob-1", 0, -1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// deleting again is not an error
	require.NoError(t, s.Delete(context.Background(), "blob-1"))
}

func TestDiskStorage_NameCannotEscapeDirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewDiskStorage(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	writeBlob(t, s, "../escape", []byte("x"))

	// the blob landed inside the blob directory, not beside it
	_, statErr := os.Stat(filepath.Join(dir, "escape"))
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, []byte("x"), readAll(t, s, "escape", 0, -1))
}
