package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/handler"
	"file-manager-server/internal/model"
	"file-manager-server/internal/model/requestresponse"
	"file-manager-server/internal/security"
)

type MockFileService struct{ mock.Mock }

func (m *MockFileService) Upload(ctx context.Context, ownerID string, parts *multipart.Reader) (*requestresponse.UploadResponse, error) {
	args := m.Called(ctx, ownerID, parts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestresponse.UploadResponse), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, ownerID string) ([]requestresponse.FileView, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requestresponse.FileView), args.Error(1)
}

func (m *MockFileService) Resolve(ctx context.Context, fileID string, ownerID string) (*model.File, error) {
	args := m.Called(ctx, fileID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) ResolveShare(ctx context.Context, token string) (*model.File, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) OpenRange(ctx context.Context, file *model.File, start int64, end int64) (io.ReadCloser, error) {
	args := m.Called(ctx, file, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockFileService) FinishDownload(fileID string) {
	m.Called(fileID)
}

func (m *MockFileService) Share(ctx context.Context, fileID string, ownerID string) (string, time.Time, error) {
	args := m.Called(ctx, fileID, ownerID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockFileService) Delete(ctx context.Context, fileID string, ownerID string) error {
	return m.Called(ctx, fileID, ownerID).Error(0)
}

func testConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		BaseURL: "http://localhost:8080",
		Storage: config.StorageConfig{Backend: "disk"},
		Upload: config.UploadConfig{
			MaxFiles:        10,
			MaxFileSizeGiB:  100,
			TransferTimeout: "2h",
		},
	}
	return cfg
}

// identityMiddleware : stands in for the real authenticator in tests
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := &security.Claims{UserID: "owner-1", Name: "Jane", Email: "jane@example.com"}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), security.UserContextKey, claims)))
	})
}

func testRouter(svc *MockFileService) *chi.Mux {
	h := handler.NewFileHandler(svc, testConfig())
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(identityMiddleware)
		r.Get("/api/download/{id}", h.Download)
		r.Get("/api/files", h.List)
		r.Post("/api/files/{id}/share", h.Share)
		r.Delete("/api/files/{id}", h.Delete)
	})
	router.Get("/api/share/{token}", h.SharedDownload)
	router.Get("/api/health", h.Health)
	return router
}

func catalogFile(size int64) *model.File {
	return &model.File{
		ID:           "file-1",
		OwnerID:      "owner-1",
		OriginalName: "backup.tar.gz",
		StorageName:  "blob-1",
		MimeType:     "application/gzip",
		SizeBytes:    size,
	}
}

func TestFileHandler_Download_Full(t *testing.T) {
	svc := new(MockFileService)
	payload := []byte("full file body")
	file := catalogFile(int64(len(payload)))

	svc.On("Resolve", mock.Anything, "file-1", "owner-1").Return(file, nil)
	svc.On("OpenRange", mock.Anything, file, int64(0), int64(len(payload)-1)).
		Return(io.NopCloser(bytes.NewReader(payload)), nil)
	svc.On("FinishDownload", "file-1").Return()

	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download/file-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "application/gzip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="backup.tar.gz"`)
	assert.Equal(t, "14", rec.Header().Get("Content-Length"))
	assert.Equal(t, payload, rec.Body.Bytes())
	svc.AssertExpectations(t)
}

func TestFileHandler_Download_Range(t *testing.T) {
	svc := new(MockFileService)
	file := catalogFile(1000)

	svc.On("Resolve", mock.Anything, "file-1", "owner-1").Return(file, nil)
	svc.On("OpenRange", mock.Anything, file, int64(200), int64(499)).
		Return(io.NopCloser(bytes.NewReader(make([]byte, 300))), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/download/file-1", nil)
	req.Header.Set("Range", "bytes=200-499")
	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 200-499/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "300", rec.Header().Get("Content-Length"))
	assert.Equal(t, 300, rec.Body.Len())
	// a mid-file chunk does not bump the download counter
	svc.AssertNotCalled(t, "FinishDownload", mock.Anything)
}

func TestFileHandler_Download_FinalChunkCountsDownload(t *testing.T) {
	svc := new(MockFileService)
	file := catalogFile(1000)

	svc.On("Resolve", mock.Anything, "file-1", "owner-1").Return(file, nil)
	svc.On("OpenRange", mock.Anything, file, int64(900), int64(999)).
		Return(io.NopCloser(bytes.NewReader(make([]byte, 100))), nil)
	svc.On("FinishDownload", "file-1").Return()

	req := httptest.NewRequest(http.MethodGet, "/api/download/file-1", nil)
	req.Header.Set("Range", "bytes=900-")
	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestFileHandler_Download_RangeUnsatisfiable(t *testing.T) {
	svc := new(MockFileService)
	svc.On("Resolve", mock.Anything, "file-1", "owner-1").Return(catalogFile(1000), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/download/file-1", nil)
	req.Header.Set("Range", "bytes=5000-")
	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, "bytes */1000", rec.Header().Get("Content-Range"))
	svc.AssertNotCalled(t, "OpenRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFileHandler_Download_MultiRangeRejected(t *testing.T) {
	svc := new(MockFileService)
	svc.On("Resolve", mock.Anything, "file-1", "owner-1").Return(catalogFile(1000), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/download/file-1", nil)
	req.Header.Set("Range", "bytes=0-99,200-299")
	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFileHandler_Download_NotFound(t *testing.T) {
	svc := new(MockFileService)
	svc.On("Resolve", mock.Anything, "ghost", "owner-1").
		Return(nil, apperr.NotFound("file not found"))

	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileHandler_SharedDownload(t *testing.T) {
	svc := new(MockFileService)
	payload := []byte("shared bytes")
	file := catalogFile(int64(len(payload)))

	svc.On("ResolveShare", mock.Anything, "tok123").Return(file, nil)
	svc.On("OpenRange", mock.Anything, file, int64(0), int64(len(payload)-1)).
		Return(io.NopCloser(bytes.NewReader(payload)), nil)
	svc.On("FinishDownload", "file-1").Return()

	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/share/tok123", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
	svc.AssertExpectations(t)
}

func TestFileHandler_SharedDownload_Expired(t *testing.T) {
	svc := new(MockFileService)
	svc.On("ResolveShare", mock.Anything, "stale").
		Return(nil, apperr.NotFound("Share link expired or invalid"))

	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/share/stale", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body requestresponse.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Share link expired or invalid", body.Message)
}

func TestFileHandler_Share(t *testing.T) {
	svc := new(MockFileService)
	expires := time.Now().Add(7 * 24 * time.Hour)
	svc.On("Share", mock.Anything, "file-1", "owner-1").Return("tok123", expires, nil)

	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/files/file-1/share", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body requestresponse.ShareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "http://localhost:8080/api/share/tok123", body.ShareURL)
	assert.WithinDuration(t, expires, body.Expires, time.Second)
}

func TestFileHandler_Delete(t *testing.T) {
	svc := new(MockFileService)
	svc.On("Delete", mock.Anything, "file-1", "owner-1").Return(nil)

	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/files/file-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestFileHandler_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(new(MockFileService)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body requestresponse.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "100GB", body.MaxFileSize)
	assert.Equal(t, 10, body.MaxFiles)
}
