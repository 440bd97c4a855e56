package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"file-manager-server/config"
	"file-manager-server/internal/model"
	"file-manager-server/internal/model/requestresponse"
	"file-manager-server/internal/ports"
	"file-manager-server/internal/security"
	"file-manager-server/internal/util"
)

type FileHandler struct {
	fileService ports.FileService
	cfg         *config.AppConfig
}

func NewFileHandler(fileService ports.FileService, cfg *config.AppConfig) *FileHandler {
	return &FileHandler{fileService: fileService, cfg: cfg}
}

// Upload godoc
// @Summary Upload a batch of files
// @Description Streams up to 10 files from a multipart body into storage. Individual
// files can fail (blocked type, too large) while the rest of the batch succeeds.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload"
// @Param Authorization header string true "Bearer token" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UploadResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Too many files, empty batch or malformed body"
// @Failure 403 {object} requestresponse.ErrorResponse "Email not verified"
// @Failure 408 {object} requestresponse.ErrorResponse "Transfer exceeded the time limit"
// @Failure 507 {object} requestresponse.ErrorResponse "Storage exhausted"
// @Router /api/upload [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.TransferTimeout())
	defer cancel()

	claims, err := security.IdentityFromContext(ctx)
	if err != nil {
		util.HandleError(w, err)
		return
	}

	parts, err := r.MultipartReader()
	if err != nil {
		util.WriteError(w, "request must be multipart/form-data", http.StatusBadRequest)
		return
	}

	response, err := h.fileService.Upload(ctx, claims.UserID, parts)
	if err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, response)
}

// List godoc
// @Summary List the caller's files
// @Tags Files
// @Produce json
// @Param Authorization header string true "Bearer token" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.FileView
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/files [get]
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, err := security.IdentityFromContext(r.Context())
	if err != nil {
		util.HandleError(w, err)
		return
	}

	views, err := h.fileService.List(r.Context(), claims.UserID)
	if err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, views)
}

// Download godoc
// @Summary Download an owned file
// @Description Streams the file body. Honors single byte-range requests for
// resumable downloads and answers 206 with a Content-Range header.
// @Tags Files
// @Produce application/octet-stream
// @Param id path string true "File id"
// @Param Range header string false "Byte range, e.g. bytes=0-1023"
// @Param Authorization header string true "Bearer token" default(Bearer <access_token>)
// @Success 200 {file} binary
// @Success 206 {file} binary
// @Failure 404 {object} requestresponse.ErrorResponse "Unknown file or not the owner"
// @Failure 416 {object} requestresponse.ErrorResponse "Range outside the file"
// @Router /api/download/{id} [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims, err := security.IdentityFromContext(r.Context())
	if err != nil {
		util.HandleError(w, err)
		return
	}

	file, err := h.fileService.Resolve(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		util.HandleError(w, err)
		return
	}

	h.serveFile(w, r, file)
}

// SharedDownload godoc
// @Summary Download via a share link
// @Description Same streaming semantics as the owner download, no authentication.
// @Tags Share
// @Produce application/octet-stream
// @Param token path string true "Share token"
// @Param Range header string false "Byte range, e.g. bytes=0-1023"
// @Success 200 {file} binary
// @Success 206 {file} binary
// @Failure 404 {object} requestresponse.ErrorResponse "Share link expired or invalid"
// @Failure 416 {object} requestresponse.ErrorResponse "Range outside the file"
// @Router /api/share/{token} [get]
func (h *FileHandler) SharedDownload(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.ResolveShare(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		util.HandleError(w, err)
		return
	}

	h.serveFile(w, r, file)
}

// serveFile streams the blob, honoring a single byte-range request. The
// download counter is bumped only when the response reached the last byte of
// the file, so a resumed download counts once.
func (h *FileHandler) serveFile(w http.ResponseWriter, r *http.Request, file *model.File) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.TransferTimeout())
	defer cancel()

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, sanitizeFilename(file.OriginalName)))

	start, end := int64(0), file.SizeBytes-1
	status := http.StatusOK

	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		var err error
		start, end, err = parseRange(rangeHeader, file.SizeBytes)
		switch {
		case errors.Is(err, errRangeUnsatisfiable):
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", file.SizeBytes))
			util.WriteError(w, "Requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
			return
		case err != nil:
			util.WriteError(w, "invalid Range header", http.StatusBadRequest)
			return
		}
		status = http.StatusPartialContent
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, file.SizeBytes))
	}

	reader, err := h.fileService.OpenRange(ctx, file, start, end)
	if err != nil {
		util.HandleError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
	w.WriteHeader(status)

	if _, err := io.Copy(w, reader); err != nil {
		// headers are gone; all we can do is log the broken stream
		log.Printf("streaming file %s failed: %v", file.ID, err)
		return
	}

	if end == file.SizeBytes-1 {
		h.fileService.FinishDownload(file.ID)
	}
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, name)
}

// Share godoc
// @Summary Create a share link
// @Description Issues a 7 day share token for the file, replacing any earlier link.
// @Tags Share
// @Produce json
// @Param id path string true "File id"
// @Param Authorization header string true "Bearer token" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ShareResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Unknown file or not the owner"
// @Router /api/files/{id}/share [post]
func (h *FileHandler) Share(w http.ResponseWriter, r *http.Request) {
	claims, err := security.IdentityFromContext(r.Context())
	if err != nil {
		util.HandleError(w, err)
		return
	}

	token, expires, err := h.fileService.Share(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.ShareResponse{
		ShareURL: h.cfg.BaseURL + "/api/share/" + token,
		Expires:  expires,
	})
}

// Delete godoc
// @Summary Delete an owned file
// @Tags Files
// @Produce json
// @Param id path string true "File id"
// @Param Authorization header string true "Bearer token" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DeleteResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Unknown file or not the owner"
// @Router /api/files/{id} [delete]
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, err := security.IdentityFromContext(r.Context())
	if err != nil {
		util.HandleError(w, err)
		return
	}

	if err := h.fileService.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.DeleteResponse{Message: "File deleted successfully"})
}

// Health godoc
// @Summary Service health and limits
// @Tags Health
// @Produce json
// @Success 200 {object} requestresponse.HealthResponse
// @Router /api/health [get]
func (h *FileHandler) Health(w http.ResponseWriter, r *http.Request) {
	auth := "enabled"
	verification := "enabled"
	if h.cfg.Auth.DemoMode {
		auth = "demo"
		verification = "disabled"
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.HealthResponse{
		Status:            "OK",
		Timestamp:         time.Now(),
		Auth:              auth,
		EmailVerification: verification,
		Storage:           h.cfg.Storage.Backend,
		MaxFileSize:       fmt.Sprintf("%dGB", h.cfg.Upload.MaxFileSizeGiB),
		MaxFiles:          h.cfg.Upload.MaxFiles,
	})
}
