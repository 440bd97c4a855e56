package requestresponse

import (
	"time"

	"file-manager-server/internal/model"
)

// FileView : one file in the owner's listing
type FileView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name" example:"backup.tar.gz"`
	Type          string    `json:"type" example:"application/gzip"`
	Size          int64     `json:"size" example:"1073741824"`
	UploadDate    time.Time `json:"upload_date"`
	DownloadCount int64     `json:"download_count" example:"3"`
	ShareLink     string    `json:"share_link,omitempty" example:"/api/share/ab12..."`
}

// FileViewFromModel : converts a catalog row into its listing view
func FileViewFromModel(f *model.File, now time.Time) FileView {
	view := FileView{
		ID:            f.ID,
		Name:          f.OriginalName,
		Type:          f.MimeType,
		Size:          f.SizeBytes,
		UploadDate:    f.UploadDate,
		DownloadCount: f.DownloadCount,
	}
	if f.SharedNow(now) {
		view.ShareLink = "/api/share/" + *f.ShareToken
	}
	return view
}

// FileUploadResult : per-file outcome inside a batch response
type FileUploadResult struct {
	Name     string `json:"name"`
	ID       string `json:"id,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Uploaded bool   `json:"uploaded"`
	Error    string `json:"error,omitempty"`
}

// UploadResponse : batch upload outcome with per-file detail
type UploadResponse struct {
	Message string             `json:"message"`
	Files   []FileUploadResult `json:"files"`
}

// ShareResponse : issued share link
type ShareResponse struct {
	ShareURL string    `json:"shareUrl"`
	Expires  time.Time `json:"expires"`
}

// DeleteResponse : file deletion confirmation
type DeleteResponse struct {
	Message string `json:"message" example:"File deleted successfully"`
}

// HealthResponse : service status summary
type HealthResponse struct {
	Status            string    `json:"status" example:"OK"`
	Timestamp         time.Time `json:"timestamp"`
	Auth              string    `json:"auth" example:"enabled"`
	EmailVerification string    `json:"emailVerification" example:"enabled"`
	Storage           string    `json:"storage" example:"disk"`
	MaxFileSize       string    `json:"maxFileSize" example:"100GB"`
	MaxFiles          int       `json:"maxFiles" example:"10"`
}
