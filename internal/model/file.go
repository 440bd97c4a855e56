package model

import "time"

// File is one catalog row. StorageName addresses the blob on disk (or in the
// bucket) and is never derived from the user-supplied OriginalName.
type File struct {
	ID            string     `db:"id" json:"id"`
	OwnerID       string     `db:"owner_id" json:"-"`
	OriginalName  string     `db:"original_name" json:"name"`
	StorageName   string     `db:"storage_name" json:"-"`
	MimeType      string     `db:"mime_type" json:"type"`
	SizeBytes     int64      `db:"size_bytes" json:"size"`
	UploadDate    time.Time  `db:"upload_date" json:"upload_date"`
	DownloadCount int64      `db:"download_count" json:"download_count"`
	ShareToken    *string    `db:"share_token" json:"-"`
	ShareExpires  *time.Time `db:"share_expires" json:"-"`
}

// SharedNow : true while the file carries a live share grant
func (f *File) SharedNow(now time.Time) bool {
	return f.ShareToken != nil && f.ShareExpires != nil && f.ShareExpires.After(now)
}
