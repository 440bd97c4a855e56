package ports

import "context"

// AccessGate : decides whether an authenticated identity may upload.
// Returns nil when allowed, a typed error otherwise.
type AccessGate interface {
	CanUpload(ctx context.Context, userID string) error
}
