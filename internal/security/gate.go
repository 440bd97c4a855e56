package security

import (
	"context"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/ports"
	"file-manager-server/internal/util"
)

// VerifiedEmailGate : re-reads the account row so a freshly revoked or still
// unverified address cannot upload on an old session.
type VerifiedEmailGate struct {
	userRepository ports.UserRepository
	db             *config.Database
}

func NewVerifiedEmailGate(userRepository ports.UserRepository, db *config.Database) *VerifiedEmailGate {
	return &VerifiedEmailGate{userRepository: userRepository, db: db}
}

func (gate *VerifiedEmailGate) CanUpload(ctx context.Context, userID string) error {
	user, err := gate.userRepository.FindByID(ctx, gate.db.DB, userID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Auth("Authentication required")
		}
		return util.LogError("upload gate lookup failed", err)
	}
	if !user.EmailVerified {
		return apperr.Forbidden("Email verification required to upload files")
	}
	return nil
}

// AllowAllGate : demo deployments have no accounts to verify
type AllowAllGate struct{}

func (AllowAllGate) CanUpload(ctx context.Context, userID string) error { return nil }
