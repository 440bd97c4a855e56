package service

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/model"
	"file-manager-server/internal/ports"
	"file-manager-server/internal/security"
	"file-manager-server/internal/util"
)

const (
	verificationTokenBytes = 32
	verificationTTL        = 24 * time.Hour
	resetTTL               = time.Hour
	minPasswordLength      = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserService struct {
	userRepository ports.UserRepository
	db             *config.Database
	mailer         ports.Mailer
}

func NewUserService(userRepository ports.UserRepository, db *config.Database, mailer ports.Mailer) *UserService {
	return &UserService{
		userRepository: userRepository,
		db:             db,
		mailer:         mailer,
	}
}

// Register creates an unverified account and mails the verification link. The
// account row is committed before the mail goes out, so a mail outage leaves a
// usable account that can request a resend. Returns whether the mail was sent.
func (service *UserService) Register(ctx context.Context, name string, email string, password string) (bool, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return false, apperr.Validation("Name, email and password are required")
	}
	if !emailPattern.MatchString(email) {
		return false, apperr.Validation("Invalid email address")
	}
	if len(password) < minPasswordLength {
		return false, apperr.Validation("Password must be at least 6 characters")
	}

	existing, err := service.userRepository.FindByEmail(ctx, service.db.DB, email)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return false, util.LogError("checking existing account failed", err)
	}
	if existing != nil {
		if existing.EmailVerified {
			return false, apperr.Validation("An account with this email already exists")
		}
		return false, apperr.Validation("An account with this email exists but is not verified. Check your inbox or request a new verification link.")
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return false, err
	}

	token, err := util.GenerateToken(verificationTokenBytes)
	if err != nil {
		return false, err
	}
	expires := time.Now().Add(verificationTTL)

	user := &model.User{
		ID:                  uuid.New().String(),
		Name:                name,
		Email:               email,
		PasswordHash:        passwordHash,
		EmailVerified:       false,
		VerificationToken:   &token,
		VerificationExpires: &expires,
		CreatedAt:           time.Now(),
	}

	if err := service.userRepository.Create(ctx, service.db.DB, user); err != nil {
		return false, err
	}

	if err := service.mailer.SendVerificationEmail(ctx, email, name, token); err != nil {
		log.Printf("sending verification email to %s failed: %v", email, err)
		return false, nil
	}
	return true, nil
}

func (service *UserService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Validation("Verification token is required")
	}

	_, err := service.userRepository.VerifyEmail(ctx, service.db.DB, token)
	if err != nil {
		if apperr.IsKind(err, apperr.KindValidation) || apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Validation("Invalid or expired verification token")
		}
		return util.LogError("verifying email failed", err)
	}
	return nil
}

// ResendVerification rotates the verification token so old links stop working
func (service *UserService) ResendVerification(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, apperr.Validation("Email is required")
	}

	user, err := service.userRepository.FindByEmail(ctx, service.db.DB, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return false, apperr.NotFound("No account found with this email")
		}
		return false, util.LogError("looking up account failed", err)
	}
	if user.EmailVerified {
		return false, apperr.Validation("Email is already verified")
	}

	token, err := util.GenerateToken(verificationTokenBytes)
	if err != nil {
		return false, err
	}
	expires := time.Now().Add(verificationTTL)

	if err := service.userRepository.RotateVerificationToken(ctx, service.db.DB, user.ID, token, expires); err != nil {
		return false, err
	}

	if err := service.mailer.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		log.Printf("sending verification email to %s failed: %v", user.Email, err)
		return false, nil
	}
	return true, nil
}

// ForgotPassword never reveals whether the address exists. A reset token is
// issued only for verified accounts; every other case is silently absorbed.
func (service *UserService) ForgotPassword(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, apperr.Validation("Email is required")
	}

	user, err := service.userRepository.FindByEmail(ctx, service.db.DB, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, util.LogError("looking up account failed", err)
	}
	if !user.EmailVerified {
		return false, nil
	}

	token, err := util.GenerateToken(verificationTokenBytes)
	if err != nil {
		return false, err
	}
	expires := time.Now().Add(resetTTL)

	if err := service.userRepository.SetResetToken(ctx, service.db.DB, user.ID, token, expires); err != nil {
		return false, util.LogError("storing reset token failed", err)
	}

	if err := service.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
		log.Printf("sending reset email to %s failed: %v", user.Email, err)
		return false, nil
	}
	return true, nil
}

func (service *UserService) ResetPassword(ctx context.Context, token string, password string) error {
	if token == "" {
		return apperr.Validation("Reset token is required")
	}
	if len(password) < minPasswordLength {
		return apperr.Validation("Password must be at least 6 characters")
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = service.userRepository.ResetPassword(ctx, service.db.DB, token, passwordHash)
	if err != nil {
		if apperr.IsKind(err, apperr.KindValidation) || apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Validation("Invalid or expired reset token")
		}
		return util.LogError("resetting password failed", err)
	}
	return nil
}

func (service *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return service.userRepository.FindByID(ctx, service.db.DB, id)
}
