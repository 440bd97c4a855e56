package service

import (
	"context"
	"strings"
	"time"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/model"
	"file-manager-server/internal/ports"
	"file-manager-server/internal/security"
	"file-manager-server/internal/util"
)

type AuthenticationService struct {
	userRepository ports.UserRepository
	cache          ports.CacheRepository
	jwtService     *security.JWTService
	db             *config.Database
}

func NewAuthenticationService(userRepository ports.UserRepository, cache ports.CacheRepository, jwtService *security.JWTService, db *config.Database) *AuthenticationService {
	return &AuthenticationService{
		userRepository: userRepository,
		cache:          cache,
		jwtService:     jwtService,
		db:             db,
	}
}

// Login checks the credentials and issues a session token. Unknown address and
// wrong password produce the same message; only verified accounts may log in.
func (service *AuthenticationService) Login(ctx context.Context, email string, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, apperr.Validation("Email and password are required")
	}

	user, err := service.userRepository.FindByEmail(ctx, service.db.DB, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", nil, apperr.Auth("Invalid email or password")
		}
		return "", nil, util.LogError("looking up account failed", err)
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return "", nil, apperr.Auth("Invalid email or password")
	}

	if !user.EmailVerified {
		return "", nil, apperr.Auth("Please verify your email before logging in")
	}

	token, err := service.jwtService.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Logout puts the token id on the revocation list until the token would have
// expired on its own.
func (service *AuthenticationService) Logout(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return nil
	}
	return service.cache.RevokeToken(ctx, tokenID, time.Until(until))
}
