package security

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/model"
	"file-manager-server/internal/ports"
	"file-manager-server/internal/util"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// Claims : the session credential. The token id (jti) is what logout revokes.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTService struct {
	*config.JWTConfig
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{cfg}
}

// GenerateToken : issues the signed session token for a logged-in user
func (service *JWTService) GenerateToken(user *model.User) (string, error) {
	ttl, err := time.ParseDuration(service.AccessTokenTTL)
	if err != nil {
		return "", util.LogError("parsing access token ttl failed", err)
	}

	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "file-manager-server",
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	token, err := jwtToken.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", util.LogError("signing token failed", err)
	}

	return token, nil
}

func (service *JWTService) ValidateToken(tokenStr string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(service.SecretKey), nil
	})
	if err != nil || !jwtToken.Valid {
		return nil, apperr.Wrap(apperr.KindAuth, "invalid token", err)
	}

	return claims, nil
}

// Authenticator : binds an inbound request to an identity. Selected once at
// startup; either the real session implementation or the demo one.
type Authenticator interface {
	Middleware(next http.Handler) http.Handler
}

// JWTAuthenticator : bearer-token sessions with a Redis revocation check
type JWTAuthenticator struct {
	jwtService *JWTService
	cache      ports.CacheRepository
}

func NewJWTAuthenticator(jwtService *JWTService, cache ports.CacheRepository) *JWTAuthenticator {
	return &JWTAuthenticator{jwtService: jwtService, cache: cache}
}

func (a *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorizationHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			util.WriteError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authorizationHeader, "Bearer ")

		claims, err := a.jwtService.ValidateToken(token)
		if err != nil {
			util.WriteError(w, "invalid token", http.StatusUnauthorized)
			return
		}

		revoked, err := a.cache.IsTokenRevoked(r.Context(), claims.ID)
		if err != nil {
			log.Printf("revocation check failed, rejecting token: %v", err)
			util.WriteError(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		if revoked {
			util.WriteError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		req := r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
		next.ServeHTTP(w, req)
	})
}

// DemoAuthenticator : fixed verified identity, no credential check. Keeps the
// rest of the stack identical between demo and real deployments.
type DemoAuthenticator struct{}

func NewDemoAuthenticator() *DemoAuthenticator {
	return &DemoAuthenticator{}
}

const DemoUserID = "demo-user"

func (a *DemoAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := &Claims{
			UserID: DemoUserID,
			Name:   "Demo User",
			Email:  "demo@example.com",
		}
		req := r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
		next.ServeHTTP(w, req)
	})
}

func IdentityFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, apperr.Auth("Authentication required")
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", util.LogError("hashing password failed", err)
	}
	return string(hash), nil
}

func CheckPassword(password string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
