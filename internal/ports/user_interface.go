package ports

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"file-manager-server/internal/model"
)

// UserRepository : account rows and their token pairs (SQL layer)
type UserRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, user *model.User) error
	FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.User, error)
	VerifyEmail(ctx context.Context, exec sqlx.ExtContext, token string) (*model.User, error)
	RotateVerificationToken(ctx context.Context, exec sqlx.ExtContext, userID string, token string, expires time.Time) error
	SetResetToken(ctx context.Context, exec sqlx.ExtContext, userID string, token string, expires time.Time) error
	ResetPassword(ctx context.Context, exec sqlx.ExtContext, token string, passwordHash string) (*model.User, error)
	SweepExpiredUnverified(ctx context.Context, exec sqlx.ExtContext) (int64, error)
}

// UserService : account lifecycle (register, verify, reset)
type UserService interface {
	Register(ctx context.Context, name string, email string, password string) (bool, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) (bool, error)
	ForgotPassword(ctx context.Context, email string) (bool, error)
	ResetPassword(ctx context.Context, token string, password string) error
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// AuthenticationService : credential check in, session token out
type AuthenticationService interface {
	Login(ctx context.Context, email string, password string) (string, *model.User, error)
	Logout(ctx context.Context, tokenID string, until time.Time) error
}
