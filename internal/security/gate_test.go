package security_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/model"
	"file-manager-server/internal/security"
)

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, exec sqlx.ExtContext, user *model.User) error {
	return m.Called(ctx, exec, user).Error(0)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	args := m.Called(ctx, exec, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.User, error) {
	args := m.Called(ctx, exec, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) VerifyEmail(ctx context.Context, exec sqlx.ExtContext, token string) (*model.User, error) {
	args := m.Called(ctx, exec, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) RotateVerificationToken(ctx context.Context, exec sqlx.ExtContext, userID string, token string, expires time.Time) error {
	return m.Called(ctx, exec, userID, token, expires).Error(0)
}

func (m *MockUserRepo) SetResetToken(ctx context.Context, exec sqlx.ExtContext, userID string, token string, expires time.Time) error {
	return m.Called(ctx, exec, userID, token, expires).Error(0)
}

func (m *MockUserRepo) ResetPassword(ctx context.Context, exec sqlx.ExtContext, token string, passwordHash string) (*model.User, error) {
	args := m.Called(ctx, exec, token, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) SweepExpiredUnverified(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
	args := m.Called(ctx, exec)
	return args.Get(0).(int64), args.Error(1)
}

func TestVerifiedEmailGate(t *testing.T) {
	ctx := context.Background()
	db := &config.Database{}

	t.Run("verified account may upload", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByID", mock.Anything, mock.Anything, "u1").
			Return(&model.User{ID: "u1", EmailVerified: true}, nil)

		gate := security.NewVerifiedEmailGate(repo, db)
		assert.NoError(t, gate.CanUpload(ctx, "u1"))
	})

	t.Run("unverified account is forbidden", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByID", mock.Anything, mock.Anything, "u1").
			Return(&model.User{ID: "u1", EmailVerified: false}, nil)

		gate := security.NewVerifiedEmailGate(repo, db)
		err := gate.CanUpload(ctx, "u1")
		require.Error(t, err)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("deleted account cannot upload on an old session", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByID", mock.Anything, mock.Anything, "gone").
			Return(nil, apperr.NotFound("user not found"))

		gate := security.NewVerifiedEmailGate(repo, db)
		err := gate.CanUpload(ctx, "gone")
		require.Error(t, err)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	})
}

func TestAllowAllGate(t *testing.T) {
	assert.NoError(t, security.AllowAllGate{}.CanUpload(context.Background(), "anyone"))
}
