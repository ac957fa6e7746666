package service

import (
	"context"
	"testing"
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/DukeZhu95/classroom-backend/internal/middleware"
	"github.com/DukeZhu95/classroom-backend/internal/modules/user/dto"
	"github.com/DukeZhu95/classroom-backend/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func registerReq() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:     "alice@example.com",
		Password:  "correct horse",
		Role:      entity.RoleTeacher,
		FirstName: "Alice",
		LastName:  "Nguyen",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("new account", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), nil, time.Hour)

		resp, err := svc.Register(ctx, registerReq())
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice@example.com", resp.User.Email)
		assert.Equal(t, entity.RoleTeacher, resp.User.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), nil, time.Hour)

		_, err := svc.Register(ctx, registerReq())
		require.NoError(t, err)

		req := registerReq()
		req.Role = entity.RoleStudent
		_, err = svc.Register(ctx, req)
		assert.ErrorIs(t, err, apperror.ErrDuplicateEmail)
	})

	t.Run("token carries the role claim", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), nil, time.Hour)

		resp, err := svc.Register(ctx, registerReq())
		require.NoError(t, err)

		var claims middleware.Claims
		_, err = jwt.ParseWithClaims(resp.Token, &claims, func(_ *jwt.Token) (interface{}, error) {
			return []byte("change-me"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, entity.RoleTeacher, claims.Role)
		assert.Equal(t, resp.User.ID.String(), claims.Subject)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) AuthService {
		svc := NewAuthService(newFakeUserRepo(), nil, time.Hour)
		_, err := svc.Register(ctx, registerReq())
		require.NoError(t, err)
		return svc
	}

	t.Run("valid credentials", func(t *testing.T) {
		svc := setup(t)

		resp, err := svc.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: "correct horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: "battery staple"})
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.Login(ctx, dto.LoginRequest{Email: "bob@example.com", Password: "whatever"})
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo(), nil, time.Hour)

	registered, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	resp, err := svc.Me(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.Email)

	_, err = svc.Me(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
