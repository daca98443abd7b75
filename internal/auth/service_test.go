package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/testutil"
	"github.com/lvcu04/fashion_shop/pkg/tokens"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return &Service{
		DB:        testutil.NewDB(t),
		JWTSecret: []byte("test-jwt-secret"),
		AccessTTL: 15 * time.Minute,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Lan@Shop.Test ", "Lan", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "lan@shop.test", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	res, err := svc.Login(ctx, "LAN@shop.test", "secret123")
	require.NoError(t, err)
	assert.False(t, res.IsAdmin)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	me, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lan", me.Name)
}

func TestRegister_Rejections(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "taken@shop.test", "", "secret123")
	require.NoError(t, err)

	tests := []struct {
		name, email, password string
		want                  error
	}{
		{"bad email", "not-an-email", "secret123", ErrValidation},
		{"empty email", "", "secret123", ErrValidation},
		{"short password", "x@shop.test", "123", ErrValidation},
		{"duplicate", "TAKEN@shop.test", "secret123", ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, "", tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@shop.test", "", "secret123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@shop.test", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@shop.test", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Me(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogin_Admin(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, "boss@shop.test", "", "secret123")
	require.NoError(t, err)
	require.NoError(t, svc.DB.Model(&models.User{}).Where("id = ?", u.ID).Update("role", models.RoleAdmin).Error)

	res, err := svc.Login(ctx, "boss@shop.test", "secret123")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
}
