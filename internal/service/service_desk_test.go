package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versetype/versetype-api/config"
	apperrors "github.com/versetype/versetype-api/internal/errors"
)

func newServiceDesk(t *testing.T) (*authFixture, *ServiceDeskService) {
	t.Helper()
	f := newAuthFixture(t, config.AuthConfig{})
	desk, err := NewServiceDeskService(ServiceDeskServiceOptions{
		Users:       f.users,
		Sessions:    f.sessions,
		Issuer:      f.svc,
		TempCodeTTL: 10 * time.Minute,
	})
	require.NoError(t, err)
	return f, desk
}

func TestServiceDesk_FindUsersByName(t *testing.T) {
	f, desk := newServiceDesk(t)
	ctx := context.Background()

	uid := f.login(t, "phone")
	res, err := f.svc.UpdateUserName(ctx, "phone", "Grace Hopper")
	require.NoError(t, err)
	require.True(t, res.Success)
	f.clock.Advance(time.Second)
	code, err := f.svc.CreateLoginCode(ctx, "phone")
	require.NoError(t, err)
	verified, err := f.svc.VerifyLoginCode(ctx, code.Code, "laptop")
	require.NoError(t, err)
	require.True(t, verified.Success)

	matches, err := desk.FindUsersByName(ctx, "  Grace Hopper ")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, uid, matches[0].UserID)
	require.Len(t, matches[0].Sessions, 2)
	assert.Equal(t, "phone", matches[0].Sessions[0].SessionToken)
	assert.Equal(t, "laptop", matches[0].Sessions[1].SessionToken)

	none, err := desk.FindUsersByName(ctx, "Ada")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestServiceDesk_FindUsersByName_RequiresName(t *testing.T) {
	_, desk := newServiceDesk(t)
	_, err := desk.FindUsersByName(context.Background(), "   ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestServiceDesk_GenerateTempLoginCode(t *testing.T) {
	f, desk := newServiceDesk(t)
	ctx := context.Background()
	uid := f.login(t, "phone")

	issued, err := desk.GenerateTempLoginCode(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), issued.ExpiresAt)

	// Still redeemable after the normal one-minute lifetime.
	f.clock.Advance(5 * time.Minute)
	res, err := f.svc.VerifyLoginCode(ctx, issued.Code, "laptop")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestServiceDesk_GenerateTempLoginCode_UnknownUser(t *testing.T) {
	_, desk := newServiceDesk(t)

	_, err := desk.GenerateTempLoginCode(context.Background(), "user-404")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = desk.GenerateTempLoginCode(context.Background(), " ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestNewServiceDeskService_Requires(t *testing.T) {
	_, err := NewServiceDeskService(ServiceDeskServiceOptions{})
	require.Error(t, err)
}
