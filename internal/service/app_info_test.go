package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/versetype/versetype-api/internal/domain/model"
	apperrors "github.com/versetype/versetype-api/internal/errors"
	"github.com/versetype/versetype-api/internal/mocks"
)

func newAppInfoService(t *testing.T) (*mocks.MockAppInfoRepository, *AppInfoService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAppInfoRepository(ctrl)
	svc, err := NewAppInfoService(repo, nil)
	require.NoError(t, err)
	return repo, svc
}

func TestAppInfoService_GetDefault(t *testing.T) {
	t.Parallel()
	repo, svc := newAppInfoService(t)
	repo.EXPECT().LatestVersion(gomock.Any()).Return("", nil)

	info, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.AppInfo{Version: model.DefaultAppVersion}, info)
}

func TestAppInfoService_GetStored(t *testing.T) {
	t.Parallel()
	repo, svc := newAppInfoService(t)
	repo.EXPECT().LatestVersion(gomock.Any()).Return("2.4.1", nil)

	info, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.4.1", info.Version)
}

func TestAppInfoService_GetError(t *testing.T) {
	t.Parallel()
	repo, svc := newAppInfoService(t)
	boom := errors.New("boom")
	repo.EXPECT().LatestVersion(gomock.Any()).Return("", boom)

	_, err := svc.Get(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestAppInfoService_SetLatestVersion(t *testing.T) {
	t.Parallel()
	repo, svc := newAppInfoService(t)
	repo.EXPECT().SetLatestVersion(gomock.Any(), "3.0.0").Return(nil)

	info, err := svc.SetLatestVersion(context.Background(), model.SetAppVersionRequest{Version: " 3.0.0 "})
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", info.Version)
}

func TestAppInfoService_SetLatestVersion_Invalid(t *testing.T) {
	t.Parallel()
	_, svc := newAppInfoService(t)

	_, err := svc.SetLatestVersion(context.Background(), model.SetAppVersionRequest{Version: "latest"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestNewAppInfoService_RequiresRepo(t *testing.T) {
	_, err := NewAppInfoService(nil, nil)
	require.Error(t, err)
}
