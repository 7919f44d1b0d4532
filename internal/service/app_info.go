package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/domain/model"
	apperrors "github.com/versetype/versetype-api/internal/errors"
)

// AppInfoService reports and publishes the latest web client version.
type AppInfoService struct {
	repo   core.AppInfoRepository
	logger *slog.Logger
}

// NewAppInfoService constructs a new AppInfoService.
func NewAppInfoService(repo core.AppInfoRepository, logger *slog.Logger) (*AppInfoService, error) {
	if repo == nil {
		return nil, errors.New("AppInfoRepository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AppInfoService{repo: repo, logger: logger.With("component", "app_info_service")}, nil
}

// Get returns the published version, or model.DefaultAppVersion if none was set.
func (s *AppInfoService) Get(ctx context.Context) (model.AppInfo, error) {
	v, err := s.repo.LatestVersion(ctx)
	if err != nil {
		return model.AppInfo{}, fmt.Errorf("get app info: %w", err)
	}
	if v == "" {
		v = model.DefaultAppVersion
	}
	return model.AppInfo{Version: v}, nil
}

// SetLatestVersion publishes a new latest version.
func (s *AppInfoService) SetLatestVersion(ctx context.Context, req model.SetAppVersionRequest) (model.AppInfo, error) {
	if err := req.Validate(); err != nil {
		return model.AppInfo{}, apperrors.ValidationField("version", err.Error())
	}
	if err := s.repo.SetLatestVersion(ctx, req.Version); err != nil {
		return model.AppInfo{}, fmt.Errorf("set latest version: %w", err)
	}
	s.logger.InfoContext(ctx, "latest version published", "version", req.Version)
	return model.AppInfo{Version: req.Version}, nil
}
