package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/versetype/versetype-api/internal/core"
	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
	"github.com/versetype/versetype-api/internal/domain/model"
	apperrors "github.com/versetype/versetype-api/internal/errors"
)

// LoginCodeIssuer replaces a user's login codes with one of the given lifetime.
type LoginCodeIssuer interface {
	IssueLoginCode(ctx context.Context, userID string, ttl time.Duration) (domainauth.LoginCode, error)
}

// ServiceDeskServiceOptions groups dependencies for ServiceDeskService.
type ServiceDeskServiceOptions struct {
	Users    core.UserRepository
	Sessions core.SessionRepository
	Issuer   LoginCodeIssuer
	// TempCodeTTL is the lifetime of operator-issued codes.
	TempCodeTTL time.Duration
	Logger      *slog.Logger
}

// ServiceDeskService backs operator tooling: finding users who lost access
// and handing them a longer-lived login code.
type ServiceDeskService struct {
	users    core.UserRepository
	sessions core.SessionRepository
	issuer   LoginCodeIssuer
	ttl      time.Duration
	logger   *slog.Logger
}

// NewServiceDeskService constructs a new ServiceDeskService.
func NewServiceDeskService(opts ServiceDeskServiceOptions) (*ServiceDeskService, error) {
	if opts.Users == nil || opts.Sessions == nil || opts.Issuer == nil {
		return nil, errors.New("users, sessions and issuer are required")
	}
	ttl := opts.TempCodeTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceDeskService{
		users:    opts.Users,
		sessions: opts.Sessions,
		issuer:   opts.Issuer,
		ttl:      ttl,
		logger:   logger.With("component", "service_desk"),
	}, nil
}

// FindUsersByName returns users whose display name matches exactly, with their linked sessions.
func (s *ServiceDeskService) FindUsersByName(ctx context.Context, name string) ([]model.UserMatch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ValidationField("name", "name is required")
	}

	users, err := s.users.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find users by name: %w", err)
	}

	out := make([]model.UserMatch, 0, len(users))
	for _, u := range users {
		sessions, listErr := s.sessions.ListByUser(ctx, u.ID)
		if listErr != nil {
			return nil, fmt.Errorf("list sessions for %s: %w", u.ID, listErr)
		}
		m := model.UserMatch{UserID: u.ID, Name: u.Name, Sessions: make([]model.SessionSummary, 0, len(sessions))}
		for _, sess := range sessions {
			m.Sessions = append(m.Sessions, model.SessionSummary{SessionToken: sess.Token, CreatedAt: sess.CreatedAt})
		}
		out = append(out, m)
	}
	return out, nil
}

// GenerateTempLoginCode issues a login code for userID on an operator's behalf.
func (s *ServiceDeskService) GenerateTempLoginCode(ctx context.Context, userID string) (model.IssuedLoginCode, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.IssuedLoginCode{}, apperrors.ValidationField("userId", "user id is required")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return model.IssuedLoginCode{}, apperrors.NotFoundf("user %s not found", userID)
		}
		return model.IssuedLoginCode{}, fmt.Errorf("generate temp login code: %w", err)
	}

	lc, err := s.issuer.IssueLoginCode(ctx, userID, s.ttl)
	if err != nil {
		return model.IssuedLoginCode{}, fmt.Errorf("generate temp login code: %w", err)
	}
	s.logger.InfoContext(ctx, "temporary login code issued", "user_id", userID, "expires_at", lc.ExpiresAt)
	return model.IssuedLoginCode{Code: lc.Code, ExpiresAt: lc.ExpiresAt}, nil
}
