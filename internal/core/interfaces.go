// Package core declares the repository ports the service layer depends on.
package core

import (
	"context"
	"time"

	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
	"github.com/versetype/versetype-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// CreateUserParams groups the fields needed to create a user.
type CreateUserParams struct {
	Kind     domainauth.UserKind
	Name     string
	Username *string
	Email    *string
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (*domainauth.User, error)
	GetByID(ctx context.Context, id string) (*domainauth.User, error)
	UpdateName(ctx context.Context, id, name string) error
	SetRecoveryCode(ctx context.Context, id, code string) error
	FindByRecoveryCode(ctx context.Context, code string) (*domainauth.User, error)
	FindByName(ctx context.Context, name string) ([]*domainauth.User, error)
}

// SessionRepository defines the interface for session data operations.
type SessionRepository interface {
	FindByToken(ctx context.Context, token string) (*domainauth.Session, error)
	// Upsert creates the session when missing or relinks it. A nil userID unlinks.
	Upsert(ctx context.Context, params UpsertSessionParams) (*domainauth.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*domainauth.Session, error)
}

// UpsertSessionParams groups parameters for SessionRepository.Upsert.
type UpsertSessionParams struct {
	Token  string
	UserID *string
	// ResetCreatedAt stamps the session with Now when it already exists.
	ResetCreatedAt bool
	Now            time.Time
}

// LoginCodeRepository defines the interface for login-code data operations.
type LoginCodeRepository interface {
	// Replace deletes every code owned by code.UserID and stores code, atomically.
	Replace(ctx context.Context, code domainauth.LoginCode) error
	// FindActiveByUser returns the user's code if it has not expired at now.
	FindActiveByUser(ctx context.Context, userID string, now time.Time) (*domainauth.LoginCode, error)
	// Consume atomically deletes and returns the code. Only one concurrent caller can win.
	Consume(ctx context.Context, code string) (*domainauth.LoginCode, error)
}

// SweeperRepository defines the storage operations used by the expired-code sweeper.
type SweeperRepository interface {
	DeleteExpiredLoginCodes(ctx context.Context, now time.Time, batchSize int) (int64, error)
}

// PresentationRepository defines the storage contract for presentation state.
type PresentationRepository interface {
	Get(ctx context.Context, key string) (*model.PresentationState, error)
	// SetIfNewer writes the slide unless the stored state is newer than at.
	// It returns the stored state and whether this write was applied.
	SetIfNewer(ctx context.Context, params SetIfNewerParams) (*model.PresentationState, bool, error)
}

// SetIfNewerParams groups parameters for PresentationRepository.SetIfNewer.
type SetIfNewerParams struct {
	Key   string
	Slide int
	At    time.Time
}

// AppInfoRepository defines the storage contract for app metadata.
type AppInfoRepository interface {
	// LatestVersion returns "" and no error when nothing was published.
	LatestVersion(ctx context.Context) (string, error)
	SetLatestVersion(ctx context.Context, version string) error
}

// TypingResultRepository defines the storage contract for typing history.
type TypingResultRepository interface {
	Create(ctx context.Context, result *model.TypingResult) (*model.TypingResult, error)
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]*model.TypingResult, error)
}
