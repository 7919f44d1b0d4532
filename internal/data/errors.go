package data

import (
	"errors"
	"fmt"

	"github.com/versetype/versetype-api/internal/core"
	apperrors "github.com/versetype/versetype-api/internal/errors"
)

// Repository sentinels are shared with the service layer through core.
var (
	ErrUserNotFound         = core.ErrUserNotFound
	ErrSessionNotFound      = core.ErrSessionNotFound
	ErrLoginCodeNotFound    = core.ErrLoginCodeNotFound
	ErrLoginCodeCollision   = core.ErrLoginCodeCollision
	ErrRecoveryCodeTaken    = core.ErrRecoveryCodeTaken
	ErrPresentationNotFound = core.ErrPresentationNotFound

	ErrUserIDRequired = errors.New("user_id is required")
)

// dbError labels a failed statement with op and maps driver failures onto AppErrors.
func dbError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, apperrors.MapDBError(err))
}
