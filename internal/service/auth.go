package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/versetype/versetype-api/config"
	"github.com/versetype/versetype-api/internal/core"
	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
	apperrors "github.com/versetype/versetype-api/internal/errors"
	"github.com/versetype/versetype-api/internal/observability/metrics"
	"github.com/versetype/versetype-api/internal/observability/statsd"
)

// maxCodeAttempts bounds regeneration when a freshly drawn code collides with a stored one.
const maxCodeAttempts = 3

const (
	msgLoginSuccessful   = "Login successful"
	msgInvalidLoginCode  = "Invalid login code"
	msgLoginCodeExpired  = "Login code has expired"
	msgNameUpdated       = "Name updated successfully"
	msgMustBeLoggedIn    = "You must be logged in to update your profile"
	msgUserNotFound      = "User not found"
	msgInvalidRecovery   = "Invalid recovery code"
	msgRecoverySucceeded = "Account recovered successfully"
)

// ErrMissingSessionToken is returned when an operation is called without a session token.
var ErrMissingSessionToken = apperrors.ValidationField("sessionToken", "session token is required")

// AuthRepos groups the stores the auth service owns.
type AuthRepos struct {
	Users    core.UserRepository
	Sessions core.SessionRepository
	Codes    core.LoginCodeRepository
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Repos   AuthRepos         // Required
	Config  config.AuthConfig // Optional: zero values are sanitized
	Logger  *slog.Logger      // Optional
	Metrics statsd.Sink       // Optional
	Clock   func() time.Time  // Optional: defaults to time.Now
}

// AuthService resolves session tokens to users and runs the anonymous-login,
// login-code and recovery-code flows.
type AuthService struct {
	users    core.UserRepository
	sessions core.SessionRepository
	codes    core.LoginCodeRepository
	cfg      config.AuthConfig
	logger   *slog.Logger
	metrics  statsd.Sink
	now      func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Repos.Users == nil || opts.Repos.Sessions == nil || opts.Repos.Codes == nil {
		return nil, errors.New("user, session and login code repositories are required")
	}
	cfg := opts.Config
	cfg.Sanitize()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &AuthService{
		users:    opts.Repos.Users,
		sessions: opts.Repos.Sessions,
		codes:    opts.Repos.Codes,
		cfg:      cfg,
		logger:   logger.With("component", "auth_service"),
		metrics:  opts.Metrics,
		now:      now,
	}, nil
}

// LoginAnonymousResult is returned by LoginAnonymous.
type LoginAnonymousResult struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

// LogoutResult is returned by Logout.
type LogoutResult struct {
	Success bool `json:"success"`
}

// UpdateNameResult is returned by UpdateUserName.
type UpdateNameResult struct {
	Success bool              `json:"success"`
	Reason  domainauth.Reason `json:"reason,omitempty"`
	Message string            `json:"message"`
}

// LoginCodeResult is returned by CreateLoginCode and GetActiveLoginCode.
type LoginCodeResult struct {
	Success   bool                   `json:"success"`
	Reason    domainauth.Reason      `json:"reason,omitempty"`
	Code      string                 `json:"code,omitempty"`
	ExpiresAt *domainauth.UnixMillis `json:"expiresAt,omitempty"`
}

// VerifyResult is returned by VerifyLoginCode and VerifyRecoveryCode.
type VerifyResult struct {
	Success bool              `json:"success"`
	Reason  domainauth.Reason `json:"reason,omitempty"`
	Message string            `json:"message,omitempty"`
	User    *domainauth.User  `json:"user,omitempty"`
}

// RecoveryCodeResult is returned by GetOrCreateRecoveryCode and RegenerateRecoveryCode.
type RecoveryCodeResult struct {
	Success      bool              `json:"success"`
	Reason       domainauth.Reason `json:"reason,omitempty"`
	RecoveryCode string            `json:"recoveryCode,omitempty"`
}

// GetAuthState resolves token to its linked user or to the reason it has none.
func (s *AuthService) GetAuthState(ctx context.Context, token string) (domainauth.AuthState, error) {
	token = domainauth.NormalizeToken(token)
	if token == "" {
		return domainauth.AuthState{}, ErrMissingSessionToken
	}
	state, err := s.resolve(ctx, token)
	if err != nil {
		return domainauth.AuthState{}, fmt.Errorf("get auth state: %w", err)
	}
	return state, nil
}

// resolve maps a token through sessions and users, turning misses into reasons.
func (s *AuthService) resolve(ctx context.Context, token string) (domainauth.AuthState, error) {
	sess, err := s.sessions.FindByToken(ctx, token)
	if errors.Is(err, core.ErrSessionNotFound) {
		return domainauth.Unauthenticated(token, domainauth.ReasonSessionNotFound), nil
	}
	if err != nil {
		return domainauth.AuthState{}, err
	}
	if !sess.IsLinked() {
		return domainauth.Unauthenticated(token, domainauth.ReasonSessionDeauthorized), nil
	}

	user, err := s.users.GetByID(ctx, *sess.UserID)
	if errors.Is(err, core.ErrUserNotFound) {
		return domainauth.Unauthenticated(token, domainauth.ReasonUserNotFound), nil
	}
	if err != nil {
		return domainauth.AuthState{}, err
	}
	return domainauth.Authenticated(token, *user), nil
}

// LoginAnonymous mints an anonymous user and links token to it.
// With the reuse relogin policy an already authenticated session keeps its user.
func (s *AuthService) LoginAnonymous(ctx context.Context, token string) (res LoginAnonymousResult, err error) {
	defer s.track("login_anonymous", time.Now(), &err, nil)

	token = domainauth.NormalizeToken(token)
	if token == "" {
		return res, ErrMissingSessionToken
	}

	if s.cfg.AnonymousRelogin == config.ReloginReuse {
		state, resolveErr := s.resolve(ctx, token)
		if resolveErr != nil {
			return res, fmt.Errorf("login anonymous: %w", resolveErr)
		}
		if state.IsAuthenticated() {
			return LoginAnonymousResult{Success: true, UserID: state.User.ID}, nil
		}
	}

	name, err := domainauth.GenerateAnonymousName()
	if err != nil {
		return res, fmt.Errorf("generate anonymous name: %w", err)
	}
	user, err := s.users.Create(ctx, core.CreateUserParams{Kind: domainauth.UserKindAnonymous, Name: name})
	if err != nil {
		return res, fmt.Errorf("create anonymous user: %w", err)
	}
	if err = s.link(ctx, token, user.ID); err != nil {
		return res, fmt.Errorf("login anonymous: %w", err)
	}

	s.logger.InfoContext(ctx, "anonymous user created", "user_id", user.ID)
	return LoginAnonymousResult{Success: true, UserID: user.ID}, nil
}

// Logout unlinks token from its user. Unknown or already unlinked sessions succeed.
func (s *AuthService) Logout(ctx context.Context, token string) (res LogoutResult, err error) {
	defer s.track("logout", time.Now(), &err, nil)

	token = domainauth.NormalizeToken(token)
	if token == "" {
		return res, ErrMissingSessionToken
	}

	sess, err := s.sessions.FindByToken(ctx, token)
	if errors.Is(err, core.ErrSessionNotFound) {
		return LogoutResult{Success: true}, nil
	}
	if err != nil {
		return res, fmt.Errorf("logout: %w", err)
	}
	if !sess.IsLinked() {
		return LogoutResult{Success: true}, nil
	}

	if _, err = s.sessions.Upsert(ctx, core.UpsertSessionParams{Token: token, Now: s.now()}); err != nil {
		return res, fmt.Errorf("logout: %w", err)
	}
	return LogoutResult{Success: true}, nil
}

// UpdateUserName validates and stores a new display name for the session's user.
func (s *AuthService) UpdateUserName(ctx context.Context, token, newName string) (res UpdateNameResult, err error) {
	defer s.track("update_name", time.Now(), &err, &res.Reason)

	name, violation := domainauth.ValidateName(newName)
	if violation != nil {
		return UpdateNameResult{Reason: violation.Reason, Message: violation.Message}, nil
	}

	token = domainauth.NormalizeToken(token)
	if token == "" {
		return res, ErrMissingSessionToken
	}
	state, err := s.resolve(ctx, token)
	if err != nil {
		return res, fmt.Errorf("update user name: %w", err)
	}
	switch state.Reason {
	case domainauth.ReasonSessionNotFound, domainauth.ReasonSessionDeauthorized:
		return UpdateNameResult{Reason: domainauth.ReasonNotAuthenticated, Message: msgMustBeLoggedIn}, nil
	case domainauth.ReasonUserNotFound:
		return UpdateNameResult{Reason: domainauth.ReasonUserNotFound, Message: msgUserNotFound}, nil
	}

	err = s.users.UpdateName(ctx, state.User.ID, name)
	if errors.Is(err, core.ErrUserNotFound) {
		return UpdateNameResult{Reason: domainauth.ReasonUserNotFound, Message: msgUserNotFound}, nil
	}
	if err != nil {
		return res, fmt.Errorf("update user name: %w", err)
	}
	return UpdateNameResult{Success: true, Message: msgNameUpdated}, nil
}

// CreateLoginCode replaces the user's login codes with a fresh one.
func (s *AuthService) CreateLoginCode(ctx context.Context, token string) (res LoginCodeResult, err error) {
	defer s.track("create_login_code", time.Now(), &err, &res.Reason)

	user, reason, err := s.requireUser(ctx, token)
	if err != nil || reason != "" {
		return LoginCodeResult{Reason: reason}, err
	}

	lc, err := s.issueLoginCode(ctx, user.ID, s.cfg.LoginCodeTTL)
	if err != nil {
		return res, fmt.Errorf("create login code: %w", err)
	}
	return loginCodeResult(lc), nil
}

// GetActiveLoginCode returns the user's unexpired code without side effects.
func (s *AuthService) GetActiveLoginCode(ctx context.Context, token string) (res LoginCodeResult, err error) {
	user, reason, err := s.requireUser(ctx, token)
	if err != nil || reason != "" {
		return LoginCodeResult{Reason: reason}, err
	}

	lc, err := s.codes.FindActiveByUser(ctx, user.ID, s.now())
	if errors.Is(err, core.ErrLoginCodeNotFound) {
		return LoginCodeResult{Reason: domainauth.ReasonNoActiveCode}, nil
	}
	if err != nil {
		return res, fmt.Errorf("get active login code: %w", err)
	}
	return loginCodeResult(*lc), nil
}

// VerifyLoginCode redeems code and links token to the code's owner.
// The code is consumed even when it turns out to be expired.
func (s *AuthService) VerifyLoginCode(ctx context.Context, code, token string) (res VerifyResult, err error) {
	defer s.track("verify_login_code", time.Now(), &err, &res.Reason)

	token = domainauth.NormalizeToken(token)
	if token == "" {
		return res, ErrMissingSessionToken
	}

	normalized := domainauth.NormalizeLoginCode(code)
	if normalized == "" {
		return failedVerify(domainauth.ReasonInvalidCode, msgInvalidLoginCode), nil
	}

	lc, err := s.codes.Consume(ctx, normalized)
	if errors.Is(err, core.ErrLoginCodeNotFound) {
		return failedVerify(domainauth.ReasonInvalidCode, msgInvalidLoginCode), nil
	}
	if err != nil {
		return res, fmt.Errorf("verify login code: %w", err)
	}
	if lc.ExpiredAt(s.now()) {
		return failedVerify(domainauth.ReasonCodeExpired, msgLoginCodeExpired), nil
	}

	user, err := s.users.GetByID(ctx, lc.UserID)
	if errors.Is(err, core.ErrUserNotFound) {
		return failedVerify(domainauth.ReasonUserNotFound, msgUserNotFound), nil
	}
	if err != nil {
		return res, fmt.Errorf("verify login code: %w", err)
	}
	if err = s.link(ctx, token, user.ID); err != nil {
		return res, fmt.Errorf("verify login code: %w", err)
	}

	s.logger.InfoContext(ctx, "login code redeemed", "user_id", user.ID)
	return VerifyResult{Success: true, Message: msgLoginSuccessful, User: user}, nil
}

// GetOrCreateRecoveryCode reveals the user's recovery code, generating it on first use.
func (s *AuthService) GetOrCreateRecoveryCode(ctx context.Context, token string) (res RecoveryCodeResult, err error) {
	defer s.track("get_recovery_code", time.Now(), &err, &res.Reason)

	user, reason, err := s.resolveUser(ctx, token)
	if err != nil || reason != "" {
		return RecoveryCodeResult{Reason: reason}, err
	}
	if user.HasRecoveryCode() {
		return RecoveryCodeResult{Success: true, RecoveryCode: *user.RecoveryCode}, nil
	}

	code, err := s.storeRecoveryCode(ctx, user.ID)
	if errors.Is(err, core.ErrUserNotFound) {
		return RecoveryCodeResult{Reason: domainauth.ReasonUserNotFound}, nil
	}
	if err != nil {
		return res, fmt.Errorf("get recovery code: %w", err)
	}
	return RecoveryCodeResult{Success: true, RecoveryCode: code}, nil
}

// RegenerateRecoveryCode overwrites the user's recovery code; the previous one stops working.
func (s *AuthService) RegenerateRecoveryCode(ctx context.Context, token string) (res RecoveryCodeResult, err error) {
	defer s.track("regenerate_recovery_code", time.Now(), &err, &res.Reason)

	user, reason, err := s.resolveUser(ctx, token)
	if err != nil || reason != "" {
		return RecoveryCodeResult{Reason: reason}, err
	}

	code, err := s.storeRecoveryCode(ctx, user.ID)
	if errors.Is(err, core.ErrUserNotFound) {
		return RecoveryCodeResult{Reason: domainauth.ReasonUserNotFound}, nil
	}
	if err != nil {
		return res, fmt.Errorf("regenerate recovery code: %w", err)
	}
	s.logger.InfoContext(ctx, "recovery code regenerated", "user_id", user.ID)
	return RecoveryCodeResult{Success: true, RecoveryCode: code}, nil
}

// VerifyRecoveryCode links token to the user holding code. Recovery codes are reusable.
func (s *AuthService) VerifyRecoveryCode(ctx context.Context, code, token string) (res VerifyResult, err error) {
	defer s.track("verify_recovery_code", time.Now(), &err, &res.Reason)

	token = domainauth.NormalizeToken(token)
	if token == "" {
		return res, ErrMissingSessionToken
	}

	user, err := s.users.FindByRecoveryCode(ctx, code)
	if errors.Is(err, core.ErrUserNotFound) {
		return failedVerify(domainauth.ReasonInvalidCode, msgInvalidRecovery), nil
	}
	if err != nil {
		return res, fmt.Errorf("verify recovery code: %w", err)
	}
	if err = s.link(ctx, token, user.ID); err != nil {
		return res, fmt.Errorf("verify recovery code: %w", err)
	}

	s.logger.InfoContext(ctx, "recovery code redeemed", "user_id", user.ID)
	return VerifyResult{Success: true, Message: msgRecoverySucceeded, User: user}, nil
}

// IssueLoginCode replaces userID's codes with one valid for ttl. The caller vouches for the user.
func (s *AuthService) IssueLoginCode(ctx context.Context, userID string, ttl time.Duration) (domainauth.LoginCode, error) {
	return s.issueLoginCode(ctx, userID, ttl)
}

func (s *AuthService) issueLoginCode(ctx context.Context, userID string, ttl time.Duration) (domainauth.LoginCode, error) {
	for attempt := 1; ; attempt++ {
		code, err := domainauth.GenerateLoginCode()
		if err != nil {
			return domainauth.LoginCode{}, fmt.Errorf("generate login code: %w", err)
		}
		now := s.now()
		lc := domainauth.LoginCode{Code: code, UserID: userID, CreatedAt: now, ExpiresAt: now.Add(ttl)}

		err = s.codes.Replace(ctx, lc)
		if err == nil {
			return lc, nil
		}
		if !errors.Is(err, core.ErrLoginCodeCollision) || attempt >= maxCodeAttempts {
			return domainauth.LoginCode{}, err
		}
		s.logger.DebugContext(ctx, "login code collision, regenerating", "attempt", attempt)
	}
}

func (s *AuthService) storeRecoveryCode(ctx context.Context, userID string) (string, error) {
	for attempt := 1; ; attempt++ {
		code, err := domainauth.GenerateRecoveryCode()
		if err != nil {
			return "", fmt.Errorf("generate recovery code: %w", err)
		}
		err = s.users.SetRecoveryCode(ctx, userID, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, core.ErrRecoveryCodeTaken) || attempt >= maxCodeAttempts {
			return "", err
		}
	}
}

// requireUser resolves token for operations that only distinguish authenticated from not.
func (s *AuthService) requireUser(ctx context.Context, token string) (*domainauth.User, domainauth.Reason, error) {
	user, reason, err := s.resolveUser(ctx, token)
	if reason != "" {
		reason = domainauth.ReasonNotAuthenticated
	}
	return user, reason, err
}

// resolveUser resolves token and keeps the getAuthState reason on failure.
func (s *AuthService) resolveUser(ctx context.Context, token string) (*domainauth.User, domainauth.Reason, error) {
	token = domainauth.NormalizeToken(token)
	if token == "" {
		return nil, "", ErrMissingSessionToken
	}
	state, err := s.resolve(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if !state.IsAuthenticated() {
		return nil, state.Reason, nil
	}
	return state.User, "", nil
}

// link points token at userID with a fresh created_at, creating the session if needed.
func (s *AuthService) link(ctx context.Context, token, userID string) error {
	_, err := s.sessions.Upsert(ctx, core.UpsertSessionParams{
		Token:          token,
		UserID:         &userID,
		ResetCreatedAt: true,
		Now:            s.now(),
	})
	if err != nil {
		return fmt.Errorf("link session: %w", err)
	}
	return nil
}

func (s *AuthService) track(op string, start time.Time, errp *error, reason *domainauth.Reason) {
	in := metrics.AuthMetric{Operation: op, Result: metrics.ResultSuccess, Duration: time.Since(start)}
	switch {
	case errp != nil && *errp != nil:
		in.Result = metrics.ResultError
		in.Err = *errp
		s.logger.Error("auth operation failed", "operation", op, "error", *errp)
	case reason != nil && *reason != "":
		in.Result = metrics.ResultRejected
		in.Reason = string(*reason)
	}
	metrics.EmitAuthOperation(s.metrics, in)
}

func loginCodeResult(lc domainauth.LoginCode) LoginCodeResult {
	exp := domainauth.UnixMillis(lc.ExpiresAt)
	return LoginCodeResult{Success: true, Code: lc.Code, ExpiresAt: &exp}
}

func failedVerify(reason domainauth.Reason, message string) VerifyResult {
	return VerifyResult{Reason: reason, Message: message}
}
