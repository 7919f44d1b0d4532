package auth

// Package auth contains domain-level types for anonymous identities, sessions and login codes.
// It is pure and free of framework/adapter concerns.

import (
	"strconv"
	"strings"
	"time"
)

// UserKind tags the capability set of a user record.
type UserKind string

const (
	// UserKindAnonymous users only carry a system-assigned display name.
	UserKindAnonymous UserKind = "anonymous"
	// UserKindFull users also carry a username and email.
	UserKindFull UserKind = "full"
)

// Valid reports whether k is a known kind.
func (k UserKind) Valid() bool {
	return k == UserKindAnonymous || k == UserKindFull
}

// User is an identity record.
type User struct {
	ID           string    `json:"id"                 db:"id"`
	Kind         UserKind  `json:"kind"               db:"kind"`
	Name         string    `json:"name"               db:"name"`
	Username     *string   `json:"username,omitempty" db:"username"`
	Email        *string   `json:"email,omitempty"    db:"email"`
	RecoveryCode *string   `json:"-"                  db:"recovery_code"`
	CreatedAt    time.Time `json:"createdAt"          db:"created_at"`
}


// HasRecoveryCode reports whether a recovery code has been revealed for this user.
func (u User) HasRecoveryCode() bool {
	return u.RecoveryCode != nil && *u.RecoveryCode != ""
}

// Session binds a client-held token to at most one user.
// A nil UserID means the session exists but has been logged out.
type Session struct {
	Token     string    `json:"sessionToken" db:"session_token"`
	UserID    *string   `json:"userId"       db:"user_id"`
	CreatedAt time.Time `json:"createdAt"    db:"created_at"`
}

// IsLinked reports whether the session currently points at a user.
func (s Session) IsLinked() bool {
	return s.UserID != nil && *s.UserID != ""
}

// LoginCode is a short-lived, single-use cross-device credential.
type LoginCode struct {
	Code      string    `json:"code"      db:"code"`
	UserID    string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

// ExpiredAt reports whether the code is no longer usable at now.
// A code is valid strictly before its expiry instant.
func (c LoginCode) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Reason is a machine-readable failure reason returned to clients.
type Reason string

const (
	ReasonSessionNotFound     Reason = "session_not_found"
	ReasonSessionDeauthorized Reason = "session_deauthorized"
	ReasonUserNotFound        Reason = "user_not_found"
	ReasonNotAuthenticated    Reason = "not_authenticated"
	ReasonInvalidCode         Reason = "invalid_code"
	ReasonCodeExpired         Reason = "code_expired"
	ReasonNoActiveCode        Reason = "no_active_code"
	ReasonNameTooShort        Reason = "name_too_short"
	ReasonNameTooLong         Reason = "name_too_long"
)

// State is the coarse authentication state of a session.
type State string

const (
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// AuthState is the resolved state of a session token.
// Exactly one of User (authenticated) or Reason (unauthenticated) is set.
type AuthState struct {
	SessionToken string `json:"sessionToken"`
	State        State  `json:"state"`
	Reason       Reason `json:"reason,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// Authenticated builds an authenticated state for token.
func Authenticated(token string, user User) AuthState {
	return AuthState{SessionToken: token, State: StateAuthenticated, User: &user}
}

// Unauthenticated builds an unauthenticated state carrying reason.
func Unauthenticated(token string, reason Reason) AuthState {
	return AuthState{SessionToken: token, State: StateUnauthenticated, Reason: reason}
}

// IsAuthenticated reports whether the state resolved to a live user.
func (s AuthState) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Role represents an operator's authorization role on the admin API.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleGuest Role = "guest"
)

// Operator is the verified principal behind an admin API call.
type Operator struct {
	Subject string
	Email   string
	Groups  []string
	Role    Role
}

// IsAdmin returns true if the operator carries the admin role.
func (o Operator) IsAdmin() bool { return o.Role == RoleAdmin }

// NormalizeToken trims client-supplied session tokens.
func NormalizeToken(token string) string {
	return strings.TrimSpace(token)
}

// UnixMillis is a timestamp encoded in JSON as integer Unix milliseconds.
type UnixMillis time.Time

// MarshalJSON implements json.Marshaler.
func (m UnixMillis) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, time.Time(m).UnixMilli(), 10), nil
}
