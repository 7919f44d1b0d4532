package auth

// Package auth contains simple hand-written test doubles for auth ports and repositories.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/versetype/versetype-api/internal/core"
	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
	"github.com/versetype/versetype-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.TokenVerifier      = (*MockTokenVerifier)(nil)
	_ ports.RoleMapper         = StaticRoleMapper{}
	_ core.UserRepository      = (*MemoryUserRepo)(nil)
	_ core.SessionRepository   = (*MemorySessionRepo)(nil)
	_ core.LoginCodeRepository = (*MemoryLoginCodeRepo)(nil)
	_ core.SweeperRepository   = (*MemoryLoginCodeRepo)(nil)
)

// ErrInvalidToken is returned by MockTokenVerifier for tokens it does not know.
var ErrInvalidToken = errors.New("invalid token")

// MockTokenVerifier maps raw bearer tokens to fixed operator claims.
type MockTokenVerifier struct {
	VerifyFunc func(ctx context.Context, rawToken string) (ports.OperatorClaims, error)
	Tokens     map[string]ports.OperatorClaims

	mu    sync.Mutex
	calls int
}

// Verify implements ports.TokenVerifier.
func (m *MockTokenVerifier) Verify(ctx context.Context, rawToken string) (ports.OperatorClaims, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, rawToken)
	}
	claims, ok := m.Tokens[rawToken]
	if !ok {
		return ports.OperatorClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// Calls returns how many times Verify ran.
func (m *MockTokenVerifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// StaticRoleMapper grants admin on membership of AdminGroup.
type StaticRoleMapper struct {
	AdminGroup string
}

// Map implements ports.RoleMapper.
func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	return domainauth.RoleGuest
}

// MemoryUserRepo is an in-memory core.UserRepository.
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domainauth.User
	seq   int
	now   func() time.Time

	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryUserRepo creates an empty user repository stamping rows with now.
func NewMemoryUserRepo(now func() time.Time) *MemoryUserRepo {
	if now == nil {
		now = time.Now
	}
	return &MemoryUserRepo{users: make(map[string]domainauth.User), now: now}
}

func (m *MemoryUserRepo) Create(_ context.Context, params core.CreateUserParams) (*domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if !params.Kind.Valid() {
		return nil, fmt.Errorf("invalid user kind: %q", params.Kind)
	}
	m.seq++
	u := domainauth.User{
		ID:        fmt.Sprintf("user-%d", m.seq),
		Kind:      params.Kind,
		Name:      params.Name,
		Username:  params.Username,
		Email:     params.Email,
		CreatedAt: m.now(),
	}
	m.users[u.ID] = u
	return cloneUser(u), nil
}

func (m *MemoryUserRepo) GetByID(_ context.Context, id string) (*domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (m *MemoryUserRepo) UpdateName(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return core.ErrUserNotFound
	}
	u.Name = name
	m.users[id] = u
	return nil
}

func (m *MemoryUserRepo) SetRecoveryCode(_ context.Context, id, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return core.ErrUserNotFound
	}
	for otherID, other := range m.users {
		if otherID != id && other.RecoveryCode != nil && *other.RecoveryCode == code {
			return core.ErrRecoveryCodeTaken
		}
	}
	u.RecoveryCode = &code
	m.users[id] = u
	return nil
}

func (m *MemoryUserRepo) FindByRecoveryCode(_ context.Context, code string) (*domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if code == "" {
		return nil, core.ErrUserNotFound
	}
	for _, u := range m.users {
		if u.RecoveryCode != nil && *u.RecoveryCode == code {
			return cloneUser(u), nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (m *MemoryUserRepo) FindByName(_ context.Context, name string) ([]*domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*domainauth.User
	for _, u := range m.users {
		if u.Name == name {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a user, as an operator might by hand.
func (m *MemoryUserRepo) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// Len returns the number of stored users.
func (m *MemoryUserRepo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func cloneUser(u domainauth.User) *domainauth.User {
	if u.RecoveryCode != nil {
		rc := *u.RecoveryCode
		u.RecoveryCode = &rc
	}
	return &u
}

// MemorySessionRepo is an in-memory core.SessionRepository.
type MemorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	Err error
}

// NewMemorySessionRepo creates an empty session repository.
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionRepo) FindByToken(_ context.Context, token string) (*domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.sessions[token]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (m *MemorySessionRepo) Upsert(_ context.Context, params core.UpsertSessionParams) (*domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if params.Token == "" {
		return nil, errors.New("session token cannot be empty")
	}
	s, ok := m.sessions[params.Token]
	if !ok || params.ResetCreatedAt {
		s.CreatedAt = params.Now
	}
	s.Token = params.Token
	s.UserID = nil
	if params.UserID != nil {
		id := *params.UserID
		s.UserID = &id
	}
	m.sessions[params.Token] = s
	return cloneSession(s), nil
}

func (m *MemorySessionRepo) ListByUser(_ context.Context, userID string) ([]*domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*domainauth.Session
	for _, s := range m.sessions {
		if s.UserID != nil && *s.UserID == userID {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func cloneSession(s domainauth.Session) *domainauth.Session {
	if s.UserID != nil {
		id := *s.UserID
		s.UserID = &id
	}
	return &s
}

// MemoryLoginCodeRepo is an in-memory core.LoginCodeRepository and core.SweeperRepository.
type MemoryLoginCodeRepo struct {
	mu    sync.Mutex
	codes map[string]domainauth.LoginCode

	// Collisions makes the next N Replace calls fail with core.ErrLoginCodeCollision.
	Collisions int
	Err        error

	ReplaceCalls int
	SweepCalls   int
}

// NewMemoryLoginCodeRepo creates an empty login-code repository.
func NewMemoryLoginCodeRepo() *MemoryLoginCodeRepo {
	return &MemoryLoginCodeRepo{codes: make(map[string]domainauth.LoginCode)}
}

func (m *MemoryLoginCodeRepo) Replace(_ context.Context, code domainauth.LoginCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceCalls++
	if m.Err != nil {
		return m.Err
	}
	if m.Collisions > 0 {
		m.Collisions--
		return core.ErrLoginCodeCollision
	}
	if existing, ok := m.codes[code.Code]; ok && existing.UserID != code.UserID {
		return core.ErrLoginCodeCollision
	}
	for k, c := range m.codes {
		if c.UserID == code.UserID {
			delete(m.codes, k)
		}
	}
	m.codes[code.Code] = code
	return nil
}

func (m *MemoryLoginCodeRepo) FindActiveByUser(_ context.Context, userID string, now time.Time) (*domainauth.LoginCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, c := range m.codes {
		if c.UserID == userID && !c.ExpiredAt(now) {
			out := c
			return &out, nil
		}
	}
	return nil, core.ErrLoginCodeNotFound
}

func (m *MemoryLoginCodeRepo) Consume(_ context.Context, code string) (*domainauth.LoginCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.codes[code]
	if !ok {
		return nil, core.ErrLoginCodeNotFound
	}
	delete(m.codes, code)
	return &c, nil
}

func (m *MemoryLoginCodeRepo) DeleteExpiredLoginCodes(_ context.Context, now time.Time, batchSize int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SweepCalls++
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for k, c := range m.codes {
		if batchSize > 0 && n >= int64(batchSize) {
			break
		}
		if c.ExpiresAt.Before(now) {
			delete(m.codes, k)
			n++
		}
	}
	return n, nil
}

// Put stores code directly, bypassing Replace.
func (m *MemoryLoginCodeRepo) Put(code domainauth.LoginCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code.Code] = code
}

// Has reports whether code is stored, expired or not.
func (m *MemoryLoginCodeRepo) Has(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.codes[code]
	return ok
}

// Len returns the number of stored codes.
func (m *MemoryLoginCodeRepo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.codes)
}
