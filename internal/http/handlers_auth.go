package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
	"github.com/versetype/versetype-api/internal/service"
)

// AuthServiceInterface defines the auth operations exposed over HTTP.
type AuthServiceInterface interface {
	GetAuthState(ctx context.Context, token string) (domainauth.AuthState, error)
	LoginAnonymous(ctx context.Context, token string) (service.LoginAnonymousResult, error)
	Logout(ctx context.Context, token string) (service.LogoutResult, error)
	UpdateUserName(ctx context.Context, token, newName string) (service.UpdateNameResult, error)
	CreateLoginCode(ctx context.Context, token string) (service.LoginCodeResult, error)
	GetActiveLoginCode(ctx context.Context, token string) (service.LoginCodeResult, error)
	VerifyLoginCode(ctx context.Context, code, token string) (service.VerifyResult, error)
	GetOrCreateRecoveryCode(ctx context.Context, token string) (service.RecoveryCodeResult, error)
	RegenerateRecoveryCode(ctx context.Context, token string) (service.RecoveryCodeResult, error)
	VerifyRecoveryCode(ctx context.Context, code, token string) (service.VerifyResult, error)
}

// AuthHandlers provides HTTP handlers for session-token authentication.
// Every route runs behind RequireSessionToken.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieName   string
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// sessionCookieMaxAge is one year in seconds.
const sessionCookieMaxAge = 365 * 24 * 60 * 60

type updateNameRequest struct {
	Name string `json:"name"`
}

type verifyCodeRequest struct {
	Code string `json:"code"`
}

type verifyRecoveryRequest struct {
	RecoveryCode string `json:"recoveryCode"`
}

// State handles GET /api/auth/state.
func (h *AuthHandlers) State(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.GetAuthState(r.Context(), SessionTokenFromContext(r.Context()))
	h.respond(w, r, st, err)
}

// LoginAnonymous handles POST /api/auth/anonymous.
func (h *AuthHandlers) LoginAnonymous(w http.ResponseWriter, r *http.Request) {
	tok := SessionTokenFromContext(r.Context())
	res, err := h.Svc.LoginAnonymous(r.Context(), tok)
	if err == nil && res.Success {
		h.setSessionCookie(w, r, tok)
	}
	h.respond(w, r, res, err)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.Logout(r.Context(), SessionTokenFromContext(r.Context()))
	if err == nil {
		h.clearSessionCookie(w, r)
	}
	h.respond(w, r, res, err)
}

// UpdateName handles PUT /api/auth/name.
func (h *AuthHandlers) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req updateNameRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	res, err := h.Svc.UpdateUserName(r.Context(), SessionTokenFromContext(r.Context()), req.Name)
	h.respond(w, r, res, err)
}

// CreateLoginCode handles POST /api/auth/login-code.
func (h *AuthHandlers) CreateLoginCode(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.CreateLoginCode(r.Context(), SessionTokenFromContext(r.Context()))
	h.respond(w, r, res, err)
}

// ActiveLoginCode handles GET /api/auth/login-code.
func (h *AuthHandlers) ActiveLoginCode(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.GetActiveLoginCode(r.Context(), SessionTokenFromContext(r.Context()))
	h.respond(w, r, res, err)
}

// VerifyLoginCode handles POST /api/auth/login-code/verify.
func (h *AuthHandlers) VerifyLoginCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	tok := SessionTokenFromContext(r.Context())
	res, err := h.Svc.VerifyLoginCode(r.Context(), req.Code, tok)
	if err == nil && res.Success {
		h.setSessionCookie(w, r, tok)
	}
	h.respond(w, r, res, err)
}

// RecoveryCode handles POST /api/auth/recovery-code.
func (h *AuthHandlers) RecoveryCode(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.GetOrCreateRecoveryCode(r.Context(), SessionTokenFromContext(r.Context()))
	h.respond(w, r, res, err)
}

// RegenerateRecoveryCode handles POST /api/auth/recovery-code/regenerate.
func (h *AuthHandlers) RegenerateRecoveryCode(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.RegenerateRecoveryCode(r.Context(), SessionTokenFromContext(r.Context()))
	h.respond(w, r, res, err)
}

// VerifyRecoveryCode handles POST /api/auth/recovery-code/verify.
func (h *AuthHandlers) VerifyRecoveryCode(w http.ResponseWriter, r *http.Request) {
	var req verifyRecoveryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	tok := SessionTokenFromContext(r.Context())
	res, err := h.Svc.VerifyRecoveryCode(r.Context(), req.RecoveryCode, tok)
	if err == nil && res.Success {
		h.setSessionCookie(w, r, tok)
	}
	h.respond(w, r, res, err)
}

// respond writes v with 200, or maps err. Structured failures are carried in v.
func (h *AuthHandlers) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) cookieName() string {
	if h.CookieName == "" {
		return "session_token"
	}
	return h.CookieName
}
