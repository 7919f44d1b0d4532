package httpx

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
	"github.com/versetype/versetype-api/internal/ports"
)

const (
	// SessionTokenHeader carries the client-generated session token.
	SessionTokenHeader = "X-Session-Token"

	errCodeMissingSessionToken = "missing_session_token"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack lets WebSocket upgrades pass through the logging wrapper.
func (w *respWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionTokenFromRequest reads the X-Session-Token header, then the session cookie.
func SessionTokenFromRequest(r *http.Request, cookieName string) string {
	if tok := domainauth.NormalizeToken(r.Header.Get(SessionTokenHeader)); tok != "" {
		return tok
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return domainauth.NormalizeToken(c.Value)
	}
	return ""
}

// RequireSessionToken rejects requests without a session token with 400 missing_session_token.
func RequireSessionToken(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := SessionTokenFromRequest(r, cookieName)
			if tok == "" {
				WriteError(w, ErrorParams{
					Code:    http.StatusBadRequest,
					ErrCode: errCodeMissingSessionToken,
					Err:     errors.New("session token is required"),
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionTokenInContext(r.Context(), tok)))
		})
	}
}

// RequireAdmin verifies the bearer token and requires the admin role.
func RequireAdmin(verifier ports.TokenVerifier, roles ports.RoleMapper, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}
			claims, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				logger.WarnContext(r.Context(), "admin token rejected", "error", err)
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "invalid_token",
					Err:     errors.New("invalid bearer token"),
				})
				return
			}
			if roles.Map(claims.Groups) != domainauth.RoleAdmin {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(SetOperatorInContext(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// RateLimitByIP limits requests per client IP with a sliding window.
func RateLimitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			WriteError(w, ErrorParams{
				Code:    http.StatusTooManyRequests,
				ErrCode: "rate_limited",
				Err:     errors.New("too many attempts, try again later"),
			})
		}),
	)
}

// Chain applies middlewares so the first one listed runs outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
