package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/publicsuffix"

	"github.com/versetype/versetype-api/config"
	"github.com/versetype/versetype-api/internal/adapters/fanout"
	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/domain/model"
	mocks "github.com/versetype/versetype-api/internal/mocks/auth"
	"github.com/versetype/versetype-api/internal/ports"
	"github.com/versetype/versetype-api/internal/service"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// liveFanout counts subscriptions that have not been stopped yet.
type liveFanout struct {
	*fanout.Hub
	live atomic.Int32
}

func (f *liveFanout) Subscribe(ctx context.Context, key string) (<-chan model.PresentationState, func(), error) {
	ch, cancel, err := f.Hub.Subscribe(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	f.live.Add(1)
	var once sync.Once
	return ch, func() {
		once.Do(func() { f.live.Add(-1) })
		cancel()
	}, nil
}

// memPresentations is a last-writer-wins presentation store.
type memPresentations struct {
	mu     sync.Mutex
	states map[string]model.PresentationState
}

func (m *memPresentations) Get(_ context.Context, key string) (*model.PresentationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[key]
	if !ok {
		return nil, core.ErrPresentationNotFound
	}
	return &st, nil
}

func (m *memPresentations) SetIfNewer(_ context.Context, p core.SetIfNewerParams) (*model.PresentationState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.states[p.Key]; ok && cur.LastUpdated.After(p.At) {
		return &cur, false, nil
	}
	st := model.PresentationState{Key: p.Key, CurrentSlide: p.Slide, LastUpdated: p.At, Exists: true}
	m.states[p.Key] = st
	return &st, true, nil
}

type memAppInfo struct{ version string }

func (m *memAppInfo) LatestVersion(context.Context) (string, error) { return m.version, nil }

func (m *memAppInfo) SetLatestVersion(_ context.Context, v string) error {
	m.version = v
	return nil
}

type testServer struct {
	handler  http.Handler
	auth     *service.AuthService
	hub      *liveFanout
	verifier *mocks.MockTokenVerifier
}

func newTestServer(t *testing.T, httpCfg config.HTTPConfig) *testServer {
	t.Helper()
	now := func() time.Time { return fixedNow }
	users := mocks.NewMemoryUserRepo(now)
	sessions := mocks.NewMemorySessionRepo()
	authSvc, err := service.NewAuthService(service.AuthServiceOptions{
		Repos: service.AuthRepos{Users: users, Sessions: sessions, Codes: mocks.NewMemoryLoginCodeRepo()},
		Clock: now,
	})
	require.NoError(t, err)

	hub := &liveFanout{Hub: fanout.NewHub()}
	presentations, err := service.NewPresentationService(service.PresentationServiceOptions{
		Repo:   &memPresentations{states: map[string]model.PresentationState{}},
		Fanout: hub,
		Clock:  now,
	})
	require.NoError(t, err)
	appInfo, err := service.NewAppInfoService(&memAppInfo{}, nil)
	require.NoError(t, err)
	desk, err := service.NewServiceDeskService(service.ServiceDeskServiceOptions{Users: users, Sessions: sessions, Issuer: authSvc})
	require.NoError(t, err)

	verifier := &mocks.MockTokenVerifier{Tokens: map[string]ports.OperatorClaims{
		"admin-token": {Subject: "op-1", Email: "op@example.test", Groups: []string{"service-desk"}},
		"user-token":  {Subject: "op-2", Groups: []string{"staff"}},
	}}

	if httpCfg.VerifyRateLimit == 0 {
		httpCfg.VerifyRateLimit = 100
		httpCfg.VerifyRateWindow = time.Minute
	}
	return &testServer{
		handler: NewRouter(RouterServices{
			Auth:          authSvc,
			Presentations: presentations,
			AppInfo:       appInfo,
			ServiceDesk:   desk,
			Verifier:      verifier,
			Roles:         mocks.StaticRoleMapper{AdminGroup: "service-desk"},
			HTTP:          httpCfg,
			CookieName:    "session_token",
		}),
		auth:     authSvc,
		hub:      hub,
		verifier: verifier,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set(SessionTokenHeader, token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_Healthz(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(t, http.MethodHead, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestRouter_MissingSessionToken(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/state"},
		{http.MethodPost, "/api/auth/anonymous"},
		{http.MethodPost, "/api/auth/login-code/verify"},
	} {
		rec := s.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, route.path)
		body := decode[map[string]string](t, rec)
		assert.Equal(t, "missing_session_token", body["error"])
	}
}

func TestRouter_AnonymousLoginAndState(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	rec := s.do(t, http.MethodGet, "/api/auth/state", "tok-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[map[string]any](t, rec)
	assert.Equal(t, "unauthenticated", state["state"])
	assert.Equal(t, "session_not_found", state["reason"])

	rec = s.do(t, http.MethodPost, "/api/auth/anonymous", "tok-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[service.LoginAnonymousResult](t, rec)
	assert.True(t, login.Success)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_token", cookies[0].Name)
	assert.Equal(t, "tok-1", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// Cookie fallback when the header is absent.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/state", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok-1"})
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	state = decode[map[string]any](t, rec)
	assert.Equal(t, "authenticated", state["state"])
	user, ok := state["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, login.UserID, user["id"])
	assert.NotContains(t, user, "recoveryCode")
}

func TestRouter_SessionCookieRoundTrip(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	send := func(method, path, token string) *http.Response {
		req, reqErr := http.NewRequestWithContext(context.Background(), method, srv.URL+path, nil)
		require.NoError(t, reqErr)
		if token != "" {
			req.Header.Set(SessionTokenHeader, token)
		}
		resp, doErr := client.Do(req)
		require.NoError(t, doErr)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := send(http.MethodPost, "/api/auth/anonymous", "tok-jar")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The jar now carries the session; no header needed.
	resp = send(http.MethodGet, "/api/auth/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, "authenticated", state["state"])

	resp = send(http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(http.MethodGet, "/api/auth/state", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_LoginCodeFlow(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})
	s.do(t, http.MethodPost, "/api/auth/anonymous", "phone", nil)

	rec := s.do(t, http.MethodPost, "/api/auth/login-code", "phone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	raw := decode[map[string]any](t, rec)
	assert.Equal(t, true, raw["success"])
	assert.InDelta(t, float64(fixedNow.Add(time.Minute).UnixMilli()), raw["expiresAt"], 0)
	code, _ := raw["code"].(string)
	require.Len(t, code, 8)

	rec = s.do(t, http.MethodGet, "/api/auth/login-code", "phone", nil)
	active := decode[map[string]any](t, rec)
	assert.Equal(t, code, active["code"])

	rec = s.do(t, http.MethodPost, "/api/auth/login-code/verify", "laptop", map[string]string{"code": strings.ToLower(code)})
	require.Equal(t, http.StatusOK, rec.Code)
	verified := decode[service.VerifyResult](t, rec)
	assert.True(t, verified.Success)
	assert.Equal(t, "Login successful", verified.Message)

	rec = s.do(t, http.MethodPost, "/api/auth/login-code/verify", "tablet", map[string]string{"code": code})
	failed := decode[service.VerifyResult](t, rec)
	assert.False(t, failed.Success)
	assert.Equal(t, "invalid_code", string(failed.Reason))
}

func TestRouter_UpdateNameAndRecovery(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	rec := s.do(t, http.MethodPut, "/api/auth/name", "tok", map[string]string{"name": "Ada Lovelace"})
	res := decode[service.UpdateNameResult](t, rec)
	assert.Equal(t, "not_authenticated", string(res.Reason))

	s.do(t, http.MethodPost, "/api/auth/anonymous", "tok", nil)
	rec = s.do(t, http.MethodPut, "/api/auth/name", "tok", map[string]string{"name": "Ada Lovelace"})
	res = decode[service.UpdateNameResult](t, rec)
	assert.True(t, res.Success)

	rec = s.do(t, http.MethodPost, "/api/auth/recovery-code", "tok", nil)
	rc := decode[service.RecoveryCodeResult](t, rec)
	require.True(t, rc.Success)
	require.Len(t, rc.RecoveryCode, 128)

	rec = s.do(t, http.MethodPost, "/api/auth/recovery-code/verify", "new-device", map[string]string{"recoveryCode": rc.RecoveryCode})
	v := decode[service.VerifyResult](t, rec)
	assert.True(t, v.Success)
	require.NotNil(t, v.User)
	assert.Equal(t, "Ada Lovelace", v.User.Name)

	rec = s.do(t, http.MethodPost, "/api/auth/recovery-code/regenerate", "tok", nil)
	regen := decode[service.RecoveryCodeResult](t, rec)
	assert.NotEqual(t, rc.RecoveryCode, regen.RecoveryCode)

	rec = s.do(t, http.MethodPost, "/api/auth/logout", "tok", nil)
	assert.True(t, decode[service.LogoutResult](t, rec).Success)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestRouter_InvalidJSON(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})
	req := httptest.NewRequest(http.MethodPut, "/api/auth/name", strings.NewReader(`{"name": 3`))
	req.Header.Set(SessionTokenHeader, "tok")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decode[map[string]string](t, rec)["error"])
}

func TestRouter_VerifyRateLimited(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{VerifyRateLimit: 2, VerifyRateWindow: time.Minute})

	for range 2 {
		rec := s.do(t, http.MethodPost, "/api/auth/login-code/verify", "tok", map[string]string{"code": "AAAAAAAA"})
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/api/auth/recovery-code/verify", "tok", map[string]string{"recoveryCode": "x"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decode[map[string]string](t, rec)["error"])

	// Other auth routes are not limited.
	rec = s.do(t, http.MethodGet, "/api/auth/state", "tok", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Presentations(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	rec := s.do(t, http.MethodGet, "/api/presentations/talk", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[model.PresentationState](t, rec)
	assert.False(t, st.Exists)
	assert.Equal(t, 0, st.CurrentSlide)

	rec = s.do(t, http.MethodPut, "/api/presentations/talk", "", map[string]any{"slide": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[model.SetSlideResult](t, rec)
	assert.True(t, res.Applied)

	old := fixedNow.Add(-time.Hour)
	rec = s.do(t, http.MethodPut, "/api/presentations/talk", "", map[string]any{"slide": 1, "timestamp": old})
	res = decode[model.SetSlideResult](t, rec)
	assert.False(t, res.Applied)
	assert.Equal(t, 4, res.State.CurrentSlide)

	rec = s.do(t, http.MethodPut, "/api/presentations/talk", "", map[string]any{"slide": -2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decode[map[string]string](t, rec)["error"])
}

func TestRouter_PresentationStream(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/presentations/talk/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first model.PresentationState
	require.NoError(t, ws.ReadJSON(&first))
	assert.False(t, first.Exists)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/presentations/talk", strings.NewReader(`{"slide":6}`))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var next model.PresentationState
	require.NoError(t, ws.ReadJSON(&next))
	assert.Equal(t, 6, next.CurrentSlide)
	assert.True(t, next.Exists)

	require.NoError(t, ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), time.Now().Add(time.Second)))
	require.Eventually(t, func() bool { return s.hub.live.Load() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestRouter_PresentationStreamRejectsForeignOrigin(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/presentations/talk/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func adminRequest(s *testServer, method, path, bearer string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AdminAuth(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	rec := adminRequest(s, http.MethodGet, "/api/admin/users?name=x", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = adminRequest(s, http.MethodGet, "/api/admin/users?name=x", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", decode[map[string]string](t, rec)["error"])

	rec = adminRequest(s, http.MethodGet, "/api/admin/users?name=x", "user-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = adminRequest(s, http.MethodGet, "/api/admin/users?name=x", "admin-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, 3, s.verifier.Calls())
}

func TestRouter_AdminServiceDesk(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})
	login := decode[service.LoginAnonymousResult](t, s.do(t, http.MethodPost, "/api/auth/anonymous", "phone", nil))
	s.do(t, http.MethodPut, "/api/auth/name", "phone", map[string]string{"name": "Grace"})

	rec := adminRequest(s, http.MethodGet, "/api/admin/users?name=Grace", "admin-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	matches := decode[[]model.UserMatch](t, rec)
	require.Len(t, matches, 1)
	assert.Equal(t, login.UserID, matches[0].UserID)
	require.Len(t, matches[0].Sessions, 1)
	assert.Equal(t, "phone", matches[0].Sessions[0].SessionToken)

	rec = adminRequest(s, http.MethodPost, "/api/admin/users/"+login.UserID+"/login-code", "admin-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	issued := decode[model.IssuedLoginCode](t, rec)
	assert.Len(t, issued.Code, 8)
	assert.Equal(t, fixedNow.Add(10*time.Minute), issued.ExpiresAt.UTC())

	rec = adminRequest(s, http.MethodPost, "/api/admin/users/user-404/login-code", "admin-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[map[string]string](t, rec)["error"])
}

func TestRouter_AppInfo(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	rec := s.do(t, http.MethodGet, "/api/app-info", "", nil)
	assert.JSONEq(t, `{"version":"1.0.0"}`, rec.Body.String())

	rec = adminRequest(s, http.MethodPut, "/api/admin/app-info", "user-token", `{"version":"2.0.0"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = adminRequest(s, http.MethodPut, "/api/admin/app-info", "admin-token", `{"version":"2.0.0"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/app-info", "", nil)
	assert.JSONEq(t, `{"version":"2.0.0"}`, rec.Body.String())
}

func TestWriteServiceError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	WriteServiceError(rec, req, discardLogger(), errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "internal", body["error"])
	assert.NotContains(t, body["message"], "password")
}

func TestWriteServiceError_MissingSessionToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	WriteServiceError(rec, req, discardLogger(), service.ErrMissingSessionToken)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_session_token", decode[map[string]string](t, rec)["error"])
}

func TestRecover(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
