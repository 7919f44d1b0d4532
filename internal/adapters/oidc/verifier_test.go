package oidc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://login.example.test"

// payloadKeySet accepts any signature and returns the token payload.
type payloadKeySet struct{}

func (payloadKeySet) VerifySignature(_ context.Context, jwt string) ([]byte, error) {
	parts := strings.Split(jwt, ".")
	return base64.RawURLEncoding.DecodeString(parts[1])
}

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	body, err := json.Marshal(claims)
	require.NoError(t, err)
	sig := base64.RawURLEncoding.EncodeToString([]byte("signature"))
	return header + "." + base64.RawURLEncoding.EncodeToString(body) + "." + sig
}

func newTestVerifier(groupsClaim string, now time.Time) *AdminVerifier {
	v := gooidc.NewVerifier(testIssuer, payloadKeySet{}, &gooidc.Config{
		ClientID: "versetype-admin",
		Now:      func() time.Time { return now },
	})
	return newAdminVerifier(v, groupsClaim, nil)
}

func TestAdminVerifier_Verify(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	base := func() map[string]any {
		return map[string]any{
			"iss":    testIssuer,
			"aud":    "versetype-admin",
			"sub":    "op-1",
			"email":  "op@example.test",
			"exp":    now.Add(time.Hour).Unix(),
			"iat":    now.Add(-time.Minute).Unix(),
			"groups": []string{"support", "versetype-admins"},
		}
	}

	t.Run("extracts operator claims", func(t *testing.T) {
		v := newTestVerifier("groups", now)
		claims, err := v.Verify(context.Background(), makeToken(t, base()))
		require.NoError(t, err)
		assert.Equal(t, "op-1", claims.Subject)
		assert.Equal(t, "op@example.test", claims.Email)
		assert.Equal(t, []string{"support", "versetype-admins"}, claims.Groups)
	})

	t.Run("nested groups expression", func(t *testing.T) {
		c := base()
		delete(c, "groups")
		c["realm_access"] = map[string]any{"roles": []string{"versetype-admins"}}
		v := newTestVerifier("realm_access.roles", now)
		claims, err := v.Verify(context.Background(), makeToken(t, c))
		require.NoError(t, err)
		assert.Equal(t, []string{"versetype-admins"}, claims.Groups)
	})

	t.Run("expired token", func(t *testing.T) {
		c := base()
		c["exp"] = now.Add(-time.Minute).Unix()
		_, err := newTestVerifier("groups", now).Verify(context.Background(), makeToken(t, c))
		require.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		c := base()
		c["aud"] = "someone-else"
		_, err := newTestVerifier("groups", now).Verify(context.Background(), makeToken(t, c))
		require.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := base()
		c["iss"] = "https://evil.example.test"
		_, err := newTestVerifier("groups", now).Verify(context.Background(), makeToken(t, c))
		require.Error(t, err)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := newTestVerifier("groups", now).Verify(context.Background(), "  ")
		require.Error(t, err)
	})
}

func TestExtractGroups(t *testing.T) {
	claims := map[string]any{
		"groups": []any{"a", 7, "", "b"},
		"single": "ops",
		"nested": map[string]any{"roles": []any{"x"}},
		"number": 3.0,
	}
	tests := []struct {
		expr    string
		want    []string
		wantErr bool
	}{
		{expr: "groups", want: []string{"a", "b"}},
		{expr: "single", want: []string{"ops"}},
		{expr: "nested.roles", want: []string{"x"}},
		{expr: "missing", want: nil},
		{expr: "number", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := extractGroups(tt.expr, claims)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewAdminVerifier(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                srv.URL,
			"authorization_endpoint":                srv.URL + "/authorize",
			"token_endpoint":                        srv.URL + "/token",
			"jwks_uri":                              srv.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	}))
	defer srv.Close()

	t.Run("discovers provider", func(t *testing.T) {
		v, err := NewAdminVerifier(context.Background(), VerifierConfig{
			IssuerURL:  srv.URL + "/.well-known/openid-configuration",
			ClientID:   "versetype-admin",
			HTTPClient: srv.Client(),
		})
		require.NoError(t, err)
		assert.Equal(t, "groups", v.groupsClaim)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		_, err := NewAdminVerifier(context.Background(), VerifierConfig{
			IssuerURL:  srv.URL + "/other",
			ClientID:   "versetype-admin",
			HTTPClient: srv.Client(),
		})
		require.Error(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewAdminVerifier(context.Background(), VerifierConfig{ClientID: "x"})
		require.ErrorContains(t, err, "issuer URL is required")

		_, err = NewAdminVerifier(context.Background(), VerifierConfig{IssuerURL: srv.URL})
		require.ErrorContains(t, err, "client ID is required")

		_, err = NewAdminVerifier(context.Background(), VerifierConfig{IssuerURL: srv.URL, ClientID: "x", GroupsClaim: "groups[?"})
		require.ErrorContains(t, err, "invalid groups claim expression")
	})
}
