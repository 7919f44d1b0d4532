package testutil

import (
	"net/url"
	"testing"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		for _, k := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
			t.Setenv(k, "")
		}
		cfg := DefaultTestDBConfig()
		want := TestDBConfig{Host: "localhost", Port: "55432", User: "versetype", Password: "versetype", DBName: "versetype"}
		if cfg != want {
			t.Errorf("DefaultTestDBConfig() = %+v, want %+v", cfg, want)
		}
	})

	t.Run("respects CI overrides", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "postgres")
		t.Setenv("TEST_DB_PORT", "5432")
		cfg := DefaultTestDBConfig()
		if cfg.Host != "postgres" || cfg.Port != "5432" {
			t.Errorf("expected postgres:5432, got %s:%s", cfg.Host, cfg.Port)
		}
	})
}

func TestTestDBConfig_DSN(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")
	cfg := TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p@ss", DBName: "versetype"}

	u, err := url.Parse(cfg.DSN())
	if err != nil {
		t.Fatalf("DSN() did not parse: %v", err)
	}
	if u.Host != "db:5432" || u.Path != "/versetype" {
		t.Errorf("unexpected host/path: %s %s", u.Host, u.Path)
	}
	if pw, _ := u.User.Password(); pw != "p@ss" {
		t.Errorf("password not preserved, got %q", pw)
	}
	if got := u.Query().Get("sslmode"); got != "disable" {
		t.Errorf("sslmode = %q, want disable", got)
	}
}
