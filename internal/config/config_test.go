package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
app:
  env: prod
server:
  addr: ":9090"
storage:
  driver: postgres
  dsn: postgres://localhost/entrada
session:
  cookie_name: entrada_sid
  ttl: 12h
providers:
  google:
    enabled: true
    client_id: cid
    client_secret: secret
    redirect_url: http://localhost:9090/auth/google/callback
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_YAMLAndDefaults(t *testing.T) {
	c, err := Load(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if c.Server.Addr != ":9090" {
		t.Errorf("addr = %q", c.Server.Addr)
	}
	if c.Session.CookieName != "entrada_sid" {
		t.Errorf("cookie = %q", c.Session.CookieName)
	}
	if got := c.SessionTTL(); got != 12*time.Hour {
		t.Errorf("ttl = %v", got)
	}
	// defaults que el YAML no toca
	if c.Session.SameSite != "lax" {
		t.Errorf("samesite = %q", c.Session.SameSite)
	}
	if c.Providers.Google.TokenURL != "https://www.googleapis.com/oauth2/v3/token" {
		t.Errorf("token_url = %q", c.Providers.Google.TokenURL)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("GOOGLE_CLIENT_ID", "env-cid")
	c, err := Load(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if c.Server.Addr != ":7070" {
		t.Errorf("env no pisó addr: %q", c.Server.Addr)
	}
	if c.Providers.Google.ClientID != "env-cid" {
		t.Errorf("env no pisó client_id: %q", c.Providers.Google.ClientID)
	}
}

func TestLoad_FailsFastOnInvalidConfig(t *testing.T) {
	// driver default postgres sin DSN: Load tiene que fallar, no serve
	if _, err := Load(""); err == nil {
		t.Error("expected error for missing dsn")
	}

	// google habilitado sin credenciales
	broken := `
storage:
  driver: memory
providers:
  google:
    enabled: true
`
	if _, err := Load(writeTemp(t, broken)); err == nil {
		t.Error("expected error for google without credentials")
	}
}

func TestValidate_Errors(t *testing.T) {
	c, err := Load(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	c.Storage.DSN = ""
	if err := c.Validate(); err == nil {
		t.Error("expected error for missing dsn")
	}
	c.Storage.Driver = "memory"
	c.Providers.Google.ClientSecret = ""
	if err := c.Validate(); err == nil {
		t.Error("expected error for google without credentials")
	}
}

func TestSessionTTL_FallbackOnGarbage(t *testing.T) {
	c, err := Load(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	c.Session.TTL = "not-a-duration"
	if got := c.SessionTTL(); got != 24*time.Hour {
		t.Errorf("fallback ttl = %v", got)
	}
}
