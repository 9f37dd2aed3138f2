package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadBuiltinOnly(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p, ok := c.Get("linkedin")
	if !ok {
		t.Fatal("linkedin provider missing")
	}
	if p.AuthURL != "https://www.linkedin.com/oauth/v2/authorization" {
		t.Errorf("auth url = %q", p.AuthURL)
	}
	if !c.Enabled("linkedin") {
		t.Error("builtin provider must be enabled by default")
	}
}

func TestLoadOverridesBuiltin(t *testing.T) {
	path := writeConfig(t, `
providers:
  - id: linkedin
    token_url: https://example.test/token
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p, _ := c.Get("linkedin")
	if p.TokenURL != "https://example.test/token" {
		t.Errorf("token url = %q, want override", p.TokenURL)
	}
	if p.AuthURL == "" {
		t.Error("untouched builtin fields must survive a partial override")
	}
}

func TestLoadRegistersNewProvider(t *testing.T) {
	path := writeConfig(t, `
providers:
  - id: acme
    auth_url: https://acme.test/authorize
    token_url: https://acme.test/token
    userinfo_url: https://acme.test/userinfo
    scopes: [openid, email]
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := c.Get("acme"); !ok {
		t.Fatal("acme provider missing")
	}
	if got := c.IDs(); len(got) != 2 {
		t.Errorf("ids = %v, want builtin plus acme", got)
	}
}

func TestLoadRejectsIncompleteProvider(t *testing.T) {
	path := writeConfig(t, `
providers:
  - id: acme
    auth_url: https://acme.test/authorize
`)
	if _, err := Load(path); err == nil {
		t.Fatal("provider without endpoints must be rejected")
	}
}

func TestLoadRejectsBadProviderID(t *testing.T) {
	path := writeConfig(t, `
providers:
  - id: "Bad ID"
    auth_url: https://x/a
    token_url: https://x/t
    userinfo_url: https://x/u
`)
	if _, err := Load(path); err == nil {
		t.Fatal("invalid provider id must be rejected")
	}
}

func TestDisabledProvider(t *testing.T) {
	path := writeConfig(t, `
providers:
  - id: linkedin
    enabled: false
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Enabled("linkedin") {
		t.Error("disabled provider reported enabled")
	}
	if c.Enabled("missing") {
		t.Error("unknown provider reported enabled")
	}
}
