package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
addr: ":9000"
session:
  secret: file-secret
  ttl: 1h
redis:
  addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BOOKSHARE_SESSION_SECRET", "env-secret")
	t.Setenv("BOOKSHARE_AUTH_RATE_LIMIT", "5")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Addr != ":9000" {
		t.Fatalf("addr = %q", c.Addr)
	}
	if c.Session.Secret != "env-secret" {
		t.Fatalf("env override lost, secret = %q", c.Session.Secret)
	}
	if c.Session.TTL != time.Hour {
		t.Fatalf("ttl = %v", c.Session.TTL)
	}
	if c.RateLimit.AuthPerMinute != 5 {
		t.Fatalf("rate limit = %d", c.RateLimit.AuthPerMinute)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error without session secret")
	}
}

func TestLoadRejectsQueueWithoutRedis(t *testing.T) {
	t.Setenv("BOOKSHARE_SESSION_SECRET", "s")
	t.Setenv("BOOKSHARE_QUEUE_ENABLED", "true")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for queue without redis addr")
	}
}
