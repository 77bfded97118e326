package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TRIPMATE_HTTP_ADDR", "")
	t.Setenv("TRIPMATE_SESSION_TTL", "")
	t.Setenv("TRIPMATE_MONTHLY_QUOTA", "")
	t.Setenv("TRIPMATE_SESSION_LOCK_LEASE", "")
	t.Setenv("TRIPMATE_LOG_FORMAT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.HTTP.Addr)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %s", cfg.Session.TTL)
	}
	if cfg.AI.MonthlyQuota != 100 {
		t.Fatalf("expected quota 100, got %d", cfg.AI.MonthlyQuota)
	}
	if cfg.Session.LockLease != 2*time.Minute {
		t.Fatalf("expected 2m lock lease, got %s", cfg.Session.LockLease)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRIPMATE_HTTP_ADDR", ":9090")
	t.Setenv("TRIPMATE_SESSION_TTL", "30m")
	t.Setenv("TRIPMATE_MONTHLY_QUOTA", "5")
	t.Setenv("TRIPMATE_GEMINI_MODEL", "gemini-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("ttl = %s", cfg.Session.TTL)
	}
	if cfg.AI.MonthlyQuota != 5 {
		t.Fatalf("quota = %d", cfg.AI.MonthlyQuota)
	}
	if cfg.AI.GeminiModel != "gemini-test" {
		t.Fatalf("model = %q", cfg.AI.GeminiModel)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("TRIPMATE_SESSION_TTL", "soon")
	t.Setenv("TRIPMATE_MONTHLY_QUOTA", "many")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for malformed values")
	}
	for _, key := range []string{"TRIPMATE_SESSION_TTL", "TRIPMATE_MONTHLY_QUOTA"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error should name %s: %v", key, err)
		}
	}
}

func TestLoadRejectsNegativeValues(t *testing.T) {
	t.Setenv("TRIPMATE_MONTHLY_QUOTA", "-1")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "TRIPMATE_MONTHLY_QUOTA") {
		t.Fatalf("expected quota error, got %v", err)
	}

	t.Setenv("TRIPMATE_MONTHLY_QUOTA", "")
	t.Setenv("TRIPMATE_SESSION_LOCK_LEASE", "-5s")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "TRIPMATE_SESSION_LOCK_LEASE") {
		t.Fatalf("expected lease error, got %v", err)
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	t.Setenv("TRIPMATE_LOG_FORMAT", "xml")
	if _, err := Load(); err == nil {
		t.Fatal("expected log format error")
	}
}
