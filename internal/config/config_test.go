package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileWithEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AI_SERVICE_URL", "http://scoring:8000")
	t.Setenv("RESXAI_ALLOWED_ORIGINS", "http://localhost:5173, https://app.example.com")
	t.Setenv("RESXAI_LOGIN_RATE_LIMIT_PER_MINUTE", "12")
	t.Setenv("MINIO_USE_SSL", "true")

	path := writeConfig(t, `
port: "5000"
jwtSecret: "dev-secret"
aiServiceURL: "http://localhost:8000"
minioEndpoint: "localhost:9000"
minioBucket: "resumes"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.AIServiceURL != "http://scoring:8000" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://app.example.com" {
		t.Fatalf("allowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.LoginRateLimitPerMinute != 12 || !cfg.MinioUseSSL {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.MaxUploadBytes != 5<<20 || cfg.ScoringTimeout() != 20*time.Second || cfg.StorageDir != defaultStorageDir {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("AI_SERVICE_URL", "http://localhost:8000")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "5000" {
		t.Fatalf("port = %q", cfg.Port)
	}
}

func TestLoadRequiresAIServiceURL(t *testing.T) {
	t.Setenv("AI_SERVICE_URL", "")
	path := writeConfig(t, "port: \"5000\"\njwtSecret: \"s\"\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "aiServiceURL") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadRejectsNegativeRateLimit(t *testing.T) {
	t.Setenv("RESXAI_LOGIN_RATE_LIMIT_PER_MINUTE", "")
	path := writeConfig(t, "port: \"5000\"\njwtSecret: \"s\"\naiServiceURL: \"http://x\"\nloginRateLimitPerMinute: -1\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseSessionTTL(t *testing.T) {
	if d, err := ParseSessionTTL(""); err != nil || d != 7*24*time.Hour {
		t.Fatalf("default = (%s, %v)", d, err)
	}
	if d, err := ParseSessionTTL("12h"); err != nil || d != 12*time.Hour {
		t.Fatalf("12h = (%s, %v)", d, err)
	}
	if _, err := ParseSessionTTL("soon"); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := ParseSessionTTL("-1h"); err == nil {
		t.Fatalf("expected error for negative ttl")
	}
}
