package config

import (
	"strings"
	"testing"
	"time"

	"github.com/mvickers/leaguedesk/internal/platform/logging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("AppEnv = %q, want %q", cfg.AppEnv, EnvDev)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "127.0.0.1:6379" {
		t.Fatalf("RedisAddr = %q", cfg.RedisAddr)
	}
	if !cfg.RedisCircuit.Enabled {
		t.Fatal("RedisCircuit.Enabled = false, want true")
	}
	if cfg.DefaultRosterLimit != 8 {
		t.Fatalf("DefaultRosterLimit = %d, want 8", cfg.DefaultRosterLimit)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("CacheTTL = %s, want 30s", cfg.CacheTTL)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("HTTP_READ_TIMEOUT", "5s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("STATIC_LEAGUE_IDS", "alpha,beta")
	t.Setenv("SUPERADMIN_USER_IDS", "u-root")
	t.Setenv("DEFAULT_ROSTER_LIMIT", "12")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AppEnv != EnvProd {
		t.Fatalf("AppEnv = %q, want prod", cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Fatalf("ReadTimeout = %s", cfg.ReadTimeout)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("RedisDB = %d", cfg.RedisDB)
	}
	if got := strings.Join(cfg.CORSAllowedOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Fatalf("CORSAllowedOrigins = %q", got)
	}
	if got := strings.Join(cfg.StaticLeagueIDs, "|"); got != "alpha|beta" {
		t.Fatalf("StaticLeagueIDs = %q", got)
	}
	if len(cfg.SuperAdminUserIDs) != 1 || cfg.SuperAdminUserIDs[0] != "u-root" {
		t.Fatalf("SuperAdminUserIDs = %v", cfg.SuperAdminUserIDs)
	}
	if cfg.DefaultRosterLimit != 12 {
		t.Fatalf("DefaultRosterLimit = %d", cfg.DefaultRosterLimit)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil error, want invalid APP_ENV error")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("HTTP_WRITE_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil error, want parse error")
	}
}

func TestLoadRequiresUptraceDSN(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil error, want missing DSN error")
	}
}
