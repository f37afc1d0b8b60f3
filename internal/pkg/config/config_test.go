package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.Port != "8080" || !cfg.IsDevelopment() {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Session.Backend != "redis" || cfg.Session.TTL != 168*time.Hour {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if cfg.Media.Backend != "local" || cfg.Media.MaxBytes != 5<<20 {
		t.Fatalf("unexpected media defaults: %+v", cfg.Media)
	}
	if cfg.OpenAI.Model != "gpt-4o" || cfg.OpenAI.MaxTokens != 300 {
		t.Fatalf("unexpected openai defaults: %+v", cfg.OpenAI)
	}
	if cfg.Instagram.Version != "v18.0" || cfg.Instagram.AccessToken != "" {
		t.Fatalf("unexpected instagram defaults: %+v", cfg.Instagram)
	}
	if !cfg.GuestLogin || cfg.Mongo.AuditEnabled {
		t.Fatalf("unexpected feature defaults: guest=%v audit=%v", cfg.GuestLogin, cfg.Mongo.AuditEnabled)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                               "production",
		"SESSION_SECRET":                    strings.Repeat("s", 48),
		"SESSION_BACKEND":                   "memory",
		"MEDIA_BACKEND":                     "s3",
		"S3_BUCKET":                         "groom-media",
		"INSTAGRAM_LONG_LIVED_ACCESS_TOKEN": "token",
		"GUEST_LOGIN_ENABLED":               "false",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.IsDevelopment() || cfg.Session.Backend != "memory" || cfg.Media.S3Bucket != "groom-media" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.GuestLogin {
		t.Fatalf("expected guest login disabled")
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"short secret":    {"SESSION_SECRET": "short"},
		"session backend": {"SESSION_BACKEND": "memcached"},
		"media backend":   {"MEDIA_BACKEND": "ftp"},
		"default in prod": {"ENV": "production"},
		"bad duration":    {"SESSION_TTL": "a week"},
	}
	for name, env := range cases {
		if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
