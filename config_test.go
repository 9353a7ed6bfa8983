package tokengate

import (
	"context"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.SigningKey = testSigningKey
	return cfg
}

func TestDefaultConfigValidatesWithSigningKey(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config with key to validate, got %v", err)
	}
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing signing key", func(c *Config) { c.Token.SigningKey = nil }},
		{"short signing key", func(c *Config) { c.Token.SigningKey = []byte("short") }},
		{"zero access ttl", func(c *Config) { c.Token.AccessTTL = 0 }},
		{"zero refresh ttl", func(c *Config) { c.Token.RefreshTTL = 0 }},
		{"refresh shorter than access", func(c *Config) {
			c.Token.AccessTTL = time.Hour
			c.Token.RefreshTTL = time.Minute
		}},
		{"negative leeway", func(c *Config) { c.Token.Leeway = -time.Second }},
		{"excessive leeway", func(c *Config) { c.Token.Leeway = 10 * time.Minute }},
		{"empty key prefix", func(c *Config) { c.Store.KeyPrefix = "" }},
		{"zero op timeout", func(c *Config) { c.Store.OpTimeout = 0 }},
		{"weak password memory", func(c *Config) { c.Password.Memory = 1024 }},
		{"zero password time", func(c *Config) { c.Password.Time = 0 }},
		{"zero parallelism", func(c *Config) { c.Password.Parallelism = 0 }},
		{"short salt", func(c *Config) { c.Password.SaltLength = 8 }},
		{"short key", func(c *Config) { c.Password.KeyLength = 8 }},
		{"invalid mode", func(c *Config) { c.Interceptor.Mode = ValidationMode(42) }},
		{"zero-valued mode", func(c *Config) { c.Interceptor.Mode = ValidationMode(0) }},
		{"inherit mode as default", func(c *Config) { c.Interceptor.Mode = ModeInherit }},
		{"invalid policy", func(c *Config) { c.Interceptor.OnInvalid = FailurePolicy(42) }},
		{"zero-valued policy", func(c *Config) { c.Interceptor.OnInvalid = FailurePolicy(0) }},
		{"audit enabled without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected build failure without redis client")
	}
}

func TestWithConfigClonesSigningKey(t *testing.T) {
	provider := &memoryProvider{identities: map[string]Identity{}}

	cfg := fastTestConfig()
	cfg.Token.SigningKey = []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	engine, _ := newTestEngine(t, cfg, provider)
	seedProvider(t, engine, provider, "alice", "correct-horse")

	pair, err := engine.Login(context.Background(), "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Mutating the caller's key slice must not reach the built engine.
	cfg.Token.SigningKey[0] ^= 0xff

	if _, err := engine.Authenticate(context.Background(), pair.AccessToken, ModeInherit); err != nil {
		t.Fatalf("expected engine to keep its own key copy, got %v", err)
	}
}

func TestFromEnvRequiresSigningKey(t *testing.T) {
	t.Setenv("TOKENGATE_ACCESS_TTL", "5m")
	t.Setenv("TOKENGATE_REFRESH_TTL", "168h")

	if _, _, err := FromEnv(); err == nil {
		t.Fatal("expected error for missing signing key")
	} else if !strings.Contains(err.Error(), "startup configuration") {
		t.Fatalf("expected startup configuration error, got %v", err)
	}
}

func TestFromEnvLoadsCompleteConfig(t *testing.T) {
	t.Setenv("TOKENGATE_SIGNING_KEY", string(testSigningKey))
	t.Setenv("TOKENGATE_ACCESS_TTL", "5m")
	t.Setenv("TOKENGATE_REFRESH_TTL", "168h")
	t.Setenv("TOKENGATE_ISSUER", "auth.example.com")
	t.Setenv("TOKENGATE_KEY_PREFIX", "prod")

	settings, cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if settings.RedisAddr != "localhost:6379" {
		t.Fatalf("expected default redis addr, got %q", settings.RedisAddr)
	}
	if cfg.Token.Issuer != "auth.example.com" {
		t.Fatalf("expected issuer from env, got %q", cfg.Token.Issuer)
	}
	if cfg.Token.AccessTTL != 5*time.Minute {
		t.Fatalf("expected 5m access ttl, got %v", cfg.Token.AccessTTL)
	}
	if cfg.Token.RefreshTTL != 168*time.Hour {
		t.Fatalf("expected 168h refresh ttl, got %v", cfg.Token.RefreshTTL)
	}
	if cfg.Store.KeyPrefix != "prod" {
		t.Fatalf("expected prod key prefix, got %q", cfg.Store.KeyPrefix)
	}
}

func TestFromEnvRejectsInvalidDerivedConfig(t *testing.T) {
	t.Setenv("TOKENGATE_SIGNING_KEY", "too-short")
	t.Setenv("TOKENGATE_ACCESS_TTL", "5m")
	t.Setenv("TOKENGATE_REFRESH_TTL", "168h")

	if _, _, err := FromEnv(); err == nil {
		t.Fatal("expected error for short signing key from env")
	}
}
