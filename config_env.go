package tokengate

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// EnvSettings is the process configuration surface, loaded from the
// environment. The signing key and both TTLs are required: a process
// missing any of them must not come up.
type EnvSettings struct {
	SigningKey string        `env:"TOKENGATE_SIGNING_KEY,required"`
	Issuer     string        `env:"TOKENGATE_ISSUER,default=tokengate"`
	AccessTTL  time.Duration `env:"TOKENGATE_ACCESS_TTL,required"`
	RefreshTTL time.Duration `env:"TOKENGATE_REFRESH_TTL,required"`

	RedisAddr     string `env:"TOKENGATE_REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"TOKENGATE_REDIS_PASSWORD,default="`

	KeyPrefix string        `env:"TOKENGATE_KEY_PREFIX,default=tg"`
	OpTimeout time.Duration `env:"TOKENGATE_STORE_TIMEOUT,default=2s"`
}

// FromEnv loads [EnvSettings] and folds them over [DefaultConfig]. A missing
// required variable returns an error the caller is expected to treat as
// startup-fatal.
func FromEnv() (*EnvSettings, Config, error) {
	var settings EnvSettings
	if err := envdecode.StrictDecode(&settings); err != nil {
		return nil, Config{}, fmt.Errorf("startup configuration: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Token.SigningKey = []byte(settings.SigningKey)
	cfg.Token.Issuer = settings.Issuer
	cfg.Token.AccessTTL = settings.AccessTTL
	cfg.Token.RefreshTTL = settings.RefreshTTL
	cfg.Store.KeyPrefix = settings.KeyPrefix
	cfg.Store.OpTimeout = settings.OpTimeout

	if err := cfg.Validate(); err != nil {
		return nil, Config{}, fmt.Errorf("startup configuration: %w", err)
	}

	return &settings, cfg, nil
}
