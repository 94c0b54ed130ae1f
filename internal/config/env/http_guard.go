package envconfig

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// ======= Rate limit =======

type rateLimitEnv struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"5"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1h"`
}

type rateLimit struct {
	raw rateLimitEnv
}

func NewRateLimitConfig() (*rateLimit, error) {
	var raw rateLimitEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &rateLimit{raw: raw}, nil
}

func (cfg *rateLimit) Requests() int         { return cfg.raw.Requests }
func (cfg *rateLimit) Window() time.Duration { return cfg.raw.Window }
func (cfg *rateLimit) Enabled() bool         { return cfg.raw.Requests > 0 }

// ======= Admin =======

type adminEnv struct {
	Token string `env:"ADMIN_API_TOKEN,required,notEmpty"`
}

type admin struct {
	raw adminEnv
}

func NewAdminConfig() (*admin, error) {
	var raw adminEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &admin{raw: raw}, nil
}

func (cfg *admin) Token() string { return cfg.raw.Token }
