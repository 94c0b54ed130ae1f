package envconfig

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type redisEnv struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type redis struct {
	raw redisEnv
}

func NewRedisConfig() (*redis, error) {
	var raw redisEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &redis{raw: raw}, nil
}

func (cfg *redis) Addr() string     { return cfg.raw.Addr }
func (cfg *redis) Password() string { return cfg.raw.Password }
func (cfg *redis) DB() int          { return cfg.raw.DB }

type lockEnv struct {
	Backend string        `env:"LOCK_BACKEND" envDefault:"redis"`
	TTL     time.Duration `env:"LOCK_TTL" envDefault:"30s"`
	Wait    time.Duration `env:"LOCK_WAIT" envDefault:"15s"`
}

type lock struct {
	raw lockEnv
}

func NewLockConfig() (*lock, error) {
	var raw lockEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &lock{raw: raw}, nil
}

func (cfg *lock) Backend() string     { return cfg.raw.Backend }
func (cfg *lock) TTL() time.Duration  { return cfg.raw.TTL }
func (cfg *lock) Wait() time.Duration { return cfg.raw.Wait }
