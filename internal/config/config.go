package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	envconfig "github.com/you-humble/paystack-checkout/internal/config/env"
)

const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

var cfg *config

type config struct {
	Server    Server
	Logger    Logger
	Postgres  Database
	Paystack  Paystack
	Kafka     Kafka
	Redis     Redis
	Lock      Lock
	RateLimit RateLimit
	Admin     Admin
}

func Load(path ...string) error {
	const op = "config.Load"

	if shouldLoadDotenv() {
		if err := godotenv.Load(path...); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: load .env: %w", op, err)
		}
	}

	serverCfg, err := envconfig.NewHTTPServerConfig()
	if err != nil {
		return fmt.Errorf("%s Server: %w", op, err)
	}

	loggerCfg, err := envconfig.NewLoggerConfig()
	if err != nil {
		return fmt.Errorf("%s Logger: %w", op, err)
	}

	postgresCfg, err := envconfig.NewPostgresConfig()
	if err != nil {
		return fmt.Errorf("%s Postgres: %w", op, err)
	}

	paystackCfg, err := envconfig.NewPaystackConfig()
	if err != nil {
		return fmt.Errorf("%s Paystack: %w", op, err)
	}

	kafkaCfg, err := envconfig.NewKafkaConfig()
	if err != nil {
		return fmt.Errorf("%s Kafka: %w", op, err)
	}

	redisCfg, err := envconfig.NewRedisConfig()
	if err != nil {
		return fmt.Errorf("%s Redis: %w", op, err)
	}

	lockCfg, err := envconfig.NewLockConfig()
	if err != nil {
		return fmt.Errorf("%s Lock: %w", op, err)
	}
	switch lockCfg.Backend() {
	case LockBackendMemory, LockBackendRedis:
	default:
		return fmt.Errorf("%s Lock: unknown backend %q", op, lockCfg.Backend())
	}

	rateLimitCfg, err := envconfig.NewRateLimitConfig()
	if err != nil {
		return fmt.Errorf("%s RateLimit: %w", op, err)
	}

	adminCfg, err := envconfig.NewAdminConfig()
	if err != nil {
		return fmt.Errorf("%s Admin: %w", op, err)
	}

	cfg = &config{
		Server:    serverCfg,
		Logger:    loggerCfg,
		Postgres:  postgresCfg,
		Paystack:  paystackCfg,
		Kafka:     kafkaCfg,
		Redis:     redisCfg,
		Lock:      lockCfg,
		RateLimit: rateLimitCfg,
		Admin:     adminCfg,
	}

	return nil
}

func C() *config { return cfg }

func shouldLoadDotenv() bool {
	return os.Getenv("APP_ENV") == "local"
}
