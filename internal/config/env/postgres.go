package envconfig

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

type postgresEnv struct {
	Host          string `env:"POSTGRES_HOST,required"`
	Port          int    `env:"POSTGRES_PORT,required"`
	User          string `env:"POSTGRES_USER,required"`
	Password      string `env:"POSTGRES_PASSWORD,required"`
	DBName        string `env:"POSTGRES_DB,required"`
	SSLMode       string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxConns      int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MigrationsDir string `env:"MIGRATION_DIRECTORY,required"`
}

type postgres struct {
	raw postgresEnv
}

func NewPostgresConfig() (*postgres, error) {
	var raw postgresEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &postgres{raw: raw}, nil
}

func (cfg *postgres) MigrationDirectory() string { return cfg.raw.MigrationsDir }
func (cfg *postgres) MaxConns() int32            { return cfg.raw.MaxConns }

func (cfg *postgres) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.raw.User),
		url.QueryEscape(cfg.raw.Password),
		cfg.raw.Host,
		cfg.raw.Port,
		cfg.raw.DBName,
		cfg.raw.SSLMode,
	)
}
