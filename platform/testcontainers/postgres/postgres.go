package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	pgtc "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	tcconst "github.com/you-humble/paystack-checkout/platform/testcontainers"
)

const startupTimeout = time.Minute

type Config struct {
	Image    string
	Database string
	Username string
	Password string
}

type Option func(*Config)

func WithImage(image string) Option { return func(c *Config) { c.Image = image } }

func WithDatabase(db string) Option { return func(c *Config) { c.Database = db } }

func WithAuth(username, password string) Option {
	return func(c *Config) {
		c.Username = username
		c.Password = password
	}
}

type Container struct {
	container *pgtc.PostgresContainer
	pool      *pgxpool.Pool
	dsn       string
}

func NewContainer(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := &Config{
		Image:    tcconst.PostgresImage,
		Database: "checkout",
		Username: "checkout",
		Password: "checkout",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c, err := pgtc.Run(ctx,
		cfg.Image,
		pgtc.WithDatabase(cfg.Database),
		pgtc.WithUsername(cfg.Username),
		pgtc.WithPassword(cfg.Password),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("postgres pool: %w", err)
	}

	return &Container{container: c, pool: pool, dsn: dsn}, nil
}

func (c *Container) Pool() *pgxpool.Pool { return c.pool }
func (c *Container) DSN() string         { return c.dsn }

func (c *Container) Terminate(ctx context.Context) error {
	c.pool.Close()
	return c.container.Terminate(ctx)
}
