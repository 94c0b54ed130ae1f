package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	tcconst "github.com/you-humble/paystack-checkout/platform/testcontainers"
)

const (
	redisPort      = "6379/tcp"
	startupTimeout = 30 * time.Second
)

type Container struct {
	container tc.Container
	client    *goredis.Client
	addr      string
}

func NewContainer(ctx context.Context, image string) (*Container, error) {
	if image == "" {
		image = tcconst.RedisImage
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{redisPort},
			WaitingFor:   wait.ForListeningPort(redisPort).WithStartupTimeout(startupTimeout),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start redis container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("redis host: %w", err)
	}
	port, err := c.MappedPort(ctx, redisPort)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("redis port: %w", err)
	}

	addr := fmt.Sprintf("%s:%s", host, port.Port())
	return &Container{
		container: c,
		client:    goredis.NewClient(&goredis.Options{Addr: addr}),
		addr:      addr,
	}, nil
}

func (c *Container) Client() *goredis.Client { return c.client }
func (c *Container) Addr() string            { return c.addr }

func (c *Container) Terminate(ctx context.Context) error {
	_ = c.client.Close()
	return c.container.Terminate(ctx)
}
