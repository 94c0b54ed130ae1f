package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	kafkatc "github.com/testcontainers/testcontainers-go/modules/kafka"

	tcconst "github.com/you-humble/paystack-checkout/platform/testcontainers"
)

const clusterID = "Mk3OEYBSD34fcwNTJENDM2Qk"

type Container struct {
	container *kafkatc.KafkaContainer
	brokers   []string
}

func NewContainer(ctx context.Context, image string) (*Container, error) {
	if image == "" {
		image = tcconst.KafkaImage
	}

	c, err := kafkatc.Run(ctx, image, kafkatc.WithClusterID(clusterID))
	if err != nil {
		return nil, fmt.Errorf("start kafka container: %w", err)
	}

	brokers, err := c.Brokers(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("kafka brokers: %w", err)
	}

	return &Container{container: c, brokers: brokers}, nil
}

func (c *Container) Brokers() []string { return c.brokers }

// CreateTopics creates single partition topics, ignoring ones that exist.
func (c *Container) CreateTopics(topics ...string) error {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V4_0_0_0
	cfg.Admin.Timeout = 10 * time.Second

	admin, err := sarama.NewClusterAdmin(c.brokers, cfg)
	if err != nil {
		return fmt.Errorf("kafka cluster admin: %w", err)
	}
	defer admin.Close()

	for _, t := range topics {
		err := admin.CreateTopic(t, &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		}, false)
		if err != nil && !errors.Is(err, sarama.ErrTopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", t, err)
		}
	}
	return nil
}

func (c *Container) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}
