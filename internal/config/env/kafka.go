package envconfig

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/caarlos0/env/v11"
)

type kafkaEnv struct {
	Brokers                 []string      `env:"KAFKA_BROKERS,required"`
	OrderPaidTopicName      string        `env:"ORDER_PAID_TOPIC_NAME" envDefault:"order.paid"`
	OrphanedTopicName       string        `env:"TRANSACTION_ORPHANED_TOPIC_NAME" envDefault:"transaction.orphaned"`
	OrphanedConsumerGroupID string        `env:"TRANSACTION_ORPHANED_CONSUMER_GROUP_ID" envDefault:"checkout-orphaned-reconciler"`
	ReconcileRetries        uint64        `env:"ORPHAN_RECONCILE_RETRIES" envDefault:"3"`
	ReconcileBackoff        time.Duration `env:"ORPHAN_RECONCILE_BACKOFF" envDefault:"200ms"`
}

type kafka struct {
	raw kafkaEnv
}

func NewKafkaConfig() (*kafka, error) {
	var raw kafkaEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &kafka{raw: raw}, nil
}

func (cfg *kafka) Brokers() []string               { return cfg.raw.Brokers }
func (cfg *kafka) OrderPaidTopic() string          { return cfg.raw.OrderPaidTopicName }
func (cfg *kafka) OrphanedTopic() string           { return cfg.raw.OrphanedTopicName }
func (cfg *kafka) OrphanedConsumerGroupID() string { return cfg.raw.OrphanedConsumerGroupID }
func (cfg *kafka) ReconcileRetries() uint64        { return cfg.raw.ReconcileRetries }
func (cfg *kafka) ReconcileBackoff() time.Duration { return cfg.raw.ReconcileBackoff }

func (cfg *kafka) ProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V4_0_0_0
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	return config
}

func (cfg *kafka) ConsumerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V4_0_0_0
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	return config
}
