package config

import (
	"time"

	"github.com/IBM/sarama"
)

type Server interface {
	Host() string
	Port() int
	Address() string
	ReadTimeout() time.Duration
	WriteTimeout() time.Duration
	ShutdownTimeout() time.Duration
	DBReadTimeout() time.Duration
	DBWriteTimeout() time.Duration
}

type Logger interface {
	Level() string
	AsJSON() bool
}

type Database interface {
	MigrationDirectory() string
	MaxConns() int32
	DSN() string
}

type Paystack interface {
	SecretKey() string
	BaseURL() string
	CallbackBaseURL() string
	Timeout() time.Duration
}

type Kafka interface {
	Brokers() []string
	OrderPaidTopic() string
	OrphanedTopic() string
	OrphanedConsumerGroupID() string
	ReconcileRetries() uint64
	ReconcileBackoff() time.Duration
	ProducerConfig() *sarama.Config
	ConsumerConfig() *sarama.Config
}

type Redis interface {
	Addr() string
	Password() string
	DB() int
}

type Lock interface {
	Backend() string
	TTL() time.Duration
	Wait() time.Duration
}

type RateLimit interface {
	Enabled() bool
	Requests() int
	Window() time.Duration
}

type Admin interface {
	Token() string
}
