package app

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	pstclient "github.com/you-humble/paystack-checkout/internal/client/http/paystack/v1"
	"github.com/you-humble/paystack-checkout/internal/clock"
	"github.com/you-humble/paystack-checkout/internal/config"
	"github.com/you-humble/paystack-checkout/internal/converter"
	"github.com/you-humble/paystack-checkout/internal/locker"
	"github.com/you-humble/paystack-checkout/internal/migrator"
	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/internal/ratelimit"
	repository "github.com/you-humble/paystack-checkout/internal/repository/order"
	orphconsumer "github.com/you-humble/paystack-checkout/internal/service/consumer/orphaned"
	pmtproducer "github.com/you-humble/paystack-checkout/internal/service/producer/payment"
	statsvc "github.com/you-humble/paystack-checkout/internal/service/stats"
	service "github.com/you-humble/paystack-checkout/internal/service/transaction"
	statshttp "github.com/you-humble/paystack-checkout/internal/transport/http/stats/v1"
	txhttp "github.com/you-humble/paystack-checkout/internal/transport/http/transaction/v1"
	"github.com/you-humble/paystack-checkout/platform/closer"
	"github.com/you-humble/paystack-checkout/platform/kafka"
	"github.com/you-humble/paystack-checkout/platform/kafka/consumer"
	kafkamw "github.com/you-humble/paystack-checkout/platform/kafka/middleware"
	"github.com/you-humble/paystack-checkout/platform/kafka/producer"
	"github.com/you-humble/paystack-checkout/platform/logger"
)

type Converter interface {
	pmtproducer.Converter
	OrphanedTransactionToModel(data []byte) (model.OrphanedTransaction, error)
}

type OrphanedConsumer interface {
	RunOrphanedConsume(ctx context.Context) error
}

type TransactionService interface {
	txhttp.TransactionService
	orphconsumer.Service
}

type Repository interface {
	service.OrderRepository
	statsvc.StatsRepository
}

type di struct {
	clock clock.Clock

	dbPool     *pgxpool.Pool
	migrator   *migrator.Migrator
	repository Repository

	redisClient  redis.UniversalClient
	locker       service.Locker
	limitCounter httprate.LimitCounter

	gateway service.PaymentGateway

	consumerGroup    sarama.ConsumerGroup
	orphanedSource   kafka.Consumer
	orphanedConsumer OrphanedConsumer

	syncProducer     sarama.SyncProducer
	orderPaidTopic   kafka.Producer
	orphanedTopic    kafka.Producer
	paymentPublisher service.PaymentEventSender

	conv Converter

	txService    TransactionService
	statsService statshttp.StatsService

	router *chi.Mux
}

func NewDI() *di { return &di{} }

func (d *di) Clock(_ context.Context) clock.Clock {
	if d.clock == nil {
		d.clock = clock.NewSystem()
	}

	return d.clock
}

func (d *di) DBPool(ctx context.Context) *pgxpool.Pool {
	if d.dbPool == nil {
		cfg := config.C()

		poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
		if err != nil {
			panic(fmt.Sprintf("failed to parse pg config: %v\n", err))
		}
		if maxConns := cfg.Postgres.MaxConns(); maxConns > 0 {
			poolCfg.MaxConns = maxConns
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			panic(fmt.Sprintf("failed to create pg pool: %v\n", err))
		}

		closer.AddNamed("PGX Pool",
			func(ctx context.Context) error {
				pool.Close()
				return nil
			})

		if err := pool.Ping(ctx); err != nil {
			panic(fmt.Sprintf("failed to ping db: %v\n", err))
		}

		d.dbPool = pool
	}

	return d.dbPool
}

func (d *di) Migrator(ctx context.Context) *migrator.Migrator {
	if d.migrator == nil {
		d.migrator = migrator.NewMigrator(
			stdlib.OpenDBFromPool(d.DBPool(ctx)),
			config.C().Postgres.MigrationDirectory(),
		)

		closer.AddNamed("Migrator",
			func(ctx context.Context) error {
				return d.migrator.Close()
			})
	}

	return d.migrator
}

func (d *di) OrderRepository(ctx context.Context) Repository {
	if d.repository == nil {
		d.repository = repository.NewOrderRepository(d.DBPool(ctx))
	}

	return d.repository
}

func (d *di) RedisClient(ctx context.Context) redis.UniversalClient {
	if d.redisClient == nil {
		cfg := config.C()

		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password(),
			DB:       cfg.Redis.DB(),
		})

		closer.AddNamed("Redis client", func(ctx context.Context) error {
			return client.Close()
		})

		if err := client.Ping(ctx).Err(); err != nil {
			panic(fmt.Sprintf("failed to ping redis %s: %v\n", cfg.Redis.Addr(), err))
		}

		d.redisClient = client
	}

	return d.redisClient
}

func (d *di) Locker(ctx context.Context) service.Locker {
	if d.locker == nil {
		cfg := config.C()

		switch cfg.Lock.Backend() {
		case config.LockBackendRedis:
			d.locker = locker.NewRedisLocker(d.RedisClient(ctx), cfg.Lock.TTL())
		default:
			d.locker = locker.NewKeyedMutex()
		}
	}

	return d.locker
}

// RateLimitCounter is nil for the memory backend, which keeps counts in process.
func (d *di) RateLimitCounter(ctx context.Context) httprate.LimitCounter {
	if d.limitCounter == nil && config.C().Lock.Backend() == config.LockBackendRedis {
		d.limitCounter = ratelimit.NewRedisCounter(d.RedisClient(ctx))
	}

	return d.limitCounter
}

func (d *di) PaymentGateway(_ context.Context) service.PaymentGateway {
	if d.gateway == nil {
		cfg := config.C().Paystack

		d.gateway = pstclient.NewClient(pstclient.Config{
			SecretKey: cfg.SecretKey(),
			BaseURL:   cfg.BaseURL(),
			Timeout:   cfg.Timeout(),
		}, nil)
	}

	return d.gateway
}

func (d *di) KafkaConverter(_ context.Context) Converter {
	if d.conv == nil {
		d.conv = converter.NewKafkaConverter()
	}

	return d.conv
}

func (d *di) ConsumerGroup(_ context.Context) sarama.ConsumerGroup {
	if d.consumerGroup == nil {
		cfg := config.C()

		consumerGroup, err := sarama.NewConsumerGroup(
			cfg.Kafka.Brokers(),
			cfg.Kafka.OrphanedConsumerGroupID(),
			cfg.Kafka.ConsumerConfig(),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create consumer group: %s\n", err.Error()))
		}
		closer.AddNamed("Kafka consumer group", func(ctx context.Context) error {
			return consumerGroup.Close()
		})

		d.consumerGroup = consumerGroup
	}

	return d.consumerGroup
}

func (d *di) OrphanedSource(ctx context.Context) kafka.Consumer {
	if d.orphanedSource == nil {
		d.orphanedSource = consumer.NewConsumer(
			d.ConsumerGroup(ctx),
			[]string{
				config.C().Kafka.OrphanedTopic(),
			},
			logger.L(),
			kafkamw.Recovery(logger.L()),
			kafkamw.Logging(logger.L()),
		)
	}

	return d.orphanedSource
}

func (d *di) OrphanedConsumer(ctx context.Context) OrphanedConsumer {
	if d.orphanedConsumer == nil {
		d.orphanedConsumer = orphconsumer.NewOrphanedConsumer(
			d.OrphanedSource(ctx),
			d.KafkaConverter(ctx),
			d.TransactionService(ctx),
		)
	}

	return d.orphanedConsumer
}

func (d *di) SyncProducer(_ context.Context) sarama.SyncProducer {
	if d.syncProducer == nil {
		cfg := config.C()

		p, err := sarama.NewSyncProducer(
			cfg.Kafka.Brokers(),
			cfg.Kafka.ProducerConfig(),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create sync producer: %s\n", err.Error()))
		}
		closer.AddNamed("Kafka sync producer", func(ctx context.Context) error {
			return p.Close()
		})

		d.syncProducer = p
	}

	return d.syncProducer
}

func (d *di) OrderPaidTopic(ctx context.Context) kafka.Producer {
	if d.orderPaidTopic == nil {
		d.orderPaidTopic = producer.NewProducer(
			d.SyncProducer(ctx),
			config.C().Kafka.OrderPaidTopic(),
			logger.L(),
		)
	}

	return d.orderPaidTopic
}

func (d *di) OrphanedTopic(ctx context.Context) kafka.Producer {
	if d.orphanedTopic == nil {
		d.orphanedTopic = producer.NewProducer(
			d.SyncProducer(ctx),
			config.C().Kafka.OrphanedTopic(),
			logger.L(),
		)
	}

	return d.orphanedTopic
}

func (d *di) PaymentPublisher(ctx context.Context) service.PaymentEventSender {
	if d.paymentPublisher == nil {
		d.paymentPublisher = pmtproducer.NewPaymentProducer(
			d.OrderPaidTopic(ctx),
			d.OrphanedTopic(ctx),
			d.KafkaConverter(ctx),
		)
	}

	return d.paymentPublisher
}

func (d *di) TransactionService(ctx context.Context) TransactionService {
	if d.txService == nil {
		cfg := config.C()

		d.txService = service.NewTransactionService(
			d.OrderRepository(ctx),
			d.PaymentGateway(ctx),
			d.Locker(ctx),
			d.PaymentPublisher(ctx),
			d.Clock(ctx),
			service.Options{
				CallbackBaseURL:  cfg.Paystack.CallbackBaseURL(),
				ReadDBTimeout:    cfg.Server.DBReadTimeout(),
				WriteDBTimeout:   cfg.Server.DBWriteTimeout(),
				LockWait:         cfg.Lock.Wait(),
				ReconcileBackoff: cfg.Kafka.ReconcileBackoff(),
				ReconcileRetries: cfg.Kafka.ReconcileRetries(),
			},
		)
	}

	return d.txService
}

func (d *di) StatsService(ctx context.Context) statshttp.StatsService {
	if d.statsService == nil {
		d.statsService = statsvc.NewStatsService(
			d.OrderRepository(ctx),
			config.C().Server.DBReadTimeout(),
		)
	}

	return d.statsService
}

func (d *di) Router(_ context.Context) *chi.Mux {
	if d.router == nil {
		d.router = chi.NewRouter()
	}

	return d.router
}
