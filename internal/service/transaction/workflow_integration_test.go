//go:build integration

package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/stdlib"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	pstclient "github.com/you-humble/paystack-checkout/internal/client/http/paystack/v1"
	"github.com/you-humble/paystack-checkout/internal/clock"
	"github.com/you-humble/paystack-checkout/internal/converter"
	"github.com/you-humble/paystack-checkout/internal/locker"
	"github.com/you-humble/paystack-checkout/internal/migrator"
	"github.com/you-humble/paystack-checkout/internal/model"
	repository "github.com/you-humble/paystack-checkout/internal/repository/order"
	orphconsumer "github.com/you-humble/paystack-checkout/internal/service/consumer/orphaned"
	pmtproducer "github.com/you-humble/paystack-checkout/internal/service/producer/payment"
	service "github.com/you-humble/paystack-checkout/internal/service/transaction"
	"github.com/you-humble/paystack-checkout/platform/kafka/consumer"
	kafkamw "github.com/you-humble/paystack-checkout/platform/kafka/middleware"
	"github.com/you-humble/paystack-checkout/platform/kafka/producer"
	"github.com/you-humble/paystack-checkout/platform/logger"
	kafkatc "github.com/you-humble/paystack-checkout/platform/testcontainers/kafka"
	"github.com/you-humble/paystack-checkout/platform/testcontainers/path"
	"github.com/you-humble/paystack-checkout/platform/testcontainers/postgres"
	redistc "github.com/you-humble/paystack-checkout/platform/testcontainers/redis"
)

const (
	topicPaid     = "order.paid"
	topicOrphaned = "transaction.orphaned"
	groupID       = "checkout-it"
)

type workflow interface {
	Initialize(ctx context.Context, params model.InitializeParams) (*model.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*model.VerifyResult, error)
	ReconcileOrphan(ctx context.Context, event model.OrphanedTransaction) error
}

var (
	ctx    context.Context
	cancel context.CancelFunc

	pgC    *postgres.Container
	redisC *redistc.Container
	kafkaC *kafkatc.Container

	repo    service.OrderRepository
	create  func(total string) uuid.UUID
	gateway *fakePaystack
	svc     workflow
)

func TestWorkflowIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transaction Workflow Integration Suite")
}

var _ = BeforeSuite(func() {
	ctx, cancel = context.WithCancel(context.Background())
	logger.SetNopLogger()

	var err error

	By("starting postgres, redis and kafka containers")
	pgC, err = postgres.NewContainer(ctx)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(func() { _ = pgC.Terminate(context.Background()) })

	redisC, err = redistc.NewContainer(ctx, "")
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(func() { _ = redisC.Terminate(context.Background()) })

	kafkaC, err = kafkatc.NewContainer(ctx, "")
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(func() { _ = kafkaC.Terminate(context.Background()) })
	Expect(kafkaC.CreateTopics(topicPaid, topicOrphaned)).To(Succeed())

	By("running migrations")
	m := migrator.NewMigrator(stdlib.OpenDBFromPool(pgC.Pool()), path.MigrationsDir())
	Expect(m.Up(ctx)).To(Succeed())

	orders := repository.NewOrderRepository(pgC.Pool())
	repo = orders
	create = func(total string) uuid.UUID {
		id, err := orders.Create(ctx, &model.Order{TotalPrice: decimal.RequireFromString(total)})
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	By("starting fake paystack")
	gateway = newFakePaystack()
	DeferCleanup(gateway.srv.Close)

	By("wiring producers")
	pcfg := sarama.NewConfig()
	pcfg.Version = sarama.V4_0_0_0
	pcfg.Producer.Return.Successes = true
	pcfg.Producer.RequiredAcks = sarama.WaitForAll
	syncProducer, err := sarama.NewSyncProducer(kafkaC.Brokers(), pcfg)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(syncProducer.Close)

	conv := converter.NewKafkaConverter()
	events := pmtproducer.NewPaymentProducer(
		producer.NewProducer(syncProducer, topicPaid, logger.L()),
		producer.NewProducer(syncProducer, topicOrphaned, logger.L()),
		conv,
	)

	svc = service.NewTransactionService(
		orders,
		pstclient.NewClient(pstclient.Config{SecretKey: "sk_test", BaseURL: gateway.srv.URL, Timeout: 2 * time.Second}, nil),
		locker.NewRedisLocker(redisC.Client(), 5*time.Second),
		events,
		clock.NewSystem(),
		service.Options{
			CallbackBaseURL:  "https://shop.example.com/orders",
			ReadDBTimeout:    2 * time.Second,
			WriteDBTimeout:   2 * time.Second,
			LockWait:         5 * time.Second,
			ReconcileBackoff: 50 * time.Millisecond,
			ReconcileRetries: 2,
		},
	)

	By("starting orphaned transaction consumer")
	ccfg := sarama.NewConfig()
	ccfg.Version = sarama.V4_0_0_0
	ccfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	ccfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	group, err := sarama.NewConsumerGroup(kafkaC.Brokers(), groupID, ccfg)
	Expect(err).NotTo(HaveOccurred())

	orphaned := orphconsumer.NewOrphanedConsumer(
		consumer.NewConsumer(group, []string{topicOrphaned}, logger.L(),
			kafkamw.Recovery(logger.L()),
			kafkamw.Logging(logger.L()),
		),
		conv,
		svc,
	)
	consumerErrCh := make(chan error, 1)
	go func() { consumerErrCh <- orphaned.RunOrphanedConsume(ctx) }()
	Consistently(consumerErrCh, 2*time.Second).ShouldNot(Receive())
	DeferCleanup(group.Close)
})

var _ = AfterSuite(func() {
	cancel()
})

var _ = Describe("Transaction workflow", func() {
	It("initializes, verifies once and publishes order.paid", func() {
		id := create("5000")

		res, err := svc.Initialize(ctx, model.InitializeParams{OrderID: id, Email: "buyer@example.com", Amount: decimal.NewFromInt(5000)})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.AuthorizationURL).To(HavePrefix("https://checkout.paystack.com/"))
		Expect(gateway.callback(res.Reference)).To(Equal("https://shop.example.com/orders/" + id.String()))

		gateway.settle(res.Reference, "success", 500000)

		var wg sync.WaitGroup
		results := make(chan model.VerifyStatus, 4)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				out, err := svc.Verify(ctx, res.Reference)
				Expect(err).NotTo(HaveOccurred())
				results <- out.Status
			}()
		}
		wg.Wait()
		close(results)

		var paid, already int
		for st := range results {
			switch st {
			case model.VerifyStatusPaid:
				paid++
			case model.VerifyStatusAlreadyPaid:
				already++
			}
		}
		Expect(paid).To(Equal(1))
		Expect(already).To(Equal(3))
		Expect(gateway.verifyCalls(res.Reference)).To(Equal(1))

		ord, err := repo.OrderByReference(ctx, res.Reference)
		Expect(err).NotTo(HaveOccurred())
		Expect(ord.IsPaid).To(BeTrue())
		Expect(ord.PaidAt).NotTo(BeNil())

		Eventually(func() bool {
			return topicHasKey(topicPaid, id.String())
		}).WithTimeout(15 * time.Second).WithPolling(500 * time.Millisecond).Should(BeTrue())
	})

	It("leaves the order unpaid on amount mismatch", func() {
		id := create("5000")

		res, err := svc.Initialize(ctx, model.InitializeParams{OrderID: id, Email: "buyer@example.com", Amount: decimal.NewFromInt(5000)})
		Expect(err).NotTo(HaveOccurred())
		gateway.settle(res.Reference, "success", 400000)

		out, err := svc.Verify(ctx, res.Reference)
		Expect(err).To(MatchError(model.ErrAmountMismatch))
		Expect(out.Status).To(Equal(model.VerifyStatusAmountMismatch))

		ord, err := repo.OrderByReference(ctx, res.Reference)
		Expect(err).NotTo(HaveOccurred())
		Expect(ord.IsPaid).To(BeFalse())
	})

	It("reports an orphaned reference for a missing order", func() {
		missing := uuid.New()

		_, err := svc.Initialize(ctx, model.InitializeParams{OrderID: missing, Email: "buyer@example.com", Amount: decimal.NewFromInt(10)})
		Expect(err).To(MatchError(model.ErrInconsistency))
		Expect(err).To(MatchError(model.ErrOrderNotFound))

		Eventually(func() bool {
			return topicHasValue(topicOrphaned, missing.String())
		}).WithTimeout(15 * time.Second).WithPolling(500 * time.Millisecond).Should(BeTrue())
	})

	It("stores an orphaned reference after a store failure", func() {
		id := create("10")
		ref := "orphan-" + uuid.NewString()

		publishOrphan(model.OrphanedTransaction{
			EventID:    uuid.New(),
			OrderID:    id,
			Reference:  ref,
			Reason:     model.OrphanReasonStoreFailure,
			OccurredAt: time.Now().UTC(),
		})

		Eventually(func(g Gomega) {
			ord, err := repo.OrderByReference(ctx, ref)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(ord.ID).To(Equal(id))
		}).WithTimeout(15 * time.Second).WithPolling(300 * time.Millisecond).Should(Succeed())
	})
})

func publishOrphan(event model.OrphanedTransaction) {
	payload, err := converter.NewKafkaConverter().OrphanedTransactionToRecord(event)
	Expect(err).NotTo(HaveOccurred())

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V4_0_0_0
	cfg.Producer.Return.Successes = true
	p, err := sarama.NewSyncProducer(kafkaC.Brokers(), cfg)
	Expect(err).NotTo(HaveOccurred())
	defer p.Close()

	_, _, err = p.SendMessage(&sarama.ProducerMessage{
		Topic: topicOrphaned,
		Key:   sarama.StringEncoder(event.Reference),
		Value: sarama.ByteEncoder(payload),
	})
	Expect(err).NotTo(HaveOccurred())
}

func readTopic(topic string, match func(msg *sarama.ConsumerMessage) bool) bool {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V4_0_0_0
	c, err := sarama.NewConsumer(kafkaC.Brokers(), cfg)
	if err != nil {
		return false
	}
	defer c.Close()

	pc, err := c.ConsumePartition(topic, 0, sarama.OffsetOldest)
	if err != nil {
		return false
	}
	defer pc.Close()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-pc.Messages():
			if match(msg) {
				return true
			}
		case <-timeout:
			return false
		}
	}
}

func topicHasKey(topic, key string) bool {
	return readTopic(topic, func(msg *sarama.ConsumerMessage) bool { return string(msg.Key) == key })
}

func topicHasValue(topic, substr string) bool {
	return readTopic(topic, func(msg *sarama.ConsumerMessage) bool { return strings.Contains(string(msg.Value), substr) })
}

type fakeTx struct {
	callback string
	status   string
	amount   int64
	verifies int
}

type fakePaystack struct {
	srv *httptest.Server
	mu  sync.Mutex
	txs map[string]*fakeTx
}

func newFakePaystack() *fakePaystack {
	f := &fakePaystack{txs: make(map[string]*fakeTx)}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transaction/initialize", f.initialize)
	mux.HandleFunc("GET /transaction/verify/{reference}", f.verify)
	f.srv = httptest.NewServer(mux)
	return f
}

func (f *fakePaystack) initialize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CallbackURL string `json:"callback_url"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	ref := uuid.NewString()
	f.mu.Lock()
	f.txs[ref] = &fakeTx{callback: body.CallbackURL, status: "ongoing"}
	f.mu.Unlock()

	_, _ = fmt.Fprintf(w, `{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/%s","access_code":"ac","reference":%q}}`, ref, ref)
}

func (f *fakePaystack) verify(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("reference")

	f.mu.Lock()
	tx, ok := f.txs[ref]
	if ok {
		tx.verifies++
	}
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
		return
	}
	_, _ = fmt.Fprintf(w, `{"status":true,"message":"Verification successful","data":{"reference":%q,"status":%q,"amount":%d,"currency":"NGN"}}`, ref, tx.status, tx.amount)
}

func (f *fakePaystack) settle(ref, status string, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs[ref].status = status
	f.txs[ref].amount = amount
}

func (f *fakePaystack) callback(ref string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txs[ref].callback
}

func (f *fakePaystack) verifyCalls(ref string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txs[ref].verifies
}
