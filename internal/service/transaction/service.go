package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/you-humble/paystack-checkout/internal/clock"
	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/platform/logger"
)

type OrderRepository interface {
	OrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	OrderByReference(ctx context.Context, reference string) (*model.Order, error)
	AttachReference(ctx context.Context, orderID uuid.UUID, reference string, onlyIfUnset bool) error
	MarkPaid(ctx context.Context, reference string, paidAt time.Time) (*model.Order, error)
}

type PaymentGateway interface {
	Initialize(ctx context.Context, params model.GatewayInitializeParams) (*model.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*model.GatewayTransaction, error)
}

type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type PaymentEventSender interface {
	SendOrderPaid(ctx context.Context, event model.PaidOrder) error
	SendTransactionOrphaned(ctx context.Context, event model.OrphanedTransaction) error
}

type Options struct {
	CallbackBaseURL string
	ReadDBTimeout   time.Duration
	WriteDBTimeout  time.Duration
	LockWait        time.Duration
	// Backoff base and attempt cap for transient store failures while
	// reconciling an orphaned reference.
	ReconcileBackoff time.Duration
	ReconcileRetries uint64
}

type service struct {
	repo    OrderRepository
	gateway PaymentGateway
	locker  Locker
	events  PaymentEventSender
	clock   clock.Clock

	callbackBaseURL string
	readDBTimeout   time.Duration
	writeDBTimeout  time.Duration
	lockWait        time.Duration

	reconcileBackoff time.Duration
	reconcileRetries uint64
}

func NewTransactionService(
	repository OrderRepository,
	gateway PaymentGateway,
	locker Locker,
	events PaymentEventSender,
	clk clock.Clock,
	opts Options,
) *service {
	return &service{
		repo:            repository,
		gateway:         gateway,
		locker:          locker,
		events:          events,
		clock:           clk,
		callbackBaseURL: strings.TrimRight(opts.CallbackBaseURL, "/"),
		readDBTimeout:   opts.ReadDBTimeout,
		writeDBTimeout:  opts.WriteDBTimeout,
		lockWait:        opts.LockWait,

		reconcileBackoff: opts.ReconcileBackoff,
		reconcileRetries: opts.ReconcileRetries,
	}
}

func (svc *service) Initialize(
	ctx context.Context,
	params model.InitializeParams,
) (*model.InitializeResult, error) {
	const op string = "transaction.service.Initialize"
	log := logger.With(
		logger.String("order_id", params.OrderID.String()),
		logger.String("amount", params.Amount.String()),
	)

	if err := validateInitialize(params); err != nil {
		log.Warn(ctx, "invalid initialize params", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := svc.gateway.Initialize(ctx, model.GatewayInitializeParams{
		Email:       params.Email,
		Amount:      params.Amount,
		CallbackURL: svc.callbackBaseURL + "/" + params.OrderID.String(),
	})
	if err != nil {
		log.Error(ctx, "gateway initialize", logger.ErrorF(err))
		if errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrGateway) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, model.ErrGateway, err)
	}

	log = log.With(logger.String("reference", res.Reference))

	if err := svc.attachReference(ctx, params.OrderID, res.Reference); err != nil {
		reason := orphanReason(err)
		log.Error(ctx, "orphaned transaction: gateway transaction initialized but reference not stored",
			logger.String("reason", string(reason)),
			logger.ErrorF(err),
		)
		svc.reportOrphan(ctx, params.OrderID, res.Reference, reason)

		switch reason {
		case model.OrphanReasonOrderNotFound:
			return nil, fmt.Errorf("%s: %w: %w", op, model.ErrInconsistency, model.ErrOrderNotFound)
		case model.OrphanReasonAlreadyPaid:
			return nil, fmt.Errorf("%s: %w: %w", op, model.ErrInconsistency, model.ErrOrderAlreadyPaid)
		default:
			return nil, fmt.Errorf("%s: %w: %v", op, model.ErrInconsistency, err)
		}
	}

	log.Info(ctx, "transaction initialized")

	return res, nil
}

func (svc *service) attachReference(ctx context.Context, orderID uuid.UUID, reference string) error {
	lockCtx, lockCancel := context.WithTimeout(ctx, svc.lockWait)
	defer lockCancel()

	unlock, err := svc.locker.Lock(lockCtx, "order:"+orderID.String())
	if err != nil {
		return err
	}
	defer unlock()

	wdbCtx, wdbCancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer wdbCancel()

	return svc.repo.AttachReference(wdbCtx, orderID, reference, false)
}

func (svc *service) reportOrphan(ctx context.Context, orderID uuid.UUID, reference string, reason model.OrphanReason) {
	event := model.OrphanedTransaction{
		EventID:    uuid.New(),
		OrderID:    orderID,
		Reference:  reference,
		Reason:     reason,
		OccurredAt: svc.clock.Now(),
	}
	if err := svc.events.SendTransactionOrphaned(context.WithoutCancel(ctx), event); err != nil {
		logger.Error(ctx, "send transaction orphaned",
			logger.String("order_id", orderID.String()),
			logger.String("reference", reference),
			logger.ErrorF(err),
		)
	}
}

func (svc *service) Verify(ctx context.Context, reference string) (*model.VerifyResult, error) {
	const op string = "transaction.service.Verify"

	reference = strings.TrimSpace(reference)
	if reference == "" {
		logger.Warn(ctx, "empty reference")
		return nil, fmt.Errorf("%s: %w: empty reference", op, model.ErrValidation)
	}

	log := logger.With(logger.String("reference", reference))

	lockCtx, lockCancel := context.WithTimeout(ctx, svc.lockWait)
	defer lockCancel()

	unlock, err := svc.locker.Lock(lockCtx, "reference:"+reference)
	if err != nil {
		log.Error(ctx, "acquire reference lock", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	rdbCtx, rdbCancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer rdbCancel()

	ord, err := svc.repo.OrderByReference(rdbCtx, reference)
	if err != nil {
		log.Error(ctx, "repository order by reference", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(logger.String("order_id", ord.ID.String()))

	expected, ok := ord.TotalMinor()
	if !ok {
		log.Error(ctx, "order total has fractional minor units", logger.String("total_price", ord.TotalPrice.String()))
		return nil, fmt.Errorf("%s: %w: order total %s", op, model.ErrValidation, ord.TotalPrice)
	}

	if ord.IsPaid {
		log.Info(ctx, "order already paid")
		return alreadyPaid(ord, reference, expected), nil
	}

	tx, err := svc.gateway.Verify(ctx, reference)
	if err != nil {
		log.Error(ctx, "gateway verify", logger.ErrorF(err))
		if errors.Is(err, model.ErrGateway) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, model.ErrGateway, err)
	}

	res := &model.VerifyResult{
		OrderID:        ord.ID,
		Reference:      reference,
		ExpectedMinor:  expected,
		GatewayMinor:   tx.AmountMinor,
		GatewayStatus:  tx.Status,
		GatewayMessage: tx.GatewayResponse,
	}

	if tx.Status != model.GatewaySuccess {
		log.Warn(ctx, "gateway reports unsuccessful transaction",
			logger.String("gateway_status", tx.Status),
			logger.String("gateway_response", tx.GatewayResponse),
		)
		res.Status = model.VerifyStatusVerificationFailed
		return res, fmt.Errorf("%s: %w: gateway status %q", op, model.ErrVerificationFailed, tx.Status)
	}

	if tx.AmountMinor != expected {
		log.Warn(ctx, "amount mismatch",
			logger.Int64("expected_minor", expected),
			logger.Int64("gateway_minor", tx.AmountMinor),
		)
		res.Status = model.VerifyStatusAmountMismatch
		return res, fmt.Errorf("%s: %w: expected %d, got %d", op, model.ErrAmountMismatch, expected, tx.AmountMinor)
	}

	wdbCtx, wdbCancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer wdbCancel()

	paid, err := svc.repo.MarkPaid(wdbCtx, reference, svc.clock.Now())
	if err != nil {
		if errors.Is(err, model.ErrOrderAlreadyPaid) && paid != nil {
			log.Info(ctx, "order paid concurrently")
			return alreadyPaid(paid, reference, expected), nil
		}
		log.Error(ctx, "repository mark paid", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res.Status = model.VerifyStatusPaid
	res.PaidAt = paid.PaidAt

	if paid.PaidAt != nil {
		event := model.PaidOrder{
			EventID:     uuid.New(),
			OrderID:     paid.ID,
			Reference:   reference,
			AmountMinor: expected,
			PaidAt:      *paid.PaidAt,
		}
		if err := svc.events.SendOrderPaid(context.WithoutCancel(ctx), event); err != nil {
			log.Error(ctx, "send order paid", logger.ErrorF(err))
		}
	}

	log.Info(ctx, "payment verified", logger.Int64("amount_minor", expected))

	return res, nil
}

// ReconcileOrphan retries storing a reference whose earlier write failed.
// It never replaces a reference that was stored in the meantime.
func (svc *service) ReconcileOrphan(ctx context.Context, event model.OrphanedTransaction) error {
	const op string = "transaction.service.ReconcileOrphan"
	log := logger.With(
		logger.String("order_id", event.OrderID.String()),
		logger.String("reference", event.Reference),
		logger.String("reason", string(event.Reason)),
	)

	if event.Reason != model.OrphanReasonStoreFailure {
		log.Warn(ctx, "orphaned transaction needs manual follow-up")
		return nil
	}

	lockCtx, lockCancel := context.WithTimeout(ctx, svc.lockWait)
	defer lockCancel()

	unlock, err := svc.locker.Lock(lockCtx, "order:"+event.OrderID.String())
	if err != nil {
		log.Error(ctx, "acquire order lock", logger.ErrorF(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	backoff := retry.WithMaxRetries(svc.reconcileRetries, retry.NewExponential(svc.reconcileBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		wdbCtx, wdbCancel := context.WithTimeout(ctx, svc.writeDBTimeout)
		defer wdbCancel()

		err := svc.repo.AttachReference(wdbCtx, event.OrderID, event.Reference, true)
		if err == nil || isFinalAttachError(err) {
			return err
		}
		log.Warn(ctx, "attach orphaned reference, retrying", logger.ErrorF(err))
		return retry.RetryableError(err)
	})

	switch {
	case err == nil:
		log.Info(ctx, "orphaned reference stored")
		return nil
	case isFinalAttachError(err):
		log.Warn(ctx, "orphaned transaction needs manual follow-up", logger.ErrorF(err))
		return nil
	default:
		log.Error(ctx, "repository attach reference", logger.ErrorF(err))
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isFinalAttachError(err error) bool {
	return errors.Is(err, model.ErrOrderNotFound) ||
		errors.Is(err, model.ErrOrderAlreadyPaid) ||
		errors.Is(err, model.ErrReferenceConflict)
}

func validateInitialize(params model.InitializeParams) error {
	if params.OrderID == uuid.Nil {
		return fmt.Errorf("%w: order id is required", model.ErrValidation)
	}

	addr, err := mail.ParseAddress(params.Email)
	if err != nil || addr.Address != params.Email {
		return fmt.Errorf("%w: invalid email", model.ErrValidation)
	}

	if !params.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", model.ErrValidation)
	}
	if params.Amount.GreaterThan(model.MaxAmount) {
		return fmt.Errorf("%w: amount exceeds %s", model.ErrValidation, model.MaxAmount)
	}
	if _, ok := model.ToMinor(params.Amount); !ok {
		return fmt.Errorf("%w: amount has more than two decimal places", model.ErrValidation)
	}

	return nil
}

func orphanReason(err error) model.OrphanReason {
	switch {
	case errors.Is(err, model.ErrOrderNotFound):
		return model.OrphanReasonOrderNotFound
	case errors.Is(err, model.ErrOrderAlreadyPaid):
		return model.OrphanReasonAlreadyPaid
	default:
		return model.OrphanReasonStoreFailure
	}
}

func alreadyPaid(ord *model.Order, reference string, expected int64) *model.VerifyResult {
	return &model.VerifyResult{
		Status:        model.VerifyStatusAlreadyPaid,
		OrderID:       ord.ID,
		Reference:     reference,
		ExpectedMinor: expected,
		PaidAt:        ord.PaidAt,
	}
}
