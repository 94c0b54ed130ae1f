package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/you-humble/paystack-checkout/internal/model"
)

const ordersTable = "orders"

var orderColumns = []string{
	"id",
	"total_price",
	"transaction_reference",
	"is_paid",
	"paid_at",
	"is_delivered",
	"created_at",
	"updated_at",
}

type repository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewOrderRepository(pool *pgxpool.Pool) *repository {
	return &repository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, ord *model.Order) (uuid.UUID, error) {
	q := r.sb.
		Insert(ordersTable).
		Columns("total_price", "transaction_reference", "is_paid", "paid_at", "is_delivered").
		Values(ord.TotalPrice, ord.TransactionReference, ord.IsPaid, ord.PaidAt, ord.IsDelivered).
		Suffix("RETURNING id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	var orderID uuid.UUID
	if err := r.q(ctx).QueryRow(ctx, sqlStr, args...).Scan(&orderID); err != nil {
		return uuid.Nil, err
	}

	return orderID, nil
}

func (r *repository) OrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.orderBy(ctx, sq.Eq{"id": id}, false)
}

func (r *repository) OrderByReference(ctx context.Context, reference string) (*model.Order, error) {
	return r.orderBy(ctx, sq.Eq{"transaction_reference": reference}, false)
}

// AttachReference stores the latest gateway reference on an unpaid order.
// With onlyIfUnset the write is skipped with ErrReferenceConflict when the
// order already carries a reference.
func (r *repository) AttachReference(ctx context.Context, orderID uuid.UUID, reference string, onlyIfUnset bool) error {
	return r.withTx(ctx, func(ctx context.Context) error {
		ord, err := r.orderBy(ctx, sq.Eq{"id": orderID}, true)
		if err != nil {
			return err
		}
		if ord.IsPaid {
			return model.ErrOrderAlreadyPaid
		}
		if onlyIfUnset && ord.TransactionReference != nil {
			if *ord.TransactionReference == reference {
				return nil
			}
			return model.ErrReferenceConflict
		}

		sqlStr, args, err := r.sb.
			Update(ordersTable).
			Set("transaction_reference", reference).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"id": orderID}).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := r.q(ctx).Exec(ctx, sqlStr, args...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: reference %q belongs to another order", model.ErrReferenceConflict, reference)
			}
			return err
		}
		return nil
	})
}

// MarkPaid flips is_paid only if it is still false. When another caller won
// the race it returns the stored order together with ErrOrderAlreadyPaid.
func (r *repository) MarkPaid(ctx context.Context, reference string, paidAt time.Time) (*model.Order, error) {
	sqlStr, args, err := r.sb.
		Update(ordersTable).
		Set("is_paid", true).
		Set("paid_at", paidAt).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"transaction_reference": reference, "is_paid": false}).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	ord, err := scanOrder(r.q(ctx).QueryRow(ctx, sqlStr, args...))
	if err == nil {
		return ord, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	current, err := r.OrderByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if current.IsPaid {
		return current, model.ErrOrderAlreadyPaid
	}
	return nil, fmt.Errorf("mark paid: no row updated for reference %q", reference)
}

func (r *repository) Stats(ctx context.Context) (model.OrderStats, error) {
	sqlStr, args, err := r.sb.
		Select(
			"COUNT(*)",
			"COUNT(*) FILTER (WHERE is_paid)",
			"COUNT(*) FILTER (WHERE is_delivered)",
			"COUNT(*) FILTER (WHERE NOT is_paid AND transaction_reference IS NOT NULL)",
		).
		From(ordersTable).
		ToSql()
	if err != nil {
		return model.OrderStats{}, err
	}

	var st model.OrderStats
	if err := r.q(ctx).QueryRow(ctx, sqlStr, args...).Scan(
		&st.TotalOrders,
		&st.PaidOrders,
		&st.DeliveredOrders,
		&st.PendingOrders,
	); err != nil {
		return model.OrderStats{}, err
	}

	return st, nil
}

func (r *repository) orderBy(ctx context.Context, where sq.Eq, forUpdate bool) (*model.Order, error) {
	q := r.sb.
		Select(orderColumns...).
		From(ordersTable).
		Where(where)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	ord, err := scanOrder(r.q(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, err
	}

	return ord, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var ord model.Order
	if err := row.Scan(
		&ord.ID,
		&ord.TotalPrice,
		&ord.TransactionReference,
		&ord.IsPaid,
		&ord.PaidAt,
		&ord.IsDelivered,
		&ord.CreatedAt,
		&ord.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ord, nil
}
