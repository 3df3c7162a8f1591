package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/pkg/money"

	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository. Every status flip carries
// a WHERE status = 0 guard so PENDING -> PAID/EXPIRED stays monotonic
// even when the poller and the sweeper race.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, trade_no, out_trade_no, api_trade_no, merchant_id, credential_id,
		pay_type, name, original_amount, amount, adjust_amount, status,
		notify_url, return_url, param, client_ip, device,
		base_balance, confirm_balance, buyer, callback_status, callback_attempts,
		created_at, paid_at, expired_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.TradeNo, &o.OutTradeNo, &o.APITradeNo, &o.MerchantID, &o.CredentialID,
		&o.PayType, &o.Name, &o.OriginalAmount, &o.Amount, &o.AdjustAmount, &o.Status,
		&o.NotifyURL, &o.ReturnURL, &o.Param, &o.ClientIP, &o.Device,
		&o.BaseBalance, &o.ConfirmBalance, &o.Buyer, &o.CallbackStatus, &o.CallbackAttempts,
		&o.CreatedAt, &o.PaidAt, &o.ExpiredAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create inserts a new order and fills in the generated ID.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (trade_no, out_trade_no, api_trade_no, merchant_id, credential_id,
		pay_type, name, original_amount, amount, adjust_amount, status,
		notify_url, return_url, param, client_ip, device,
		base_balance, buyer, callback_status, callback_attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		o.TradeNo, o.OutTradeNo, o.APITradeNo, o.MerchantID, o.CredentialID,
		o.PayType, o.Name, o.OriginalAmount, o.Amount, o.AdjustAmount, o.Status,
		o.NotifyURL, o.ReturnURL, o.Param, o.ClientIP, o.Device,
		o.BaseBalance, o.Buyer, o.CallbackStatus, o.CallbackAttempts, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByTradeNo fetches an order by the gateway trade number.
func (r *OrderRepo) GetByTradeNo(ctx context.Context, tradeNo string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE trade_no = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, tradeNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by trade_no: %w", err)
	}
	return o, nil
}

// GetByOutTradeNo fetches an order by the merchant's own order number.
func (r *OrderRepo) GetByOutTradeNo(ctx context.Context, merchantID int64, outTradeNo string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE merchant_id = $1 AND out_trade_no = $2`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, merchantID, outTradeNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by out_trade_no: %w", err)
	}
	return o, nil
}

// ListPendingByCredential returns PENDING orders on the credential in
// the reconciler's visit order: oldest first, then smallest amount.
func (r *OrderRepo) ListPendingByCredential(ctx context.Context, credentialID int64) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE credential_id = $1 AND status = 0
		ORDER BY created_at ASC, amount ASC`

	rows, err := r.pool.Query(ctx, query, credentialID)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// TakenAmounts reports adjusted amounts already held by PENDING orders
// on the credential within [lo, hi].
func (r *OrderRepo) TakenAmounts(ctx context.Context, credentialID int64, lo, hi money.Cents) (map[money.Cents]bool, error) {
	query := `SELECT amount FROM orders
		WHERE credential_id = $1 AND status = 0 AND amount BETWEEN $2 AND $3`

	rows, err := r.pool.Query(ctx, query, credentialID, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("list taken amounts: %w", err)
	}
	defer rows.Close()

	taken := make(map[money.Cents]bool)
	for rows.Next() {
		var amount money.Cents
		if err := rows.Scan(&amount); err != nil {
			return nil, fmt.Errorf("scan amount: %w", err)
		}
		taken[amount] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate amounts: %w", err)
	}
	return taken, nil
}

// MarkPaid flips a PENDING order to PAID inside the caller's
// transaction. Returns false when the order was not pending anymore.
func (r *OrderRepo) MarkPaid(ctx context.Context, tx pgx.Tx, tradeNo string, confirmBalance money.Cents, buyer string) (bool, error) {
	query := `UPDATE orders
		SET status = 1, confirm_balance = $2, buyer = $3, paid_at = $4
		WHERE trade_no = $1 AND status = 0`

	tag, err := tx.Exec(ctx, query, tradeNo, confirmBalance, buyer, time.Now())
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkExpired flips a PENDING order to EXPIRED. Returns false when the
// order was not pending anymore.
func (r *OrderRepo) MarkExpired(ctx context.Context, tradeNo string) (bool, error) {
	query := `UPDATE orders
		SET status = 2, expired_at = $2
		WHERE trade_no = $1 AND status = 0`

	tag, err := r.pool.Exec(ctx, query, tradeNo, time.Now())
	if err != nil {
		return false, fmt.Errorf("mark order expired: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ExpireStale flips every PENDING order created before cutoff and
// returns the touched orders with their credentials.
func (r *OrderRepo) ExpireStale(ctx context.Context, cutoff time.Time) ([]ports.ExpiredOrderRef, error) {
	query := `UPDATE orders
		SET status = 2, expired_at = $2
		WHERE status = 0 AND created_at < $1
		RETURNING trade_no, credential_id`

	rows, err := r.pool.Query(ctx, query, cutoff, time.Now())
	if err != nil {
		return nil, fmt.Errorf("expire stale orders: %w", err)
	}
	defer rows.Close()

	var refs []ports.ExpiredOrderRef
	for rows.Next() {
		var ref ports.ExpiredOrderRef
		if err := rows.Scan(&ref.TradeNo, &ref.CredentialID); err != nil {
			return nil, fmt.Errorf("scan expired order: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired orders: %w", err)
	}
	return refs, nil
}

// UpdateCallbackState persists the notification progress of an order.
func (r *OrderRepo) UpdateCallbackState(ctx context.Context, tradeNo string, status domain.CallbackStatus, attempts int) error {
	query := `UPDATE orders SET callback_status = $2, callback_attempts = $3 WHERE trade_no = $1`

	tag, err := r.pool.Exec(ctx, query, tradeNo, status, attempts)
	if err != nil {
		return fmt.Errorf("update callback state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListCallbackRetryable returns paid orders with a notify URL whose
// callback has been attempted at least once, has not succeeded, and
// remains below maxAttempts.
func (r *OrderRepo) ListCallbackRetryable(ctx context.Context, maxAttempts int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE status = 1 AND notify_url <> ''
		AND callback_status IN (2, 3)
		AND callback_attempts >= 1 AND callback_attempts < $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("list retryable callbacks: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// RebaseBaseBalance overwrites base_balance on every PENDING order of
// the credential and returns the number of rows touched.
func (r *OrderRepo) RebaseBaseBalance(ctx context.Context, credentialID int64, base money.Cents) (int64, error) {
	query := `UPDATE orders SET base_balance = $2 WHERE credential_id = $1 AND status = 0`

	tag, err := r.pool.Exec(ctx, query, credentialID, base)
	if err != nil {
		return 0, fmt.Errorf("rebase base balance: %w", err)
	}
	return tag.RowsAffected(), nil
}
