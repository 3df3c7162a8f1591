package ports

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

import (
	"context"
	"time"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/pkg/money"

	"github.com/jackc/pgx/v5"
)

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id int64) (*domain.Merchant, error)
	GetByUsername(ctx context.Context, username string) (*domain.Merchant, error)
	List(ctx context.Context) ([]*domain.Merchant, error)
	UpdateKey(ctx context.Context, id int64, key string) error
	SetActive(ctx context.Context, id int64, active bool) error
	// CreditBalance adds amount to the merchant's virtual balance inside
	// the caller's transaction.
	CreditBalance(ctx context.Context, tx pgx.Tx, id int64, amount money.Cents) error
	// GetStats derives the snapshot counters from paid orders.
	GetStats(ctx context.Context, id int64) (*domain.MerchantStats, error)
}

// CredentialRepository defines persistence operations for wallet
// credential bundles.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential) error
	GetByID(ctx context.Context, id int64) (*domain.Credential, error)
	// GetActiveByMerchant returns the newest active credential, or
	// (nil, nil) when the merchant has none.
	GetActiveByMerchant(ctx context.Context, merchantID int64) (*domain.Credential, error)
	ListByMerchant(ctx context.Context, merchantID int64) ([]*domain.Credential, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// ExpiredOrderRef identifies an order flipped to EXPIRED by the sweep.
type ExpiredOrderRef struct {
	TradeNo      string
	CredentialID int64
}

// OrderRepository defines persistence operations for collection orders.
// Status flips carry a WHERE status=0 guard so terminal states stay
// monotonic.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByTradeNo(ctx context.Context, tradeNo string) (*domain.Order, error)
	GetByOutTradeNo(ctx context.Context, merchantID int64, outTradeNo string) (*domain.Order, error)
	// ListPendingByCredential returns PENDING orders ordered by
	// created_at then amount, the reconciler's visit order.
	ListPendingByCredential(ctx context.Context, credentialID int64) ([]*domain.Order, error)
	// TakenAmounts reports adjusted amounts already held by PENDING
	// orders on the credential within [lo, hi].
	TakenAmounts(ctx context.Context, credentialID int64, lo, hi money.Cents) (map[money.Cents]bool, error)
	// MarkPaid flips a PENDING order to PAID inside the caller's
	// transaction. Returns false when the status guard missed.
	MarkPaid(ctx context.Context, tx pgx.Tx, tradeNo string, confirmBalance money.Cents, buyer string) (bool, error)
	// MarkExpired flips a PENDING order to EXPIRED. Returns false when
	// the status guard missed.
	MarkExpired(ctx context.Context, tradeNo string) (bool, error)
	// ExpireStale flips every PENDING order created before cutoff.
	ExpireStale(ctx context.Context, cutoff time.Time) ([]ExpiredOrderRef, error)
	UpdateCallbackState(ctx context.Context, tradeNo string, status domain.CallbackStatus, attempts int) error
	// ListCallbackRetryable returns paid orders with a notify URL whose
	// callback is unfinished and still below maxAttempts.
	ListCallbackRetryable(ctx context.Context, maxAttempts int) ([]*domain.Order, error)
	// RebaseBaseBalance overwrites base_balance on every PENDING order
	// of the credential. Returns the number of rows touched.
	RebaseBaseBalance(ctx context.Context, credentialID int64, base money.Cents) (int64, error)
}

// CallbackLogRepository appends notification attempt records.
type CallbackLogRepository interface {
	Create(ctx context.Context, log *domain.CallbackLog) error
	ListByTradeNo(ctx context.Context, tradeNo string) ([]*domain.CallbackLog, error)
}

// BalanceLogRepository appends reconcile audit records.
type BalanceLogRepository interface {
	Create(ctx context.Context, log *domain.BalanceLog) error
	// CreateInTx appends inside the caller's transaction (used by the
	// match commit).
	CreateInTx(ctx context.Context, tx pgx.Tx, log *domain.BalanceLog) error
	// ListRecent returns newest-first rows; credentialID 0 means all.
	ListRecent(ctx context.Context, credentialID int64, limit int) ([]*domain.BalanceLog, error)
}

// OperatorRepository defines persistence for ops-API accounts.
type OperatorRepository interface {
	Create(ctx context.Context, op *domain.Operator) error
	GetByUsername(ctx context.Context, username string) (*domain.Operator, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
