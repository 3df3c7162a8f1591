package domain

import (
	"time"

	"qrpay-gateway/pkg/money"
)

// OrderStatus is the lifecycle state of an order. Transitions are
// monotonic: a PENDING order becomes PAID or EXPIRED and never moves
// again.
type OrderStatus int

const (
	OrderStatusPending OrderStatus = 0
	OrderStatusPaid    OrderStatus = 1
	OrderStatusExpired OrderStatus = 2
)

// Text returns the buyer-facing status label.
func (s OrderStatus) Text() string {
	switch s {
	case OrderStatusPaid:
		return "paid"
	case OrderStatusExpired:
		return "expired"
	default:
		return "pending"
	}
}

// CallbackStatus tracks asynchronous merchant notification progress.
type CallbackStatus int

const (
	CallbackStatusNone     CallbackStatus = 0
	CallbackStatusOK       CallbackStatus = 1
	CallbackStatusFailed   CallbackStatus = 2
	CallbackStatusInFlight CallbackStatus = 3
)

// Order is a collection order. Amount is the adjusted value the buyer
// must pay; it is unique among PENDING orders on one credential so the
// reconciler can attribute balance deltas.
type Order struct {
	ID               int64          `json:"id"`
	TradeNo          string         `json:"trade_no"`
	OutTradeNo       string         `json:"out_trade_no"`
	APITradeNo       string         `json:"api_trade_no,omitempty"`
	MerchantID       int64          `json:"pid"`
	CredentialID     int64          `json:"credential_id"`
	PayType          string         `json:"type"`
	Name             string         `json:"name"`
	OriginalAmount   money.Cents    `json:"original_money"`
	Amount           money.Cents    `json:"money"`
	AdjustAmount     money.Cents    `json:"adjust_amount"`
	Status           OrderStatus    `json:"status"`
	NotifyURL        string         `json:"-"`
	ReturnURL        string         `json:"-"`
	Param            string         `json:"param,omitempty"`
	ClientIP         string         `json:"-"`
	Device           string         `json:"-"`
	BaseBalance      money.Cents    `json:"-"` // Wallet balance snapshot at creation
	ConfirmBalance   *money.Cents   `json:"-"` // Wallet balance at match time
	Buyer            string         `json:"buyer,omitempty"`
	CallbackStatus   CallbackStatus `json:"callback_status"`
	CallbackAttempts int            `json:"callback_attempts"`
	CreatedAt        time.Time      `json:"created_at"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	ExpiredAt        *time.Time     `json:"expired_at,omitempty"`
}

// IsTerminal returns true once the order left the PENDING state.
func (o *Order) IsTerminal() bool {
	return o.Status != OrderStatusPending
}

// CanNotify returns true if a merchant callback may be dispatched for
// this order: it needs a notify URL and must not be expired.
func (o *Order) CanNotify() bool {
	return o.NotifyURL != "" && o.Status != OrderStatusExpired
}
