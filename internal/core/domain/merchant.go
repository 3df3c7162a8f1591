package domain

import (
	"time"

	"qrpay-gateway/pkg/money"
)

// Merchant represents a registered merchant account. The numeric ID is
// the pid merchants embed in signed requests; Key is the shared MD5
// signing secret (32 hex chars).
type Merchant struct {
	ID             int64       `json:"pid"`
	Username       string      `json:"username"`
	Key            string      `json:"-"` // Signing secret, never expose
	Active         bool        `json:"active"`
	Balance        money.Cents `json:"balance"` // Virtual balance, credited on match
	SettleType     string      `json:"settle_type,omitempty"`
	SettleAccount  string      `json:"settle_account,omitempty"`
	SettleUsername string      `json:"settle_username,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsActive returns true if the merchant may create orders.
func (m *Merchant) IsActive() bool {
	return m.Active
}

// MerchantStats carries the derived counters of the merchant snapshot
// endpoint: lifetime paid income and order counts.
type MerchantStats struct {
	Income       money.Cents `json:"income"`
	Orders       int64       `json:"orders"`
	OrderToday   int64       `json:"order_today"`
	OrderLastDay int64       `json:"order_lastday"`
}
