package domain

import (
	"time"

	"qrpay-gateway/pkg/money"
)

// Reconcile outcome labels recorded in BalanceLog.MatchResult. Matched
// and unmatched outcomes append a delta suffix, e.g.
// "matched 2 orders: delta=30.01".
const (
	MatchResultQueryFailure     = "query failure"
	MatchResultNoPending        = "no pending orders"
	MatchResultNoPositiveChange = "no positive change"
	MatchResultNoSubset         = "no subset match"
	MatchResultMatched          = "matched"
)

// BalanceLog is the append-only audit trail of the reconciler: one row
// per balance check, whether or not anything matched.
type BalanceLog struct {
	ID              int64       `json:"id"`
	CredentialID    int64       `json:"credential_id"`
	Balance         money.Cents `json:"balance"`
	BaseBalance     money.Cents `json:"base_balance"`
	Delta           money.Cents `json:"delta"`
	MatchResult     string      `json:"match_result"`
	MatchedTradeNos string      `json:"matched_trade_nos,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}
