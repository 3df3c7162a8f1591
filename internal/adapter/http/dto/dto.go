package dto

import (
	"time"

	"qrpay-gateway/internal/core/domain"
)

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// CreateMerchantRequest is the request body for merchant registration.
type CreateMerchantRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=50,safe_id"`
	SettleType     string `json:"settle_type" binding:"max=20"`
	SettleAccount  string `json:"settle_account" binding:"max=100"`
	SettleUsername string `json:"settle_username" binding:"max=100"`
}

// MerchantResponse exposes a merchant row to the ops API, signing key
// included. The merchant-facing endpoints never use this shape.
type MerchantResponse struct {
	PID            int64  `json:"pid"`
	Username       string `json:"username"`
	Key            string `json:"key"`
	Active         bool   `json:"active"`
	Balance        string `json:"balance"`
	SettleType     string `json:"settle_type,omitempty"`
	SettleAccount  string `json:"settle_account,omitempty"`
	SettleUsername string `json:"settle_username,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ToMerchantResponse converts a domain merchant for the ops API.
func ToMerchantResponse(m *domain.Merchant) MerchantResponse {
	return MerchantResponse{
		PID:            m.ID,
		Username:       m.Username,
		Key:            m.Key,
		Active:         m.Active,
		Balance:        m.Balance.String(),
		SettleType:     m.SettleType,
		SettleAccount:  m.SettleAccount,
		SettleUsername: m.SettleUsername,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}

// RotateKeyResponse carries a freshly generated signing key.
type RotateKeyResponse struct {
	Key string `json:"key"`
}

// SetActiveRequest toggles a merchant on or off.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// CreateCredentialRequest is the request body for a wallet credential
// upsert. Keys arrive as PEM or bare base64; they are never echoed
// back.
type CreateCredentialRequest struct {
	MerchantID int64  `json:"merchant_id" binding:"required,gt=0"`
	AppID      string `json:"app_id" binding:"required,max=64"`
	PublicKey  string `json:"public_key" binding:"required"`
	PrivateKey string `json:"private_key" binding:"required"`
	QRCodeURL  string `json:"qrcode_url" binding:"required,safe_url"`
	SkipVerify bool   `json:"skip_verify"`
}

// CancelResponse reports a manual order expiry.
type CancelResponse struct {
	TradeNo string `json:"trade_no"`
	Status  string `json:"status"`
}

// NotifyResponse reports the callback state after a manual re-notify.
type NotifyResponse struct {
	TradeNo          string `json:"trade_no"`
	CallbackStatus   int    `json:"callback_status"`
	CallbackAttempts int    `json:"callback_attempts"`
}
