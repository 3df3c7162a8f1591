package domain

import "time"

// Credential is a wallet credential bundle owned by a merchant: the
// static QR code buyers scan plus the open-API keys used to poll the
// wallet balance. The private key is stored encrypted and only leaves
// the resolver in decrypted form.
type Credential struct {
	ID            int64     `json:"id"`
	MerchantID    int64     `json:"merchant_id"`
	AppID         string    `json:"app_id"`
	PublicKey     string    `json:"-"`
	PrivateKeyEnc string    `json:"-"`
	QRCodeURL     string    `json:"qrcode_url"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// CredentialBundle is a resolved credential with the private key
// decrypted, ready for wallet API calls.
type CredentialBundle struct {
	ID         int64
	MerchantID int64
	AppID      string
	PublicKey  string
	PrivateKey string
	QRCodeURL  string
}
