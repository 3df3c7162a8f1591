package ports

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

import (
	"context"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/pkg/money"
)

// SignService handles the MD5 parameter signing of the merchant
// protocol: empty values and the sign/sign_type keys are dropped, keys
// are sorted byte-ascending and joined k=v with &, the shared key is
// appended and the digest rendered as lowercase hex.
type SignService interface {
	Canonicalize(params map[string]string) string
	Sign(params map[string]string, key string) string
	Verify(params map[string]string, key string, sign string) bool
}

// EncryptionService handles AES-256-GCM encryption/decryption of
// credential private keys at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles ops-API JWT token operations.
type TokenService interface {
	Generate(operatorID int64, username string) (string, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	OperatorID int64
	Username   string
}

// WalletBalance is a wallet open-API balance snapshot.
type WalletBalance struct {
	Total     money.Cents
	Available money.Cents
	Frozen    money.Cents
}

// WalletGateway queries the operator wallet's balance through the
// RSA2-signed open-API.
type WalletGateway interface {
	QueryBalance(ctx context.Context, cred *domain.CredentialBundle) (*WalletBalance, error)
}

// CredentialResolver selects credential bundles and decrypts their
// private keys.
type CredentialResolver interface {
	// ResolveForMerchant picks the merchant's newest active credential.
	ResolveForMerchant(ctx context.Context, merchantID int64) (*domain.CredentialBundle, error)
	ResolveByID(ctx context.Context, credentialID int64) (*domain.CredentialBundle, error)
}

// --- Service Ports (Business Logic) ---

// CreateOrderRequest carries the submitted form: Params holds every
// field as sent (signature verification runs over the full set,
// opaque extras included).
type CreateOrderRequest struct {
	Params   map[string]string
	ClientIP string
	Device   string
}

// CreateOrderResponse is the successful create result.
type CreateOrderResponse struct {
	TradeNo string
	QRCode  string
	Amount  money.Cents
}

// MerchantInfo is the act=query snapshot.
type MerchantInfo struct {
	Merchant *domain.Merchant
	Stats    *domain.MerchantStats
}

// OrderService defines the merchant-facing order operations.
type OrderService interface {
	Create(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)
	GetByTradeNo(ctx context.Context, tradeNo string) (*domain.Order, error)
	// FindOrder locates an order by trade_no or out_trade_no and checks
	// it belongs to the merchant.
	FindOrder(ctx context.Context, merchantID int64, tradeNo, outTradeNo string) (*domain.Order, error)
	// AuthMerchant loads a merchant and compares the plaintext key.
	AuthMerchant(ctx context.Context, merchantID int64, key string) (*domain.Merchant, error)
	GetMerchantInfo(ctx context.Context, merchantID int64) (*MerchantInfo, error)
	// ExpireStale flips stale PENDING orders and returns the distinct
	// credential ids that lost orders.
	ExpireStale(ctx context.Context) ([]int64, error)
	// Cancel manually expires a PENDING order and returns it so the
	// caller can rebase its credential.
	Cancel(ctx context.Context, tradeNo string) (*domain.Order, error)
}

// ReconcileService attributes wallet balance deltas to pending orders.
type ReconcileService interface {
	// CheckPayment runs one reconcile pass for the order's credential.
	// Returns true when the order itself got matched.
	CheckPayment(ctx context.Context, tradeNo string) (bool, error)
	// RebaseAfterExpiry re-snapshots base_balance for credentials whose
	// pending set shrank.
	RebaseAfterExpiry(ctx context.Context, credentialIDs []int64)
}

// CallbackService delivers merchant notifications.
type CallbackService interface {
	// Notify performs one synchronous attempt and returns the refreshed
	// order.
	Notify(ctx context.Context, tradeNo string) (*domain.Order, error)
	// Dispatch fires asynchronous best-effort first attempts.
	Dispatch(tradeNos []string)
	// ScanRetries issues every due retry and reports how many fired.
	ScanRetries(ctx context.Context) (int, error)
	// BuildReturnURL merges the signed notify params into the order's
	// return URL.
	BuildReturnURL(order *domain.Order, merchant *domain.Merchant) (string, error)
}

// PollerRegistry tracks the per-order polling goroutines.
type PollerRegistry interface {
	// Start launches a poller for the trade number; starting an already
	// polled order is a no-op.
	Start(tradeNo string)
	Cancel(tradeNo string)
	Active() int
	StopAll()
}

// CreateCredentialRequest carries an ops-API credential upsert.
type CreateCredentialRequest struct {
	MerchantID int64
	AppID      string
	PublicKey  string
	PrivateKey string
	QRCodeURL  string
	// SkipVerify suppresses the live connectivity probe.
	SkipVerify bool
}

// AdminService defines the ops-API business logic.
type AdminService interface {
	Login(ctx context.Context, username, password string) (string, error)
	// EnsureOperator creates the bootstrap operator account when absent.
	EnsureOperator(ctx context.Context, username, password string) error
	CreateMerchant(ctx context.Context, username, settleType, settleAccount, settleUsername string) (*domain.Merchant, error)
	ListMerchants(ctx context.Context) ([]*domain.Merchant, error)
	RotateMerchantKey(ctx context.Context, merchantID int64) (string, error)
	SetMerchantActive(ctx context.Context, merchantID int64, active bool) error
	CreateCredential(ctx context.Context, req *CreateCredentialRequest) (*domain.Credential, error)
	ListCredentials(ctx context.Context, merchantID int64) ([]*domain.Credential, error)
	ListBalanceLogs(ctx context.Context, credentialID int64, limit int) ([]*domain.BalanceLog, error)
}
