package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/pkg/apperror"
	"qrpay-gateway/pkg/money"
)

const (
	// amountAdjustMax caps the upward cent adjustment that keeps
	// pending amounts unique per credential.
	amountAdjustMax = 99
	// tradeNoMaxAttempts bounds the collision retry loop.
	tradeNoMaxAttempts = 10
)

// requiredCreateParams are the form fields a create request must carry.
// notify_url and return_url are optional.
var requiredCreateParams = []string{"pid", "type", "out_trade_no", "name", "money", "sign", "sign_type"}

// OrderServiceImpl implements ports.OrderService.
type OrderServiceImpl struct {
	orderRepo    ports.OrderRepository
	merchantRepo ports.MerchantRepository
	signSvc      ports.SignService
	resolver     ports.CredentialResolver
	wallet       ports.WalletGateway
	state        *CredentialState
	payType      string
	orderTTL     time.Duration
	log          zerolog.Logger
}

// NewOrderService creates the merchant-facing order service.
func NewOrderService(
	orderRepo ports.OrderRepository,
	merchantRepo ports.MerchantRepository,
	signSvc ports.SignService,
	resolver ports.CredentialResolver,
	wallet ports.WalletGateway,
	state *CredentialState,
	payType string,
	orderTTL time.Duration,
	log zerolog.Logger,
) ports.OrderService {
	return &OrderServiceImpl{
		orderRepo:    orderRepo,
		merchantRepo: merchantRepo,
		signSvc:      signSvc,
		resolver:     resolver,
		wallet:       wallet,
		state:        state,
		payType:      payType,
		orderTTL:     orderTTL,
		log:          log.With().Str("component", "order_service").Logger(),
	}
}

// Create validates a signed create request and books a new PENDING
// order. The amount adjustment, balance snapshot, trade number
// generation and insert run under the credential lock so two
// concurrent requests can never book the same adjusted amount.
func (s *OrderServiceImpl) Create(ctx context.Context, req *ports.CreateOrderRequest) (*ports.CreateOrderResponse, error) {
	p := req.Params
	for _, name := range requiredCreateParams {
		if strings.TrimSpace(p[name]) == "" {
			return nil, apperror.ErrMissingParam(name)
		}
	}

	merchantID, err := strconv.ParseInt(p["pid"], 10, 64)
	if err != nil {
		return nil, apperror.ErrInvalidParam("pid")
	}

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to load merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantMissing()
	}
	if !merchant.Active {
		return nil, apperror.ErrMerchantInactive()
	}

	if !s.signSvc.Verify(p, merchant.Key, p["sign"]) {
		return nil, apperror.ErrBadSign()
	}
	if p["type"] != s.payType {
		return nil, apperror.ErrInvalidParam("type")
	}

	amount, err := money.Parse(p["money"])
	if err != nil || amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	existing, err := s.orderRepo.GetByOutTradeNo(ctx, merchantID, p["out_trade_no"])
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to check out_trade_no: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateOrder()
	}

	bundle, err := s.resolver.ResolveForMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	unlock := s.state.Lock(bundle.ID)
	defer unlock()

	adjusted, err := s.adjustAmount(ctx, bundle.ID, amount)
	if err != nil {
		return nil, err
	}

	baseBalance := s.snapshotBalance(ctx, bundle)

	tradeNo, err := s.generateTradeNo(ctx)
	if err != nil {
		return nil, err
	}

	clientIP := p["clientip"]
	if clientIP == "" {
		clientIP = req.ClientIP
	}
	device := p["device"]
	if device == "" {
		device = req.Device
	}
	if device == "" {
		device = "pc"
	}

	order := &domain.Order{
		TradeNo:        tradeNo,
		OutTradeNo:     p["out_trade_no"],
		MerchantID:     merchantID,
		CredentialID:   bundle.ID,
		PayType:        s.payType,
		Name:           p["name"],
		OriginalAmount: amount,
		Amount:         adjusted,
		AdjustAmount:   adjusted - amount,
		Status:         domain.OrderStatusPending,
		NotifyURL:      p["notify_url"],
		ReturnURL:      p["return_url"],
		Param:          p["param"],
		ClientIP:       clientIP,
		Device:         device,
		BaseBalance:    baseBalance,
		CallbackStatus: domain.CallbackStatusNone,
		CreatedAt:      time.Now(),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to create order: %w", err))
	}

	s.log.Info().
		Str("trade_no", tradeNo).
		Int64("merchant_id", merchantID).
		Int64("credential_id", bundle.ID).
		Str("amount", adjusted.String()).
		Str("adjust", (adjusted - amount).String()).
		Msg("order created")

	return &ports.CreateOrderResponse{
		TradeNo: tradeNo,
		QRCode:  bundle.QRCodeURL,
		Amount:  adjusted,
	}, nil
}

// adjustAmount picks the smallest free amount in [amount, amount+99]
// cents among the credential's PENDING orders. Caller holds the
// credential lock.
func (s *OrderServiceImpl) adjustAmount(ctx context.Context, credentialID int64, amount money.Cents) (money.Cents, error) {
	taken, err := s.orderRepo.TakenAmounts(ctx, credentialID, amount, amount+amountAdjustMax)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("failed to load taken amounts: %w", err))
	}
	for k := money.Cents(0); k <= amountAdjustMax; k++ {
		if !taken[amount+k] {
			return amount + k, nil
		}
	}
	return 0, apperror.ErrAmountConflict()
}

// snapshotBalance records the wallet balance the reconciler will diff
// against. A failed query degrades to zero so order creation never
// blocks on the wallet API; the reconciler then sees the full balance
// as delta, which cannot false-positive because it only ever pays
// orders whose amounts sum exactly to the delta.
func (s *OrderServiceImpl) snapshotBalance(ctx context.Context, cred *domain.CredentialBundle) money.Cents {
	bal, err := s.wallet.QueryBalance(ctx, cred)
	if err != nil {
		s.log.Warn().Err(err).
			Int64("credential_id", cred.ID).
			Msg("balance snapshot failed, starting from zero")
		return 0
	}
	return bal.Available
}

// generateTradeNo builds a 26-digit trade number: a second timestamp,
// the microsecond fraction and six random digits. Collisions retry up
// to tradeNoMaxAttempts times.
func (s *OrderServiceImpl) generateTradeNo(ctx context.Context) (string, error) {
	for i := 0; i < tradeNoMaxAttempts; i++ {
		now := time.Now()
		suffix, err := randomDigits(6)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("failed to generate trade_no: %w", err))
		}
		tradeNo := now.Format("20060102150405") + fmt.Sprintf("%06d", now.Nanosecond()/1000) + suffix

		existing, err := s.orderRepo.GetByTradeNo(ctx, tradeNo)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("failed to check trade_no: %w", err))
		}
		if existing == nil {
			return tradeNo, nil
		}
	}
	return "", apperror.ErrTradeNoExhausted()
}

func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	digits := make([]byte, n)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return string(digits), nil
}

// GetByTradeNo loads a single order.
func (s *OrderServiceImpl) GetByTradeNo(ctx context.Context, tradeNo string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByTradeNo(ctx, tradeNo)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to load order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrOrderMissing()
	}
	return order, nil
}

// FindOrder locates an order by trade_no (preferred) or out_trade_no
// and verifies merchant ownership.
func (s *OrderServiceImpl) FindOrder(ctx context.Context, merchantID int64, tradeNo, outTradeNo string) (*domain.Order, error) {
	var (
		order *domain.Order
		err   error
	)
	switch {
	case tradeNo != "":
		order, err = s.orderRepo.GetByTradeNo(ctx, tradeNo)
	case outTradeNo != "":
		order, err = s.orderRepo.GetByOutTradeNo(ctx, merchantID, outTradeNo)
	default:
		return nil, apperror.ErrMissingParam("trade_no")
	}
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to load order: %w", err))
	}
	if order == nil || order.MerchantID != merchantID {
		return nil, apperror.ErrOrderMissing()
	}
	return order, nil
}

// AuthMerchant loads a merchant and compares the submitted plaintext
// key against the stored one.
func (s *OrderServiceImpl) AuthMerchant(ctx context.Context, merchantID int64, key string) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to load merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantMissing()
	}
	if subtle.ConstantTimeCompare([]byte(merchant.Key), []byte(key)) != 1 {
		return nil, apperror.ErrKeyMismatch()
	}
	return merchant, nil
}

// GetMerchantInfo returns the merchant row plus its order statistics.
func (s *OrderServiceImpl) GetMerchantInfo(ctx context.Context, merchantID int64) (*ports.MerchantInfo, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to load merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantMissing()
	}
	stats, err := s.merchantRepo.GetStats(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to load merchant stats: %w", err))
	}
	return &ports.MerchantInfo{Merchant: merchant, Stats: stats}, nil
}

// ExpireStale flips PENDING orders older than the order TTL to EXPIRED
// and returns the distinct credential ids that lost orders, so the
// caller can rebase their balance snapshots.
func (s *OrderServiceImpl) ExpireStale(ctx context.Context) ([]int64, error) {
	cutoff := time.Now().Add(-s.orderTTL)
	expired, err := s.orderRepo.ExpireStale(ctx, cutoff)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to expire stale orders: %w", err))
	}
	if len(expired) == 0 {
		return nil, nil
	}

	seen := make(map[int64]bool, len(expired))
	credentialIDs := make([]int64, 0, len(expired))
	for _, ref := range expired {
		s.log.Info().
			Str("trade_no", ref.TradeNo).
			Int64("credential_id", ref.CredentialID).
			Msg("order expired")
		if !seen[ref.CredentialID] {
			seen[ref.CredentialID] = true
			credentialIDs = append(credentialIDs, ref.CredentialID)
		}
	}
	return credentialIDs, nil
}

// Cancel manually expires a PENDING order and returns the expired
// order.
func (s *OrderServiceImpl) Cancel(ctx context.Context, tradeNo string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByTradeNo(ctx, tradeNo)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to load order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrOrderMissing()
	}
	if order.Status != domain.OrderStatusPending {
		return nil, apperror.ErrOrderNotPending()
	}

	ok, err := s.orderRepo.MarkExpired(ctx, tradeNo)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to expire order: %w", err))
	}
	if !ok {
		return nil, apperror.ErrOrderNotPending()
	}
	order.Status = domain.OrderStatusExpired

	s.log.Info().Str("trade_no", tradeNo).Msg("order cancelled")
	return order, nil
}
