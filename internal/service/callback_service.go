package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/pkg/apperror"
)

// callbackRetryIntervals is the wait ladder between notification
// attempts, measured from the moment the order was paid. With the six
// attempt cap a callback is retried for roughly 37 minutes.
var callbackRetryIntervals = []time.Duration{
	5 * time.Second,
	30 * time.Second,
	60 * time.Second,
	300 * time.Second,
	1800 * time.Second,
}

const (
	// callbackMaxAttempts caps total deliveries per order, the first
	// attempt included.
	callbackMaxAttempts = 6
	// callbackResponseLimit truncates stored response bodies.
	callbackResponseLimit = 2000
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CallbackServiceImpl implements ports.CallbackService. A delivery
// succeeds only when the merchant answers with the literal body
// "success"; anything else is retried on the ladder above until the
// attempt cap.
type CallbackServiceImpl struct {
	orderRepo       ports.OrderRepository
	merchantRepo    ports.MerchantRepository
	callbackLogRepo ports.CallbackLogRepository
	signSvc         ports.SignService
	httpClient      HTTPClient
	timeout         time.Duration
	log             zerolog.Logger
}

// NewCallbackService creates the merchant notification service.
func NewCallbackService(
	orderRepo ports.OrderRepository,
	merchantRepo ports.MerchantRepository,
	callbackLogRepo ports.CallbackLogRepository,
	signSvc ports.SignService,
	httpClient HTTPClient,
	timeout time.Duration,
	log zerolog.Logger,
) *CallbackServiceImpl {
	return &CallbackServiceImpl{
		orderRepo:       orderRepo,
		merchantRepo:    merchantRepo,
		callbackLogRepo: callbackLogRepo,
		signSvc:         signSvc,
		httpClient:      httpClient,
		timeout:         timeout,
		log:             log,
	}
}

// Notify performs one synchronous delivery attempt and returns the
// refreshed order. The attempt counter is persisted before the HTTP
// call so a crash mid-delivery can never repeat an attempt number.
func (s *CallbackServiceImpl) Notify(ctx context.Context, tradeNo string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByTradeNo(ctx, tradeNo)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to load order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrOrderMissing()
	}
	if !order.CanNotify() {
		return nil, apperror.ErrCallbackNotAllowed()
	}
	if order.Status == domain.OrderStatusPending {
		s.log.Warn().
			Str("trade_no", tradeNo).
			Msg("notifying an order that is not paid yet")
	}

	merchant, err := s.merchantRepo.GetByID(ctx, order.MerchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to load merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantMissing()
	}

	attempt := order.CallbackAttempts + 1
	if err := s.orderRepo.UpdateCallbackState(ctx, tradeNo, domain.CallbackStatusInFlight, attempt); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to persist callback attempt: %w", err))
	}

	params := s.buildNotifyParams(order)
	params["sign"] = s.signSvc.Sign(params, merchant.Key)

	status, body, deliverErr := s.deliver(ctx, order.NotifyURL, params)

	logRow := &domain.CallbackLog{
		TradeNo:    tradeNo,
		Attempt:    attempt,
		URL:        order.NotifyURL,
		HTTPStatus: status,
		Response:   body,
		CreatedAt:  time.Now(),
	}
	if deliverErr != nil {
		logRow.Response = truncate(deliverErr.Error(), callbackResponseLimit)
	}
	if err := s.callbackLogRepo.Create(ctx, logRow); err != nil {
		s.log.Warn().Err(err).Str("trade_no", tradeNo).Msg("callback: failed to record attempt")
	}

	switch {
	case deliverErr == nil && strings.TrimSpace(body) == "success":
		if err := s.orderRepo.UpdateCallbackState(ctx, tradeNo, domain.CallbackStatusOK, attempt); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("failed to persist callback result: %w", err))
		}
		s.log.Info().Str("trade_no", tradeNo).Int("attempt", attempt).Msg("callback: merchant acknowledged")
	case attempt >= callbackMaxAttempts:
		if err := s.orderRepo.UpdateCallbackState(ctx, tradeNo, domain.CallbackStatusFailed, attempt); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("failed to persist callback result: %w", err))
		}
		s.log.Error().Str("trade_no", tradeNo).Int("attempt", attempt).Msg("callback: all attempts exhausted")
	default:
		// Stays in-flight; the retry scanner picks it up once its slot
		// on the ladder is due.
		s.log.Warn().Err(deliverErr).
			Str("trade_no", tradeNo).
			Int("attempt", attempt).
			Int("http_status", status).
			Msg("callback: delivery not acknowledged")
	}

	refreshed, err := s.orderRepo.GetByTradeNo(ctx, tradeNo)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to reload order: %w", err))
	}
	return refreshed, nil
}

// deliver POSTs the signed params as a form and returns the HTTP status
// and the (truncated) response body.
func (s *CallbackServiceImpl) deliver(ctx context.Context, notifyURL string, params map[string]string) (int, string, error) {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("delivery failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, callbackResponseLimit))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, string(body), nil
}

// Dispatch fires asynchronous first attempts for freshly matched
// orders. Failures are retried by the scanner, so errors are only
// logged.
func (s *CallbackServiceImpl) Dispatch(tradeNos []string) {
	for _, tradeNo := range tradeNos {
		go func(no string) {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			if _, err := s.Notify(ctx, no); err != nil {
				s.log.Warn().Err(err).Str("trade_no", no).Msg("callback: dispatch failed")
			}
		}(tradeNo)
	}
}

// ScanRetries issues every due retry and reports how many fired. An
// attempt n retry is due once the time since the order was paid covers
// the first n ladder intervals.
func (s *CallbackServiceImpl) ScanRetries(ctx context.Context) (int, error) {
	orders, err := s.orderRepo.ListCallbackRetryable(ctx, callbackMaxAttempts)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("failed to list retryable callbacks: %w", err))
	}

	fired := 0
	now := time.Now()
	for _, order := range orders {
		retryIdx := order.CallbackAttempts - 1
		if retryIdx < 0 || retryIdx >= len(callbackRetryIntervals) {
			continue
		}

		base := order.CreatedAt
		if order.PaidAt != nil {
			base = *order.PaidAt
		}
		var wait time.Duration
		for i := 0; i <= retryIdx; i++ {
			wait += callbackRetryIntervals[i]
		}
		if now.Sub(base) < wait {
			continue
		}

		if _, err := s.Notify(ctx, order.TradeNo); err != nil {
			s.log.Warn().Err(err).Str("trade_no", order.TradeNo).Msg("callback: retry failed")
			continue
		}
		fired++
	}
	return fired, nil
}

// RunRetryScanner drives ScanRetries on a fixed interval until the
// context is cancelled.
func (s *CallbackServiceImpl) RunRetryScanner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.log.Info().Dur("interval", interval).Msg("callback: retry scanner started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("callback: retry scanner stopped")
			return
		case <-ticker.C:
			n, err := s.ScanRetries(ctx)
			if err != nil {
				s.log.Warn().Err(err).Msg("callback: retry scan failed")
				continue
			}
			if n > 0 {
				s.log.Info().Int("fired", n).Msg("callback: retries dispatched")
			}
		}
	}
}

// BuildReturnURL merges the signed notify params into the order's
// return URL for the buyer-side redirect. Existing query values are
// kept first-value only; notify params win on conflict.
func (s *CallbackServiceImpl) BuildReturnURL(order *domain.Order, merchant *domain.Merchant) (string, error) {
	if order.ReturnURL == "" {
		return "", nil
	}
	u, err := url.Parse(order.ReturnURL)
	if err != nil {
		return "", apperror.ErrInvalidParam("return_url")
	}

	merged := url.Values{}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			merged.Set(k, vs[0])
		}
	}

	params := s.buildNotifyParams(order)
	params["sign"] = s.signSvc.Sign(params, merchant.Key)
	for k, v := range params {
		merged.Set(k, v)
	}

	u.RawQuery = merged.Encode()
	return u.String(), nil
}

func (s *CallbackServiceImpl) buildNotifyParams(order *domain.Order) map[string]string {
	return map[string]string{
		"pid":          strconv.FormatInt(order.MerchantID, 10),
		"trade_no":     order.TradeNo,
		"out_trade_no": order.OutTradeNo,
		"type":         order.PayType,
		"name":         order.Name,
		"money":        order.Amount.String(),
		"trade_status": "TRADE_SUCCESS",
		"param":        order.Param,
		"sign_type":    "MD5",
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
