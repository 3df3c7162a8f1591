package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	httpHandler "qrpay-gateway/internal/adapter/http/handler"
	redisStorage "qrpay-gateway/internal/adapter/storage/redis"
	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/internal/service"
	"qrpay-gateway/pkg/logger"
	"qrpay-gateway/pkg/money"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack: real services, handlers and
// middleware wired exactly like cmd/api, backed by in-memory repos, a
// miniredis rate-limit store and a scripted wallet. Background workers
// (sweeper, retry scanner) are not started; tests drive those passes
// explicitly to stay deterministic.

const (
	testAESKey      = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	testMerchantKey = "0123456789abcdef0123456789abcdef"
	testAdminUser   = "admin"
	testAdminPass   = "AdminPass123!"
)

type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis

	orders       *inMemoryOrderRepo
	merchants    *inMemoryMerchantRepo
	creds        *inMemoryCredentialRepo
	balanceLogs  *inMemoryBalanceLogRepo
	callbackLogs *inMemoryCallbackLogRepo
	wallet       *fakeWallet

	encSvc      ports.EncryptionService
	signSvc     ports.SignService
	orderSvc    ports.OrderService
	reconciler  ports.ReconcileService
	callbackSvc ports.CallbackService
	pollers     ports.PollerRegistry
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	log := logger.NewWithWriter("error", io.Discard)

	// In-memory repos
	orderRepo := newInMemoryOrderRepo()
	merchantRepo := newInMemoryMerchantRepo(orderRepo)
	credRepo := newInMemoryCredentialRepo()
	operatorRepo := newInMemoryOperatorRepo()
	balanceLogRepo := newInMemoryBalanceLogRepo()
	callbackLogRepo := newInMemoryCallbackLogRepo()
	transactor := newInMemoryTransactor()

	// Core services with real implementations
	encSvc, err := service.NewAESEncryptionService(testAESKey)
	require.NoError(t, err)
	signSvc := service.NewMD5SignService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "qrpay-test")

	walletClient := newFakeWallet(0)
	resolver := service.NewCredentialResolver(credRepo, encSvc)
	credState := service.NewCredentialState()

	// Business services, wired like cmd/api
	callbackSvc := service.NewCallbackService(
		orderRepo,
		merchantRepo,
		callbackLogRepo,
		signSvc,
		&http.Client{Timeout: 5 * time.Second},
		5*time.Second,
		log,
	)
	reconcileSvc := service.NewReconcileService(
		orderRepo,
		merchantRepo,
		balanceLogRepo,
		resolver,
		walletClient,
		credState,
		callbackSvc,
		transactor,
		log,
	)
	orderSvc := service.NewOrderService(
		orderRepo,
		merchantRepo,
		signSvc,
		resolver,
		walletClient,
		credState,
		"alipay",
		10*time.Minute,
		log,
	)
	// Pollers tick on an interval far beyond any test's lifetime so
	// reconcile passes only run when a test asks for one.
	pollers := service.NewPollerRegistry(orderRepo, reconcileSvc, time.Hour, time.Hour, log)
	adminSvc := service.NewAdminService(operatorRepo, merchantRepo, credRepo, balanceLogRepo, hashSvc, tokenSvc, encSvc, walletClient, log)

	require.NoError(t, adminSvc.EnsureOperator(context.Background(), testAdminUser, testAdminPass))

	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		OrderSvc:       orderSvc,
		ReconcileSvc:   reconcileSvc,
		CallbackSvc:    callbackSvc,
		AdminSvc:       adminSvc,
		CredResolver:   resolver,
		TokenSvc:       tokenSvc,
		Pollers:        pollers,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{redisHealth},
		Logger:         log,
	})

	return &testApp{
		server:       httptest.NewServer(router),
		redis:        mr,
		orders:       orderRepo,
		merchants:    merchantRepo,
		creds:        credRepo,
		balanceLogs:  balanceLogRepo,
		callbackLogs: callbackLogRepo,
		wallet:       walletClient,
		encSvc:       encSvc,
		signSvc:      signSvc,
		orderSvc:     orderSvc,
		reconciler:   reconcileSvc,
		callbackSvc:  callbackSvc,
		pollers:      pollers,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.pollers.StopAll()
	a.redis.Close()
}

// --- Merchant protocol ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_CreateOrder(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, cred := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "250.00"))

	body := app.createOrder(t, merchant, "SHOP-001", "1.00", map[string]string{
		"notify_url": "https://shop.example.com/notify",
		"param":      "color=red",
	})

	tradeNo := body["trade_no"].(string)
	assert.Regexp(t, regexp.MustCompile(`^\d{26}$`), tradeNo)
	assert.Equal(t, "1.00", body["money"])
	assert.Equal(t, cred.QRCodeURL, body["qrcode"])

	// Same declared amount again: the pending slot 1.00 is taken, so
	// the buyer is asked for the next free cent.
	body2 := app.createOrder(t, merchant, "SHOP-002", "1.00", nil)
	assert.Equal(t, "1.01", body2["money"])

	order, err := app.orders.GetByTradeNo(context.Background(), tradeNo)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, mustCents(t, "250.00"), order.BaseBalance)
	assert.Equal(t, "color=red", order.Param)
}

func TestIntegration_CreateOrder_Rejections(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, _ := app.seedMerchant(t)

	params := map[string]string{
		"pid":          strconv.FormatInt(merchant.ID, 10),
		"type":         "alipay",
		"out_trade_no": "SHOP-100",
		"name":         "tea",
		"money":        "9.99",
	}

	// Tampered amount after signing.
	form := app.signedForm(params, merchant.Key)
	form.Set("money", "0.01")
	body := postForm(t, app.server.URL+"/pay/create", form)
	assert.Equal(t, float64(-1), body["code"])
	assert.Equal(t, "signature mismatch", body["msg"])

	// Unknown pid.
	bad := map[string]string{
		"pid": "9999", "type": "alipay", "out_trade_no": "SHOP-101",
		"name": "tea", "money": "9.99",
	}
	body = postForm(t, app.server.URL+"/pay/create", app.signedForm(bad, merchant.Key))
	assert.Equal(t, float64(-1), body["code"])
	assert.Equal(t, "merchant not found", body["msg"])

	// Unsupported pay type.
	wrongType := map[string]string{
		"pid": strconv.FormatInt(merchant.ID, 10), "type": "wxpay",
		"out_trade_no": "SHOP-102", "name": "tea", "money": "9.99",
	}
	body = postForm(t, app.server.URL+"/pay/create", app.signedForm(wrongType, merchant.Key))
	assert.Equal(t, float64(-1), body["code"])

	// Replayed out_trade_no.
	app.createOrder(t, merchant, "SHOP-103", "2.00", nil)
	dup := map[string]string{
		"pid": strconv.FormatInt(merchant.ID, 10), "type": "alipay",
		"out_trade_no": "SHOP-103", "name": "tea", "money": "2.00",
	}
	body = postForm(t, app.server.URL+"/pay/create", app.signedForm(dup, merchant.Key))
	assert.Equal(t, float64(-1), body["code"])
	assert.Equal(t, "out_trade_no already used", body["msg"])

	// Missing sign_type: the signature base ignores it, presence is still
	// part of the form contract.
	noType := app.signedForm(map[string]string{
		"pid": strconv.FormatInt(merchant.ID, 10), "type": "alipay",
		"out_trade_no": "SHOP-104", "name": "tea", "money": "3.00",
	}, merchant.Key)
	noType.Del("sign_type")
	body = postForm(t, app.server.URL+"/pay/create", noType)
	assert.Equal(t, float64(-1), body["code"])
	assert.Equal(t, "missing parameter: sign_type", body["msg"])
}

func TestIntegration_AmountAdjustmentLadder(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, _ := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "500.00"))

	// Same requested amount five times in a row: each order must land on
	// the next free cent so pending amounts stay unique per credential.
	want := []string{"20.00", "20.01", "20.02", "20.03", "20.04"}
	for i, expected := range want {
		created := app.createOrder(t, merchant, fmt.Sprintf("SHOP-L%d", i), "20.00", nil)
		assert.Equal(t, expected, created["money"], "create %d", i)
	}
}

func TestIntegration_SingleOrderMatch(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, cred := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "1000.00"))

	created := app.createOrder(t, merchant, "SHOP-200", "10.00", nil)
	tradeNo := created["trade_no"].(string)

	// The buyer pays: the wallet balance jumps by exactly the order
	// amount. The merchant's next poll triggers the reconcile pass.
	app.wallet.set(mustCents(t, "1010.00"))

	body := app.queryOrder(t, merchant, url.Values{"trade_no": {tradeNo}})
	assert.Equal(t, float64(1), body["status"])
	assert.Equal(t, "10.00", body["money"])
	assert.NotEmpty(t, body["endtime"])

	order, err := app.orders.GetByTradeNo(context.Background(), tradeNo)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	require.NotNil(t, order.ConfirmBalance)
	assert.Equal(t, mustCents(t, "1010.00"), *order.ConfirmBalance)
	require.NotNil(t, order.PaidAt)

	fresh, err := app.merchants.GetByID(context.Background(), merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, mustCents(t, "10.00"), fresh.Balance)

	logs, err := app.balanceLogs.ListRecent(context.Background(), cred.ID, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "matched 1 orders: delta=10.00", logs[0].MatchResult)
	assert.Equal(t, tradeNo, logs[0].MatchedTradeNos)
}

func TestIntegration_MiddleOrderSubsetMatch(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, _ := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "2.24"))

	first := app.createOrder(t, merchant, "SHOP-300", "1.00", nil)
	// Declared 1.00 again; the adjustment books it as 1.01.
	second := app.createOrder(t, merchant, "SHOP-301", "1.00", nil)
	third := app.createOrder(t, merchant, "SHOP-302", "0.50", nil)
	require.Equal(t, "1.01", second["money"])

	// Delta 1.01 singles out the middle order; 1.00+0.50 overshoots
	// and no other subset sums exactly.
	app.wallet.set(mustCents(t, "3.25"))

	body := app.queryOrder(t, merchant, url.Values{"trade_no": {first["trade_no"].(string)}})
	assert.Equal(t, float64(0), body["status"], "first order must stay pending")

	assertOrderStatus(t, app, first["trade_no"].(string), domain.OrderStatusPending)
	assertOrderStatus(t, app, second["trade_no"].(string), domain.OrderStatusPaid)
	assertOrderStatus(t, app, third["trade_no"].(string), domain.OrderStatusPending)

	fresh, err := app.merchants.GetByID(context.Background(), merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, mustCents(t, "1.01"), fresh.Balance)
}

func TestIntegration_TwoOrderSubsetMatch(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, cred := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "1000.00"))

	first := app.createOrder(t, merchant, "SHOP-400", "10.00", nil)
	second := app.createOrder(t, merchant, "SHOP-401", "20.00", nil)

	// Both buyers paid before the next poll: one delta covers both.
	app.wallet.set(mustCents(t, "1030.00"))

	body := app.queryOrder(t, merchant, url.Values{"trade_no": {first["trade_no"].(string)}})
	assert.Equal(t, float64(1), body["status"])

	assertOrderStatus(t, app, first["trade_no"].(string), domain.OrderStatusPaid)
	assertOrderStatus(t, app, second["trade_no"].(string), domain.OrderStatusPaid)

	fresh, err := app.merchants.GetByID(context.Background(), merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, mustCents(t, "30.00"), fresh.Balance)

	logs, err := app.balanceLogs.ListRecent(context.Background(), cred.ID, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "matched 2 orders: delta=30.00", logs[0].MatchResult)
	assert.Contains(t, logs[0].MatchedTradeNos, first["trade_no"].(string))
	assert.Contains(t, logs[0].MatchedTradeNos, second["trade_no"].(string))
}

func TestIntegration_NegativeDelta_NoMatch(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, cred := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "1000.00"))

	created := app.createOrder(t, merchant, "SHOP-500", "10.00", nil)
	tradeNo := created["trade_no"].(string)

	// The wallet went down (a withdrawal): nothing may match.
	app.wallet.set(mustCents(t, "990.00"))

	body := app.queryOrder(t, merchant, url.Values{"trade_no": {tradeNo}})
	assert.Equal(t, float64(0), body["status"])

	assertOrderStatus(t, app, tradeNo, domain.OrderStatusPending)

	logs, err := app.balanceLogs.ListRecent(context.Background(), cred.ID, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "no positive change: delta=-10.00", logs[0].MatchResult)
}

func TestIntegration_WalletOutage_LogsQueryFailure(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, cred := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "1000.00"))

	created := app.createOrder(t, merchant, "SHOP-600", "10.00", nil)
	tradeNo := created["trade_no"].(string)

	app.wallet.fail(errors.New("gateway timeout"))

	body := app.queryOrder(t, merchant, url.Values{"trade_no": {tradeNo}})
	assert.Equal(t, float64(0), body["status"])

	assertOrderStatus(t, app, tradeNo, domain.OrderStatusPending)

	logs, err := app.balanceLogs.ListRecent(context.Background(), cred.ID, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "query failure", logs[0].MatchResult)
}

// --- Callbacks ---

func TestIntegration_CallbackDelivery_SignedParams(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sink := newCallbackSink()
	defer sink.close()

	merchant, _ := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "100.00"))

	created := app.createOrder(t, merchant, "SHOP-700", "3.33", map[string]string{
		"notify_url": sink.url(),
		"param":      "seat=12A",
	})
	tradeNo := created["trade_no"].(string)

	app.wallet.set(mustCents(t, "103.33"))
	app.queryOrder(t, merchant, url.Values{"trade_no": {tradeNo}})

	// The first attempt is dispatched asynchronously after the match.
	require.Eventually(t, func() bool {
		o, err := app.orders.GetByTradeNo(context.Background(), tradeNo)
		return err == nil && o.CallbackStatus == domain.CallbackStatusOK
	}, 5*time.Second, 20*time.Millisecond)

	calls := sink.calls()
	require.Len(t, calls, 1)
	got := calls[0]
	assert.Equal(t, strconv.FormatInt(merchant.ID, 10), got.Get("pid"))
	assert.Equal(t, tradeNo, got.Get("trade_no"))
	assert.Equal(t, "SHOP-700", got.Get("out_trade_no"))
	assert.Equal(t, "3.33", got.Get("money"))
	assert.Equal(t, "TRADE_SUCCESS", got.Get("trade_status"))
	assert.Equal(t, "seat=12A", got.Get("param"))
	assert.Equal(t, "MD5", got.Get("sign_type"))

	params := make(map[string]string, len(got))
	for k := range got {
		params[k] = got.Get(k)
	}
	assert.True(t, app.signSvc.Verify(params, merchant.Key, got.Get("sign")),
		"notify params must verify against the merchant key")
}

func TestIntegration_CallbackRetrySchedule(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// Three refusals, then an acknowledgement on the fourth attempt.
	sink := newCallbackSink("fail", "fail", "fail", "success")
	defer sink.close()

	merchant, _ := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "100.00"))

	created := app.createOrder(t, merchant, "SHOP-710", "5.00", map[string]string{
		"notify_url": sink.url(),
	})
	tradeNo := created["trade_no"].(string)

	app.wallet.set(mustCents(t, "105.00"))
	app.queryOrder(t, merchant, url.Values{"trade_no": {tradeNo}})

	// Wait for the async first attempt to finish, log row included.
	require.Eventually(t, func() bool {
		rows, err := app.callbackLogs.ListByTradeNo(context.Background(), tradeNo)
		return err == nil && len(rows) == 1
	}, 5*time.Second, 20*time.Millisecond)

	ctx := context.Background()

	order, err := app.orders.GetByTradeNo(ctx, tradeNo)
	require.NoError(t, err)
	assert.Equal(t, 1, order.CallbackAttempts)
	assert.Equal(t, domain.CallbackStatusInFlight, order.CallbackStatus)

	// Not yet due: attempt 2 waits 5s after paid_at.
	fired, err := app.callbackSvc.ScanRetries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	// Backdate past the first ladder step.
	app.orders.setPaidAt(tradeNo, time.Now().Add(-6*time.Second))
	fired, err = app.callbackSvc.ScanRetries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	order, err = app.orders.GetByTradeNo(ctx, tradeNo)
	require.NoError(t, err)
	assert.Equal(t, 2, order.CallbackAttempts)
	assert.Equal(t, domain.CallbackStatusInFlight, order.CallbackStatus)

	// Backdate past the second step (5s + 30s); third refusal.
	app.orders.setPaidAt(tradeNo, time.Now().Add(-36*time.Second))
	fired, err = app.callbackSvc.ScanRetries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	order, err = app.orders.GetByTradeNo(ctx, tradeNo)
	require.NoError(t, err)
	assert.Equal(t, 3, order.CallbackAttempts)
	assert.Equal(t, domain.CallbackStatusInFlight, order.CallbackStatus)

	// Backdate past the third step (5s + 30s + 60s); the sink acknowledges.
	app.orders.setPaidAt(tradeNo, time.Now().Add(-96*time.Second))
	fired, err = app.callbackSvc.ScanRetries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	order, err = app.orders.GetByTradeNo(ctx, tradeNo)
	require.NoError(t, err)
	assert.Equal(t, 4, order.CallbackAttempts)
	assert.Equal(t, domain.CallbackStatusOK, order.CallbackStatus)

	// Acknowledged orders drop off the retry scan.
	fired, err = app.callbackSvc.ScanRetries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	rows, err := app.callbackLogs.ListByTradeNo(ctx, tradeNo)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Attempt)
	}
}

// --- Query, status and pay page ---

func TestIntegration_QueryMerchantSnapshot(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, _ := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "50.00"))

	created := app.createOrder(t, merchant, "SHOP-800", "7.00", nil)
	app.wallet.set(mustCents(t, "57.00"))
	app.queryOrder(t, merchant, url.Values{"trade_no": {created["trade_no"].(string)}})

	q := url.Values{
		"act": {"query"},
		"pid": {strconv.FormatInt(merchant.ID, 10)},
		"key": {merchant.Key},
	}
	body := getJSON(t, app.server.URL+"/pay/query?"+q.Encode())
	assert.Equal(t, float64(1), body["code"])
	assert.Equal(t, merchant.Key, body["key"])
	assert.Equal(t, "7.00", body["money"])
	assert.Equal(t, float64(1), body["orders"])
	assert.Equal(t, float64(1), body["order_today"])

	// Wrong key is rejected before any lookup.
	q.Set("key", "ffffffffffffffffffffffffffffffff")
	body = getJSON(t, app.server.URL+"/pay/query?"+q.Encode())
	assert.Equal(t, float64(-1), body["code"])
	assert.Equal(t, "merchant key mismatch", body["msg"])
}

func TestIntegration_StatusAndPayPage(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, cred := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "10.00"))

	created := app.createOrder(t, merchant, "SHOP-900", "4.00", map[string]string{
		"return_url": "https://shop.example.com/return?order=SHOP-900",
	})
	tradeNo := created["trade_no"].(string)

	// The pay page polls the status probe; it never reconciles.
	body := getJSON(t, app.server.URL+"/pay/status/"+tradeNo)
	assert.Equal(t, float64(0), body["status"])
	assert.Equal(t, "pending", body["status_text"])

	page := getJSON(t, app.server.URL+"/pay/page/"+tradeNo)
	assert.Equal(t, cred.QRCodeURL, page["qrcode"])
	assert.Equal(t, "4.00", page["money"])
	assert.Nil(t, page["return_url"])

	app.wallet.set(mustCents(t, "14.00"))
	app.queryOrder(t, merchant, url.Values{"trade_no": {tradeNo}})

	body = getJSON(t, app.server.URL+"/pay/status/"+tradeNo)
	assert.Equal(t, float64(1), body["status"])
	assert.Equal(t, "paid", body["status_text"])

	page = getJSON(t, app.server.URL+"/pay/page/"+tradeNo)
	require.NotNil(t, page["return_url"])
	ret, err := url.Parse(page["return_url"].(string))
	require.NoError(t, err)
	assert.Equal(t, "SHOP-900", ret.Query().Get("order"), "existing query params survive the merge")
	assert.Equal(t, tradeNo, ret.Query().Get("trade_no"))
	assert.NotEmpty(t, ret.Query().Get("sign"))
}

// --- Ops API ---

func TestIntegration_AdminMerchantLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.adminLogin(t)
	app.wallet.set(mustCents(t, "500.00"))

	// Onboard a merchant and its wallet credential through the API.
	created := app.adminPost(t, token, "/admin/merchants", map[string]interface{}{
		"username":        "river_books",
		"settle_type":     "alipay",
		"settle_account":  "books@example.com",
		"settle_username": "Li Hua",
	}, http.StatusCreated)
	pid := int64(created["pid"].(float64))
	key := created["key"].(string)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), key)

	app.adminPost(t, token, "/admin/credentials", map[string]interface{}{
		"merchant_id": pid,
		"app_id":      "2021003100000002",
		"public_key":  "onboard-public-key",
		"private_key": "onboard-private-key",
		"qrcode_url":  "https://qr.alipay.com/fkx0000river",
	}, http.StatusCreated)

	// The fresh pid and key work on the merchant protocol.
	merchant := &domain.Merchant{ID: pid, Key: key}
	order := app.createOrder(t, merchant, "BOOK-001", "12.00", nil)
	assert.Equal(t, "12.00", order["money"])

	// Rotating the key invalidates the old one.
	rotated := app.adminPost(t, token, fmt.Sprintf("/admin/merchants/%d/rotate-key", pid), nil, http.StatusOK)
	newKey := rotated["key"].(string)
	require.NotEqual(t, key, newKey)

	stale := map[string]string{
		"pid": strconv.FormatInt(pid, 10), "type": "alipay",
		"out_trade_no": "BOOK-002", "name": "test goods", "money": "12.00",
	}
	body := postForm(t, app.server.URL+"/pay/create", app.signedForm(stale, key))
	assert.Equal(t, float64(-1), body["code"])

	merchant.Key = newKey
	app.createOrder(t, merchant, "BOOK-003", "13.00", nil)

	// Deactivation blocks order creation outright.
	app.adminPost(t, token, fmt.Sprintf("/admin/merchants/%d/active", pid), map[string]interface{}{
		"active": false,
	}, http.StatusOK)

	blocked := map[string]string{
		"pid": strconv.FormatInt(pid, 10), "type": "alipay",
		"out_trade_no": "BOOK-004", "name": "test goods", "money": "14.00",
	}
	body = postForm(t, app.server.URL+"/pay/create", app.signedForm(blocked, newKey))
	assert.Equal(t, float64(-1), body["code"])
	assert.Equal(t, "merchant is disabled", body["msg"])
}

func TestIntegration_AdminCancelOrder_RebasesSiblings(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, _ := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "100.00"))

	first := app.createOrder(t, merchant, "SHOP-910", "10.00", nil)
	second := app.createOrder(t, merchant, "SHOP-911", "20.00", nil)
	firstNo := first["trade_no"].(string)
	secondNo := second["trade_no"].(string)

	// The wallet moved since creation; the cancel must re-anchor the
	// surviving sibling at the current balance.
	app.wallet.set(mustCents(t, "130.00"))

	token := app.adminLogin(t)
	cancelled := app.adminPost(t, token, "/admin/orders/"+firstNo+"/cancel", nil, http.StatusOK)
	assert.Equal(t, "expired", cancelled["status"])

	assertOrderStatus(t, app, firstNo, domain.OrderStatusExpired)

	sibling, err := app.orders.GetByTradeNo(context.Background(), secondNo)
	require.NoError(t, err)
	assert.Equal(t, mustCents(t, "130.00"), sibling.BaseBalance)

	// Cancelling a terminal order is refused.
	resp := app.adminDo(t, token, http.MethodPost, "/admin/orders/"+firstNo+"/cancel", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestIntegration_AdminRenotify(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sink := newCallbackSink()
	defer sink.close()

	merchant, _ := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "100.00"))

	created := app.createOrder(t, merchant, "SHOP-920", "6.00", map[string]string{
		"notify_url": sink.url(),
	})
	tradeNo := created["trade_no"].(string)

	app.wallet.set(mustCents(t, "106.00"))
	app.queryOrder(t, merchant, url.Values{"trade_no": {tradeNo}})

	require.Eventually(t, func() bool {
		o, err := app.orders.GetByTradeNo(context.Background(), tradeNo)
		return err == nil && o.CallbackStatus == domain.CallbackStatusOK
	}, 5*time.Second, 20*time.Millisecond)

	token := app.adminLogin(t)
	body := app.adminPost(t, token, "/admin/orders/"+tradeNo+"/notify", nil, http.StatusOK)
	assert.Equal(t, float64(1), body["callback_status"])
	assert.Equal(t, float64(2), body["callback_attempts"])
	assert.Len(t, sink.calls(), 2)
}

func TestIntegration_AdminBalanceLogs(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	merchant, cred := app.seedMerchant(t)
	app.wallet.set(mustCents(t, "40.00"))

	created := app.createOrder(t, merchant, "SHOP-930", "8.00", nil)
	app.wallet.set(mustCents(t, "48.00"))
	app.queryOrder(t, merchant, url.Values{"trade_no": {created["trade_no"].(string)}})

	token := app.adminLogin(t)
	resp := app.adminDo(t, token, http.MethodGet,
		fmt.Sprintf("/admin/balance-logs?credential_id=%d&limit=10", cred.ID), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NotEmpty(t, envelope.Data)
	assert.Equal(t, "matched 1 orders: delta=8.00", envelope.Data[0]["match_result"])
}

func TestIntegration_JWT_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/admin/merchants")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/admin/merchants", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body))
	assert.Equal(t, "AUTH_003", body["error_code"])
}

func TestIntegration_AdminLogin_RateLimited(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// The login group allows 10 requests per minute per client. 22
	// requests span at most two fixed windows, so at least one must be
	// rejected even if the loop straddles a window boundary.
	payload, _ := json.Marshal(map[string]string{"username": "ghost", "password": "nope"})
	var limited int
	for i := 0; i < 22; i++ {
		resp, err := http.Post(app.server.URL+"/admin/login", "application/json", strings.NewReader(string(payload)))
		require.NoError(t, err)
		if resp.StatusCode == http.StatusTooManyRequests {
			if limited == 0 {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "RATE_001", body["error_code"])
				assert.NotEmpty(t, resp.Header.Get("Retry-After"))
			}
			limited++
		} else {
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		}
		resp.Body.Close()
	}
	assert.GreaterOrEqual(t, limited, 1, "rate limiter never fired")
}

// --- Helpers ---

// seedMerchant inserts an active merchant with one wallet credential
// straight into the repos, bypassing the ops API.
func (a *testApp) seedMerchant(t *testing.T) (*domain.Merchant, *domain.Credential) {
	t.Helper()
	ctx := context.Background()

	m := &domain.Merchant{
		Username:       "shop1",
		Key:            testMerchantKey,
		Active:         true,
		SettleType:     "alipay",
		SettleAccount:  "shop1@example.com",
		SettleUsername: "Wang Wei",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, a.merchants.Create(ctx, m))

	enc, err := a.encSvc.Encrypt("seed-private-key")
	require.NoError(t, err)
	cred := &domain.Credential{
		MerchantID:    m.ID,
		AppID:         "2021003100000001",
		PublicKey:     "seed-public-key",
		PrivateKeyEnc: enc,
		QRCodeURL:     "https://qr.alipay.com/fkx0000seed",
		Active:        true,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, a.creds.Create(ctx, cred))
	return m, cred
}

// signedForm signs the params with the merchant key and renders them as
// a form body.
func (a *testApp) signedForm(params map[string]string, key string) url.Values {
	signed := make(map[string]string, len(params)+2)
	for k, v := range params {
		signed[k] = v
	}
	signed["sign"] = a.signSvc.Sign(params, key)
	signed["sign_type"] = "MD5"

	form := url.Values{}
	for k, v := range signed {
		form.Set(k, v)
	}
	return form
}

// createOrder books an order through POST /pay/create and fails the
// test on a protocol error.
func (a *testApp) createOrder(t *testing.T, m *domain.Merchant, outTradeNo, amount string, extra map[string]string) map[string]interface{} {
	t.Helper()
	params := map[string]string{
		"pid":          strconv.FormatInt(m.ID, 10),
		"type":         "alipay",
		"out_trade_no": outTradeNo,
		"name":         "test goods",
		"money":        amount,
	}
	for k, v := range extra {
		params[k] = v
	}
	body := postForm(t, a.server.URL+"/pay/create", a.signedForm(params, m.Key))
	require.Equal(t, float64(1), body["code"], "create rejected: %v", body["msg"])
	return body
}

// queryOrder runs GET /pay/query?act=order (which reconciles pending
// orders inline) and returns the decoded body.
func (a *testApp) queryOrder(t *testing.T, m *domain.Merchant, extra url.Values) map[string]interface{} {
	t.Helper()
	q := url.Values{
		"act": {"order"},
		"pid": {strconv.FormatInt(m.ID, 10)},
		"key": {m.Key},
	}
	for k, vs := range extra {
		q[k] = vs
	}
	body := getJSON(t, a.server.URL+"/pay/query?"+q.Encode())
	require.Equal(t, float64(1), body["code"], "query rejected: %v", body["msg"])
	return body
}

func (a *testApp) adminLogin(t *testing.T) string {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{
		"username": testAdminUser,
		"password": testAdminPass,
	})
	resp, err := http.Post(a.server.URL+"/admin/login", "application/json", strings.NewReader(string(payload)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func (a *testApp) adminDo(t *testing.T, token, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// adminPost posts to an ops-API route, asserts the status and returns
// the data object of the envelope.
func (a *testApp) adminPost(t *testing.T, token, path string, payload map[string]interface{}, wantStatus int) map[string]interface{} {
	t.Helper()
	resp := a.adminDo(t, token, http.MethodPost, path, payload)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "ops API response: %s", string(raw))

	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope.Data
}

func postForm(t *testing.T, rawURL string, form url.Values) map[string]interface{} {
	t.Helper()
	resp, err := http.PostForm(rawURL, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func getJSON(t *testing.T, rawURL string) map[string]interface{} {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func assertOrderStatus(t *testing.T, app *testApp, tradeNo string, want domain.OrderStatus) {
	t.Helper()
	order, err := app.orders.GetByTradeNo(context.Background(), tradeNo)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, want, order.Status)
}

func mustCents(t *testing.T, s string) money.Cents {
	t.Helper()
	c, err := money.Parse(s)
	require.NoError(t, err)
	return c
}

// callbackSink plays the merchant's notify endpoint with scripted
// responses; once the script runs out it acknowledges with "success".
type callbackSink struct {
	srv     *httptest.Server
	mu      sync.Mutex
	replies []string
	got     []url.Values
}

func newCallbackSink(replies ...string) *callbackSink {
	s := &callbackSink{replies: replies}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		s.mu.Lock()
		s.got = append(s.got, r.PostForm)
		reply := "success"
		if len(s.replies) > 0 {
			reply = s.replies[0]
			s.replies = s.replies[1:]
		}
		s.mu.Unlock()
		fmt.Fprint(w, reply)
	}))
	return s
}

func (s *callbackSink) url() string { return s.srv.URL }

func (s *callbackSink) calls() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.got))
	copy(out, s.got)
	return out
}

func (s *callbackSink) close() { s.srv.Close() }
