package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/internal/core/ports/mocks"
	"qrpay-gateway/pkg/money"
)

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

type reconcileSvcMocks struct {
	orderRepo      *mocks.MockOrderRepository
	merchantRepo   *mocks.MockMerchantRepository
	balanceLogRepo *mocks.MockBalanceLogRepository
	resolver       *mocks.MockCredentialResolver
	wallet         *mocks.MockWalletGateway
	callbacks      *mocks.MockCallbackService
	transactor     *mocks.MockDBTransactor
}

func newReconcileService(ctrl *gomock.Controller) (ports.ReconcileService, reconcileSvcMocks) {
	m := reconcileSvcMocks{
		orderRepo:      mocks.NewMockOrderRepository(ctrl),
		merchantRepo:   mocks.NewMockMerchantRepository(ctrl),
		balanceLogRepo: mocks.NewMockBalanceLogRepository(ctrl),
		resolver:       mocks.NewMockCredentialResolver(ctrl),
		wallet:         mocks.NewMockWalletGateway(ctrl),
		callbacks:      mocks.NewMockCallbackService(ctrl),
		transactor:     mocks.NewMockDBTransactor(ctrl),
	}
	svc := NewReconcileService(
		m.orderRepo, m.merchantRepo, m.balanceLogRepo, m.resolver, m.wallet,
		NewCredentialState(), m.callbacks, m.transactor, zerolog.Nop(),
	)
	return svc, m
}

func pendingOrder(tradeNo string, amount, base money.Cents) *domain.Order {
	return &domain.Order{
		TradeNo:      tradeNo,
		MerchantID:   7,
		CredentialID: 3,
		Amount:       amount,
		BaseBalance:  base,
		Status:       domain.OrderStatusPending,
	}
}

func TestReconcileService_CheckPayment_MatchesSingleOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newReconcileService(ctrl)
	bundle := &domain.CredentialBundle{ID: 3}
	order := pendingOrder("T1", 2000, 10000)

	m.orderRepo.EXPECT().GetByTradeNo(gomock.Any(), "T1").Return(order, nil).Times(2)
	m.resolver.EXPECT().ResolveByID(gomock.Any(), int64(3)).Return(bundle, nil)
	m.wallet.EXPECT().QueryBalance(gomock.Any(), bundle).
		Return(&ports.WalletBalance{Available: 12000}, nil)
	m.orderRepo.EXPECT().ListPendingByCredential(gomock.Any(), int64(3)).
		Return([]*domain.Order{order}, nil)

	tx := &mockTx{}
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.orderRepo.EXPECT().MarkPaid(gomock.Any(), tx, "T1", money.Cents(12000), "").Return(true, nil)
	m.merchantRepo.EXPECT().CreditBalance(gomock.Any(), tx, int64(7), money.Cents(2000)).Return(nil)

	var row *domain.BalanceLog
	m.balanceLogRepo.EXPECT().CreateInTx(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, l *domain.BalanceLog) error {
			row = l
			return nil
		})
	m.callbacks.EXPECT().Dispatch([]string{"T1"})

	paid, err := svc.CheckPayment(context.Background(), "T1")
	require.NoError(t, err)
	assert.True(t, paid)

	require.NotNil(t, row)
	assert.Equal(t, int64(3), row.CredentialID)
	assert.Equal(t, money.Cents(12000), row.Balance)
	assert.Equal(t, money.Cents(10000), row.BaseBalance)
	assert.Equal(t, money.Cents(2000), row.Delta)
	assert.Equal(t, "matched 1 orders: delta=20.00", row.MatchResult)
	assert.Equal(t, "T1", row.MatchedTradeNos)
}

func TestReconcileService_CheckPayment_MatchesMultipleOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newReconcileService(ctrl)
	bundle := &domain.CredentialBundle{ID: 3}
	o1 := pendingOrder("T1", 2000, 10000)
	o2 := pendingOrder("T2", 3001, 10000)

	m.orderRepo.EXPECT().GetByTradeNo(gomock.Any(), "T2").Return(o2, nil).Times(2)
	m.resolver.EXPECT().ResolveByID(gomock.Any(), int64(3)).Return(bundle, nil)
	m.wallet.EXPECT().QueryBalance(gomock.Any(), bundle).
		Return(&ports.WalletBalance{Available: 15001}, nil)
	m.orderRepo.EXPECT().ListPendingByCredential(gomock.Any(), int64(3)).
		Return([]*domain.Order{o1, o2}, nil)

	tx := &mockTx{}
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.orderRepo.EXPECT().MarkPaid(gomock.Any(), tx, "T1", money.Cents(15001), "").Return(true, nil)
	m.orderRepo.EXPECT().MarkPaid(gomock.Any(), tx, "T2", money.Cents(15001), "").Return(true, nil)
	m.merchantRepo.EXPECT().CreditBalance(gomock.Any(), tx, int64(7), money.Cents(2000)).Return(nil)
	m.merchantRepo.EXPECT().CreditBalance(gomock.Any(), tx, int64(7), money.Cents(3001)).Return(nil)
	m.balanceLogRepo.EXPECT().CreateInTx(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, l *domain.BalanceLog) error {
			assert.Equal(t, "matched 2 orders: delta=50.01", l.MatchResult)
			assert.Equal(t, "T1,T2", l.MatchedTradeNos)
			return nil
		})
	m.callbacks.EXPECT().Dispatch([]string{"T1", "T2"})

	paid, err := svc.CheckPayment(context.Background(), "T2")
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestReconcileService_CheckPayment_PrefersFewestOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newReconcileService(ctrl)
	bundle := &domain.CredentialBundle{ID: 3}
	o1 := pendingOrder("T1", 2000, 10000)
	o2 := pendingOrder("T2", 3000, 10000)
	o3 := pendingOrder("T3", 5000, 10000)

	m.orderRepo.EXPECT().GetByTradeNo(gomock.Any(), "T3").Return(o3, nil).Times(2)
	m.resolver.EXPECT().ResolveByID(gomock.Any(), int64(3)).Return(bundle, nil)
	m.wallet.EXPECT().QueryBalance(gomock.Any(), bundle).
		Return(&ports.WalletBalance{Available: 15000}, nil)
	m.orderRepo.EXPECT().ListPendingByCredential(gomock.Any(), int64(3)).
		Return([]*domain.Order{o1, o2, o3}, nil)

	tx := &mockTx{}
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.orderRepo.EXPECT().MarkPaid(gomock.Any(), tx, "T3", money.Cents(15000), "").Return(true, nil)
	m.merchantRepo.EXPECT().CreditBalance(gomock.Any(), tx, int64(7), money.Cents(5000)).Return(nil)
	m.balanceLogRepo.EXPECT().CreateInTx(gomock.Any(), tx, gomock.Any()).Return(nil)
	m.callbacks.EXPECT().Dispatch([]string{"T3"})

	paid, err := svc.CheckPayment(context.Background(), "T3")
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestReconcileService_CheckPayment_NoPositiveChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newReconcileService(ctrl)
	bundle := &domain.CredentialBundle{ID: 3}
	order := pendingOrder("T1", 2000, 10000)

	m.orderRepo.EXPECT().GetByTradeNo(gomock.Any(), "T1").Return(order, nil).Times(2)
	m.resolver.EXPECT().ResolveByID(gomock.Any(), int64(3)).Return(bundle, nil)
	m.wallet.EXPECT().QueryBalance(gomock.Any(), bundle).
		Return(&ports.WalletBalance{Available: 10000}, nil)
	m.orderRepo.EXPECT().ListPendingByCredential(gomock.Any(), int64(3)).
		Return([]*domain.Order{order}, nil)

	var row *domain.BalanceLog
	m.balanceLogRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, l *domain.BalanceLog) error {
			row = l
			return nil
		})

	paid, err := svc.CheckPayment(context.Background(), "T1")
	require.NoError(t, err)
	assert.False(t, paid)
	require.NotNil(t, row)
	assert.Equal(t, "no positive change: delta=0.00", row.MatchResult)
}

func TestReconcileService_CheckPayment_NoSubsetMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newReconcileService(ctrl)
	bundle := &domain.CredentialBundle{ID: 3}
	order := pendingOrder("T1", 2000, 10000)

	m.orderRepo.EXPECT().GetByTradeNo(gomock.Any(), "T1").Return(order, nil).Times(2)
	m.resolver.EXPECT().ResolveByID(gomock.Any(), int64(3)).Return(bundle, nil)
	m.wallet.EXPECT().QueryBalance(gomock.Any(), bundle).
		Return(&ports.WalletBalance{Available: 11500}, nil)
	m.orderRepo.EXPECT().ListPendingByCredential(gomock.Any(), int64(3)).
		Return([]*domain.Order{order}, nil)

	var row *domain.BalanceLog
	m.balanceLogRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, l *domain.BalanceLog) error {
			row = l
			return nil
		})

	paid, err := svc.CheckPayment(context.Background(), "T1")
	require.NoError(t, err)
	assert.False(t, paid)
	require.NotNil(t, row)
	assert.Equal(t, "no subset match: delta=15.00", row.MatchResult)
}

func TestReconcileService_CheckPayment_QueryFailureRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newReconcileService(ctrl)
	bundle := &domain.CredentialBundle{ID: 3}
	order := pendingOrder("T1", 2000, 10000)

	m.orderRepo.EXPECT().GetByTradeNo(gomock.Any(), "T1").Return(order, nil).Times(2)
	m.resolver.EXPECT().ResolveByID(gomock.Any(), int64(3)).Return(bundle, nil)
	m.wallet.EXPECT().QueryBalance(gomock.Any(), bundle).
		Return(nil, errors.New("gateway timeout"))

	var row *domain.BalanceLog
	m.balanceLogRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, l *domain.BalanceLog) error {
			row = l
			return nil
		})

	paid, err := svc.CheckPayment(context.Background(), "T1")
	require.NoError(t, err)
	assert.False(t, paid)
	require.NotNil(t, row)
	assert.Equal(t, "query failure", row.MatchResult)
}

func TestReconcileService_CheckPayment_AlreadyPaid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newReconcileService(ctrl)
	m.orderRepo.EXPECT().GetByTradeNo(gomock.Any(), "T1").
		Return(&domain.Order{TradeNo: "T1", Status: domain.OrderStatusPaid}, nil)

	paid, err := svc.CheckPayment(context.Background(), "T1")
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestReconcileService_CheckPayment_OrderMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newReconcileService(ctrl)
	m.orderRepo.EXPECT().GetByTradeNo(gomock.Any(), "T1").Return(nil, nil)

	paid, err := svc.CheckPayment(context.Background(), "T1")
	require.NoError(t, err)
	assert.False(t, paid)
}

func TestReconcileService_CheckPayment_GuardMissAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newReconcileService(ctrl)
	bundle := &domain.CredentialBundle{ID: 3}
	order := pendingOrder("T1", 2000, 10000)

	m.orderRepo.EXPECT().GetByTradeNo(gomock.Any(), "T1").Return(order, nil).Times(2)
	m.resolver.EXPECT().ResolveByID(gomock.Any(), int64(3)).Return(bundle, nil)
	m.wallet.EXPECT().QueryBalance(gomock.Any(), bundle).
		Return(&ports.WalletBalance{Available: 12000}, nil)
	m.orderRepo.EXPECT().ListPendingByCredential(gomock.Any(), int64(3)).
		Return([]*domain.Order{order}, nil)

	tx := &mockTx{}
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.orderRepo.EXPECT().MarkPaid(gomock.Any(), tx, "T1", money.Cents(12000), "").Return(false, nil)

	paid, err := svc.CheckPayment(context.Background(), "T1")
	require.NoError(t, err)
	assert.False(t, paid)
}

func TestReconcileService_RebaseAfterExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newReconcileService(ctrl)
	b3 := &domain.CredentialBundle{ID: 3}
	b5 := &domain.CredentialBundle{ID: 5}

	m.resolver.EXPECT().ResolveByID(gomock.Any(), int64(3)).Return(b3, nil)
	m.wallet.EXPECT().QueryBalance(gomock.Any(), b3).
		Return(&ports.WalletBalance{Available: 7000}, nil)
	m.orderRepo.EXPECT().RebaseBaseBalance(gomock.Any(), int64(3), money.Cents(7000)).
		Return(int64(2), nil)

	m.resolver.EXPECT().ResolveByID(gomock.Any(), int64(5)).Return(b5, nil)
	m.wallet.EXPECT().QueryBalance(gomock.Any(), b5).
		Return(nil, errors.New("gateway timeout"))

	svc.RebaseAfterExpiry(context.Background(), []int64{3, 5})
}

func TestSubsetSum(t *testing.T) {
	tests := []struct {
		name    string
		amounts []money.Cents
		target  money.Cents
		want    []int
	}{
		{"single exact", []money.Cents{2000, 3000}, 3000, []int{1}},
		{"pair", []money.Cents{2000, 3001}, 5001, []int{0, 1}},
		{"prefers fewest", []money.Cents{2000, 3000, 5000}, 5000, []int{2}},
		{"no match", []money.Cents{2000, 3000}, 2500, nil},
		{"all orders", []money.Cents{100, 200, 300}, 600, []int{0, 1, 2}},
		{"empty", nil, 100, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subsetSum(tt.amounts, tt.target))
		})
	}
}
