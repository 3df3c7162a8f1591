package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/pkg/apperror"
	"qrpay-gateway/pkg/money"
)

// consecutiveFailureWarn is the failure streak after which a
// credential's wallet queries are flagged in the log.
const consecutiveFailureWarn = 3

// ReconcileServiceImpl implements ports.ReconcileService. It attributes
// wallet balance increases to pending orders: the delta between the
// current available balance and the snapshot taken at order creation
// must equal the sum of some subset of pending amounts, which are
// unique per credential by construction.
type ReconcileServiceImpl struct {
	orderRepo      ports.OrderRepository
	merchantRepo   ports.MerchantRepository
	balanceLogRepo ports.BalanceLogRepository
	resolver       ports.CredentialResolver
	wallet         ports.WalletGateway
	state          *CredentialState
	callbacks      ports.CallbackService
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewReconcileService creates the balance reconciliation service.
func NewReconcileService(
	orderRepo ports.OrderRepository,
	merchantRepo ports.MerchantRepository,
	balanceLogRepo ports.BalanceLogRepository,
	resolver ports.CredentialResolver,
	wallet ports.WalletGateway,
	state *CredentialState,
	callbacks ports.CallbackService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) ports.ReconcileService {
	return &ReconcileServiceImpl{
		orderRepo:      orderRepo,
		merchantRepo:   merchantRepo,
		balanceLogRepo: balanceLogRepo,
		resolver:       resolver,
		wallet:         wallet,
		state:          state,
		callbacks:      callbacks,
		transactor:     transactor,
		log:            log.With().Str("component", "reconcile_service").Logger(),
	}
}

// CheckPayment runs one reconcile pass for the order's credential and
// reports whether the order itself got matched. A pass that matches
// nothing is not an error: the poller keeps calling until the order
// pays or expires.
func (s *ReconcileServiceImpl) CheckPayment(ctx context.Context, tradeNo string) (bool, error) {
	order, err := s.orderRepo.GetByTradeNo(ctx, tradeNo)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("failed to load order: %w", err))
	}
	if order == nil {
		return false, nil
	}
	if order.IsTerminal() {
		return order.Status == domain.OrderStatusPaid, nil
	}

	unlock := s.state.Lock(order.CredentialID)
	defer unlock()

	// Another poller may have finished the pass while we waited on the
	// lock.
	order, err = s.orderRepo.GetByTradeNo(ctx, tradeNo)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("failed to reload order: %w", err))
	}
	if order == nil || order.Status == domain.OrderStatusExpired {
		return false, nil
	}
	if order.Status == domain.OrderStatusPaid {
		return true, nil
	}

	matched, err := s.reconcileCredential(ctx, order.CredentialID)
	if err != nil {
		return false, err
	}
	for _, no := range matched {
		if no == tradeNo {
			return true, nil
		}
	}
	return false, nil
}

// reconcileCredential performs one balance check for the credential and
// commits any exact subset match. Caller holds the credential lock.
// Returns the matched trade numbers.
func (s *ReconcileServiceImpl) reconcileCredential(ctx context.Context, credentialID int64) ([]string, error) {
	bundle, err := s.resolver.ResolveByID(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	bal, err := s.wallet.QueryBalance(ctx, bundle)
	if err != nil {
		streak := s.state.RecordFailure(credentialID)
		evt := s.log.Warn().Err(err).Int64("credential_id", credentialID).Int("streak", streak)
		if streak >= consecutiveFailureWarn {
			evt.Msg("wallet balance query keeps failing")
		} else {
			evt.Msg("wallet balance query failed")
		}
		s.record(ctx, &domain.BalanceLog{
			CredentialID: credentialID,
			MatchResult:  domain.MatchResultQueryFailure,
		})
		return nil, nil
	}
	s.state.ResetFailures(credentialID)

	pending, err := s.orderRepo.ListPendingByCredential(ctx, credentialID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to list pending orders: %w", err))
	}
	if len(pending) == 0 {
		s.record(ctx, &domain.BalanceLog{
			CredentialID: credentialID,
			Balance:      bal.Available,
			MatchResult:  domain.MatchResultNoPending,
		})
		return nil, nil
	}

	base := pending[0].BaseBalance
	delta := bal.Available - base
	if delta <= 0 {
		s.record(ctx, &domain.BalanceLog{
			CredentialID: credentialID,
			Balance:      bal.Available,
			BaseBalance:  base,
			Delta:        delta,
			MatchResult:  fmt.Sprintf("%s: delta=%s", domain.MatchResultNoPositiveChange, delta),
		})
		return nil, nil
	}

	amounts := make([]money.Cents, len(pending))
	for i, o := range pending {
		amounts[i] = o.Amount
	}
	idx := subsetSum(amounts, delta)
	if idx == nil {
		s.record(ctx, &domain.BalanceLog{
			CredentialID: credentialID,
			Balance:      bal.Available,
			BaseBalance:  base,
			Delta:        delta,
			MatchResult:  fmt.Sprintf("%s: delta=%s", domain.MatchResultNoSubset, delta),
		})
		return nil, nil
	}

	matched, err := s.commitMatch(ctx, credentialID, pending, idx, bal.Available, base, delta)
	if err != nil {
		return nil, err
	}
	if matched != nil {
		s.callbacks.Dispatch(matched)
	}
	return matched, nil
}

// commitMatch pays the matched orders, credits their merchants and
// appends the audit row, all in one transaction.
func (s *ReconcileServiceImpl) commitMatch(
	ctx context.Context,
	credentialID int64,
	pending []*domain.Order,
	idx []int,
	available, base, delta money.Cents,
) ([]string, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	matched := make([]string, 0, len(idx))
	for _, i := range idx {
		o := pending[i]
		ok, err := s.orderRepo.MarkPaid(ctx, dbTx, o.TradeNo, available, "")
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("failed to mark order paid: %w", err))
		}
		if !ok {
			s.log.Warn().Str("trade_no", o.TradeNo).Msg("order left pending state mid-match, aborting")
			return nil, nil
		}
		if err := s.merchantRepo.CreditBalance(ctx, dbTx, o.MerchantID, o.Amount); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("failed to credit merchant: %w", err))
		}
		matched = append(matched, o.TradeNo)
	}

	if err := s.balanceLogRepo.CreateInTx(ctx, dbTx, &domain.BalanceLog{
		CredentialID:    credentialID,
		Balance:         available,
		BaseBalance:     base,
		Delta:           delta,
		MatchResult:     fmt.Sprintf("%s %d orders: delta=%s", domain.MatchResultMatched, len(matched), delta),
		MatchedTradeNos: strings.Join(matched, ","),
		CreatedAt:       time.Now(),
	}); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to record match: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to commit match: %w", err))
	}

	s.log.Info().
		Int64("credential_id", credentialID).
		Str("delta", delta.String()).
		Strs("trade_nos", matched).
		Msg("payment matched")
	return matched, nil
}

// record appends a reconcile audit row. Failures are logged and
// swallowed so a broken audit trail never blocks matching.
func (s *ReconcileServiceImpl) record(ctx context.Context, row *domain.BalanceLog) {
	row.CreatedAt = time.Now()
	if err := s.balanceLogRepo.Create(ctx, row); err != nil {
		s.log.Warn().Err(err).
			Int64("credential_id", row.CredentialID).
			Msg("failed to record balance check")
	}
}

// RebaseAfterExpiry re-snapshots base_balance on the remaining PENDING
// orders of each credential. Without this, money received for an order
// that later expired would stay in the delta forever and block every
// future match.
func (s *ReconcileServiceImpl) RebaseAfterExpiry(ctx context.Context, credentialIDs []int64) {
	for _, id := range credentialIDs {
		s.rebaseCredential(ctx, id)
	}
}

func (s *ReconcileServiceImpl) rebaseCredential(ctx context.Context, credentialID int64) {
	unlock := s.state.Lock(credentialID)
	defer unlock()

	bundle, err := s.resolver.ResolveByID(ctx, credentialID)
	if err != nil {
		s.log.Warn().Err(err).Int64("credential_id", credentialID).Msg("rebase skipped, credential unavailable")
		return
	}
	bal, err := s.wallet.QueryBalance(ctx, bundle)
	if err != nil {
		s.log.Warn().Err(err).Int64("credential_id", credentialID).Msg("rebase skipped, balance query failed")
		return
	}
	n, err := s.orderRepo.RebaseBaseBalance(ctx, credentialID, bal.Available)
	if err != nil {
		s.log.Warn().Err(err).Int64("credential_id", credentialID).Msg("rebase failed")
		return
	}
	s.log.Info().
		Int64("credential_id", credentialID).
		Int64("orders", n).
		Str("base", bal.Available.String()).
		Msg("pending base balance rebased")
}

// subsetSum finds the smallest set of indices whose amounts sum exactly
// to target. Amounts are unique per credential, so a solution, when one
// exists, identifies the paid orders unambiguously at each cardinality.
// Returns nil when no subset fits.
func subsetSum(amounts []money.Cents, target money.Cents) []int {
	var best []int
	var path []int

	var dfs func(start int, remaining money.Cents)
	dfs = func(start int, remaining money.Cents) {
		if remaining == 0 {
			if best == nil || len(path) < len(best) {
				best = append([]int(nil), path...)
			}
			return
		}
		// Any completion needs at least one more pick.
		if best != nil && len(path)+1 >= len(best) {
			return
		}
		for i := start; i < len(amounts); i++ {
			if amounts[i] > remaining {
				continue
			}
			path = append(path, i)
			dfs(i+1, remaining-amounts[i])
			path = path[:len(path)-1]
			if len(best) == 1 {
				return
			}
		}
	}
	dfs(0, target)
	return best
}
