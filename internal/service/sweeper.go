package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"qrpay-gateway/internal/core/ports"
)

// ExpirySweeper periodically expires stale PENDING orders. Pollers
// normally expire their own order at the lifetime deadline; the sweeper
// catches orders whose poller is gone, such as after a restart.
type ExpirySweeper struct {
	orders     ports.OrderService
	reconciler ports.ReconcileService
	interval   time.Duration
	log        zerolog.Logger
}

// NewExpirySweeper creates the stale order sweeper.
func NewExpirySweeper(
	orders ports.OrderService,
	reconciler ports.ReconcileService,
	interval time.Duration,
	log zerolog.Logger,
) *ExpirySweeper {
	return &ExpirySweeper{
		orders:     orders,
		reconciler: reconciler,
		interval:   interval,
		log:        log.With().Str("component", "expiry_sweeper").Logger(),
	}
}

// Run drives sweeps on a fixed interval until the context is cancelled.
func (w *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.log.Info().Dur("interval", w.interval).Msg("expiry sweeper started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("expiry sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpirySweeper) sweep(ctx context.Context) {
	credentialIDs, err := w.orders.ExpireStale(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("expiry sweep failed")
		return
	}
	if len(credentialIDs) == 0 {
		return
	}
	w.log.Info().Int("credentials", len(credentialIDs)).Msg("stale orders expired, rebasing snapshots")
	w.reconciler.RebaseAfterExpiry(ctx, credentialIDs)
}
