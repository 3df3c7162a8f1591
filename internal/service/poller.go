package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"qrpay-gateway/internal/core/ports"
)

// PollerRegistryImpl implements ports.PollerRegistry: one goroutine per
// PENDING order that drives reconcile passes every interval until the
// order pays, expires or the lifetime runs out.
type PollerRegistryImpl struct {
	orderRepo  ports.OrderRepository
	reconciler ports.ReconcileService
	interval   time.Duration
	lifetime   time.Duration
	log        zerolog.Logger

	mu     sync.Mutex
	active map[string]context.CancelFunc
	wg     sync.WaitGroup
}

// NewPollerRegistry creates the per-order poller registry.
func NewPollerRegistry(
	orderRepo ports.OrderRepository,
	reconciler ports.ReconcileService,
	interval, lifetime time.Duration,
	log zerolog.Logger,
) ports.PollerRegistry {
	return &PollerRegistryImpl{
		orderRepo:  orderRepo,
		reconciler: reconciler,
		interval:   interval,
		lifetime:   lifetime,
		log:        log.With().Str("component", "poller").Logger(),
		active:     make(map[string]context.CancelFunc),
	}
}

// Start launches a poller for the trade number. Starting an already
// polled order is a no-op.
func (p *PollerRegistryImpl) Start(tradeNo string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.active[tradeNo]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.active[tradeNo] = cancel
	p.wg.Add(1)
	go p.poll(ctx, tradeNo)
}

func (p *PollerRegistryImpl) poll(ctx context.Context, tradeNo string) {
	defer p.wg.Done()
	defer p.remove(tradeNo)

	deadline := time.NewTimer(p.lifetime)
	defer deadline.Stop()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Debug().Str("trade_no", tradeNo).Msg("poller started")

	for {
		select {
		case <-ctx.Done():
			p.log.Debug().Str("trade_no", tradeNo).Msg("poller cancelled")
			return
		case <-deadline.C:
			p.expire(tradeNo)
			return
		case <-ticker.C:
			order, err := p.orderRepo.GetByTradeNo(ctx, tradeNo)
			if err != nil {
				p.log.Warn().Err(err).Str("trade_no", tradeNo).Msg("poll tick failed to load order")
				continue
			}
			if order == nil {
				p.log.Warn().Str("trade_no", tradeNo).Msg("polled order vanished")
				return
			}
			if order.IsTerminal() {
				p.log.Debug().Str("trade_no", tradeNo).Msg("order settled elsewhere, poller exiting")
				return
			}

			paid, err := p.reconciler.CheckPayment(ctx, tradeNo)
			if err != nil {
				p.log.Warn().Err(err).Str("trade_no", tradeNo).Msg("reconcile pass failed")
				continue
			}
			if paid {
				p.log.Info().Str("trade_no", tradeNo).Msg("order paid, poller exiting")
				return
			}
		}
	}
}

// expire flips the order to EXPIRED once the poll lifetime ran out and
// rebases the credential's remaining pending orders. Runs on its own
// context so registry shutdown cannot interrupt it halfway.
func (p *PollerRegistryImpl) expire(tradeNo string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	order, err := p.orderRepo.GetByTradeNo(ctx, tradeNo)
	if err != nil {
		p.log.Warn().Err(err).Str("trade_no", tradeNo).Msg("expiry failed to load order")
		return
	}
	if order == nil || order.IsTerminal() {
		return
	}

	ok, err := p.orderRepo.MarkExpired(ctx, tradeNo)
	if err != nil {
		p.log.Warn().Err(err).Str("trade_no", tradeNo).Msg("expiry failed")
		return
	}
	if !ok {
		return
	}

	p.log.Info().Str("trade_no", tradeNo).Msg("order expired after poll lifetime")
	p.reconciler.RebaseAfterExpiry(ctx, []int64{order.CredentialID})
}

func (p *PollerRegistryImpl) remove(tradeNo string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, tradeNo)
}

// Cancel stops the order's poller if one is running. The goroutine
// unregisters itself on exit.
func (p *PollerRegistryImpl) Cancel(tradeNo string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cancel, ok := p.active[tradeNo]; ok {
		cancel()
	}
}

// Active returns the number of running pollers.
func (p *PollerRegistryImpl) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// StopAll cancels every poller and waits for the goroutines to drain.
func (p *PollerRegistryImpl) StopAll() {
	p.mu.Lock()
	for _, cancel := range p.active {
		cancel()
	}
	p.mu.Unlock()
	p.wg.Wait()
}
