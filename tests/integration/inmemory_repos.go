package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/pkg/money"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory implementations of the storage ports. They reproduce the
// SQL semantics the services rely on: the status guards on state
// flips, the pending-amount uniqueness constraint and the visit
// orderings. Reads return copies so concurrent scenarios stay race
// free.

// --- Orders ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	nextID int64
	orders map[string]*domain.Order // keyed by trade_no
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[string]*domain.Order)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	return &cp
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.TradeNo]; ok {
		return fmt.Errorf("trade_no already exists")
	}
	for _, existing := range r.orders {
		if existing.MerchantID == o.MerchantID && existing.OutTradeNo == o.OutTradeNo {
			return fmt.Errorf("out_trade_no already exists for merchant")
		}
		if existing.CredentialID == o.CredentialID &&
			existing.Status == domain.OrderStatusPending &&
			existing.Amount == o.Amount {
			return fmt.Errorf("pending amount already taken")
		}
	}

	r.nextID++
	o.ID = r.nextID
	r.orders[o.TradeNo] = cloneOrder(o)
	return nil
}

func (r *inMemoryOrderRepo) GetByTradeNo(ctx context.Context, tradeNo string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[tradeNo]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *inMemoryOrderRepo) GetByOutTradeNo(ctx context.Context, merchantID int64, outTradeNo string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.MerchantID == merchantID && o.OutTradeNo == outTradeNo {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (r *inMemoryOrderRepo) ListPendingByCredential(ctx context.Context, credentialID int64) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var pending []*domain.Order
	for _, o := range r.orders {
		if o.CredentialID == credentialID && o.Status == domain.OrderStatusPending {
			pending = append(pending, cloneOrder(o))
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return pending[i].Amount < pending[j].Amount
	})
	return pending, nil
}

func (r *inMemoryOrderRepo) TakenAmounts(ctx context.Context, credentialID int64, lo, hi money.Cents) (map[money.Cents]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	taken := make(map[money.Cents]bool)
	for _, o := range r.orders {
		if o.CredentialID == credentialID && o.Status == domain.OrderStatusPending &&
			o.Amount >= lo && o.Amount <= hi {
			taken[o.Amount] = true
		}
	}
	return taken, nil
}

func (r *inMemoryOrderRepo) MarkPaid(ctx context.Context, tx pgx.Tx, tradeNo string, confirmBalance money.Cents, buyer string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[tradeNo]
	if !ok || o.Status != domain.OrderStatusPending {
		return false, nil
	}
	now := time.Now()
	o.Status = domain.OrderStatusPaid
	o.ConfirmBalance = &confirmBalance
	o.Buyer = buyer
	o.PaidAt = &now
	return true, nil
}

func (r *inMemoryOrderRepo) MarkExpired(ctx context.Context, tradeNo string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[tradeNo]
	if !ok || o.Status != domain.OrderStatusPending {
		return false, nil
	}
	now := time.Now()
	o.Status = domain.OrderStatusExpired
	o.ExpiredAt = &now
	return true, nil
}

func (r *inMemoryOrderRepo) ExpireStale(ctx context.Context, cutoff time.Time) ([]ports.ExpiredOrderRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var refs []ports.ExpiredOrderRef
	now := time.Now()
	for _, o := range r.orders {
		if o.Status == domain.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			o.Status = domain.OrderStatusExpired
			expiredAt := now
			o.ExpiredAt = &expiredAt
			refs = append(refs, ports.ExpiredOrderRef{TradeNo: o.TradeNo, CredentialID: o.CredentialID})
		}
	}
	return refs, nil
}

func (r *inMemoryOrderRepo) UpdateCallbackState(ctx context.Context, tradeNo string, status domain.CallbackStatus, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[tradeNo]
	if !ok {
		return pgx.ErrNoRows
	}
	o.CallbackStatus = status
	o.CallbackAttempts = attempts
	return nil
}

func (r *inMemoryOrderRepo) ListCallbackRetryable(ctx context.Context, maxAttempts int) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var due []*domain.Order
	for _, o := range r.orders {
		if o.Status != domain.OrderStatusPaid || o.NotifyURL == "" {
			continue
		}
		if o.CallbackStatus != domain.CallbackStatusFailed && o.CallbackStatus != domain.CallbackStatusInFlight {
			continue
		}
		if o.CallbackAttempts < 1 || o.CallbackAttempts >= maxAttempts {
			continue
		}
		due = append(due, cloneOrder(o))
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	return due, nil
}

func (r *inMemoryOrderRepo) RebaseBaseBalance(ctx context.Context, credentialID int64, base money.Cents) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.orders {
		if o.CredentialID == credentialID && o.Status == domain.OrderStatusPending {
			o.BaseBalance = base
			n++
		}
	}
	return n, nil
}

// setPaidAt backdates an order so retry schedules become due without
// sleeping through the real intervals.
func (r *inMemoryOrderRepo) setPaidAt(tradeNo string, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[tradeNo]; ok {
		o.PaidAt = &t
	}
}

// setCreatedAt backdates an order past the expiry cutoff.
func (r *inMemoryOrderRepo) setCreatedAt(tradeNo string, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[tradeNo]; ok {
		o.CreatedAt = t
	}
}

// --- Merchants ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	nextID    int64
	merchants map[int64]*domain.Merchant
	orders    *inMemoryOrderRepo // stats are derived from orders
}

func newInMemoryMerchantRepo(orders *inMemoryOrderRepo) *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{
		merchants: make(map[int64]*domain.Merchant),
		orders:    orders,
	}
}

func cloneMerchant(m *domain.Merchant) *domain.Merchant {
	cp := *m
	return &cp
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.merchants {
		if existing.Username == m.Username {
			return fmt.Errorf("username already exists")
		}
	}
	r.nextID++
	m.ID = r.nextID
	r.merchants[m.ID] = cloneMerchant(m)
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id int64) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	return cloneMerchant(m), nil
}

func (r *inMemoryMerchantRepo) GetByUsername(ctx context.Context, username string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.Username == username {
			return cloneMerchant(m), nil
		}
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) List(ctx context.Context) ([]*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*domain.Merchant
	for _, m := range r.merchants {
		all = append(all, cloneMerchant(m))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (r *inMemoryMerchantRepo) UpdateKey(ctx context.Context, id int64, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[id]
	if !ok {
		return pgx.ErrNoRows
	}
	m.Key = key
	m.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryMerchantRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[id]
	if !ok {
		return pgx.ErrNoRows
	}
	m.Active = active
	m.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryMerchantRepo) CreditBalance(ctx context.Context, tx pgx.Tx, id int64, amount money.Cents) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[id]
	if !ok {
		return pgx.ErrNoRows
	}
	m.Balance += amount
	return nil
}

func (r *inMemoryMerchantRepo) GetStats(ctx context.Context, id int64) (*domain.MerchantStats, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	r.orders.mu.RLock()
	defer r.orders.mu.RUnlock()

	stats := &domain.MerchantStats{}
	for _, o := range r.orders.orders {
		if o.MerchantID != id {
			continue
		}
		stats.Orders++
		if o.Status == domain.OrderStatusPaid {
			stats.Income += o.Amount
		}
		if !o.CreatedAt.Before(today) {
			stats.OrderToday++
		} else if !o.CreatedAt.Before(yesterday) {
			stats.OrderLastDay++
		}
	}
	return stats, nil
}

// --- Credentials ---

type inMemoryCredentialRepo struct {
	mu     sync.RWMutex
	nextID int64
	creds  map[int64]*domain.Credential
}

func newInMemoryCredentialRepo() *inMemoryCredentialRepo {
	return &inMemoryCredentialRepo{creds: make(map[int64]*domain.Credential)}
}

func cloneCredential(c *domain.Credential) *domain.Credential {
	cp := *c
	return &cp
}

func (r *inMemoryCredentialRepo) Create(ctx context.Context, c *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	r.creds[c.ID] = cloneCredential(c)
	return nil
}

func (r *inMemoryCredentialRepo) GetByID(ctx context.Context, id int64) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.creds[id]
	if !ok {
		return nil, nil
	}
	return cloneCredential(c), nil
}

func (r *inMemoryCredentialRepo) GetActiveByMerchant(ctx context.Context, merchantID int64) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var newest *domain.Credential
	for _, c := range r.creds {
		if c.MerchantID != merchantID || !c.Active {
			continue
		}
		if newest == nil || c.CreatedAt.After(newest.CreatedAt) ||
			(c.CreatedAt.Equal(newest.CreatedAt) && c.ID > newest.ID) {
			newest = c
		}
	}
	if newest == nil {
		return nil, nil
	}
	return cloneCredential(newest), nil
}

func (r *inMemoryCredentialRepo) ListByMerchant(ctx context.Context, merchantID int64) ([]*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*domain.Credential
	for _, c := range r.creds {
		if c.MerchantID == merchantID {
			all = append(all, cloneCredential(c))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (r *inMemoryCredentialRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.creds[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Active = active
	return nil
}

// --- Operators ---

type inMemoryOperatorRepo struct {
	mu     sync.RWMutex
	nextID int64
	ops    map[string]*domain.Operator
}

func newInMemoryOperatorRepo() *inMemoryOperatorRepo {
	return &inMemoryOperatorRepo{ops: make(map[string]*domain.Operator)}
}

func (r *inMemoryOperatorRepo) Create(ctx context.Context, op *domain.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ops[op.Username]; ok {
		return fmt.Errorf("username already exists")
	}
	r.nextID++
	op.ID = r.nextID
	cp := *op
	r.ops[op.Username] = &cp
	return nil
}

func (r *inMemoryOperatorRepo) GetByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[username]
	if !ok {
		return nil, nil
	}
	cp := *op
	return &cp, nil
}

// --- Balance logs ---

type inMemoryBalanceLogRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   []*domain.BalanceLog
}

func newInMemoryBalanceLogRepo() *inMemoryBalanceLogRepo {
	return &inMemoryBalanceLogRepo{}
}

func (r *inMemoryBalanceLogRepo) Create(ctx context.Context, row *domain.BalanceLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	row.ID = r.nextID
	cp := *row
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *inMemoryBalanceLogRepo) CreateInTx(ctx context.Context, tx pgx.Tx, row *domain.BalanceLog) error {
	return r.Create(ctx, row)
}

func (r *inMemoryBalanceLogRepo) ListRecent(ctx context.Context, credentialID int64, limit int) ([]*domain.BalanceLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.BalanceLog
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		row := r.rows[i]
		if credentialID != 0 && row.CredentialID != credentialID {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

// --- Callback logs ---

type inMemoryCallbackLogRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   []*domain.CallbackLog
}

func newInMemoryCallbackLogRepo() *inMemoryCallbackLogRepo {
	return &inMemoryCallbackLogRepo{}
}

func (r *inMemoryCallbackLogRepo) Create(ctx context.Context, row *domain.CallbackLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	row.ID = r.nextID
	cp := *row
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *inMemoryCallbackLogRepo) ListByTradeNo(ctx context.Context, tradeNo string) ([]*domain.CallbackLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.CallbackLog
	for _, row := range r.rows {
		if row.TradeNo == tradeNo {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attempt < out[j].Attempt })
	return out, nil
}

// --- Transactor ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx satisfies pgx.Tx; the in-memory repos apply writes directly,
// so commit and rollback have nothing to do.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

// --- Wallet ---

// fakeWallet implements ports.WalletGateway with a scripted balance.
type fakeWallet struct {
	mu      sync.Mutex
	balance money.Cents
	err     error
}

func newFakeWallet(balance money.Cents) *fakeWallet {
	return &fakeWallet{balance: balance}
}

func (w *fakeWallet) QueryBalance(ctx context.Context, cred *domain.CredentialBundle) (*ports.WalletBalance, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	return &ports.WalletBalance{Total: w.balance, Available: w.balance}, nil
}

func (w *fakeWallet) set(balance money.Cents) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = balance
}

func (w *fakeWallet) add(amount money.Cents) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance += amount
}

func (w *fakeWallet) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}
