package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/pkg/money"

	"github.com/jackc/pgx/v5"
)

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

const merchantColumns = `id, username, key, active, balance, settle_type, settle_account, settle_username, created_at, updated_at`

func scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	m := &domain.Merchant{}
	err := row.Scan(
		&m.ID, &m.Username, &m.Key, &m.Active, &m.Balance,
		&m.SettleType, &m.SettleAccount, &m.SettleUsername,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a new merchant and fills in the generated ID.
func (r *MerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	query := `INSERT INTO merchants (username, key, active, balance, settle_type, settle_account, settle_username, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		m.Username, m.Key, m.Active, m.Balance,
		m.SettleType, m.SettleAccount, m.SettleUsername,
		m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// GetByID fetches a merchant by its numeric pid.
func (r *MerchantRepo) GetByID(ctx context.Context, id int64) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE id = $1`

	m, err := scanMerchant(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant by id: %w", err)
	}
	return m, nil
}

// GetByUsername fetches a merchant by username.
func (r *MerchantRepo) GetByUsername(ctx context.Context, username string) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE username = $1`

	m, err := scanMerchant(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant by username: %w", err)
	}
	return m, nil
}

// List returns all merchants, newest first.
func (r *MerchantRepo) List(ctx context.Context) ([]*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	var merchants []*domain.Merchant
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan merchant: %w", err)
		}
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merchants: %w", err)
	}
	return merchants, nil
}

// UpdateKey replaces the merchant's signing secret.
func (r *MerchantRepo) UpdateKey(ctx context.Context, id int64, key string) error {
	query := `UPDATE merchants SET key = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("update merchant key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetActive toggles whether the merchant may create orders.
func (r *MerchantRepo) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE merchants SET active = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set merchant active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreditBalance adds amount to the merchant's virtual balance inside the
// caller's transaction.
func (r *MerchantRepo) CreditBalance(ctx context.Context, tx pgx.Tx, id int64, amount money.Cents) error {
	query := `UPDATE merchants SET balance = balance + $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("credit merchant balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetStats derives lifetime income and order counters from paid orders.
func (r *MerchantRepo) GetStats(ctx context.Context, id int64) (*domain.MerchantStats, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	query := `SELECT
		COALESCE(SUM(amount) FILTER (WHERE status = 1), 0) AS income,
		COUNT(*) AS orders,
		COUNT(*) FILTER (WHERE created_at >= $2) AS order_today,
		COUNT(*) FILTER (WHERE created_at >= $3 AND created_at < $2) AS order_lastday
		FROM orders WHERE merchant_id = $1`

	stats := &domain.MerchantStats{}
	err := r.pool.QueryRow(ctx, query, id, today, yesterday).Scan(
		&stats.Income, &stats.Orders, &stats.OrderToday, &stats.OrderLastDay,
	)
	if err != nil {
		return nil, fmt.Errorf("get merchant stats: %w", err)
	}
	return stats, nil
}
