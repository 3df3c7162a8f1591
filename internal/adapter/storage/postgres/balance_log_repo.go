package postgres

import (
	"context"
	"fmt"

	"qrpay-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// BalanceLogRepo implements ports.BalanceLogRepository.
type BalanceLogRepo struct {
	pool Pool
}

// NewBalanceLogRepo creates a new BalanceLogRepo.
func NewBalanceLogRepo(pool Pool) *BalanceLogRepo {
	return &BalanceLogRepo{pool: pool}
}

const balanceLogInsert = `INSERT INTO balance_logs (credential_id, balance, base_balance, delta, match_result, matched_trade_nos, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

// Create appends a reconcile audit record.
func (r *BalanceLogRepo) Create(ctx context.Context, l *domain.BalanceLog) error {
	err := r.pool.QueryRow(ctx, balanceLogInsert,
		l.CredentialID, l.Balance, l.BaseBalance, l.Delta,
		l.MatchResult, l.MatchedTradeNos, l.CreatedAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert balance log: %w", err)
	}
	return nil
}

// CreateInTx appends a reconcile audit record inside the caller's
// transaction, so the match commit and its audit row land together.
func (r *BalanceLogRepo) CreateInTx(ctx context.Context, tx pgx.Tx, l *domain.BalanceLog) error {
	err := tx.QueryRow(ctx, balanceLogInsert,
		l.CredentialID, l.Balance, l.BaseBalance, l.Delta,
		l.MatchResult, l.MatchedTradeNos, l.CreatedAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert balance log: %w", err)
	}
	return nil
}

// ListRecent returns newest-first audit rows. credentialID 0 lists all
// credentials.
func (r *BalanceLogRepo) ListRecent(ctx context.Context, credentialID int64, limit int) ([]*domain.BalanceLog, error) {
	query := `SELECT id, credential_id, balance, base_balance, delta, match_result, matched_trade_nos, created_at
		FROM balance_logs
		WHERE ($1 = 0 OR credential_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, credentialID, limit)
	if err != nil {
		return nil, fmt.Errorf("list balance logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.BalanceLog
	for rows.Next() {
		l := &domain.BalanceLog{}
		err := rows.Scan(&l.ID, &l.CredentialID, &l.Balance, &l.BaseBalance, &l.Delta,
			&l.MatchResult, &l.MatchedTradeNos, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan balance log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance logs: %w", err)
	}
	return logs, nil
}
