package postgres

import (
	"context"
	"fmt"

	"qrpay-gateway/internal/core/domain"
)

// CallbackLogRepo implements ports.CallbackLogRepository.
type CallbackLogRepo struct {
	pool Pool
}

// NewCallbackLogRepo creates a new CallbackLogRepo.
func NewCallbackLogRepo(pool Pool) *CallbackLogRepo {
	return &CallbackLogRepo{pool: pool}
}

// Create appends a notification attempt record.
func (r *CallbackLogRepo) Create(ctx context.Context, l *domain.CallbackLog) error {
	query := `INSERT INTO callback_logs (trade_no, attempt, url, http_status, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		l.TradeNo, l.Attempt, l.URL, l.HTTPStatus, l.Response, l.CreatedAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert callback log: %w", err)
	}
	return nil
}

// ListByTradeNo returns all notification attempts for an order, in
// attempt order.
func (r *CallbackLogRepo) ListByTradeNo(ctx context.Context, tradeNo string) ([]*domain.CallbackLog, error) {
	query := `SELECT id, trade_no, attempt, url, http_status, response, created_at
		FROM callback_logs WHERE trade_no = $1 ORDER BY attempt ASC`

	rows, err := r.pool.Query(ctx, query, tradeNo)
	if err != nil {
		return nil, fmt.Errorf("list callback logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.CallbackLog
	for rows.Next() {
		l := &domain.CallbackLog{}
		err := rows.Scan(&l.ID, &l.TradeNo, &l.Attempt, &l.URL, &l.HTTPStatus, &l.Response, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan callback log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate callback logs: %w", err)
	}
	return logs, nil
}
