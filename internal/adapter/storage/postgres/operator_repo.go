package postgres

import (
	"context"
	"errors"
	"fmt"

	"qrpay-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// OperatorRepo implements ports.OperatorRepository.
type OperatorRepo struct {
	pool Pool
}

// NewOperatorRepo creates a new OperatorRepo.
func NewOperatorRepo(pool Pool) *OperatorRepo {
	return &OperatorRepo{pool: pool}
}

// Create inserts a new operator account and fills in the generated ID.
func (r *OperatorRepo) Create(ctx context.Context, op *domain.Operator) error {
	query := `INSERT INTO operators (username, password_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query, op.Username, op.PasswordHash, op.CreatedAt).Scan(&op.ID)
	if err != nil {
		return fmt.Errorf("insert operator: %w", err)
	}
	return nil
}

// GetByUsername fetches an operator by username.
func (r *OperatorRepo) GetByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	query := `SELECT id, username, password_hash, created_at FROM operators WHERE username = $1`

	op := &domain.Operator{}
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&op.ID, &op.Username, &op.PasswordHash, &op.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get operator by username: %w", err)
	}
	return op, nil
}
