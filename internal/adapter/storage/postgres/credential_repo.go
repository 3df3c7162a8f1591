package postgres

import (
	"context"
	"errors"
	"fmt"

	"qrpay-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CredentialRepo implements ports.CredentialRepository.
type CredentialRepo struct {
	pool Pool
}

// NewCredentialRepo creates a new CredentialRepo.
func NewCredentialRepo(pool Pool) *CredentialRepo {
	return &CredentialRepo{pool: pool}
}

const credentialColumns = `id, merchant_id, app_id, public_key, private_key_enc, qrcode_url, active, created_at`

func scanCredential(row pgx.Row) (*domain.Credential, error) {
	c := &domain.Credential{}
	err := row.Scan(
		&c.ID, &c.MerchantID, &c.AppID, &c.PublicKey, &c.PrivateKeyEnc,
		&c.QRCodeURL, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new credential and fills in the generated ID.
func (r *CredentialRepo) Create(ctx context.Context, c *domain.Credential) error {
	query := `INSERT INTO merchant_credentials (merchant_id, app_id, public_key, private_key_enc, qrcode_url, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		c.MerchantID, c.AppID, c.PublicKey, c.PrivateKeyEnc,
		c.QRCodeURL, c.Active, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// GetByID fetches a credential by ID.
func (r *CredentialRepo) GetByID(ctx context.Context, id int64) (*domain.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM merchant_credentials WHERE id = $1`

	c, err := scanCredential(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential by id: %w", err)
	}
	return c, nil
}

// GetActiveByMerchant returns the newest active credential for the
// merchant, or nil when none is bound.
func (r *CredentialRepo) GetActiveByMerchant(ctx context.Context, merchantID int64) (*domain.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM merchant_credentials
		WHERE merchant_id = $1 AND active = TRUE
		ORDER BY created_at DESC
		LIMIT 1`

	c, err := scanCredential(r.pool.QueryRow(ctx, query, merchantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active credential: %w", err)
	}
	return c, nil
}

// ListByMerchant returns all credentials of the merchant, newest first.
func (r *CredentialRepo) ListByMerchant(ctx context.Context, merchantID int64) ([]*domain.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM merchant_credentials
		WHERE merchant_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []*domain.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return creds, nil
}

// SetActive toggles whether the credential is eligible for resolution.
func (r *CredentialRepo) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE merchant_credentials SET active = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set credential active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
