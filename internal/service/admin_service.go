package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/pkg/apperror"
)

const (
	balanceLogDefaultLimit = 100
	balanceLogMaxLimit     = 500
)

// AdminServiceImpl implements ports.AdminService.
type AdminServiceImpl struct {
	operatorRepo   ports.OperatorRepository
	merchantRepo   ports.MerchantRepository
	credRepo       ports.CredentialRepository
	balanceLogRepo ports.BalanceLogRepository
	hashSvc        ports.HashService
	tokenSvc       ports.TokenService
	encSvc         ports.EncryptionService
	wallet         ports.WalletGateway
	log            zerolog.Logger
}

// NewAdminService creates the ops-API service.
func NewAdminService(
	operatorRepo ports.OperatorRepository,
	merchantRepo ports.MerchantRepository,
	credRepo ports.CredentialRepository,
	balanceLogRepo ports.BalanceLogRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	encSvc ports.EncryptionService,
	wallet ports.WalletGateway,
	log zerolog.Logger,
) ports.AdminService {
	return &AdminServiceImpl{
		operatorRepo:   operatorRepo,
		merchantRepo:   merchantRepo,
		credRepo:       credRepo,
		balanceLogRepo: balanceLogRepo,
		hashSvc:        hashSvc,
		tokenSvc:       tokenSvc,
		encSvc:         encSvc,
		wallet:         wallet,
		log:            log.With().Str("component", "admin_service").Logger(),
	}
}

// Login verifies operator credentials and issues a JWT.
func (s *AdminServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	operator, err := s.operatorRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("failed to find operator: %w", err))
	}
	if operator == nil {
		return "", apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, operator.PasswordHash)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("failed to verify password: %w", err))
	}
	if !valid {
		return "", apperror.ErrInvalidCredentials()
	}

	token, err := s.tokenSvc.Generate(operator.ID, operator.Username)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("failed to generate token: %w", err))
	}

	s.log.Info().Str("username", username).Msg("operator logged in")
	return token, nil
}

// EnsureOperator creates the bootstrap operator account when absent.
func (s *AdminServiceImpl) EnsureOperator(ctx context.Context, username, password string) error {
	existing, err := s.operatorRepo.GetByUsername(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("failed to find operator: %w", err))
	}
	if existing != nil {
		return nil
	}

	hash, err := s.hashSvc.Hash(password)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("failed to hash password: %w", err))
	}
	if err := s.operatorRepo.Create(ctx, &domain.Operator{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}); err != nil {
		return apperror.InternalError(fmt.Errorf("failed to create operator: %w", err))
	}

	s.log.Info().Str("username", username).Msg("bootstrap operator created")
	return nil
}

// CreateMerchant registers a merchant and generates its signing key.
func (s *AdminServiceImpl) CreateMerchant(ctx context.Context, username, settleType, settleAccount, settleUsername string) (*domain.Merchant, error) {
	existing, err := s.merchantRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to find merchant: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	key, err := generateRandomHex(16) // 32 hex chars
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to generate key: %w", err))
	}

	now := time.Now()
	merchant := &domain.Merchant{
		Username:       username,
		Key:            key,
		Active:         true,
		SettleType:     settleType,
		SettleAccount:  settleAccount,
		SettleUsername: settleUsername,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to create merchant: %w", err))
	}

	s.log.Info().Int64("merchant_id", merchant.ID).Str("username", username).Msg("merchant created")
	return merchant, nil
}

// ListMerchants returns all merchants, newest first.
func (s *AdminServiceImpl) ListMerchants(ctx context.Context) ([]*domain.Merchant, error) {
	merchants, err := s.merchantRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to list merchants: %w", err))
	}
	return merchants, nil
}

// RotateMerchantKey replaces the merchant's signing key and returns the
// new one. Orders signed with the old key fail verification from this
// moment on.
func (s *AdminServiceImpl) RotateMerchantKey(ctx context.Context, merchantID int64) (string, error) {
	key, err := generateRandomHex(16)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("failed to generate key: %w", err))
	}

	if err := s.merchantRepo.UpdateKey(ctx, merchantID, key); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperror.ErrMerchantMissing()
		}
		return "", apperror.InternalError(fmt.Errorf("failed to rotate key: %w", err))
	}

	s.log.Info().Int64("merchant_id", merchantID).Msg("merchant key rotated")
	return key, nil
}

// SetMerchantActive enables or disables order creation for the
// merchant.
func (s *AdminServiceImpl) SetMerchantActive(ctx context.Context, merchantID int64, active bool) error {
	if err := s.merchantRepo.SetActive(ctx, merchantID, active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.ErrMerchantMissing()
		}
		return apperror.InternalError(fmt.Errorf("failed to update merchant: %w", err))
	}

	s.log.Info().Int64("merchant_id", merchantID).Bool("active", active).Msg("merchant state changed")
	return nil
}

// CreateCredential stores a wallet credential bundle for a merchant.
// Unless skipped, the bundle is probed with one live balance query
// before it is accepted.
func (s *AdminServiceImpl) CreateCredential(ctx context.Context, req *ports.CreateCredentialRequest) (*domain.Credential, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, req.MerchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to find merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantMissing()
	}

	if !req.SkipVerify {
		probe := &domain.CredentialBundle{
			MerchantID: req.MerchantID,
			AppID:      req.AppID,
			PublicKey:  req.PublicKey,
			PrivateKey: req.PrivateKey,
			QRCodeURL:  req.QRCodeURL,
		}
		if _, err := s.wallet.QueryBalance(ctx, probe); err != nil {
			return nil, apperror.ErrWalletQuery(err)
		}
	}

	enc, err := s.encSvc.Encrypt(req.PrivateKey)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(err)
	}

	cred := &domain.Credential{
		MerchantID:    req.MerchantID,
		AppID:         req.AppID,
		PublicKey:     req.PublicKey,
		PrivateKeyEnc: enc,
		QRCodeURL:     req.QRCodeURL,
		Active:        true,
		CreatedAt:     time.Now(),
	}
	if err := s.credRepo.Create(ctx, cred); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to create credential: %w", err))
	}

	s.log.Info().
		Int64("credential_id", cred.ID).
		Int64("merchant_id", req.MerchantID).
		Bool("verified", !req.SkipVerify).
		Msg("credential created")
	return cred, nil
}

// ListCredentials returns the merchant's credential bundles.
func (s *AdminServiceImpl) ListCredentials(ctx context.Context, merchantID int64) ([]*domain.Credential, error) {
	creds, err := s.credRepo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to list credentials: %w", err))
	}
	return creds, nil
}

// ListBalanceLogs returns recent reconcile audit rows, newest first.
// credentialID 0 means all credentials.
func (s *AdminServiceImpl) ListBalanceLogs(ctx context.Context, credentialID int64, limit int) ([]*domain.BalanceLog, error) {
	if limit <= 0 {
		limit = balanceLogDefaultLimit
	}
	if limit > balanceLogMaxLimit {
		limit = balanceLogMaxLimit
	}

	logs, err := s.balanceLogRepo.ListRecent(ctx, credentialID, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to list balance logs: %w", err))
	}
	return logs, nil
}

// generateRandomHex generates a random hex string of n bytes.
func generateRandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
