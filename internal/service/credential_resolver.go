package service

import (
	"context"
	"fmt"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/pkg/apperror"
)

// CredentialResolverImpl implements ports.CredentialResolver.
type CredentialResolverImpl struct {
	credRepo ports.CredentialRepository
	encSvc   ports.EncryptionService
}

// NewCredentialResolver creates a new credential resolver.
func NewCredentialResolver(credRepo ports.CredentialRepository, encSvc ports.EncryptionService) *CredentialResolverImpl {
	return &CredentialResolverImpl{
		credRepo: credRepo,
		encSvc:   encSvc,
	}
}

// ResolveForMerchant picks the merchant's newest active credential and
// decrypts its private key.
func (s *CredentialResolverImpl) ResolveForMerchant(ctx context.Context, merchantID int64) (*domain.CredentialBundle, error) {
	cred, err := s.credRepo.GetActiveByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolving credential: %w", err))
	}
	if cred == nil {
		return nil, apperror.ErrCredentialMissing()
	}
	return s.toBundle(cred)
}

// ResolveByID loads a specific credential and decrypts its private key.
func (s *CredentialResolverImpl) ResolveByID(ctx context.Context, credentialID int64) (*domain.CredentialBundle, error) {
	cred, err := s.credRepo.GetByID(ctx, credentialID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolving credential: %w", err))
	}
	if cred == nil {
		return nil, apperror.ErrCredentialMissing()
	}
	return s.toBundle(cred)
}

func (s *CredentialResolverImpl) toBundle(cred *domain.Credential) (*domain.CredentialBundle, error) {
	privateKey, err := s.encSvc.Decrypt(cred.PrivateKeyEnc)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("decrypting private key: %w", err))
	}
	return &domain.CredentialBundle{
		ID:         cred.ID,
		MerchantID: cred.MerchantID,
		AppID:      cred.AppID,
		PublicKey:  cred.PublicKey,
		PrivateKey: privateKey,
		QRCodeURL:  cred.QRCodeURL,
	}, nil
}
