package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/core/domain"
)

// PackageService serves the membership package catalog and upgrades
type PackageService struct {
	pkgRepo   repositories.PackageRepository
	userRepo  repositories.UserRepository
	txRepo    repositories.TransactionRepository
	notifRepo repositories.NotificationRepository
	earnings  *EarningsService
}

// NewPackageService creates a new package service
func NewPackageService(
	pkgRepo repositories.PackageRepository,
	userRepo repositories.UserRepository,
	txRepo repositories.TransactionRepository,
	notifRepo repositories.NotificationRepository,
	earnings *EarningsService,
) *PackageService {
	return &PackageService{
		pkgRepo:   pkgRepo,
		userRepo:  userRepo,
		txRepo:    txRepo,
		notifRepo: notifRepo,
		earnings:  earnings,
	}
}

// List returns the catalog in display order
func (s *PackageService) List(ctx context.Context) ([]models.Package, error) {
	return s.pkgRepo.List(ctx)
}

// GetByCode returns a single package
func (s *PackageService) GetByCode(ctx context.Context, code string) (*models.Package, error) {
	return s.pkgRepo.FindByCode(ctx, strings.ToLower(code))
}

// Upgrade moves a member to a strictly higher tier. The upgrade cost is the
// price difference between the two tiers. Because the direct commission is
// based on the referral's package price, the referrer's earnings are
// re-synced afterwards.
func (s *PackageService) Upgrade(ctx context.Context, userID uint, targetCode string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	target, err := s.pkgRepo.FindByCode(ctx, strings.ToLower(targetCode))
	if err != nil {
		return nil, err
	}

	var currentPrice float64
	if user.Package != nil {
		currentPrice = user.Package.Price
	}
	if target.Price <= currentPrice {
		return nil, domain.ErrNotAnUpgrade
	}
	cost := target.Price - currentPrice

	// The difference is paid from the member's balance
	if err := s.userRepo.DebitBalance(ctx, user.ID, cost); err != nil {
		return nil, err
	}
	user.Balance -= cost

	user.PackageID = &target.ID
	user.Package = target
	if err := s.userRepo.Update(ctx, user); err != nil {
		if refundErr := s.userRepo.CreditBalance(ctx, user.ID, cost); refundErr != nil {
			log.Printf("❌ Failed to refund %.2f to user %d after upgrade error: %v", cost, user.ID, refundErr)
		}
		return nil, err
	}

	tx := &models.Transaction{
		UserID:          user.ID,
		TransactionType: models.TxTypeUpgrade,
		Amount:          -cost,
		Description:     fmt.Sprintf("Upgraded to %s package", target.Name),
		PerformedBy:     user.ID,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		log.Printf("⚠️ Failed to record upgrade transaction for user %d: %v", user.ID, err)
	}

	notification := &models.Notification{
		UserID:  user.ID,
		Type:    models.NotifyPackageUpgraded,
		Message: fmt.Sprintf("Your membership has been upgraded to %s", target.Name),
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		log.Printf("⚠️ Failed to notify user %d: %v", user.ID, err)
	}

	if user.ReferrerID != nil && s.earnings != nil {
		if _, err := s.earnings.Sync(ctx, *user.ReferrerID); err != nil {
			log.Printf("⚠️ Failed to re-sync earnings of referrer %d: %v", *user.ReferrerID, err)
		}
	}

	return user, nil
}
