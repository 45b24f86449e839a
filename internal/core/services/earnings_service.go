package services

import (
	"context"
	"fmt"
	"log"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/core/domain"
)

// EarningsService computes the commission breakdown of a member from the
// current state of their downline. The breakdown is always recomputed from
// scratch; total_earnings and balance are brought in line by Sync.
type EarningsService struct {
	userRepo repositories.UserRepository
	txRepo   repositories.TransactionRepository
}

// NewEarningsService creates a new earnings service
func NewEarningsService(userRepo repositories.UserRepository, txRepo repositories.TransactionRepository) *EarningsService {
	return &EarningsService{userRepo: userRepo, txRepo: txRepo}
}

// Calculate returns the commission breakdown for a member.
//
//	direct     = sum of direct referrals' package price x 10%
//	level      = flat 50 per direct referral
//	matching   = direct x 2%
//	leadership = team size x 10, once the team exceeds 10 members
//
// An unknown member yields a zero breakdown rather than an error: a member
// with no record simply has earned nothing.
func (s *EarningsService) Calculate(ctx context.Context, userID uint) (*domain.EarningsBreakdown, error) {
	breakdown := &domain.EarningsBreakdown{}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return breakdown, nil
		}
		return nil, err
	}

	referrals, err := s.userRepo.ListByReferrer(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, ref := range referrals {
		if ref.Package != nil {
			breakdown.Direct += ref.Package.Price * domain.DirectCommissionRate
		}
	}
	breakdown.Level = float64(len(referrals)) * domain.LevelBonusPerReferral
	breakdown.Matching = breakdown.Direct * domain.MatchingBonusRate
	if user.TeamSize > domain.LeadershipTeamMinimum {
		breakdown.Leadership = float64(user.TeamSize) * domain.LeadershipPerHead
	}

	breakdown.Total = breakdown.Direct + breakdown.Level + breakdown.Matching + breakdown.Leadership
	return breakdown, nil
}

// Sync recomputes a member's earnings and applies the delta to their
// balance, so withdrawals already debited stay debited. Returns the fresh
// breakdown.
func (s *EarningsService) Sync(ctx context.Context, userID uint) (*domain.EarningsBreakdown, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.Calculate(ctx, userID)
	if err != nil {
		return nil, err
	}

	delta := breakdown.Total - user.TotalEarnings
	if delta == 0 {
		return breakdown, nil
	}

	if err := s.userRepo.SetEarnings(ctx, userID, breakdown.Total); err != nil {
		return nil, err
	}
	if err := s.userRepo.CreditBalance(ctx, userID, delta); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		UserID:          userID,
		TransactionType: models.TxTypeReferral,
		Amount:          delta,
		Description:     fmt.Sprintf("Commission accrual (total %.2f)", breakdown.Total),
		PerformedBy:     userID,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		log.Printf("⚠️ Failed to record commission accrual for user %d: %v", userID, err)
	}

	return breakdown, nil
}
