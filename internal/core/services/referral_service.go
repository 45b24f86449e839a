package services

import (
	"context"
	"log"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/core/domain"
)

// ReferralService builds referral trees and keeps the denormalized
// direct/team counters honest.
type ReferralService struct {
	userRepo repositories.UserRepository
}

// NewReferralService creates a new referral service
func NewReferralService(userRepo repositories.UserRepository) *ReferralService {
	return &ReferralService{userRepo: userRepo}
}

// BuildTree assembles the downline of a member up to maxDepth levels.
// Depth 1 is the member alone; each extra level adds one generation of
// referrals, children ordered by join order. maxDepth <= 0 yields nil.
func (s *ReferralService) BuildTree(ctx context.Context, userID uint, maxDepth int) (*domain.TreeNode, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildNode(ctx, user, maxDepth)
}

func (s *ReferralService) buildNode(ctx context.Context, user *models.User, depth int) (*domain.TreeNode, error) {
	if depth <= 0 {
		return nil, nil
	}

	node := &domain.TreeNode{
		UserID:        user.ID,
		Name:          user.FullName,
		Email:         user.Email,
		TotalEarnings: user.TotalEarnings,
		JoinedAt:      user.CreatedAt,
		Children:      []*domain.TreeNode{},
	}
	if user.Package != nil {
		node.PackageCode = user.Package.Code
	}

	if depth == 1 {
		return node, nil
	}

	referrals, err := s.userRepo.ListByReferrer(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range referrals {
		child, err := s.buildNode(ctx, &referrals[i], depth-1)
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}

	return node, nil
}

// TeamCounts recomputes a member's direct and team counts from the tree.
// The team count covers the whole downline, not just the levels a tree
// query would show. The descent shares the same depth bound as the
// registration-time ancestor walk, so a corrupted cyclic directory
// terminates instead of recursing forever.
func (s *ReferralService) TeamCounts(ctx context.Context, userID uint) (direct int, team int, err error) {
	return s.teamCounts(ctx, userID, maxReferralDepth)
}

func (s *ReferralService) teamCounts(ctx context.Context, userID uint, depth int) (direct int, team int, err error) {
	if depth <= 0 {
		return 0, 0, nil
	}

	referrals, err := s.userRepo.ListByReferrer(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	direct = len(referrals)
	team = len(referrals)
	for i := range referrals {
		_, subTeam, err := s.teamCounts(ctx, referrals[i].ID, depth-1)
		if err != nil {
			return 0, 0, err
		}
		team += subTeam
	}
	return direct, team, nil
}

// ReconcileCounters walks every member and repairs drifted direct/team
// counters. Run nightly; drift only appears after manual data surgery or
// a crashed registration.
func (s *ReferralService) ReconcileCounters(ctx context.Context) (int, error) {
	const pageSize = 200
	repaired := 0

	for offset := 0; ; offset += pageSize {
		users, total, err := s.userRepo.List(ctx, repositories.UserFilter{Role: string(domain.RoleUser)}, offset, pageSize)
		if err != nil {
			return repaired, err
		}

		for i := range users {
			user := &users[i]
			direct, team, err := s.TeamCounts(ctx, user.ID)
			if err != nil {
				return repaired, err
			}
			if direct == user.DirectReferrals && team == user.TeamSize {
				continue
			}

			if err := s.userRepo.UpdateCounters(ctx, user.ID, direct, team); err != nil {
				return repaired, err
			}
			log.Printf("⚠️ Repaired counters for user %d: direct %d->%d, team %d->%d",
				user.ID, user.DirectReferrals, direct, user.TeamSize, team)
			repaired++
		}

		if int64(offset+pageSize) >= total {
			break
		}
	}

	return repaired, nil
}
