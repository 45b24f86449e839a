package services

import (
	"context"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/core/domain"
)

// DashboardService aggregates the member and admin overview figures
type DashboardService struct {
	userRepo       repositories.UserRepository
	withdrawalRepo repositories.WithdrawalRepository
	txRepo         repositories.TransactionRepository
	notifRepo      repositories.NotificationRepository
	earnings       *EarningsService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	userRepo repositories.UserRepository,
	withdrawalRepo repositories.WithdrawalRepository,
	txRepo repositories.TransactionRepository,
	notifRepo repositories.NotificationRepository,
	earnings *EarningsService,
) *DashboardService {
	return &DashboardService{
		userRepo:       userRepo,
		withdrawalRepo: withdrawalRepo,
		txRepo:         txRepo,
		notifRepo:      notifRepo,
		earnings:       earnings,
	}
}

// MemberOverview is the member dashboard payload
type MemberOverview struct {
	User                *models.UserResponse      `json:"user"`
	Earnings            *domain.EarningsBreakdown `json:"earnings"`
	UnreadNotifications int64                     `json:"unread_notifications"`
}

// MemberDashboard builds the landing view for a logged-in member
func (s *DashboardService) MemberDashboard(ctx context.Context, userID uint) (*MemberOverview, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.earnings.Calculate(ctx, userID)
	if err != nil {
		return nil, err
	}

	unread, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &MemberOverview{
		User:                user.ToResponse(),
		Earnings:            breakdown,
		UnreadNotifications: unread,
	}, nil
}

// AdminStats is the admin dashboard payload
type AdminStats struct {
	TotalUsers         int64                        `json:"total_users"`
	ActiveUsers        int64                        `json:"active_users"`
	TotalInvestment    float64                      `json:"total_investment"`
	PendingWithdrawals int64                        `json:"pending_withdrawals"`
	PendingAmount      float64                      `json:"pending_amount"`
	ApprovedAmount     float64                      `json:"approved_amount"`
	Packages           []repositories.PackageStat   `json:"packages"`
	RecentActivity     []models.TransactionResponse `json:"recent_activity"`
}

// AdminDashboard builds the admin overview
func (s *DashboardService) AdminDashboard(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	var err error

	if stats.TotalUsers, err = s.userRepo.CountByRole(ctx, string(domain.RoleUser)); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = s.userRepo.CountByStatus(ctx, string(domain.StatusActive)); err != nil {
		return nil, err
	}
	if stats.TotalInvestment, err = s.userRepo.SumInvestment(ctx); err != nil {
		return nil, err
	}
	if stats.PendingWithdrawals, err = s.withdrawalRepo.CountByStatus(ctx, string(domain.WithdrawalPending)); err != nil {
		return nil, err
	}
	if stats.PendingAmount, err = s.withdrawalRepo.SumAmountByStatus(ctx, string(domain.WithdrawalPending)); err != nil {
		return nil, err
	}
	if stats.ApprovedAmount, err = s.withdrawalRepo.SumAmountByStatus(ctx, string(domain.WithdrawalApproved)); err != nil {
		return nil, err
	}
	if stats.Packages, err = s.userRepo.PackageDistribution(ctx); err != nil {
		return nil, err
	}

	recent, err := s.txRepo.ListRecent(ctx, 10)
	if err != nil {
		return nil, err
	}
	stats.RecentActivity = make([]models.TransactionResponse, 0, len(recent))
	for i := range recent {
		stats.RecentActivity = append(stats.RecentActivity, *recent[i].ToResponse())
	}

	return stats, nil
}
