package repositories

import (
	"context"
	"time"

	"tradepro-network/internal/adapters/persistence/models"
)

// UserFilter holds optional filters for listing users
type UserFilter struct {
	Search    string // matches full_name, email, referral_code
	Role      string
	Status    string
	PackageID *uint
}

// PackageStat is a per-package aggregate row for the admin dashboard
type PackageStat struct {
	PackageID uint    `json:"package_id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Members   int64   `json:"members"`
	Revenue   float64 `json:"revenue"`
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByReferralCode(ctx context.Context, code string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByReferralCode(ctx context.Context, code string) (bool, error)
	// Update persists profile-level fields only; balance, earnings and
	// referral counters are written through the dedicated methods below.
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]models.User, int64, error)
	ListByReferrer(ctx context.Context, referrerID uint) ([]models.User, error)
	DetachChildren(ctx context.Context, referrerID uint) (int64, error)
	IncrementDirectReferrals(ctx context.Context, id uint, delta int) error
	IncrementTeamSize(ctx context.Context, ids []uint, delta int) error
	UpdateCounters(ctx context.Context, id uint, directReferrals, teamSize int) error
	DebitBalance(ctx context.Context, id uint, amount float64) error
	CreditBalance(ctx context.Context, id uint, amount float64) error
	SetEarnings(ctx context.Context, id uint, total float64) error
	CountByRole(ctx context.Context, role string) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	SumInvestment(ctx context.Context) (float64, error)
	PackageDistribution(ctx context.Context) ([]PackageStat, error)
}

// PackageRepository defines data access for membership packages
type PackageRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Package, error)
	FindByCode(ctx context.Context, code string) (*models.Package, error)
	List(ctx context.Context) ([]models.Package, error)
}

// WithdrawalRepository defines data access for withdrawal requests
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *models.Withdrawal) error
	FindByID(ctx context.Context, id uint) (*models.Withdrawal, error)
	ListByUser(ctx context.Context, userID uint, status string, offset, limit int) ([]models.Withdrawal, int64, error)
	List(ctx context.Context, status string, offset, limit int) ([]models.Withdrawal, int64, error)
	MarkProcessed(ctx context.Context, id uint, status string, reason *string, adminID uint, processedAt time.Time) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	SumAmountByStatus(ctx context.Context, status string) (float64, error)
}

// TransactionRepository defines data access for the transaction ledger
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	ListByUser(ctx context.Context, userID uint, txType string, offset, limit int) ([]models.Transaction, int64, error)
	ListRecent(ctx context.Context, limit int) ([]models.Transaction, error)
}

// NotificationRepository defines data access for notifications
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RefreshTokenRepository defines data access for refresh tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByTokenHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeAllByUser(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}
