package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/core/domain"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Writes omit associations: Package and Referrer rows are managed on
// their own, only the foreign keys belong to the user row.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Package").
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Package").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("referral_code = ?", code).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ExistsByReferralCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("referral_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// Update persists profile-level edits. Money and counter columns are
// owned by the conditional-update methods below, so a row read before a
// concurrent debit or team-size increment can never write them back stale.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations, "balance", "total_earnings", "direct_referrals", "team_size").
		Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, offset, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"full_name LIKE ? OR email LIKE ? OR referral_code LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PackageID != nil {
		query = query.Where("package_id = ?", *filter.PackageID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Package").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListByReferrer returns the direct referrals of a user in join order.
func (r *userRepository) ListByReferrer(ctx context.Context, referrerID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Package").
		Where("referrer_id = ?", referrerID).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// DetachChildren clears the referrer link on all direct referrals of a user.
// Used when a user is removed: their referrals become tree roots.
func (r *userRepository) DetachChildren(ctx context.Context, referrerID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("referrer_id = ?", referrerID).
		Update("referrer_id", nil)
	return result.RowsAffected, result.Error
}

func (r *userRepository) IncrementDirectReferrals(ctx context.Context, id uint, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("direct_referrals", gorm.Expr("direct_referrals + ?", delta)).Error
}

func (r *userRepository) IncrementTeamSize(ctx context.Context, ids []uint, delta int) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", ids).
		Update("team_size", gorm.Expr("team_size + ?", delta)).Error
}

func (r *userRepository) UpdateCounters(ctx context.Context, id uint, directReferrals, teamSize int) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"direct_referrals": directReferrals,
			"team_size":        teamSize,
		}).Error
}

// DebitBalance atomically subtracts amount from a user's balance.
// The conditional update guarantees the balance never goes negative;
// a zero-row result means the funds were insufficient.
func (r *userRepository) DebitBalance(ctx context.Context, id uint, amount float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND balance >= ?", id, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *userRepository) CreditBalance(ctx context.Context, id uint, amount float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetEarnings(ctx context.Context, id uint, total float64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("total_earnings", total).Error
}

func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

func (r *userRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND status = ?", domain.RoleUser, status).
		Count(&count).Error
	return count, err
}

// SumInvestment totals the package prices of all members holding a package.
func (r *userRepository) SumInvestment(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("COALESCE(SUM(packages.price), 0)").
		Joins("JOIN packages ON packages.id = users.package_id").
		Where("users.deleted_at IS NULL").
		Scan(&total).Error
	return total, err
}

// PackageDistribution counts members and revenue per tier. A tier with no
// members still comes back, with zero members and zero revenue.
func (r *userRepository) PackageDistribution(ctx context.Context) ([]PackageStat, error) {
	var stats []PackageStat
	err := r.db.WithContext(ctx).
		Model(&models.Package{}).
		Select("packages.id AS package_id, packages.code, packages.name, COUNT(users.id) AS members, COUNT(users.id) * packages.price AS revenue").
		Joins("LEFT JOIN users ON users.package_id = packages.id AND users.deleted_at IS NULL").
		Group("packages.id, packages.code, packages.name, packages.price").
		Order("packages.sort_order ASC").
		Scan(&stats).Error
	return stats, err
}
