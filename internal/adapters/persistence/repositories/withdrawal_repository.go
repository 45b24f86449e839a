package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/core/domain"
)

type withdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	return r.db.WithContext(ctx).Create(withdrawal).Error
}

func (r *withdrawalRepository) FindByID(ctx context.Context, id uint) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&withdrawal, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, err
	}
	return &withdrawal, nil
}

func (r *withdrawalRepository) ListByUser(ctx context.Context, userID uint, status string, offset, limit int) ([]models.Withdrawal, int64, error) {
	var withdrawals []models.Withdrawal
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("requested_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&withdrawals).Error
	if err != nil {
		return nil, 0, err
	}

	return withdrawals, total, nil
}

func (r *withdrawalRepository) List(ctx context.Context, status string, offset, limit int) ([]models.Withdrawal, int64, error) {
	var withdrawals []models.Withdrawal
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Withdrawal{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Order("requested_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&withdrawals).Error
	if err != nil {
		return nil, 0, err
	}

	return withdrawals, total, nil
}

// MarkProcessed transitions a pending withdrawal to a terminal status.
// The conditional update keeps concurrent admins from processing the same
// request twice: losing the race yields ErrWithdrawalProcessed.
func (r *withdrawalRepository) MarkProcessed(ctx context.Context, id uint, status string, reason *string, adminID uint, processedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, domain.WithdrawalPending).
		Updates(map[string]interface{}{
			"status":        status,
			"reject_reason": reason,
			"processed_by":  adminID,
			"processed_at":  processedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		r.db.WithContext(ctx).
			Model(&models.Withdrawal{}).
			Where("id = ?", id).
			Count(&count)
		if count == 0 {
			return domain.ErrWithdrawalNotFound
		}
		return domain.ErrWithdrawalProcessed
	}
	return nil
}

func (r *withdrawalRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *withdrawalRepository) SumAmountByStatus(ctx context.Context, status string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", status).
		Scan(&total).Error
	return total, err
}
