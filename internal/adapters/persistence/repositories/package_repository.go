package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/core/domain"
)

type packageRepository struct {
	db *gorm.DB
}

// NewPackageRepository creates a new package repository
func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) FindByID(ctx context.Context, id uint) (*models.Package, error) {
	var pkg models.Package
	err := r.db.WithContext(ctx).First(&pkg, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) FindByCode(ctx context.Context, code string) (*models.Package, error) {
	var pkg models.Package
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) List(ctx context.Context) ([]models.Package, error) {
	var packages []models.Package
	err := r.db.WithContext(ctx).
		Order("sort_order ASC").
		Find(&packages).Error
	return packages, err
}
