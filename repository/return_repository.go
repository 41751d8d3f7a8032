package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/latum0/exonyb-sub001/models"
)

// ReturnRepository defines the interface for product return data access
type ReturnRepository interface {
	WithTx(tx *gorm.DB) ReturnRepository
	Create(ctx context.Context, ret *models.Return) error
	FindAll(ctx context.Context, page, limit int) ([]models.Return, int64, error)
}

type GormReturnRepository struct {
	db *gorm.DB
}

func NewGormReturnRepository(db *gorm.DB) ReturnRepository {
	return &GormReturnRepository{db: db}
}

func (r *GormReturnRepository) WithTx(tx *gorm.DB) ReturnRepository {
	return &GormReturnRepository{db: tx}
}

func (r *GormReturnRepository) Create(ctx context.Context, ret *models.Return) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *GormReturnRepository) FindAll(ctx context.Context, page, limit int) ([]models.Return, int64, error) {
	var returns []models.Return
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Return{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&returns).Error; err != nil {
		return nil, 0, err
	}
	return returns, total, nil
}
