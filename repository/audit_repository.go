package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/latum0/exonyb-sub001/models"
)

// AuditRepository defines the interface for audit trail data access. Entries
// are written inside the same transaction as the mutation they describe.
type AuditRepository interface {
	WithTx(tx *gorm.DB) AuditRepository
	Create(ctx context.Context, entry *models.AuditLog) error
	FindAll(ctx context.Context, page, limit int) ([]models.AuditLog, int64, error)
}

type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) AuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) WithTx(tx *gorm.DB) AuditRepository {
	return &GormAuditRepository{db: tx}
}

func (r *GormAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormAuditRepository) FindAll(ctx context.Context, page, limit int) ([]models.AuditLog, int64, error) {
	var entries []models.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
