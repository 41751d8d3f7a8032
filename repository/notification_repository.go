package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/latum0/exonyb-sub001/models"
)

// ErrDuplicateNotification is returned when an unresolved notification for
// the same (product, kind) already exists. The partial unique index
// idx_open_stock_notification backs this at the storage layer.
var ErrDuplicateNotification = errors.New("unresolved notification already exists")

// NotificationRepository defines the interface for stock notification data
// access. The notification manager is the only caller of the write methods.
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	Create(ctx context.Context, n *models.StockNotification) error
	HasUnresolved(ctx context.Context, productID uuid.UUID, kind string) (bool, error)
	ResolveForProducts(ctx context.Context, productIDs []uuid.UUID, kind string) (int64, error)
	FindAll(ctx context.Context, resolved *bool, page, limit int) ([]models.StockNotification, int64, error)
}

// GormNotificationRepository implements NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *GormNotificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: tx}
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *models.StockNotification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateNotification
		}
		return err
	}
	return nil
}

func (r *GormNotificationRepository) HasUnresolved(ctx context.Context, productID uuid.UUID, kind string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockNotification{}).
		Where("product_id = ? AND kind = ? AND resolved = false", productID, kind).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormNotificationRepository) ResolveForProducts(ctx context.Context, productIDs []uuid.UUID, kind string) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.StockNotification{}).
		Where("product_id IN ? AND kind = ? AND resolved = false", productIDs, kind).
		Update("resolved", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *GormNotificationRepository) FindAll(ctx context.Context, resolved *bool, page, limit int) ([]models.StockNotification, int64, error) {
	var notifications []models.StockNotification
	var total int64

	query := r.db.WithContext(ctx).Model(&models.StockNotification{})
	if resolved != nil {
		query = query.Where("resolved = ?", *resolved)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}
